package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "INSIGHTLOOM"
	dirName   = ".insightloom"
)

// Global configuration structure.
type Global struct {
	DefaultPreset     string   `mapstructure:"default_preset" yaml:"default_preset"`
	TopN              int      `mapstructure:"top_n" yaml:"top_n"`
	CorrelationFields []string `mapstructure:"correlation_fields" yaml:"correlation_fields"`
	CustomerField     string   `mapstructure:"customer_field" yaml:"customer_field"`
	OutputFormat      string   `mapstructure:"output_format" yaml:"output_format"`
	ProjectsDir       string   `mapstructure:"projects_dir" yaml:"projects_dir"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	ServeAddr string `mapstructure:"serve_addr" yaml:"serve_addr"`
}

// Keys lists every settable configuration key.
var Keys = []string{
	"default_preset", "top_n", "correlation_fields", "customer_field", "output_format",
	"projects_dir", "log_level", "log_format", "serve_addr",
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.insightloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by callers.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("default_preset", "sales")
	v.SetDefault("top_n", 10)
	v.SetDefault("correlation_fields", []string{})
	v.SetDefault("customer_field", "")
	v.SetDefault("output_format", "md")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("serve_addr", ":8080")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.ProjectsDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		c.ProjectsDir = filepath.Join(dir, "projects")
	}
	return &c, nil
}
