package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/insightloom-cli/internal/analytics"
	cfgpkg "github.com/KaramelBytes/insightloom-cli/internal/config"
	"github.com/KaramelBytes/insightloom-cli/internal/logging"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set InsightLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("default_preset: %s\n", cfg.DefaultPreset)
		fmt.Printf("top_n: %d\n", cfg.TopN)
		if len(cfg.CorrelationFields) > 0 {
			fmt.Printf("correlation_fields: %s\n", strings.Join(cfg.CorrelationFields, ","))
		}
		if cfg.CustomerField != "" {
			fmt.Printf("customer_field: %s\n", cfg.CustomerField)
		}
		fmt.Printf("output_format: %s\n", cfg.OutputFormat)
		fmt.Printf("projects_dir: %s\n", cfg.ProjectsDir)
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		fmt.Printf("log_format: %s\n", cfg.LogFormat)
		fmt.Printf("serve_addr: %s\n", cfg.ServeAddr)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "default_preset":
		p, err := analytics.LookupPreset(val)
		if err != nil {
			return err
		}
		c.DefaultPreset = p.Name
	case "top_n":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for top_n: %v", val)
		}
		c.TopN = i
	case "correlation_fields":
		var fields []string
		for _, f := range strings.Split(val, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		if len(fields) == 1 {
			return errors.New("correlation_fields needs at least two fields (or empty to clear)")
		}
		c.CorrelationFields = fields
	case "customer_field":
		c.CustomerField = strings.TrimSpace(val)
	case "output_format":
		switch strings.ToLower(val) {
		case "md", "markdown":
			c.OutputFormat = "md"
		case "json":
			c.OutputFormat = "json"
		case "yaml", "yml":
			c.OutputFormat = "yaml"
		default:
			return fmt.Errorf("invalid output_format: %s (use md, json or yaml)", val)
		}
	case "projects_dir":
		c.ProjectsDir = val
	case "log_level":
		if _, err := logging.ParseLevel(val); err != nil {
			return err
		}
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		if _, err := logging.ParseFormat(val); err != nil {
			return err
		}
		c.LogFormat = strings.ToLower(val)
	case "serve_addr":
		c.ServeAddr = val
	default:
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(cfgpkg.Keys, ", "))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
