package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/insightloom-cli/internal/analytics"
	"github.com/KaramelBytes/insightloom-cli/internal/fieldmap"
	"github.com/KaramelBytes/insightloom-cli/internal/project"
	"github.com/KaramelBytes/insightloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	initDescription string
	initMapping     mappingFlags
)

var initCmd = &cobra.Command{
	Use:   "init <project-name>",
	Short: "Initialize a new InsightLoom project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		root, err := defaultProjectsDir()
		if err != nil {
			return err
		}
		projDir := filepath.Join(root, name)
		// Refuse to overwrite an existing project.
		if info, err := os.Stat(projDir); err == nil && info.IsDir() {
			if _, err := os.Stat(filepath.Join(projDir, utils.ProjectFile)); err == nil {
				return fmt.Errorf("project already exists at %s", projDir)
			}
			entries, err := os.ReadDir(projDir)
			if err != nil {
				return fmt.Errorf("inspect project directory: %w", err)
			}
			if len(entries) > 0 {
				return fmt.Errorf("directory %s already exists and is not empty; refusing to initialize project", projDir)
			}
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat project directory: %w", err)
		}

		p := project.NewProject(name, initDescription, projDir)
		if err := applyMapping(p, &initMapping); err != nil {
			return err
		}
		if err := utils.EnsureDir(projDir); err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Project initialized: %s\n", projDir)
		if p.Preset != "" {
			fmt.Printf("  preset: %s\n", p.Preset)
		}
		return nil
	},
}

// applyMapping sets p's field map from a profile file or preset (falling back
// to the configured default preset for a fresh project) plus role flags.
func applyMapping(p *project.Project, m *mappingFlags) error {
	if m.fieldmapFile != "" {
		prof, err := fieldmap.Load(m.fieldmapFile)
		if err != nil {
			return err
		}
		res, err := prof.Resolve()
		if err != nil {
			return err
		}
		if err := p.SetFieldMap(prof.Preset, res.FieldMap.Merge(m.overrides())); err != nil {
			return err
		}
		if len(prof.CorrelationFields) > 0 {
			p.Config.CorrelationFields = append([]string(nil), prof.CorrelationFields...)
		}
		if prof.CustomerField != "" {
			p.Config.CustomerField = prof.CustomerField
		}
		return nil
	}
	preset := m.preset
	if preset == "" && p.Preset == "" && p.FieldMap == (analytics.FieldMap{}) && cfg != nil {
		preset = cfg.DefaultPreset
	}
	return p.SetFieldMap(preset, m.overrides())
}

func defaultProjectsDir() (string, error) {
	dir := ""
	if cfg != nil {
		dir = cfg.ProjectsDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	switch {
	case dir == "":
		dir = filepath.Join(home, ".insightloom", "projects")
	case strings.HasPrefix(dir, "~"):
		dir = strings.TrimPrefix(dir, "~")
		dir = strings.TrimPrefix(dir, string(os.PathSeparator))
		dir = strings.TrimPrefix(dir, "/")
		dir = filepath.Join(home, dir)
	}
	dir = filepath.Clean(dir)
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

func resolveProjectDirByName(name string) (string, error) {
	if name == "" {
		return "", errors.New("project name is required")
	}
	root, err := defaultProjectsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initDescription, "desc", "d", "", "project description")
	initMapping.register(initCmd.Flags())
}
