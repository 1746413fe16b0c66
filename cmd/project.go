package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/insightloom-cli/internal/analytics"
	"github.com/KaramelBytes/insightloom-cli/internal/fieldmap"
	"github.com/KaramelBytes/insightloom-cli/internal/project"
	"github.com/spf13/cobra"
)

var (
	pmProject    string
	pmMapping    mappingFlags
	pmTop        int
	pmCorrFields []string
	pmCustomer   string
	pmClear      bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage per-project settings",
}

var projectSetFieldMapCmd = &cobra.Command{
	Use:   "set-fieldmap",
	Short: "Set a project's field mapping and analysis overrides",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadNamedProject(pmProject)
		if err != nil {
			return err
		}
		if pmClear {
			p.Preset = ""
			p.FieldMap = analytics.FieldMap{}
			p.Config = &project.Config{}
		}
		if err := applyMapping(p, &pmMapping); err != nil {
			return err
		}
		if pmTop > 0 {
			p.Config.TopN = pmTop
		}
		if len(pmCorrFields) > 0 {
			p.Config.CorrelationFields = append([]string(nil), pmCorrFields...)
		}
		if pmCustomer != "" {
			p.Config.CustomerField = pmCustomer
		}
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Printf("✓ Updated field map for %s: %s\n", p.Name, describeFieldMap(p.FieldMap))
		if err := p.FieldMap.Validate(); err != nil {
			fmt.Printf("⚠ Mapping is incomplete (%v); supply the missing roles when analyzing.\n", err)
		}
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a project's mapping, overrides and datasets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadNamedProject(pmProject)
		if err != nil {
			return err
		}
		fmt.Printf("name: %s\n", p.Name)
		if p.Description != "" {
			fmt.Printf("description: %s\n", p.Description)
		}
		if p.Preset != "" {
			fmt.Printf("preset: %s\n", p.Preset)
		}
		fmt.Printf("field_map: %s\n", describeFieldMap(p.FieldMap))
		if p.Config.TopN > 0 {
			fmt.Printf("top_n: %d\n", p.Config.TopN)
		}
		if len(p.Config.CorrelationFields) > 0 {
			fmt.Printf("correlation_fields: %s\n", strings.Join(p.Config.CorrelationFields, ", "))
		}
		if p.Config.CustomerField != "" {
			fmt.Printf("customer_field: %s\n", p.Config.CustomerField)
		}
		fmt.Printf("datasets: %d\n", len(p.Datasets))
		fmt.Printf("dir: %s\n", p.RootDir())
		return nil
	},
}

var projectExportCmd = &cobra.Command{
	Use:   "export-fieldmap <path>",
	Short: "Write a project's mapping as a reusable field map profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadNamedProject(pmProject)
		if err != nil {
			return err
		}
		prof := &fieldmap.Profile{
			Name:              p.Name,
			Description:       p.Description,
			Preset:            p.Preset,
			Fields:            p.FieldMap,
			CorrelationFields: p.Config.CorrelationFields,
			CustomerField:     p.Config.CustomerField,
		}
		if _, err := prof.Resolve(); err != nil {
			return err
		}
		if err := prof.Save(args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote field map profile to %s\n", args[0])
		return nil
	},
}

func loadNamedProject(name string) (*project.Project, error) {
	if name == "" {
		return nil, errors.New("--project is required")
	}
	dir, err := resolveProjectDirByName(name)
	if err != nil {
		return nil, err
	}
	return project.LoadProject(dir)
}

func describeFieldMap(fm analytics.FieldMap) string {
	parts := make([]string, 0, len(analytics.Roles))
	for _, r := range analytics.Roles {
		v := fm.Field(r)
		if v == "" {
			v = "-"
		}
		parts = append(parts, fmt.Sprintf("%s=%s", r, v))
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectSetFieldMapCmd, projectShowCmd, projectExportCmd)

	projectCmd.PersistentFlags().StringVarP(&pmProject, "project", "p", "", "project name")
	pmMapping.register(projectSetFieldMapCmd.Flags())
	projectSetFieldMapCmd.Flags().IntVar(&pmTop, "top", 0, "rows in the top tables for this project")
	projectSetFieldMapCmd.Flags().StringSliceVar(&pmCorrFields, "corr-fields", nil, "correlation fields for this project")
	projectSetFieldMapCmd.Flags().StringVar(&pmCustomer, "customer-field", "", "RFM customer id field for this project")
	projectSetFieldMapCmd.Flags().BoolVar(&pmClear, "clear", false, "reset the mapping and overrides before applying flags")
}
