package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/insightloom-cli/internal/analytics"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in field mapping presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range analytics.PresetNames() {
			p, err := analytics.LookupPreset(name)
			if err != nil {
				return err
			}
			fmt.Printf("- %s: %s\n", p.Name, p.Description)
			fmt.Printf("    %s\n", describeFieldMap(p.FieldMap))
			if len(p.CorrelationFields) > 0 {
				fmt.Printf("    correlations: %s\n", strings.Join(p.CorrelationFields, ", "))
			}
			if p.CustomerField != "" {
				fmt.Printf("    customer: %s\n", p.CustomerField)
			}
			if len(p.GroupFields) > 0 {
				fmt.Printf("    breakdowns: %s\n", strings.Join(p.GroupFields, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
