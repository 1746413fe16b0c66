package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/insightloom-cli/internal/project"
	"github.com/spf13/cobra"
)

var (
	addProjectName string
	addDesc        string
	addLoad        loadFlags
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add a record file to a project as a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if addProjectName == "" {
			return errors.New("--project is required")
		}
		opt, err := addLoad.options()
		if err != nil {
			return err
		}
		projDir, err := resolveProjectDirByName(addProjectName)
		if err != nil {
			return err
		}
		p, err := project.LoadProject(projDir)
		if err != nil {
			return err
		}
		ds, err := p.AddDataset(args[0], addDesc, opt)
		if err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		logger.Debug("dataset added", "project", p.Name, "id", ds.ID, "path", ds.Path)
		fmt.Printf("✓ Dataset added: %s (%d records, %d fields)\n", ds.Name, ds.Records, len(ds.Fields))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addProjectName, "project", "p", "", "project name")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "dataset description")
	addLoad.register(addCmd.Flags())
}
