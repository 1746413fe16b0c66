package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/insightloom-cli/internal/project"
	"github.com/KaramelBytes/insightloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	listProjects bool
	listDatasets bool
	listProjName string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects or datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listProjects == listDatasets { // either both true or both false
			return errors.New("specify exactly one of --projects or --datasets")
		}
		if listProjects {
			return listAllProjects()
		}
		if listProjName == "" {
			return errors.New("--project is required when using --datasets")
		}
		projDir, err := resolveProjectDirByName(listProjName)
		if err != nil {
			return err
		}
		p, err := project.LoadProject(projDir)
		if err != nil {
			return err
		}
		if len(p.Datasets) == 0 {
			fmt.Println("(no datasets)")
			return nil
		}
		for _, d := range p.SortedDatasets() {
			line := fmt.Sprintf("- %s: %s [%s, %d records]", d.ID, d.Name, d.Format, d.Records)
			if d.Sheet != "" {
				line += " sheet=" + d.Sheet
			} else if d.SheetIndex > 1 {
				line += fmt.Sprintf(" sheet-index=%d", d.SheetIndex)
			}
			if d.Delimiter != "" {
				line += fmt.Sprintf(" delimiter=%q", d.Delimiter)
			}
			if d.Description != "" {
				line += " " + d.Description
			}
			fmt.Println(line)
			if len(d.Fields) > 0 {
				fmt.Printf("    fields: %s\n", strings.Join(d.Fields, ", "))
			}
		}
		return nil
	},
}

func listAllProjects() error {
	root, err := defaultProjectsDir()
	if err != nil {
		return err
	}
	dirs, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	found := false
	for _, e := range dirs {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), utils.ProjectFile)); err == nil {
			fmt.Printf("- %s\n", e.Name())
			found = true
		}
	}
	if !found {
		fmt.Println("(no projects)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listProjects, "projects", false, "list projects")
	listCmd.Flags().BoolVar(&listDatasets, "datasets", false, "list datasets in a project")
	listCmd.Flags().StringVarP(&listProjName, "project", "p", "", "project name for --datasets")
}
