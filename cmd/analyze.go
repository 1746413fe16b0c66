package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/insightloom-cli/internal/analytics"
	"github.com/KaramelBytes/insightloom-cli/internal/project"
	"github.com/KaramelBytes/insightloom-cli/internal/records"
	"github.com/KaramelBytes/insightloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaFlags      analysisFlags
	anaLoad       loadFlags
	anaProject    string
	anaOutputPath string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [<file>]",
	Short: "Analyze a record file (or a project's datasets) and produce a report",
	Long: `Analyze loads a CSV, TSV, JSON or XLSX record file, applies the field mapping
and prints a report with KPIs, a monthly trend, top entities, Pareto classes,
RFM segments, correlations and anomalies.

With --project and no file, every dataset of the project is analyzed together
and the report is saved under the project's reports/ directory. Without either,
the project enclosing the working directory is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := anaFlags.outputFormat()
		if err != nil {
			return err
		}
		var p *project.Project
		switch {
		case anaProject != "":
			projDir, err := resolveProjectDirByName(anaProject)
			if err != nil {
				return err
			}
			if p, err = project.LoadProject(projDir); err != nil {
				return err
			}
		case len(args) == 0:
			// No file and no --project: use the project enclosing the working directory.
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			root, err := utils.FindProjectRoot(wd)
			if errors.Is(err, utils.ErrNoProjectRoot) {
				return errors.New("a record file or --project is required")
			}
			if err != nil {
				return err
			}
			if p, err = project.LoadProject(root); err != nil {
				return err
			}
			logger.Debug("using enclosing project", "dir", root)
		}

		opt, err := anaLoad.options()
		if err != nil {
			return err
		}
		var (
			recs []analytics.Record
			name string
		)
		if len(args) == 1 {
			tab, err := loadTable(args[0], opt)
			if err != nil {
				return err
			}
			recs, name = tab.Records, tab.Name
		} else {
			// Datasets keep the loader settings they were added with; only
			// flags given here override them.
			if !cmd.Flags().Changed("sheet-index") {
				opt.SheetIndex = 0
			}
			recs, err = p.LoadRecords(opt)
			if err != nil {
				return err
			}
			name = p.Name
			logger.Info("loaded project records", "project", p.Name, "datasets", len(p.Datasets), "records", len(recs))
		}

		rep, err := runAnalysis(&anaFlags, name, p, recs)
		if err != nil {
			return err
		}
		out, err := renderReport(rep, format)
		if err != nil {
			return err
		}

		// Decide where to write: --output path, the project's reports, or stdout
		written := false
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
			written = true
		}
		if p != nil {
			path, err := p.SaveReport(utils.ReportFileName(name, format), out)
			if err != nil {
				return fmt.Errorf("write project report: %w", err)
			}
			fmt.Printf("✓ Saved report to project '%s' as %s\n", p.Name, filepath.Base(path))
			written = true
		}
		if !written {
			fmt.Println(strings.TrimRight(string(out), "\n"))
		}
		return nil
	},
}

// loadTable reads one record file and logs what was loaded.
func loadTable(path string, opt records.Options) (*records.Table, error) {
	tab, err := records.LoadFile(path, opt)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded records", "file", tab.Name, "records", len(tab.Records), "fields", len(tab.Fields))
	if tab.Truncated() {
		logger.Warn("record limit reached", "file", tab.Name, "rows", tab.Rows, "max_rows", opt.MaxRows)
	}
	return tab, nil
}

// runAnalysis resolves the flags against p and runs the full analysis.
func runAnalysis(f *analysisFlags, name string, p *project.Project, recs []analytics.Record) (*analytics.Report, error) {
	req, err := f.request(name, p)
	if err != nil {
		return nil, err
	}
	fm, opts, err := req.Resolve(time.Now())
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved analysis", "field_map", fm, "range", opts.Range.String(), "now", opts.Now.Format("2006-01-02"), "top", opts.TopN)
	rep, err := analytics.Analyze(recs, fm, opts)
	if err != nil {
		return nil, err
	}
	logWarnings(rep)
	return rep, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.register(analyzeCmd.Flags())
	anaLoad.register(analyzeCmd.Flags())
	analyzeCmd.Flags().StringVarP(&anaProject, "project", "p", "", "project whose mapping (and datasets, when no file is given) to use")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
}
