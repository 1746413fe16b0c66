package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/KaramelBytes/insightloom-cli/internal/project"
	"github.com/KaramelBytes/insightloom-cli/internal/records"
	"github.com/KaramelBytes/insightloom-cli/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	abFlags       analysisFlags
	abLoad        loadFlags
	abProject     string
	abOutDir      string
	abDescription string
	abAddDatasets bool
	abQuiet       bool
	abJobs        int
)

// batchResult is one analyzed input, kept until outputs are written in order.
type batchResult struct {
	stem string
	out  []byte
}

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple record files with progress and optional project attachment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return errors.New("no input files matched")
		}
		format, err := abFlags.outputFormat()
		if err != nil {
			return err
		}
		opt, err := abLoad.options()
		if err != nil {
			return err
		}

		var p *project.Project
		if abProject != "" {
			projDir, err := resolveProjectDirByName(abProject)
			if err != nil {
				return err
			}
			if p, err = project.LoadProject(projDir); err != nil {
				return err
			}
		}

		if abJobs < 1 {
			return fmt.Errorf("--jobs must be at least 1, got %d", abJobs)
		}
		results, err := analyzeFiles(cmd.Context(), files, opt, p, format)
		if err != nil {
			return err
		}

		for i, res := range results {
			path := files[i]
			written := false
			if abOutDir != "" {
				dest, err := uniqueReportPath(abOutDir, res.stem, format)
				if err != nil {
					return err
				}
				if err := utils.SafeWriteFile(dest, res.out); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				if !abQuiet {
					fmt.Printf("✓ Wrote analysis to %s\n", dest)
				}
				written = true
			}
			if p != nil {
				dest, err := uniqueReportPath(filepath.Join(p.RootDir(), "reports"), res.stem, format)
				if err != nil {
					return err
				}
				if _, err := p.SaveReport(filepath.Base(dest), res.out); err != nil {
					return fmt.Errorf("write project report: %w", err)
				}
				if abAddDatasets {
					if _, err := p.AddDataset(path, abDescription, opt); err != nil {
						return err
					}
					if err := p.Save(); err != nil {
						return err
					}
				}
				if !abQuiet {
					fmt.Printf("✓ Added analysis to project '%s' as %s\n", p.Name, filepath.Base(dest))
				}
				written = true
			}
			if !written && !abQuiet {
				fmt.Println(strings.TrimRight(string(res.out), "\n"))
			}
		}
		return nil
	},
}

// analyzeFiles loads, analyzes and renders files with up to --jobs workers.
// Results keep input order; the first failure cancels files not yet started.
func analyzeFiles(ctx context.Context, files []string, opt records.Options, p *project.Project, format string) ([]batchResult, error) {
	results := make([]batchResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(abJobs)

	var (
		mu      sync.Mutex
		started int
	)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !abQuiet {
				mu.Lock()
				started++
				fmt.Printf("[%d/%d] Processing %s...\n", started, len(files), filepath.Base(path))
				mu.Unlock()
			}
			tab, err := loadTable(path, opt)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			rep, err := runAnalysis(&abFlags, tab.Name, p, tab.Records)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			out, err := renderReport(rep, format)
			if err != nil {
				return err
			}
			results[i] = batchResult{stem: batchStem(path, abLoad.sheetName), out: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// expandInputs resolves globs, keeps literal paths that exist, drops
// duplicates and unsupported formats, and returns the files sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			if !records.Supported(m) {
				logger.Warn("skipping unsupported file", "path", m)
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// batchStem names a report after its source file and, if given, its sheet.
func batchStem(path, sheet string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if sheet = strings.TrimSpace(sheet); sheet != "" {
		stem += "__sheet-" + strings.ToLower(sheet)
	}
	return stem
}

// uniqueReportPath returns dir/<stem>.analysis.<format>, or the first free
// <stem>__N variant when that file already exists.
func uniqueReportPath(dir, stem, format string) (string, error) {
	first := filepath.Join(dir, utils.ReportFileName(stem, format))
	cand := first
	for idx := 2; ; idx++ {
		_, err := os.Stat(cand)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", cand, err)
		}
		cand = filepath.Join(dir, utils.ReportFileName(fmt.Sprintf("%s__%d", stem, idx), format))
	}
	if cand != first && !abQuiet {
		fmt.Printf("⚠ Detected existing report, writing to %s to avoid overwrite.\n", filepath.Base(cand))
	}
	return cand, nil
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abFlags.register(analyzeBatchCmd.Flags())
	abLoad.register(analyzeBatchCmd.Flags())
	analyzeBatchCmd.Flags().StringVarP(&abProject, "project", "p", "", "project whose mapping to use; reports are saved under its reports/")
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory to write one report per input file")
	analyzeBatchCmd.Flags().StringVar(&abDescription, "desc", "", "dataset description when using --add-datasets")
	analyzeBatchCmd.Flags().BoolVar(&abAddDatasets, "add-datasets", false, "also register each input file as a project dataset")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	analyzeBatchCmd.Flags().IntVar(&abJobs, "jobs", 1, "number of files to analyze concurrently")
}
