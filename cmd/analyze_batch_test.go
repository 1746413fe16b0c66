package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeBatch_AttachWithCollisionSuffix(t *testing.T) {
	home := setupHome(t)

	// Two files with the same basename in different directories
	writeFile(t, filepath.Join(home, "d1", "metrics.csv"), salesCSV)
	writeFile(t, filepath.Join(home, "d2", "metrics.csv"), salesCSV)

	runCmd(t, "init", "batchp", "--preset", "sales", "-d", "batch project")
	runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), "-p", "batchp", "--now", "2024-06-30", "--quiet", "--add-datasets")

	projDir, err := resolveProjectDirByName("batchp")
	if err != nil {
		t.Fatalf("resolve project: %v", err)
	}
	reports := filepath.Join(projDir, "reports")
	b1 := filepath.Join(reports, "metrics.analysis.md")
	b2 := filepath.Join(reports, "metrics__2.analysis.md")
	if _, err := os.Stat(b1); err != nil {
		t.Fatalf("missing first report: %v", err)
	}
	if _, err := os.Stat(b2); err != nil {
		t.Fatalf("missing second report: %v", err)
	}
	body, err := os.ReadFile(b1)
	if err != nil {
		t.Fatalf("read b1: %v", err)
	}
	if !strings.Contains(string(body), "Source: metrics.csv") {
		t.Fatalf("unexpected report:\n%s", body)
	}

	p := loadTestProject(t, "batchp")
	if len(p.Datasets) != 2 {
		t.Fatalf("datasets = %d, want 2", len(p.Datasets))
	}
}

func TestAnalyzeBatch_OutDirJSON(t *testing.T) {
	home := setupHome(t)
	a := writeFile(t, filepath.Join(home, "in", "a.csv"), salesCSV)
	b := writeFile(t, filepath.Join(home, "in", "b.csv"), salesCSV)
	outDir := filepath.Join(home, "out")

	// Duplicate inputs are analyzed once.
	runCmd(t, "analyze-batch", a, b, a, "--preset", "sales", "--now", "2024-06-30", "--period", "thisYear", "--format", "json", "--out-dir", outDir)

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("reports = %d, want 2", len(entries))
	}
	rep := readReport(t, filepath.Join(outDir, "b.analysis.json"))
	// thisYear keeps every dated 2024 row plus the undated one.
	if rep.Name != "b.csv" || rep.FilteredRecords != 7 {
		t.Fatalf("report: name=%q filtered=%d", rep.Name, rep.FilteredRecords)
	}
}

func TestAnalyzeBatch_NoMatches(t *testing.T) {
	home := setupHome(t)
	if err := execCmd("analyze-batch", filepath.Join(home, "missing", "*.csv")); err == nil {
		t.Fatalf("expected error when no files match")
	}
}

func TestAnalyzeBatch_ParallelJobs(t *testing.T) {
	home := setupHome(t)
	outDir := filepath.Join(home, "out")
	for _, name := range []string{"jan", "feb", "mar", "apr"} {
		writeFile(t, filepath.Join(home, "in", name+".csv"), salesCSV)
	}

	runCmd(t, "analyze-batch", filepath.Join(home, "in", "*.csv"), "--preset", "sales", "--now", "2024-06-30",
		"--format", "json", "--out-dir", outDir, "--jobs", "3", "--quiet")

	for _, name := range []string{"jan", "feb", "mar", "apr"} {
		rep := readReport(t, filepath.Join(outDir, name+".analysis.json"))
		if rep.Name != name+".csv" || rep.KPIs.TotalValue != 2740 {
			t.Fatalf("%s report: name=%q total=%v", name, rep.Name, rep.KPIs.TotalValue)
		}
	}

	writeFile(t, filepath.Join(home, "in", "broken.json"), `{"records": 5}`)
	if err := execCmd("analyze-batch", filepath.Join(home, "in", "*"), "--preset", "sales", "--jobs", "2", "--quiet"); err == nil {
		t.Fatalf("expected error for a malformed input")
	}
	if err := execCmd("analyze-batch", filepath.Join(home, "in", "jan.csv"), "--preset", "sales", "--jobs", "0"); err == nil {
		t.Fatalf("expected error for --jobs 0")
	}
}
