package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFileCreatesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, SafeWriteFile(path, []byte("{}")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
	_, err = os.Stat(path + ".tmp")
	assert.ErrorIs(t, err, os.ErrNotExist, "temp file left behind")
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFile), []byte("{}"), 0o644))
	deep := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	got, err := FindProjectRoot(deep)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	_, err = FindProjectRoot(t.TempDir())
	assert.ErrorIs(t, err, ErrNoProjectRoot)
}

func TestReportFileName(t *testing.T) {
	tests := map[string]string{
		"/data/Sales 2024.csv": "Sales_2024.analysis.md",
		"orders.xlsx":          "orders.analysis.md",
		"###.json":             "report.analysis.md",
	}
	for in, want := range tests {
		assert.Equal(t, want, ReportFileName(in, "md"), in)
	}
	assert.Equal(t, "a.analysis.json", ReportFileName("a.csv", ".json"))
}
