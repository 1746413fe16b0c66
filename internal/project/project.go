package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/insightloom-cli/internal/analytics"
	"github.com/KaramelBytes/insightloom-cli/internal/records"
	"github.com/KaramelBytes/insightloom-cli/internal/utils"
)

const reportsDir = "reports"

// ErrNoDatasets reports an analysis request on a project without datasets.
var ErrNoDatasets = errors.New("no datasets added to project")

// Project is an on-disk analysis workspace: a field mapping plus the record
// files it applies to.
type Project struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Preset      string              `json:"preset,omitempty"`
	FieldMap    analytics.FieldMap  `json:"field_map"`
	Config      *Config             `json:"config"`
	Datasets    map[string]*Dataset `json:"datasets"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	rootDir string
}

// Config holds per-project analysis overrides; zero values inherit globals.
type Config struct {
	TopN              int      `json:"top_n,omitempty"`
	CorrelationFields []string `json:"correlation_fields,omitempty"`
	CustomerField     string   `json:"customer_field,omitempty"`
}

// NewProject constructs an in-memory project. Call Save() to persist.
func NewProject(name, description, rootDir string) *Project {
	now := time.Now()
	return &Project{
		Name:        name,
		Description: description,
		Config:      &Config{},
		Datasets:    make(map[string]*Dataset),
		CreatedAt:   now,
		UpdatedAt:   now,
		rootDir:     rootDir,
	}
}

// LoadProject loads a project.json from the provided directory.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, utils.ProjectFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read project: %w", err)
	}
	var p Project
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if p.Config == nil {
		p.Config = &Config{}
	}
	if p.Datasets == nil {
		p.Datasets = make(map[string]*Dataset)
	}
	p.rootDir = dir
	return &p, nil
}

// RootDir returns the on-disk project directory path.
func (p *Project) RootDir() string { return p.rootDir }

// Save writes project.json using atomic write.
func (p *Project) Save() error {
	if p.rootDir == "" {
		return errors.New("project root directory not set")
	}
	p.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(p)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(p.rootDir, utils.ProjectFile), data)
}

// SetFieldMap overlays the non-empty bindings of fm and records the preset
// the mapping started from (if any).
func (p *Project) SetFieldMap(preset string, fm analytics.FieldMap) error {
	base := p.FieldMap
	if preset != "" {
		pr, err := analytics.LookupPreset(preset)
		if err != nil {
			return err
		}
		base = pr.FieldMap
		p.Preset = pr.Name
	}
	p.FieldMap = base.Merge(fm)
	p.UpdatedAt = time.Now()
	return nil
}

// Effective returns the project's mapping: its FieldMap plus the preset's
// correlation and customer fields, with per-project overrides. The FieldMap
// may still be incomplete; callers validate after applying their own flags.
func (p *Project) Effective() (analytics.Preset, error) {
	var out analytics.Preset
	if p.Preset != "" {
		pr, err := analytics.LookupPreset(p.Preset)
		if err != nil {
			return analytics.Preset{}, err
		}
		out = pr
	}
	out.Name = p.Name
	out.FieldMap = p.FieldMap
	if p.Config != nil {
		if len(p.Config.CorrelationFields) > 0 {
			out.CorrelationFields = append([]string(nil), p.Config.CorrelationFields...)
		}
		if p.Config.CustomerField != "" {
			out.CustomerField = p.Config.CustomerField
		}
	}
	return out, nil
}

// AddDataset loads a record file once to validate it and registers it.
func (p *Project) AddDataset(path, description string, opt records.Options) (*Dataset, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	tab, err := records.LoadFile(abs, opt)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	ds := &Dataset{
		ID:          uuid.NewString(),
		Path:        abs,
		Name:        tab.Name,
		Description: strings.TrimSpace(description),
		Format:      strings.TrimPrefix(strings.ToLower(filepath.Ext(abs)), "."),
		Records:     tab.Rows,
		Fields:      tab.Fields,
		Sheet:       opt.Sheet,
		AddedAt:     time.Now(),
	}
	if opt.Sheet == "" && opt.SheetIndex > 1 {
		ds.SheetIndex = opt.SheetIndex
	}
	if opt.Delimiter != 0 {
		ds.Delimiter = string(opt.Delimiter)
	}
	if p.Datasets == nil {
		p.Datasets = make(map[string]*Dataset)
	}
	p.Datasets[ds.ID] = ds
	p.UpdatedAt = time.Now()
	return ds, nil
}

// SortedDatasets returns datasets ordered by AddedAt, then name.
func (p *Project) SortedDatasets() []*Dataset {
	out := make([]*Dataset, 0, len(p.Datasets))
	for _, d := range p.Datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out
}

// LoadRecords reads every dataset with the loader settings it was added with
// and concatenates their records. Non-zero fields of override take precedence
// over the stored settings; override.MaxRows applies per dataset.
func (p *Project) LoadRecords(override records.Options) ([]analytics.Record, error) {
	if len(p.Datasets) == 0 {
		return nil, ErrNoDatasets
	}
	var all []analytics.Record
	for _, d := range p.SortedDatasets() {
		tab, err := records.LoadFile(d.Path, d.options(override))
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", d.Name, err)
		}
		all = append(all, tab.Records...)
	}
	return all, nil
}

// SaveReport writes an analysis artifact under <project>/reports/.
func (p *Project) SaveReport(name string, data []byte) (string, error) {
	if p.rootDir == "" {
		return "", errors.New("project root directory not set")
	}
	path := filepath.Join(p.rootDir, reportsDir, filepath.Base(name))
	if err := utils.SafeWriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}
