package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/insightloom-cli/internal/analytics"
	"github.com/KaramelBytes/insightloom-cli/internal/fieldmap"
	"github.com/KaramelBytes/insightloom-cli/internal/project"
	"github.com/KaramelBytes/insightloom-cli/internal/records"
	"github.com/KaramelBytes/insightloom-cli/internal/utils"
)

// mappingFlags selects the field mapping: a preset or profile file plus
// per-role overrides.
type mappingFlags struct {
	preset       string
	fieldmapFile string
	roles        map[analytics.Role]*string
}

func (m *mappingFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&m.preset, "preset", "", "built-in field mapping (see 'insightloom presets')")
	fs.StringVar(&m.fieldmapFile, "fieldmap-file", "", "YAML/JSON field map profile")
	m.roles = make(map[analytics.Role]*string, len(analytics.Roles))
	for _, r := range analytics.Roles {
		v := new(string)
		m.roles[r] = v
		fs.StringVar(v, string(r), "", fmt.Sprintf("record field bound to the %s role", r))
	}
}

// overrides returns the role bindings given on the command line.
func (m *mappingFlags) overrides() analytics.FieldMap {
	var fm analytics.FieldMap
	for _, r := range analytics.Roles {
		if v, ok := m.roles[r]; ok {
			fm, _ = fm.With(r, *v)
		}
	}
	return fm
}

// base picks the starting mapping: profile file, then --preset, then the
// project's mapping, then the configured default preset (skipped when the
// role flags already bind every role). pinned reports
// whether correlation and customer fields came from a user-authored source
// rather than a bare preset.
func (m *mappingFlags) base(p *project.Project) (mapping analytics.Preset, pinned bool, err error) {
	switch {
	case m.fieldmapFile != "":
		prof, err := fieldmap.Load(m.fieldmapFile)
		if err != nil {
			return analytics.Preset{}, false, err
		}
		res, err := prof.Resolve()
		return res, true, err
	case m.preset != "":
		res, err := analytics.LookupPreset(m.preset)
		return res, false, err
	case p != nil:
		res, err := p.Effective()
		pinned = p.Config != nil && (len(p.Config.CorrelationFields) > 0 || p.Config.CustomerField != "")
		return res, pinned, err
	case cfg != nil && cfg.DefaultPreset != "" && m.overrides().Validate() != nil:
		res, err := analytics.LookupPreset(cfg.DefaultPreset)
		return res, false, err
	}
	return analytics.Preset{}, false, nil
}

// analysisFlags are shared by analyze and analyze-batch.
type analysisFlags struct {
	mappingFlags
	start, end, period, now string
	top                     int
	corrFields              []string
	customerField           string
	groupBy                 []string
	format                  string
}

func (f *analysisFlags) register(fs *pflag.FlagSet) {
	f.mappingFlags.register(fs)
	fs.StringVar(&f.start, "start", "", "inclusive start date (YYYY-MM-DD)")
	fs.StringVar(&f.end, "end", "", "inclusive end date (YYYY-MM-DD)")
	fs.StringVar(&f.period, "period", "", "quick range: "+strings.Join(analytics.Periods, "|"))
	fs.StringVar(&f.now, "now", "", "reference date for periods and RFM recency (default: today)")
	fs.IntVar(&f.top, "top", 0, "rows in the top tables (default from config)")
	fs.StringSliceVar(&f.corrFields, "corr-fields", nil, "numeric fields for the correlation matrix (comma-separated)")
	fs.StringVar(&f.customerField, "customer-field", "", "customer id field for RFM")
	fs.StringSliceVar(&f.groupBy, "group-by", nil, "extra categorical fields to break totals down by (comma-separated)")
	fs.StringVar(&f.format, "format", "", "output format: md|json|yaml (default from config)")
}

// request assembles an analytics.Request. Precedence for each knob is flag,
// then project or profile, then global config, then preset.
func (f *analysisFlags) request(name string, p *project.Project) (analytics.Request, error) {
	mapping, pinned, err := f.base(p)
	if err != nil {
		return analytics.Request{}, err
	}
	fm := mapping.FieldMap.Merge(f.overrides())
	req := analytics.Request{
		Name:              name,
		FieldMap:          &fm,
		Start:             f.start,
		End:               f.end,
		Period:            f.period,
		Now:               f.now,
		CorrelationFields: mapping.CorrelationFields,
		CustomerField:     mapping.CustomerField,
		GroupBy:           mapping.GroupFields,
	}
	if cfg != nil {
		req.Top = cfg.TopN
		if !pinned && len(cfg.CorrelationFields) > 0 {
			req.CorrelationFields = cfg.CorrelationFields
		}
		if !pinned && cfg.CustomerField != "" {
			req.CustomerField = cfg.CustomerField
		}
	}
	if p != nil && p.Config != nil && p.Config.TopN > 0 {
		req.Top = p.Config.TopN
	}
	if f.top > 0 {
		req.Top = f.top
	}
	if len(f.corrFields) > 0 {
		req.CorrelationFields = f.corrFields
	}
	if f.customerField != "" {
		req.CustomerField = f.customerField
	}
	if len(f.groupBy) > 0 {
		req.GroupBy = f.groupBy
	}
	return req, nil
}

// outputFormat normalizes --format, falling back to the configured default.
func (f *analysisFlags) outputFormat() (string, error) {
	v := f.format
	if v == "" && cfg != nil {
		v = cfg.OutputFormat
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "md", "markdown":
		return "md", nil
	case "json":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	}
	return "", fmt.Errorf("unsupported --format: %s (use md|json|yaml)", v)
}

// loadFlags control how record files are read.
type loadFlags struct {
	delimiter  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (l *loadFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&l.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	fs.IntVar(&l.maxRows, "max-rows", 0, "maximum records to load per file (0 = unlimited)")
	fs.StringVar(&l.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	fs.IntVar(&l.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (l *loadFlags) options() (records.Options, error) {
	opt := records.Options{MaxRows: l.maxRows, Sheet: l.sheetName, SheetIndex: l.sheetIndex}
	switch l.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return records.Options{}, fmt.Errorf("unsupported --delimiter: %s", l.delimiter)
	}
	return opt, nil
}

// renderReport encodes rep in the given normalized format.
func renderReport(rep *analytics.Report, format string) ([]byte, error) {
	switch format {
	case "json":
		return utils.PrettyJSON(rep)
	case "yaml":
		b, err := yaml.Marshal(rep)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	}
	return []byte(rep.Markdown()), nil
}

// logWarnings surfaces report warnings on the diagnostics logger.
func logWarnings(rep *analytics.Report) {
	for _, w := range rep.Warnings {
		logger.Warn(w, "report", rep.Name)
	}
}
