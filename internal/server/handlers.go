package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/KaramelBytes/insightloom-cli/internal/analytics"
)

type analyzeRequest struct {
	analytics.Request
	Records []analytics.Record `json:"records"`
}

// views are the single-result endpoints; each runs one analyzer on the
// filtered records.
var views = map[string]func([]analytics.Record, analytics.FieldMap, analytics.Options) (any, error){
	"kpis": func(recs []analytics.Record, fm analytics.FieldMap, _ analytics.Options) (any, error) {
		return analytics.ComputeKPIs(recs, fm), nil
	},
	"timeseries": func(recs []analytics.Record, fm analytics.FieldMap, _ analytics.Options) (any, error) {
		return analytics.TimeSeries(recs, fm), nil
	},
	"top": func(recs []analytics.Record, fm analytics.FieldMap, o analytics.Options) (any, error) {
		n := o.TopN
		if n <= 0 {
			n = analytics.DefaultTopN
		}
		return map[string][]analytics.TopRow{
			"names":      analytics.TopTable(recs, fm, analytics.RoleName, n),
			"categories": analytics.TopTable(recs, fm, analytics.RoleCategory, n),
		}, nil
	},
	"pareto": func(recs []analytics.Record, fm analytics.FieldMap, _ analytics.Options) (any, error) {
		return map[string]analytics.Pareto{
			"names":      analytics.ClassifyABC(recs, fm),
			"categories": analytics.ParetoBy(recs, fm, analytics.RoleCategory),
		}, nil
	},
	"rfm": func(recs []analytics.Record, fm analytics.FieldMap, o analytics.Options) (any, error) {
		return analytics.SegmentRFM(recs, fm, analytics.RFMOptions{Now: o.Now, CustomerField: o.CustomerField})
	},
	"correlations": func(recs []analytics.Record, fm analytics.FieldMap, o analytics.Options) (any, error) {
		fields := o.CorrelationFields
		if len(fields) == 0 {
			fields = []string{fm.Value, fm.Value2}
		}
		return analytics.Correlate(recs, fields), nil
	},
	"anomalies": func(recs []analytics.Record, fm analytics.FieldMap, _ analytics.Options) (any, error) {
		return analytics.DetectAnomalies(recs, fm), nil
	},
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func presetsHandler(w http.ResponseWriter, _ *http.Request) {
	out := make([]analytics.Preset, 0, len(analytics.PresetNames()))
	for _, name := range analytics.PresetNames() {
		p, err := analytics.LookupPreset(name)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	recs, fm, opts, err := s.decode(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rep, err := analytics.Analyze(recs, fm, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.metrics.observeRecords(rep.TotalRecords, rep.FilteredRecords)
	s.log.Debug("analyzed", "records", rep.TotalRecords, "filtered", rep.FilteredRecords, "range", rep.Range)
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) view(fn func([]analytics.Record, analytics.FieldMap, analytics.Options) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, fm, opts, err := s.decode(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		filtered, err := analytics.Prepare(recs, fm, opts)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.metrics.observeRecords(len(recs), len(filtered))
		out, err := fn(filtered, fm, opts)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// decode reads the body, applies server defaults and resolves the request.
func (s *Server) decode(r *http.Request) ([]analytics.Record, analytics.FieldMap, analytics.Options, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, analytics.FieldMap{}, analytics.Options{}, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, analytics.FieldMap{}, analytics.Options{}, fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	var req analyzeRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return nil, analytics.FieldMap{}, analytics.Options{}, fmt.Errorf("decode request: %w", err)
	}
	if req.Preset == "" && req.FieldMap == nil {
		req.Preset = s.defaults.Preset
	}
	if req.Top <= 0 {
		req.Top = s.defaults.TopN
	}
	if len(req.CorrelationFields) == 0 {
		req.CorrelationFields = s.defaults.CorrelationFields
	}
	if req.CustomerField == "" {
		req.CustomerField = s.defaults.CustomerField
	}
	fm, opts, err := req.Resolve(s.clock())
	if err != nil {
		return nil, analytics.FieldMap{}, analytics.Options{}, err
	}
	return req.Records, fm, opts, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
