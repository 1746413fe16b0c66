package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersBody = `{
  "preset": "sales",
  "now": "2024-05-01",
  "records": [
    {"orderDate": "2024-01-05", "productName": "Laptop", "customerSegment": "Corporate", "customerId": "C1", "netSales": 1200, "profit": 300},
    {"orderDate": "2024-01-20", "productName": "Phone", "customerSegment": "Consumer", "customerId": "C2", "netSales": "800", "profit": 160},
    {"orderDate": "2024-02-03", "productName": "Laptop", "customerSegment": "Corporate", "customerId": "C1", "netSales": 1300, "profit": 320},
    {"orderDate": "2024-04-22", "productName": "Mouse", "customerSegment": "Home Office", "customerId": "C3", "netSales": 35, "profit": 12}
  ]
}`

func newTestServer() *Server {
	s := New(Defaults{Preset: "sales", TopN: 5}, nil)
	s.clock = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	rec, out := do(t, newTestServer().Handler(nil), "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestPresets(t *testing.T) {
	rec, _ := do(t, newTestServer().Handler(nil), "GET", "/v1/presets", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var presets []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &presets))
	require.NotEmpty(t, presets)
	var names []string
	for _, p := range presets {
		names = append(names, p["name"].(string))
	}
	assert.Contains(t, names, "sales")
}

func TestAnalyze(t *testing.T) {
	rec, out := do(t, newTestServer().Handler(nil), "POST", "/v1/analyze", ordersBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 4, out["totalRecords"])
	assert.EqualValues(t, 4, out["filteredRecords"])
	kpis := out["kpis"].(map[string]any)
	assert.InDelta(t, 3335.0, kpis["totalValue"].(float64), 1e-9)
	assert.NotContains(t, out, "breakdowns")
}

func TestAnalyzeGroupBy(t *testing.T) {
	body := strings.Replace(ordersBody, `"now": "2024-05-01"`, `"now": "2024-05-01", "groupBy": ["customerId"]`, 1)
	rec, out := do(t, newTestServer().Handler(nil), "POST", "/v1/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bds := out["breakdowns"].([]any)
	require.Len(t, bds, 1)
	bd := bds[0].(map[string]any)
	assert.Equal(t, "customerId", bd["field"])
	top := bd["rows"].([]any)[0].(map[string]any)
	assert.Equal(t, "C1", top["name"])
	assert.InDelta(t, 2500.0, top["value"].(float64), 1e-9)
}

func TestAnalyzeWithPeriodAndLogging(t *testing.T) {
	var access bytes.Buffer
	body := strings.Replace(ordersBody, `"now": "2024-05-01"`, `"now": "2024-05-01", "start": "2024-02-01"`, 1)
	rec, out := do(t, newTestServer().Handler(&access), "POST", "/v1/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, out["filteredRecords"])
	assert.Contains(t, access.String(), "POST /v1/analyze")
}

func TestSingleViews(t *testing.T) {
	h := newTestServer().Handler(nil)

	rec, out := do(t, h, "POST", "/v1/kpis", ordersBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 4, out["totalRecords"])

	rec, out = do(t, h, "POST", "/v1/rfm", ordersBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["customers"], 3)

	rec, out = do(t, h, "POST", "/v1/pareto", ordersBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, out, "names")
	assert.Contains(t, out, "categories")

	rec, out = do(t, h, "POST", "/v1/top", ordersBody)
	require.Equal(t, http.StatusOK, rec.Code)
	names := out["names"].([]any)
	require.NotEmpty(t, names)
	assert.Equal(t, "Laptop", names[0].(map[string]any)["name"])

	rec, out = do(t, h, "POST", "/v1/correlations", ordersBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, out["pairs"])

	rec, out = do(t, h, "POST", "/v1/anomalies", ordersBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, out["count"])

	rec, _ = do(t, h, "POST", "/v1/timeseries", ordersBody)
	require.Equal(t, http.StatusOK, rec.Code)
	var series []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	assert.Len(t, series, 3)
}

func TestBadRequests(t *testing.T) {
	h := newTestServer().Handler(nil)
	cases := map[string]string{
		"malformed json":  `{"records": [`,
		"unknown preset":  `{"preset": "weather", "records": []}`,
		"partial map":     `{"fieldMap": {"value": "amount"}, "records": []}`,
		"bad now":         `{"now": "tomorrow-ish", "records": []}`,
		"inverted range":  `{"start": "2024-05-01", "end": "2024-01-01", "records": []}`,
		"unknown period":  `{"period": "fortnight", "records": []}`,
		"period + bounds": `{"period": "last30", "start": "2024-01-01", "records": []}`,
	}
	for name, body := range cases {
		rec, out := do(t, h, "POST", "/v1/analyze", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		assert.NotEmpty(t, out["error"], name)
	}
}

func TestRoutingErrors(t *testing.T) {
	h := newTestServer().Handler(nil)
	rec, out := do(t, h, "GET", "/v1/analyze", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.NotEmpty(t, out["error"])

	rec, _ = do(t, h, "GET", "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics(t *testing.T) {
	h := newTestServer().Handler(nil)
	rec, _ := do(t, h, "POST", "/v1/analyze", ordersBody)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, "POST", "/v1/kpis", `{"preset": "weather", "records": []}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `insightloom_http_requests_total{route="analyze",status="200"} 1`)
	assert.Contains(t, body, `insightloom_http_requests_total{route="kpis",status="400"} 1`)
	assert.Contains(t, body, "insightloom_records_received_total 4")
	assert.Contains(t, body, "insightloom_http_request_duration_seconds_bucket")
}
