package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/project-samarth/samarth/internal/analytics"
	"github.com/project-samarth/samarth/internal/config"
	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/engine"
	"github.com/project-samarth/samarth/internal/ingest"
)

const testProduction = `state,district,crop,season,year,area_hectares,production_tonnes
Kerala,Palakkad,Rice,Kharif,2020,41200,112300
Kerala,Palakkad,Rice,Kharif,2021,40100,108900
Kerala,Palakkad,Rice,Kharif,2022,39800,110500
Punjab,Ludhiana,Wheat,Rabi,2020,257500,1342000
Punjab,Ludhiana,Wheat,Rabi,2021,255000,1288000
Punjab,Ludhiana,Wheat,Rabi,2022,254200,1301000
`

const testRainfall = `state,year,annual_rainfall_mm
Kerala,2020,3100
Kerala,2021,3000
Kerala,2022,3050
Punjab,2020,710
Punjab,2021,650
Punjab,2022,690
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	agri := filepath.Join(dir, "production.csv")
	if err := os.WriteFile(agri, []byte(testProduction), 0o644); err != nil {
		t.Fatalf("write production sample: %v", err)
	}
	rain := filepath.Join(dir, "rainfall.csv")
	if err := os.WriteFile(rain, []byte(testRainfall), 0o644); err != nil {
		t.Fatalf("write rainfall sample: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Data.AliasFile = ""
	cfg.Datasets = map[string]config.Dataset{
		dataset.DatasetAgriculture: {Sample: agri},
		dataset.DatasetRainfall:    {Sample: rain},
	}

	registry, err := analytics.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	store := dataset.NewStore()
	loader := ingest.NewLoader(cfg, nil, nil)
	return NewServer(store, registry, loader, "127.0.0.1:0")
}

func refresh(t *testing.T, s *Server) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handleRefresh(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func ask(t *testing.T, s *Server, question string) (*engine.Envelope, int) {
	t.Helper()
	body := strings.NewReader(`{"question": ` + quote(question) + `}`)
	rec := httptest.NewRecorder()
	s.handleAsk(rec, httptest.NewRequest(http.MethodPost, "/ask", body))

	var env engine.Envelope
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v, body %s", err, rec.Body.String())
		}
	}
	return &env, rec.Code
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("health before load = %d, want 503", rec.Code)
	}

	refresh(t, s)

	rec = httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health after load = %d, want 200", rec.Code)
	}
	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if !health.Loaded || health.SwappedAt == "" {
		t.Errorf("health = %+v, want loaded with a swap time", health)
	}
}

func TestAsk_BeforeFirstLoad(t *testing.T) {
	s := newTestServer(t)

	env, code := ask(t, s, "Compare rainfall in Kerala and Punjab")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200; failures are envelopes, not HTTP errors", code)
	}
	if !strings.Contains(env.Answer, "No data is available yet") {
		t.Errorf("answer = %q", env.Answer)
	}
	if env.Tables == nil || env.Citations == nil {
		t.Error("failure envelope must keep empty tables and citations, not null")
	}
}

func TestAsk_BadRequests(t *testing.T) {
	s := newTestServer(t)
	refresh(t, s)

	tests := []struct {
		name string
		body string
	}{
		{"empty question", `{"question": "  "}`},
		{"malformed json", `{"question": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.handleAsk(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	rec := httptest.NewRecorder()
	s.handleAsk(rec, httptest.NewRequest(http.MethodGet, "/ask", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /ask status = %d, want 405", rec.Code)
	}
}

func TestAsk_Comparison(t *testing.T) {
	s := newTestServer(t)
	refresh(t, s)

	env, code := ask(t, s, "Compare rainfall between Kerala and Punjab over the last 3 years and list the top 3 crops")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}

	if !strings.Contains(env.Answer, "Kerala averaged 3050.0 mm") {
		t.Errorf("answer = %q, want the Kerala mean", env.Answer)
	}
	if !strings.Contains(env.Answer, "Punjab averaged 683.3 mm") {
		t.Errorf("answer = %q, want the Punjab mean", env.Answer)
	}
	if len(env.Tables) == 0 || len(env.Tables[0].Rows) != 3 {
		t.Fatalf("tables = %+v, want a three-row rainfall table", env.Tables)
	}
	if len(env.Citations) != 2 {
		t.Errorf("citations = %+v, want both datasets", env.Citations)
	}
	if env.Debug == nil || env.Debug.Intent != "compare_rainfall_and_crops" {
		t.Errorf("debug = %+v, want the routed intent", env.Debug)
	}
}

func TestAsk_UnresolvedCropFilter(t *testing.T) {
	s := newTestServer(t)
	refresh(t, s)

	// The comparison proceeds on the resolvable states, but the answer
	// must name the crop filter it could not match.
	env, code := ask(t, s, "Compare rainfall and top crops of Quinzleberry in Kerala and Punjab")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !strings.Contains(env.Answer, "Kerala averaged 3050.0 mm") {
		t.Errorf("answer = %q, want the comparison still computed", env.Answer)
	}
	if !strings.Contains(env.Answer, "Quinzleberry") {
		t.Errorf("answer = %q, want the unrecognized name called out", env.Answer)
	}
	if len(env.Tables) == 0 {
		t.Error("tables are empty, want the rainfall comparison")
	}
	if env.Debug == nil || env.Debug.Intent != "compare_rainfall_and_crops" {
		t.Errorf("debug = %+v, want the routed intent", env.Debug)
	}
}

func TestAsk_UnknownQuestion(t *testing.T) {
	s := newTestServer(t)
	refresh(t, s)

	env, code := ask(t, s, "What is the meaning of life?")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !strings.Contains(env.Answer, "could not understand") {
		t.Errorf("answer = %q, want a polite rejection", env.Answer)
	}
	if env.Debug == nil || env.Debug.Intent != "unknown" {
		t.Errorf("debug = %+v, want the unknown intent echoed", env.Debug)
	}
}

func TestAsk_UnresolvedName(t *testing.T) {
	s := newTestServer(t)
	refresh(t, s)

	env, code := ask(t, s, "Compare rainfall in Kerala and Atlantis")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !strings.Contains(env.Answer, "Atlantis") {
		t.Errorf("answer = %q, want the unrecognized name surfaced", env.Answer)
	}
}

func TestRefresh_FailureKeepsOldSnapshot(t *testing.T) {
	s := newTestServer(t)
	refresh(t, s)
	before := s.store.Current()

	// Break the loader's sources, then refresh again.
	s.loader = ingest.NewLoader(config.Config{
		Datasets: map[string]config.Dataset{
			dataset.DatasetAgriculture: {},
			dataset.DatasetRainfall:    {},
		},
	}, nil, nil)

	rec := httptest.NewRecorder()
	s.handleRefresh(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("failed refresh status = %d, want 503", rec.Code)
	}
	var resp RefreshResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode refresh response: %v", err)
	}
	if resp.Status != "failed" || resp.Error == "" {
		t.Errorf("refresh response = %+v, want failed with a reason", resp)
	}

	if s.store.Current() != before {
		t.Error("a failed refresh must leave the previous snapshot in place")
	}
}
