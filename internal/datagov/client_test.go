package datagov

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(baseURL string) Config {
	cfg := DefaultConfig("test-key")
	cfg.BaseURL = baseURL
	cfg.PageSize = 2
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func pageResponse(records ...Record) SearchResponse {
	return SearchResponse{Result: SearchResult{Total: len(records), Records: records}}
}

func TestFetchAll_Paginates(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		requests = append(requests, offset)

		var resp SearchResponse
		switch offset {
		case "0":
			resp = pageResponse(Record{"state": "Kerala"}, Record{"state": "Punjab"})
		case "2":
			resp = pageResponse(Record{"state": "Karnataka"})
		default:
			t.Errorf("unexpected offset %q", offset)
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	records, err := client.FetchAll(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	if len(records) != 3 {
		t.Errorf("len(records) = %d, want 3", len(records))
	}
	if len(requests) != 2 {
		t.Errorf("requests = %v, want offsets 0 and 2", requests)
	}
	if got := records[2].String("state"); got != "Karnataka" {
		t.Errorf("last record state = %q, want Karnataka", got)
	}
}

func TestFetchAll_SendsQueryParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("resource_id") != "res-9" {
			t.Errorf("resource_id = %q, want res-9", q.Get("resource_id"))
		}
		if q.Get("api-key") != "test-key" {
			t.Errorf("api-key = %q, want test-key", q.Get("api-key"))
		}
		if q.Get("limit") != "2" {
			t.Errorf("limit = %q, want 2", q.Get("limit"))
		}
		json.NewEncoder(w).Encode(pageResponse(Record{"state": "Kerala"}))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if _, err := client.FetchAll(context.Background(), "res-9"); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
}

func TestFetchAll_RetriesFailedPage(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(pageResponse(Record{"state": "Kerala"}))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	records, err := client.FetchAll(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("FetchAll failed after retry: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len(records) = %d, want 1", len(records))
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 (one failure, one retry)", calls.Load())
	}
}

func TestFetchAll_GivesUpAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if _, err := client.FetchAll(context.Background(), "res-1"); err == nil {
		t.Error("expected error after exhausting retries")
	}
}

func TestFetchAll_RequiresAPIKey(t *testing.T) {
	client := NewClient(DefaultConfig(""))
	if _, err := client.FetchAll(context.Background(), "res-1"); err == nil {
		t.Error("expected error without an API key")
	}
}

func TestFetchAll_EmptyResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(pageResponse())
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if _, err := client.FetchAll(context.Background(), "res-1"); err == nil {
		t.Error("an empty resource must be an error, not an empty snapshot")
	}
}

func TestRecord_TypedAccess(t *testing.T) {
	rec := Record{
		"state":      " Kerala ",
		"year":       float64(2021),
		"production": "5000.5",
		"area":       "NA",
		"annual":     "-",
		"blank":      "",
	}

	if got := rec.String("state"); got != "Kerala" {
		t.Errorf("String(state) = %q, want trimmed Kerala", got)
	}
	if got := rec.String("year"); got != "2021" {
		t.Errorf("String(year) = %q, want 2021", got)
	}
	if got, ok := rec.Float("production"); !ok || got != 5000.5 {
		t.Errorf("Float(production) = %v, %v", got, ok)
	}
	for _, field := range []string{"area", "annual", "blank", "absent"} {
		if _, ok := rec.Float(field); ok {
			t.Errorf("Float(%s) must be not ok; markers never read as zero", field)
		}
	}
	if got, ok := rec.Int("year"); !ok || got != 2021 {
		t.Errorf("Int(year) = %v, %v", got, ok)
	}
}
