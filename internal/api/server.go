package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/project-samarth/samarth/internal/dataset"
	"github.com/project-samarth/samarth/internal/engine"
	"github.com/project-samarth/samarth/internal/ingest"
	"github.com/project-samarth/samarth/internal/parser"
)

// Server is the HTTP API server. Every /ask response is a well-formed
// envelope: failures come back with an explanatory answer and empty
// tables and citations, never a raw internal fault.
type Server struct {
	store    *dataset.Store
	registry *engine.Registry
	loader   *ingest.Loader
	server   *http.Server
}

// NewServer creates a new API server
func NewServer(store *dataset.Store, registry *engine.Registry, loader *ingest.Loader, addr string) *Server {
	s := &Server{
		store:    store,
		registry: registry,
		loader:   loader,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/refresh", s.handleRefresh)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      loggingMiddleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting API server on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")
	return s.server.Shutdown(ctx)
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := HealthResponse{Status: "ok", Loaded: s.store.Loaded()}
	status := http.StatusOK
	if !resp.Loaded {
		resp.Status = "no snapshot loaded"
		status = http.StatusServiceUnavailable
	} else {
		resp.SwappedAt = s.store.SwappedAt().Format(time.RFC3339)
	}

	respondJSON(w, status, resp)
}

// handleAsk handles POST /ask
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "question required"})
		return
	}

	snap := s.store.Current()
	if snap == nil {
		respondJSON(w, http.StatusOK, engine.NewEnvelope(
			"No data is available yet. Trigger /refresh and try again."))
		return
	}

	result := parser.Parse(req.Question, snap)
	env := s.answer(result, snap)
	respondJSON(w, http.StatusOK, env)
}

// answer dispatches a parsed question and converts every typed failure
// into a uniform envelope
func (s *Server) answer(result parser.Result, snap *dataset.Snapshot) *engine.Envelope {
	if result.Intent == parser.IntentUnknown {
		answer := "Sorry, I could not understand the question. Try asking about rainfall comparisons, district production extremes, production trends or crop shift policy."
		if len(result.Params.Unresolved) > 0 {
			answer = fmt.Sprintf("Sorry, I could not recognize %q. Check the spelling of state and crop names and try again.",
				strings.Join(result.Params.Unresolved, ", "))
		}
		env := engine.NewEnvelope(answer)
		env.Debug = &engine.Debug{Intent: result.Intent.String(), Params: result.Params}
		return env
	}

	env, err := s.registry.Dispatch(result.Intent, result.Params, snap)
	if err == nil {
		// A question can parse while one of its optional names did
		// not resolve; the answer must say what was left out.
		if len(result.Params.Unresolved) > 0 {
			env.Answer += fmt.Sprintf(" Could not recognize %q; the answer leaves it out.",
				strings.Join(result.Params.Unresolved, ", "))
		}
		return env
	}

	var answer string
	switch e := err.(type) {
	case engine.InvalidParamsError:
		answer = fmt.Sprintf("Missing information: the question needs a %s to answer.", e.Slot)
	case engine.NoHandlerError:
		log.Printf("Routing fault: %v", e)
		answer = "This question type is recognized but not wired to an analysis. Please report this."
	default:
		log.Printf("Handler failure: %v", err)
		answer = "Something went wrong while computing the answer. Please try again."
	}

	fail := engine.NewEnvelope(answer)
	fail.Debug = &engine.Debug{Intent: result.Intent.String(), Params: result.Params}
	return fail
}

// handleRefresh handles POST /refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.loader.Load(r.Context())
	if err != nil {
		log.Printf("Refresh failed: %v", err)
		respondJSON(w, http.StatusServiceUnavailable, RefreshResponse{
			Status: "failed",
			Error:  err.Error(),
		})
		return
	}

	s.store.Swap(snap)
	log.Printf("Snapshot refreshed: %d production rows, %d rainfall rows",
		len(snap.Production), len(snap.Rainfall))
	respondJSON(w, http.StatusOK, RefreshResponse{Status: "reloaded"})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
