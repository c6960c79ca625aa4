// Package http exposes a string-keyed machine over a small REST surface,
// letting hosts drive transitions and inspect state without linking the
// engine directly.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
)

// Server serves one machine.
type Server struct {
	machine *espalier.Machine[string, string]
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates an HTTP handler driving the given machine.
//
// Routes:
//
//	POST /fire       {"event": "...", "data": ...} -> {"state": "..."}
//	GET  /state      -> {"state": "..."}
//	GET  /permitted  -> {"events": ["...", ...]}
//	GET  /graph      -> DOT text
func NewHandler(machine *espalier.Machine[string, string], opts ...Option) http.Handler {
	server := &Server{
		machine: machine,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Post("/fire", server.fire)
	r.Get("/state", server.state)
	r.Get("/permitted", server.permitted)
	r.Get("/graph", server.graph)
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type fireRequest struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type stateResponse struct {
	State string `json:"state"`
}

type permittedResponse struct {
	Events []string `json:"events"`
}

func (s *Server) fire(w http.ResponseWriter, r *http.Request) {
	var body fireRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("fire: invalid request body", "error", err)
		return
	}
	if body.Event == "" {
		http.Error(w, "Missing event", http.StatusBadRequest)
		return
	}

	if err := s.machine.Fire(r.Context(), body.Event, body.Data); err != nil {
		http.Error(w, "Fire failed", http.StatusInternalServerError)
		s.logger.Error("fire failed", "event", body.Event, "error", err)
		return
	}

	state, err := s.machine.State(r.Context())
	if err != nil {
		http.Error(w, "State read failed", http.StatusInternalServerError)
		s.logger.Error("state read failed", "error", err)
		return
	}
	writeJSON(w, stateResponse{State: state})
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	state, err := s.machine.State(r.Context())
	if err != nil {
		http.Error(w, "State read failed", http.StatusInternalServerError)
		s.logger.Error("state read failed", "error", err)
		return
	}
	writeJSON(w, stateResponse{State: state})
}

func (s *Server) permitted(w http.ResponseWriter, r *http.Request) {
	events, err := s.machine.PermittedEvents(r.Context())
	if err != nil {
		http.Error(w, "State read failed", http.StatusInternalServerError)
		s.logger.Error("permitted events read failed", "error", err)
		return
	}
	// Registry iteration order is unspecified; sort for stable responses.
	sort.Strings(events)
	if events == nil {
		events = []string{}
	}
	writeJSON(w, permittedResponse{Events: events})
}

func (s *Server) graph(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(espalier.Graph(s.machine)))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
