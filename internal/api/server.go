package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"supersoniq-insights/internal/config"
	"supersoniq-insights/internal/keystore"
	"supersoniq-insights/internal/logger"
	"supersoniq-insights/internal/metrics"
	"supersoniq-insights/internal/processor"
	"supersoniq-insights/internal/types"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Keys           *keystore.Store
	Processor      *processor.Processor
	Catalog        config.Catalog
	Proxy          *ClaudeProxy
	Log            *logger.Logger
	MaxUploadBytes int64
	Metrics        bool
}

type Server struct {
	Deps
}

func NewServer(d Deps) *Server {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 512 << 20
	}
	return &Server{Deps: d}
}

// Routes wires every endpoint onto a fresh mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		s.Log.WithRequest(r).Debug("health check")
		fmt.Fprint(w, "ok")
	})
	if s.Metrics {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	mux.HandleFunc("GET /keys/{provider}", s.getKey)
	mux.HandleFunc("PUT /keys/{provider}", s.putKey)
	mux.HandleFunc("DELETE /keys/{provider}", s.deleteKey)

	mux.HandleFunc("GET /provider", s.getProvider)
	mux.HandleFunc("PUT /provider", s.putProvider)
	mux.HandleFunc("DELETE /provider", s.deleteProvider)

	mux.HandleFunc("POST /runs", s.createRun)
	mux.HandleFunc("GET /runs/last", s.lastRun)
	mux.HandleFunc("DELETE /runs/last", s.resetRun)
	mux.HandleFunc("GET /runs/last/export", s.exportRun)

	if s.Proxy != nil {
		mux.Handle("POST /api/claude", s.Proxy)
	}
	return mux
}

type errorBody struct {
	Error string          `json:"error"`
	Kind  types.ErrorKind `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeError maps validation failures to 400 and everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var ve *types.ValidationError
	if errors.As(err, &ve) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Error: types.UserMessage(err)})
}
