// Package http exposes the ledger over a small JSON API: login,
// ledger snapshot, transaction insert and delete. It is the
// presentation boundary; everything behind it goes through the
// ledger service.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"pocketledger/internal/middleware/security"
	"pocketledger/internal/middleware/trace"
	"pocketledger/internal/services"
)

// Server wraps http.Server with the application routes.
type Server struct {
	http.Server

	ledger *services.LedgerService
	tracer *trace.Middleware
}

// NewServer configures routes and middleware, returning a
// ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{Addr: addr},
		ledger: ledger,
		tracer: trace.NewMiddleware(),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/ledger", s.handleLedger)
	mux.HandleFunc("/api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("/api/transactions/", s.handleDeleteTransaction)

	s.Handler = s.tracer.Middleware(security.Headers(security.DefaultHeadersConfig(), mux))

	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, field string) {
	writeJSON(w, status, errorResponse{Error: msg, Field: field})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	w.WriteHeader(http.StatusMethodNotAllowed)
}
