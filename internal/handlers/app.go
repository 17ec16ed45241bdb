package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dockreport/dockreport/internal/ai"
	"github.com/dockreport/dockreport/internal/docker"
	"github.com/dockreport/dockreport/internal/task"
	"github.com/dockreport/dockreport/internal/ws"
)

// App holds shared dependencies for all handlers.
type App struct {
	Runner   *task.Runner
	Registry *task.Registry
	Runtime  docker.Runtime
	AI       *ai.Client // nil when no backend is configured
	WS       *ws.Server
	Version  string
}

// Register wires all API routes onto the mux.
func (app *App) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/reports", app.createReport)
	mux.HandleFunc("GET /api/reports/{id}", app.reportStatus)
	mux.HandleFunc("GET /api/reports/{id}/download", app.downloadReport)
	mux.HandleFunc("GET /api/containers", app.listContainers)
	mux.HandleFunc("POST /api/containers/{id}/{action}", app.containerAction)
	mux.HandleFunc("GET /api/status", app.status)
	if app.WS != nil {
		mux.Handle("GET /ws", app.WS)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
