package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dockreport/dockreport/internal/task"
)

type createReportRequest struct {
	UseAI bool `json:"useAI"`
}

type reportStatusResponse struct {
	TaskID            string     `json:"taskId"`
	State             task.State `json:"state"`
	Message           string     `json:"message"`
	Timestamp         time.Time  `json:"timestamp"`
	ArtifactAvailable bool       `json:"artifactAvailable"`
}

func statusResponse(st task.Status) reportStatusResponse {
	return reportStatusResponse{
		TaskID:            st.ID,
		State:             st.State,
		Message:           st.Message,
		Timestamp:         st.UpdatedAt,
		ArtifactAvailable: st.ArtifactAvailable(),
	}
}

// createReport starts a report-generation task and returns its id
// immediately; the pipeline runs in the background and the caller polls.
func (app *App) createReport(w http.ResponseWriter, r *http.Request) {
	// An empty body means a plain deterministic report.
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	st := app.Runner.Start(req.UseAI)
	writeJSON(w, http.StatusAccepted, statusResponse(st))
}

func (app *App) reportStatus(w http.ResponseWriter, r *http.Request) {
	st, ok := app.Registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse(st))
}

// downloadReport serves the markdown artifact, only once the task has
// completed. The artifact never changes after the task is terminal.
func (app *App) downloadReport(w http.ResponseWriter, r *http.Request) {
	st, ok := app.Registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if !st.ArtifactAvailable() {
		writeError(w, http.StatusNotFound, "report not available")
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="docker_containers_info.md"`)
	http.ServeFile(w, r, st.ArtifactPath)
}
