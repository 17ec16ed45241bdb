package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dockreport/dockreport/internal/docker"
	"github.com/dockreport/dockreport/internal/inventory"
)

type containerSummary struct {
	ID      string                  `json:"id"`
	Name    string                  `json:"name"`
	Image   string                  `json:"image"`
	State   string                  `json:"state"`
	Status  string                  `json:"status"`
	Ports   []inventory.PortBinding `json:"ports"`
	Created string                  `json:"created"`
}

// listContainers returns simplified summaries with parsed port bindings.
func (app *App) listContainers(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "1" || r.URL.Query().Get("all") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	raw, err := app.Runtime.ContainerSummaries(ctx, all)
	if err != nil {
		if errors.Is(err, docker.ErrRuntimeUnavailable) {
			writeError(w, http.StatusBadGateway, "container runtime unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]containerSummary, 0, len(raw))
	for _, s := range raw {
		out = append(out, containerSummary{
			ID:      s.ID,
			Name:    s.Names,
			Image:   s.Image,
			State:   s.State,
			Status:  s.Status,
			Ports:   inventory.ParsePortSpec(s.Ports),
			Created: s.Created,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type actionResponse struct {
	OK bool `json:"ok"`
}

// containerAction starts or stops one container. The id is validated
// before any CLI invocation; a malformed id never reaches the runtime.
func (app *App) containerAction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	action := docker.Action(r.PathValue("action"))

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	err := app.Runtime.ContainerAction(ctx, action, id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, actionResponse{OK: true})
	case errors.Is(err, docker.ErrInvalidContainerID), errors.Is(err, docker.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, docker.ErrRuntimeUnavailable):
		writeError(w, http.StatusBadGateway, "container runtime unavailable")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type statusInfo struct {
	Version         string `json:"version"`
	DockerAvailable bool   `json:"dockerAvailable"`
	AIConfigured    bool   `json:"aiConfigured"`
	AIAvailable     bool   `json:"aiAvailable"`
}

// status reports collaborator availability, mirroring what a frontend
// index page needs to decide which options to offer.
func (app *App) status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	info := statusInfo{
		Version:         app.Version,
		DockerAvailable: app.Runtime.Ping(ctx) == nil,
		AIConfigured:    app.AI != nil,
	}
	if app.AI != nil {
		info.AIAvailable = app.AI.Available(ctx)
	}
	writeJSON(w, http.StatusOK, info)
}
