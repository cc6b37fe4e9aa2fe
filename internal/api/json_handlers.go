package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/kdimtricp/damagecheck/internal/models"
)

const healthTimeout = 3 * time.Second

type AssessmentReply struct {
	*models.AssessmentResult
}

func (a AssessmentReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type ErrorReply struct {
	Error string `json:"error"`
}

func (e ErrorReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type HealthReply struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Database string `json:"database,omitempty"`
	Sessions int    `json:"sessions"`
}

func (h HealthReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// AssessmentJSONHandler exposes the stored result of the caller's session.
func (app *App) AssessmentJSONHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := workspaceFrom(r).Store.Read()
	if !ok {
		render.Status(r, http.StatusNotFound)
		_ = render.Render(w, r, ErrorReply{Error: "no assessment in this session"})
		return
	}
	_ = render.Render(w, r, AssessmentReply{AssessmentResult: result})
}

func (app *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	reply := HealthReply{
		Status:   "ok",
		Backend:  "ok",
		Sessions: app.Workspaces.Len(),
	}

	if err := app.Backend.Health(ctx); err != nil {
		reply.Status = "degraded"
		reply.Backend = err.Error()
	}
	if app.DB != nil {
		reply.Database = "ok"
		if err := app.DB.PingContext(ctx); err != nil {
			reply.Status = "degraded"
			reply.Database = err.Error()
		}
	}

	if reply.Status != "ok" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	_ = render.Render(w, r, reply)
}
