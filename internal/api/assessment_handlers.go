package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/kdimtricp/damagecheck/internal/acquisition"
	"github.com/kdimtricp/damagecheck/internal/backend"
	"github.com/kdimtricp/damagecheck/internal/models"
	"github.com/kdimtricp/damagecheck/internal/submission"
	"github.com/kdimtricp/damagecheck/internal/viewer"
)

type dashboardData struct {
	Mode        acquisition.Mode
	Facing      acquisition.Facing
	BrowserFeed bool
	Images      []acquisition.AcquiredImage
	Submitting  bool
	Notice      string
	Result      *models.AssessmentResult
	Pages       []viewer.Page
}

func (app *App) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)

	notice := ws.TakeNotice()
	if notice == "" {
		if err := ws.Coordinator.LastError(); err != nil {
			notice = failureMessage(err)
		}
	}

	result, _ := ws.Store.Read()
	data := dashboardData{
		Mode:        ws.Acquisition.Mode(),
		Facing:      ws.Acquisition.Facing(),
		BrowserFeed: ws.Feed != nil,
		Images:      ws.Acquisition.Images(),
		Submitting:  ws.Acquisition.Submitting() || ws.Coordinator.InFlight(),
		Notice:      notice,
		Result:      result,
		Pages:       viewer.Sequence(),
	}
	app.render(w, r, http.StatusOK, "dashboard.html", data)
}

// SubmitHandler sends the working set for analysis and returns to the dashboard,
// which then shows either the result links or the failure.
func (app *App) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	token := app.authToken(r)

	// the analysis outlives the browser request; only a reset or a newer submission supersedes it
	ctx := context.WithoutCancel(r.Context())
	if app.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.SubmitTimeout)
		defer cancel()
	}

	submitted, err := ws.Acquisition.Submit(ctx, func(ctx context.Context, images []acquisition.Payload) error {
		_, err := ws.Coordinator.Submit(ctx, toUploads(images), token)
		return err
	})

	switch {
	case errors.Is(err, submission.ErrInFlight):
		ws.SetNotice("An assessment is already in progress.")
	case err != nil:
		// the coordinator keeps the failure for the dashboard
	case !submitted && len(ws.Acquisition.Images()) == 0:
		ws.SetNotice("Please select at least one image.")
	case !submitted:
		ws.SetNotice("An assessment is already in progress.")
	}
	seeOther(w, r, viewer.EntryPath)
}

// ResetHandler starts over with another vehicle.
func (app *App) ResetHandler(w http.ResponseWriter, r *http.Request) {
	workspaceFrom(r).Reset()
	seeOther(w, r, viewer.EntryPath)
}

func toUploads(images []acquisition.Payload) []backend.Upload {
	out := make([]backend.Upload, len(images))
	for i, img := range images {
		out[i] = backend.Upload{
			Filename:    img.Filename,
			ContentType: img.ContentType,
			Data:        img.Data,
		}
	}
	return out
}

func failureMessage(err error) string {
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return "Analysis failed: " + apiErr.Message
	case errors.Is(err, models.ErrInvalidResult):
		return "The analysis service returned an unexpected result. Please try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The analysis took too long. Please try again."
	default:
		return "Failed to analyze images. Please try again."
	}
}
