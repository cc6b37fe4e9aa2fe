package api

import (
	"errors"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/kdimtricp/damagecheck/internal/backend"
	"github.com/kdimtricp/damagecheck/internal/database"
	"github.com/kdimtricp/damagecheck/internal/models"
	"github.com/kdimtricp/damagecheck/internal/viewer"
)

const defaultHistoryLimit = 20

type summaryData struct {
	*viewer.View
	Advice      string
	AdviceError string
}

// guarded serves one detail page; with nothing stored the viewer redirects instead.
func (app *App) guarded(page viewer.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := app.enter(w, r, page)
		if !ok {
			return
		}

		var data any = view
		if page.Key == viewer.PageSummary {
			data = summaryData{View: view}
		}
		app.render(w, r, http.StatusOK, page.Template(), data)
	}
}

func (app *App) enter(w http.ResponseWriter, r *http.Request, page viewer.Page) (*viewer.View, bool) {
	ws := workspaceFrom(r)
	v := viewer.New(page, ws.Store, viewer.WithMediaBase(app.MediaBase))

	state, view := v.Enter(redirector{w: w, r: r})
	return view, state == viewer.StateRendering
}

func (app *App) SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := viewer.Lookup(viewer.PageSummary)
	view, ok := app.enter(w, r, page)
	if !ok {
		return
	}

	data := summaryData{View: view}
	advice, err := app.Backend.GenerateSuggestions(r.Context(), backend.NewSuggestionRequest(view.Result))
	if err != nil {
		app.Log.Warn("failed to generate suggestions", zap.Error(err))
		data.AdviceError = "Failed to get suggestions. Please try again."
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			data.AdviceError = apiErr.Message
		}
	}
	data.Advice = advice

	app.render(w, r, http.StatusOK, page.Template(), data)
}

type historyData struct {
	SignedIn    bool
	Remote      []models.HistoryRecord
	RemoteError string
	Local       []database.JournalEntry
	LocalError  string
}

// HistoryHandler lists the account history from the backend next to this console's journal.
func (app *App) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := app.authToken(r)
	data := historyData{SignedIn: token != ""}

	if data.SignedIn {
		records, err := app.Backend.FetchHistory(ctx, token)
		if err != nil {
			app.Log.Warn("failed to fetch history", zap.Error(err))
			data.RemoteError = "Failed to load history."
		}
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Timestamp > records[j].Timestamp
		})
		data.Remote = records
	}

	if app.Journal != nil {
		limit := app.HistoryLimit
		if limit <= 0 {
			limit = defaultHistoryLimit
		}
		entries, err := app.Journal.ListRecent(ctx, limit)
		if err != nil {
			app.Log.Warn("failed to list journal", zap.Error(err))
			data.LocalError = "Failed to load local history."
		}
		data.Local = entries
	}

	app.render(w, r, http.StatusOK, "history.html", data)
}
