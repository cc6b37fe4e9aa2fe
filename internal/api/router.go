package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kdimtricp/damagecheck/internal/viewer"
	"github.com/kdimtricp/damagecheck/pkg/log"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Logger(app.Log, "http"))
	r.Use(middleware.Recoverer)

	r.Get("/health", app.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServer(http.FS(app.Static))))

	r.Group(func(r chi.Router) {
		r.Use(app.withWorkspace)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			seeOther(w, r, viewer.EntryPath)
		})
		r.Get("/dashboard", app.DashboardHandler)

		r.Route("/acquisition", func(r chi.Router) {
			r.Post("/mode", app.SetModeHandler)
			r.Post("/files", app.SelectFilesHandler)
			r.Post("/frame", app.PushFrameHandler)
			r.Post("/capture", app.CaptureHandler)
			r.Post("/facing", app.SwitchFacingHandler)
			r.Post("/clear", app.ClearSelectionHandler)
		})
		r.Get("/preview/{id}", app.PreviewHandler)

		r.Post("/assessment", app.SubmitHandler)
		r.Post("/assessment/reset", app.ResetHandler)

		for _, page := range viewer.Sequence() {
			r.Get(page.Path, app.guarded(page))
		}
		r.Post("/summary/suggestions", app.SuggestionsHandler)

		r.Get("/history", app.HistoryHandler)
		r.Get("/api/assessment", app.AssessmentJSONHandler)
	})

	return r
}
