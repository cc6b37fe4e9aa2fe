package api

import (
	"context"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kdimtricp/damagecheck/internal/acquisition"
	"github.com/kdimtricp/damagecheck/internal/backend"
	"github.com/kdimtricp/damagecheck/internal/database"
	"github.com/kdimtricp/damagecheck/internal/models"
	"github.com/kdimtricp/damagecheck/internal/workspace"
)

// Backend is the part of the analysis service the pages call directly.
type Backend interface {
	FetchHistory(ctx context.Context, token string) ([]models.HistoryRecord, error)
	GenerateSuggestions(ctx context.Context, in backend.SuggestionRequest) (string, error)
	Health(ctx context.Context) error
}

type JournalReader interface {
	ListRecent(ctx context.Context, limit int) ([]database.JournalEntry, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type App struct {
	Workspaces *workspace.Manager
	Previews   acquisition.PreviewStore
	Backend    Backend
	// Journal and DB are optional.
	Journal JournalReader
	DB      Pinger

	Templates     *Templates
	Static        fs.FS
	MediaBase     *url.URL
	MaxUploadSize int64
	// SubmitTimeout bounds one analysis independently of the browser request.
	SubmitTimeout time.Duration

	SessionCookie string
	AuthCookie    string
	SecureCookies bool
	HistoryLimit  int

	Log *zap.Logger
}

type ctxKey int

const workspaceKey ctxKey = iota

// withWorkspace attaches the caller's workspace, creating one and setting the cookie when needed.
func (app *App) withWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ws *workspace.Workspace
		if c, err := r.Cookie(app.SessionCookie); err == nil {
			ws, _ = app.Workspaces.Get(c.Value)
		}
		if ws == nil {
			ws = app.Workspaces.Create()
			http.SetCookie(w, &http.Cookie{
				Name:     app.SessionCookie,
				Value:    ws.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   app.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), workspaceKey, ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func workspaceFrom(r *http.Request) *workspace.Workspace {
	ws, _ := r.Context().Value(workspaceKey).(*workspace.Workspace)
	return ws
}

// authToken returns the bearer credential from the Authorization header or the auth cookie.
func (app *App) authToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if app.AuthCookie != "" {
		if c, err := r.Cookie(app.AuthCookie); err == nil {
			return c.Value
		}
	}
	return ""
}

func (app *App) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := app.Templates.Render(w, status, name, data); err != nil {
		app.Log.Error("failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
	}
}

func seeOther(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirector lets a viewer navigate through the http response.
type redirector struct {
	w http.ResponseWriter
	r *http.Request
}

func (n redirector) Redirect(path string) {
	seeOther(n.w, n.r, path)
}
