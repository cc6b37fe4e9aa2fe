package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/kdimtricp/damagecheck/internal/acquisition"
	"github.com/kdimtricp/damagecheck/internal/viewer"
)

const imagesField = "images"

var errNotImage = errors.New("not an image file")

var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
}

func (app *App) SetModeHandler(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)

	mode, err := acquisition.ParseMode(r.FormValue("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws.Acquisition.SetMode(mode)
	if mode == acquisition.ModeCapture && ws.Feed != nil {
		ws.Feed.Reset()
	}
	seeOther(w, r, viewer.EntryPath)
}

func (app *App) SelectFilesHandler(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ws.SetNotice("The selected files are too large.")
		} else {
			ws.SetNotice("Failed to read the selected images.")
		}
		seeOther(w, r, viewer.EntryPath)
		return
	}
	defer r.MultipartForm.RemoveAll()

	payloads := make([]acquisition.Payload, 0, len(r.MultipartForm.File[imagesField]))
	for _, header := range r.MultipartForm.File[imagesField] {
		p, err := readImagePart(header)
		if errors.Is(err, errNotImage) {
			ws.SetNotice("Only image files are allowed.")
			seeOther(w, r, viewer.EntryPath)
			return
		}
		if err != nil {
			app.Log.Warn("failed to read uploaded file", zap.String("filename", header.Filename), zap.Error(err))
			ws.SetNotice("Failed to read the selected images.")
			seeOther(w, r, viewer.EntryPath)
			return
		}
		payloads = append(payloads, p)
	}

	if err := ws.Acquisition.SelectFiles(payloads); err != nil {
		app.Log.Error("failed to create previews", zap.Error(err))
		ws.SetNotice("Failed to load the selected images.")
	}
	seeOther(w, r, viewer.EntryPath)
}

func readImagePart(header *multipart.FileHeader) (acquisition.Payload, error) {
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		known, ok := imageExtensions[ext]
		if !ok {
			return acquisition.Payload{}, errNotImage
		}
		contentType = known
	}

	f, err := header.Open()
	if err != nil {
		return acquisition.Payload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return acquisition.Payload{}, err
	}

	return acquisition.Payload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

type framePush struct {
	Facing string `json:"facing"`
	Frame  string `json:"frame"`
}

// PushFrameHandler receives the latest still of the browser's live camera feed.
func (app *App) PushFrameHandler(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	if ws.Feed == nil {
		http.Error(w, "frames come from the console camera", http.StatusConflict)
		return
	}

	var in framePush
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, app.MaxUploadSize), &in); err != nil {
		http.Error(w, "invalid frame", http.StatusBadRequest)
		return
	}

	facing := acquisition.Facing(in.Facing)
	if facing != acquisition.FacingEnvironment && facing != acquisition.FacingUser {
		http.Error(w, "invalid facing", http.StatusBadRequest)
		return
	}

	mediaType, data, err := acquisition.DecodeDataURL(in.Frame)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		http.Error(w, "invalid frame", http.StatusBadRequest)
		return
	}

	ws.Feed.Push(facing, data)
	w.WriteHeader(http.StatusNoContent)
}

func (app *App) CaptureHandler(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)

	if _, err := ws.Acquisition.CaptureFrame(r.Context()); err != nil {
		app.Log.Warn("failed to capture frame", zap.Error(err))
		ws.SetNotice("Failed to capture a photo. Please try again.")
	}
	seeOther(w, r, viewer.EntryPath)
}

func (app *App) SwitchFacingHandler(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)

	ws.Acquisition.SwitchFacing()
	if ws.Feed != nil {
		ws.Feed.Reset()
	}
	seeOther(w, r, viewer.EntryPath)
}

func (app *App) ClearSelectionHandler(w http.ResponseWriter, r *http.Request) {
	workspaceFrom(r).Acquisition.ClearSelection()
	seeOther(w, r, viewer.EntryPath)
}

// PreviewHandler serves a not yet submitted image, only to the session that selected it.
func (app *App) PreviewHandler(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	id := chi.URLParam(r, "id")
	if id == "" || !ws.Acquisition.HasPreview(id) {
		http.NotFound(w, r)
		return
	}

	file, contentType, err := app.Previews.Open(acquisition.PreviewHandle{ID: id})
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-store")
	http.ServeContent(w, r, id, time.Time{}, file)
}
