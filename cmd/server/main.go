package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kdimtricp/damagecheck/internal/acquisition"
	"github.com/kdimtricp/damagecheck/internal/api"
	"github.com/kdimtricp/damagecheck/internal/backend"
	"github.com/kdimtricp/damagecheck/internal/config"
	"github.com/kdimtricp/damagecheck/internal/database"
	"github.com/kdimtricp/damagecheck/internal/storage"
	"github.com/kdimtricp/damagecheck/internal/workspace"
	"github.com/kdimtricp/damagecheck/pkg/log"
	"github.com/kdimtricp/damagecheck/web"
)

const (
	evictInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logLvl, err := zap.ParseAtomicLevel(cfg.Server.LogLevel)
	if err != nil {
		logLvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger := log.InitLog(logLvl)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	previewStorage, err := storage.NewLocalStorage(cfg.Server.PreviewDir)
	if err != nil {
		return err
	}
	previews := acquisition.NewBlobPreviews(previewStorage)

	db, err := database.NewDB(cfg.DB(), logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(logger); err != nil {
		return err
	}
	journal := database.NewJournalRepository(db)

	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)

	deps := workspace.Deps{
		Previews: previews,
		Analyzer: client,
		History:  client,
		Journal:  journal,
	}
	if cfg.Camera.Source == config.CameraDevice {
		device, err := acquisition.NewDeviceSource(cfg.Camera.BackDevice, cfg.Camera.FrontDevice)
		if err != nil {
			return err
		}
		defer device.Close()
		deps.Frames = device
	}

	manager := workspace.NewManager(deps, cfg.Session.IdleTTL, logger)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go manager.Run(janitorCtx, evictInterval)

	mediaBase, err := cfg.MediaBase()
	if err != nil {
		return err
	}
	templates, err := api.NewTemplates(web.FS, mediaBase)
	if err != nil {
		return err
	}

	app := &api.App{
		Workspaces:    manager,
		Previews:      previews,
		Backend:       client,
		Journal:       journal,
		DB:            db.Conn(),
		Templates:     templates,
		Static:        web.Static(),
		MediaBase:     mediaBase,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		SubmitTimeout: cfg.Backend.Timeout,
		SessionCookie: cfg.Session.CookieName,
		AuthCookie:    cfg.Session.AuthCookieName,
		Log:           logger,
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           api.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server starting",
		zap.String("address", cfg.Server.Address),
		zap.String("backend", cfg.Backend.URL),
		zap.String("database", cfg.Database.Type),
		zap.String("camera", cfg.Camera.Source),
		zap.String("preview_dir", cfg.Server.PreviewDir),
		zap.Int64("max_upload_size", cfg.Server.MaxUploadSize))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	stopJanitor()
	manager.Close()
	return nil
}
