package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kdimtricp/damagecheck/internal/config"
	"github.com/kdimtricp/damagecheck/internal/database"
	"github.com/kdimtricp/damagecheck/pkg/log"
)

func main() {
	status := flag.Bool("status", false, "Show migration status only")
	flag.Parse()

	logger := log.InitLog(zap.NewAtomicLevelAt(zap.InfoLevel))
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := database.NewDB(cfg.DB(), logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db.Conn(), db.Type(), logger)

	if !*status {
		if err := migrator.Run(database.Migrations()); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		logger.Info("migrations completed", zap.String("database", db.Type()))
		return
	}

	if db.Type() != database.TypePostgres {
		fmt.Fprintf(os.Stdout, "%s schema is created on startup; no migrations tracked\n", db.Type())
		return
	}
	if err := migrator.Initialize(); err != nil {
		logger.Fatal("failed to initialize migrator", zap.Error(err))
	}
	applied, err := migrator.GetAppliedMigrations()
	if err != nil {
		logger.Fatal("failed to get applied migrations", zap.Error(err))
	}
	migrations, err := migrator.LoadMigrations(database.Migrations())
	if err != nil {
		logger.Fatal("failed to load migrations", zap.Error(err))
	}

	fmt.Fprintln(os.Stdout, "Migration Status:")
	fmt.Fprintln(os.Stdout, "=================")
	for _, m := range migrations {
		state := "pending"
		if applied[m.Version] {
			state = "applied"
		}
		fmt.Fprintf(os.Stdout, "%s - %s [%s]\n", m.Version, m.Name, state)
	}
}
