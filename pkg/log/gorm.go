package log

import (
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

type gormWriter struct {
	l *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.l.Warnf(format, args...)
}

// Gorm routes slow queries and sql errors through l at warn level.
func Gorm(l *zap.Logger) gormlogger.Interface {
	return gormlogger.New(
		gormWriter{l: l.Named("gorm").Sugar()},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)
}
