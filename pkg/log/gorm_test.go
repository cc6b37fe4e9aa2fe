package log

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGormWriter_LogsAtWarn(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := gormWriter{l: zap.New(core).Named("gorm").Sugar()}

	w.Printf("slow sql >= %v", "1s")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "gorm", entries[0].LoggerName)
	require.Equal(t, "slow sql >= 1s", entries[0].Message)
	require.NotNil(t, Gorm(zap.NewNop()))
}
