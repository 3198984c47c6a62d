package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
)

func newObservedLogger() (core.Logger, *observer.ObservedLogs) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	obsCore, logs := observer.New(level)
	return NewZapLoggerFrom(zap.New(obsCore), level), logs
}

func TestZapLogger_SetLevel(t *testing.T) {
	log, logs := newObservedLogger()

	log.Debug("hidden", nil)
	assert.Equal(t, 0, logs.Len())

	log.SetLevel(core.LogLevelDebug)
	assert.Equal(t, core.LogLevelDebug, log.GetLevel())
	log.Debug("visible", map[string]any{"loan_id": uint64(1)})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "visible", logs.All()[0].Message)
	assert.Equal(t, uint64(1), logs.All()[0].ContextMap()["loan_id"])

	log.SetLevel(core.LogLevelError)
	log.Warn("dropped", nil)
	log.Error("kept", nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, core.LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, core.LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, core.LogLevelError, ParseLevel("error"))
	assert.Equal(t, core.LogLevelInfo, ParseLevel("verbose"))
}
