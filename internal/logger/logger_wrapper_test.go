package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oceansize/webmidi/sdk/contracts"
)

func observedLogger() (*ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &ZapLogger{logger: zap.New(core), level: contracts.InfoLevel}, logs
}

func TestDefaultLevelSuppressesDebug(t *testing.T) {
	z, logs := observedLogger()

	z.Debug("hidden")
	z.Info("shown")
	z.Warn("shown too")
	z.Error("and this")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "shown", entries[0].Message)
}

func TestSetLevelDebugEnablesDebug(t *testing.T) {
	z, logs := observedLogger()
	z.SetLevel(contracts.DebugLevel)

	z.Debug("now visible")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "now visible", entries[0].Message)
}

func TestSetLevelErrorSuppressesWarn(t *testing.T) {
	z, logs := observedLogger()
	z.SetLevel(contracts.ErrorLevel)

	z.Info("hidden")
	z.Warn("hidden")
	z.Error("kept")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}

func TestFieldsReachZap(t *testing.T) {
	z, logs := observedLogger()

	z.Info("with fields", z.Field().String("port", "Mock Port"), z.Field().Int("channel", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Mock Port", fields["port"])
	assert.Equal(t, int64(3), fields["channel"])
}
