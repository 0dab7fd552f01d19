package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
		wantLevel  zapcore.Level
	}{
		{name: "console default", jsonOutput: false, verbosity: 0, wantLevel: zapcore.WarnLevel},
		{name: "console -v", jsonOutput: false, verbosity: 1, wantLevel: zapcore.InfoLevel},
		{name: "json -vv", jsonOutput: true, verbosity: 2, wantLevel: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := Logger
			t.Cleanup(func() { Logger = prev; JSONOutput = false })

			require.NoError(t, Initialize(tt.jsonOutput, tt.verbosity))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)
			assert.True(t, Logger.Desugar().Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, Logger.Desugar().Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(-1))
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityUser))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityInfo))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
	assert.Equal(t, "Info (-v)", LevelName(1))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	core, _ := observer.New(zapcore.InfoLevel)
	l := zap.New(core).Sugar()
	assert.Same(t, l, OrNop(l))
}

func TestLoggerFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core).Sugar()

	ctx := WithSessionID(context.Background(), "sess-1")
	ctx = WithComponent(ctx, "events")

	LoggerFromContext(ctx, base).Infow("query evaluated", FieldCount, 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "sess-1", fields[FieldSessionID])
	assert.Equal(t, "events", fields["component"])
	assert.EqualValues(t, 3, fields[FieldCount])
}

func TestGlobalHelpersDoNotPanicBeforeInitialize(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	Logger = zap.NewNop().Sugar()
	assert.NotPanics(t, func() {
		Infow("hello")
		Debugw("hello")
		Warnw("hello")
		Errorw("hello")
		Cleanup()
	})
}
