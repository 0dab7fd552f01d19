// Package logger holds the process-wide zap logger used by the CLI and the
// helpers components use to accept an optional injected logger.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is a no-op until Initialize runs.
	Logger = zap.NewNop().Sugar()
	// JSONOutput records the encoding chosen by the last Initialize.
	JSONOutput bool
)

// Initialize replaces the global logger. JSON output uses zap's production
// encoder; otherwise a colored console encoder writes to stderr. verbosity
// is the CLI -v count (see VerbosityToLevel).
func Initialize(jsonOutput bool, verbosity int) error {
	level := zap.NewAtomicLevelAt(VerbosityToLevel(verbosity))

	l, err := build(jsonOutput, level)
	if err != nil {
		return err
	}
	Logger = l.Sugar()
	JSONOutput = jsonOutput
	return nil
}

func build(jsonOutput bool, level zap.AtomicLevel) (*zap.Logger, error) {
	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = level
		return cfg.Build()
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)
	return zap.New(core), nil
}

// Cleanup flushes buffered entries. Call it before exit.
func Cleanup() {
	_ = Logger.Sync()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}

func Infow(msg string, keysAndValues ...interface{})  { Logger.Infow(msg, keysAndValues...) }
func Warnw(msg string, keysAndValues ...interface{})  { Logger.Warnw(msg, keysAndValues...) }
func Errorw(msg string, keysAndValues ...interface{}) { Logger.Errorw(msg, keysAndValues...) }
func Debugw(msg string, keysAndValues ...interface{}) { Logger.Debugw(msg, keysAndValues...) }
