// Package logger provides the shared zap logger for docgraph.
//
// Core packages never write to stdout directly; they accept a
// *zap.SugaredLogger (usually a Named child of the global one) and log
// through it. The CLI initializes the global logger once at startup.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance.
var Logger *zap.SugaredLogger

func init() {
	// Safe no-op logger at package load time, so library consumers that
	// never call Initialize still get a valid logger.
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger.
//
// With jsonOutput, log lines are machine-readable JSON; otherwise a
// human-readable console encoder is used. verbosity follows the CLI
// -v flag count, see VerbosityToLevel.
func Initialize(jsonOutput bool, verbosity int) error {
	level := VerbosityToLevel(verbosity)

	var zapLogger *zap.Logger
	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		var err error
		zapLogger, err = config.Build()
		if err != nil {
			return err
		}
	} else {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderCfg),
				zapcore.AddSync(os.Stderr),
				level,
			),
		)
	}

	Logger = zapLogger.Sugar()
	return nil
}

// Named returns a child of the global logger with the given name.
func Named(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
