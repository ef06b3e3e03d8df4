// Package logging builds the logger passed through the resolution pass.
// There is no global logger; every component receives a logr.Logger
// explicitly so verbosity is a property of the invocation, not the process.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// V-levels used across the resolver. Warnings log at V(0) so they are
// visible even in quiet runs.
const (
	Info  = 1
	Debug = 2
)

// New returns a logger for the given verbosity: 0 shows warnings and
// errors only, 1 adds info, 2 and above adds debug detail.
func New(verbosity int) logr.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true

	switch {
	case verbosity <= 0:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case verbosity == 1:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-Info))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-Debug))
	}

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zl)
}
