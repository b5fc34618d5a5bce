// Package logger builds the structured logger every nanolog subsystem takes
// as a dependency.
package logger

import "go.uber.org/zap"

// New builds a production zap logger scoped to the given service name and
// returns it as a SugaredLogger, the form used throughout the codebase for
// the convenience of printf-style and key/value logging calls.
func New(service string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return base.Named(service).Sugar()
}
