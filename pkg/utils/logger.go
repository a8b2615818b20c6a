package utils

import (
	"fmt"

	"go.uber.org/zap"
)

// NewSugaredLogger creates a sugared logger based on the verbose flag.
// Verbose selects the development config (console encoder, debug level), otherwise
// production JSON at info level. Optional key/value pairs are attached to every entry.
func NewSugaredLogger(verbose bool, keysAndValues ...any) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to create development logger: %w", err)
		}
	} else {
		l, err = zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("failed to create production logger: %w", err)
		}
	}
	return l.Sugar().With(keysAndValues...), nil
}
