// Package logging holds the library-wide logger. The default is a
// no-op; embedding applications install their own via Set.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Set installs the logger used across the library. Passing nil
// restores the no-op logger.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// L returns the current logger.
func L() *zap.Logger {
	return logger.Load()
}

// Development switches to a human-readable console logger, for use in
// examples and debugging sessions.
func Development() error {
	l, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	Set(l)
	return nil
}
