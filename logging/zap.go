// Package logging adapts zap to the Logger interface the contacts package
// consumes. Call sites log a message followed by alternating key/value pairs.
package logging

import (
	"go.uber.org/zap"
)

type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a production logger, or a human readable development logger
// when debug is set.
func New(debug bool) (*ZapLogger, error) {
	var base *zap.Logger
	var err error

	if debug {
		base, err = zap.NewDevelopment()
	} else {
		base, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}

	return &ZapLogger{sugar: base.Sugar()}, nil
}

func (l *ZapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *ZapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// Sync flushes buffered entries, called before process exit.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
