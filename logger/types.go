package logger

import (
	"context"
	"io"
)

// Logger is our contract for the logger.
type Logger interface {
	Error(msg string, fields ...any)
	ErrorWithContext(ctx context.Context, msg string, fields ...any)

	Warn(msg string, fields ...any)
	WarnWithContext(ctx context.Context, msg string, fields ...any)

	Info(msg string, fields ...any)
	InfoWithContext(ctx context.Context, msg string, fields ...any)

	Debug(msg string, fields ...any)
	DebugWithContext(ctx context.Context, msg string, fields ...any)

	// Closer is the interface that wraps the basic Close method.
	io.Closer
}

// Configuration for the logger.
type Configuration struct {
	Writer     io.Writer
	TimeFormat string
	Level      int
}

// Validate checks the configuration and sets default values if needed.
func (c *Configuration) Validate() error {
	if c.Level < FATAL_LEVEL || c.Level > DEBUG_LEVEL {
		return ErrInvalidLogLevel
	}

	if c.Writer == nil {
		c.Writer = defaultWriter
	}

	if c.TimeFormat == "" {
		c.TimeFormat = defaultTimeFormat
	}

	return nil
}
