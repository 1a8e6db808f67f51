package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/convpipe/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	summary         io.Writer
	quiet           bool
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger. If not set, the logger is initialized
// from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = &d }
}

// WithSummaryWriter sets where the startup summary is printed (stderr by
// default).
func WithSummaryWriter(w io.Writer) Option {
	return func(o *appOptions) { o.summary = w }
}

// WithQuietStartup suppresses the startup summary, for one-shot commands
// whose stdout carries results.
func WithQuietStartup() Option {
	return func(o *appOptions) { o.quiet = true }
}
