package internal

import (
	"io"

	"github.com/starford/notechat/internal/oracle"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	oracle    oracle.Oracle
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOracle replaces the configured language model, e.g. with a canned
// responder for dry runs.
func WithOracle(o oracle.Oracle) Option {
	return func(a *application) {
		a.oracle = o
	}
}

// WithLogOutput redirects logs, which otherwise go to stdout.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
