// Package log provides the zerolog loggers shared across the engine's
// packages, each tagged with the component that owns it.
package log

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	base     zerolog.Logger
	initOnce sync.Once
)

func root() zerolog.Logger {
	initOnce.Do(func() {
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().
			Timestamp().
			Logger()
	})
	return base
}

// For returns a logger tagged with component=name.
func For(name string) zerolog.Logger {
	return root().With().Str("component", name).Logger()
}
