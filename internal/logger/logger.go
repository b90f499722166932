// Package logger holds the process-wide zap logger shared by the dialogue
// core, the ledger store, and the migration tooling.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the global logger once for the given environment: a JSON
// encoder under "production", a console encoder otherwise. Later calls
// are no-ops.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		if env == "production" {
			base, err = zap.NewProduction()
		} else {
			base, err = zap.NewDevelopment()
		}

		if err != nil {
			base = zap.NewNop()
		}

		sugar = base.Sugar()
	})
}

// Get returns the global sugared logger, initializing a development
// logger on first use if Init was never called (tests rely on this).
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes buffered entries; deferred from the binaries' main.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
