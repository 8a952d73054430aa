// Package testutil provides shared test helpers.
package testutil

import (
	"log/slog"
	"testing"
	"time"

	"github.com/lmittmann/tint"
)

// NewTestLogger returns a debug-level logger routed through t.Log, so
// pipeline log lines show up only on failure or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(tint.NewHandler(testWriter{t}, &tint.Options{
		Level:      slog.LevelDebug,
		NoColor:    true,
		TimeFormat: time.Kitchen,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
