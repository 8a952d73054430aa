// Package generate produces a candidate query expression for a question.
// A remote language-model adapter is tried first when one is configured;
// any failure there falls back to the deterministic local translator, so
// this path always yields an expression. The expression is a candidate
// only: validation happens uniformly downstream, regardless of which
// generator produced it.
package generate

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/askql/internal/translate"
)

// Remote is a code generator backed by an external service. Implementations
// return the expression text or an error; they never panic across this
// boundary.
type Remote interface {
	Generate(ctx context.Context, query string, columns []string) (string, error)
}

// Coordinator selects between the remote generator and the local
// translator.
type Coordinator struct {
	remote Remote
	local  *translate.Translator
	logger *slog.Logger
}

// NewCoordinator creates a coordinator. remote may be nil, in which case
// every query goes through the local translator.
func NewCoordinator(remote Remote, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{
		remote: remote,
		local:  translate.New(),
		logger: logger,
	}
}

// Code returns an expression for the query. The remote generator gets one
// attempt; a failure there is recovered locally and never surfaced to the
// caller.
func (c *Coordinator) Code(ctx context.Context, query string, columns []string) string {
	if c.remote != nil {
		code, err := c.remote.Generate(ctx, query, columns)
		if err == nil {
			c.logger.Debug("remote generator produced expression", "query", query)
			return code
		}
		c.logger.Debug("remote generator failed, using local translator", "error", err)
	}
	return c.local.Translate(query, columns)
}
