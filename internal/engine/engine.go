// Package engine orchestrates the question-answering pipeline: generate a
// candidate expression, validate it, execute it in the sandbox, and return
// the classified outcome. Validation always precedes execution; no path
// reaches the executor with an unchecked expression.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/askql/internal/dataset"
	"github.com/leapstack-labs/askql/internal/generate"
	"github.com/leapstack-labs/askql/internal/sandbox"
	"github.com/leapstack-labs/askql/internal/validate"
)

// ErrNoDataset reports that no dataset was loaded; every query fails
// uniformly with it until one is.
var ErrNoDataset = errors.New("no dataset loaded")

// ErrEmptyQuery reports an empty or whitespace-only question.
var ErrEmptyQuery = errors.New("empty query")

// ValidationError reports a candidate expression rejected by the safety
// validator. The expression is discarded; there is no retry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "expression rejected by safety validator: " + e.Reason
}

// Engine answers natural-language questions against one dataset.
type Engine struct {
	data   *dataset.Table
	gen    *generate.Coordinator
	exec   *sandbox.Executor
	logger *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Dataset is the loaded table; nil makes every query fail with
	// ErrNoDataset.
	Dataset *dataset.Table
	// Remote is the optional remote code generator.
	Remote generate.Remote
	// Budget limits execution time per expression (optional).
	Budget time.Duration
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		data:   cfg.Dataset,
		gen:    generate.NewCoordinator(cfg.Remote, logger),
		exec:   sandbox.NewExecutor(sandbox.Config{Budget: cfg.Budget, Logger: logger}),
		logger: logger,
	}
}

// Dataset returns the loaded table, or nil.
func (e *Engine) Dataset() *dataset.Table { return e.data }

// Answer is the result contract for a successfully processed question.
type Answer struct {
	Outcome *sandbox.Outcome `json:"result"`
	Code    string           `json:"generated_code"`
	Query   string           `json:"query"`
}

// Ask runs the full pipeline for one question.
func (e *Engine) Ask(ctx context.Context, query string) (*Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if e.data == nil {
		return nil, ErrNoDataset
	}

	code := e.gen.Code(ctx, query, e.data.Columns())
	e.logger.Info("generated expression", "query", query, "code", code)

	if verdict := validate.Check(code); !verdict.Accepted {
		e.logger.Warn("expression rejected", "reason", verdict.Reason)
		return nil, &ValidationError{Reason: verdict.Reason}
	}

	outcome, err := e.exec.Execute(ctx, code, e.data)
	if err != nil {
		return nil, err
	}

	return &Answer{Outcome: outcome, Code: code, Query: query}, nil
}
