package sandbox

// executor.go - running an accepted expression and classifying its output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/askql/internal/dataset"
	startime "go.starlark.net/lib/time"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// ResultBinding is the global an expression must assign its output to.
const ResultBinding = "result"

// DefaultBudget bounds how long a single expression may run.
const DefaultBudget = 10 * time.Second

// ErrMissingResult reports that an accepted expression ran to completion
// without assigning the designated output binding.
var ErrMissingResult = errors.New("expression did not assign a 'result' value")

// ExecError reports a runtime failure while evaluating an expression.
type ExecError struct {
	Message string
}

func (e *ExecError) Error() string {
	return "error executing expression: " + e.Message
}

// Executor runs expression text against a dataset under the restricted
// binding set.
type Executor struct {
	budget time.Duration
	logger *slog.Logger
}

// Config holds executor configuration.
type Config struct {
	// Budget limits execution time per expression; zero means DefaultBudget.
	Budget time.Duration
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// NewExecutor creates an executor.
func NewExecutor(cfg Config) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	budget := cfg.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Executor{budget: budget, logger: logger}
}

// blockedBuiltins are universe builtins shadowed by error-raising stubs.
// Predeclared names take precedence over the universe, so an expression
// cannot enumerate attributes or reach them dynamically.
var blockedBuiltins = []string{"getattr", "hasattr", "dir"}

func blockedBuiltin(_ *starlark.Thread, b *starlark.Builtin, _ starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
	return nil, fmt.Errorf("%s is not available", b.Name())
}

// Execute runs the expression as a sequence of Starlark statements. The
// only host values reachable are the three predeclared bindings df, tab,
// and time; Starlark's pure universe builtins (len, sorted, range, ...)
// remain usable, with the introspection primitives disabled. The dataset
// is shared with the expression read-only; nothing an expression can do
// mutates it. On success the value bound to "result" is classified into
// an Outcome.
func (e *Executor) Execute(ctx context.Context, expr string, data *dataset.Table) (*Outcome, error) {
	thread := &starlark.Thread{
		Name:  "query",
		Print: func(_ *starlark.Thread, _ string) {},
	}

	predeclared := starlark.StringDict{
		"df":   NewFrame(data),
		"tab":  Module,
		"time": startime.Module,
	}
	for _, name := range blockedBuiltins {
		predeclared[name] = starlark.NewBuiltin(name, blockedBuiltin)
	}

	// Cancel the thread when the budget elapses or the caller gives up.
	ctx, cancel := context.WithTimeout(ctx, e.budget)
	defer cancel()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel("execution budget exceeded")
		case <-done:
		}
	}()

	opts := &syntax.FileOptions{
		Set:             true,
		TopLevelControl: true,
		GlobalReassign:  true,
	}

	start := time.Now()
	globals, err := starlark.ExecFileOptions(opts, thread, "query.star", expr, predeclared)
	elapsed := time.Since(start)
	if err != nil {
		msg := err.Error()
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			msg = evalErr.Msg
		}
		e.logger.Debug("expression failed", "elapsed", elapsed, "error", msg)
		return nil, &ExecError{Message: msg}
	}

	v, ok := globals[ResultBinding]
	if !ok {
		return nil, ErrMissingResult
	}

	outcome := Classify(v)
	e.logger.Debug("expression executed", "elapsed", elapsed, "kind", outcome.Kind)
	return outcome, nil
}

// Classify maps the result value onto exactly one outcome variant.
func Classify(v starlark.Value) *Outcome {
	switch x := v.(type) {
	case *Frame:
		cols := x.table.Columns()
		rows := make([]map[string]any, x.table.NumRows())
		for i := range rows {
			row := make(map[string]any, len(cols))
			for j, c := range cols {
				row[c] = dataset.RenderCell(x.table.Cell(i, j))
			}
			rows[i] = row
		}
		return &Outcome{Kind: KindTable, Columns: cols, Rows: rows}

	case *Series:
		values := make(map[string]any, x.Len())
		for i, k := range x.keys {
			values[k] = dataset.RenderCell(x.vals[i])
		}
		return &Outcome{Kind: KindSeries, Values: values, Name: x.name}

	case starlark.Int:
		if i, ok := x.Int64(); ok {
			return &Outcome{Kind: KindScalar, Value: i}
		}
		return &Outcome{Kind: KindOpaque, Text: x.String()}

	case starlark.Float:
		return &Outcome{Kind: KindScalar, Value: float64(x)}

	case starlark.String:
		return &Outcome{Kind: KindScalar, Value: string(x)}

	case starlark.Bool:
		return &Outcome{Kind: KindScalar, Value: bool(x)}

	default:
		return &Outcome{Kind: KindOpaque, Text: v.String()}
	}
}
