package sandbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/leapstack-labs/askql/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts.UTC()
}

func fixture(t *testing.T) *dataset.Table {
	t.Helper()
	tab, err := dataset.New([]string{"date", "region", "sales"}, [][]any{
		{date("2023-07-01"), "East", 100.0},
		{date("2023-01-15"), "West", 50.0},
		{date("2023-07-14"), "West", 85.0},
		{date("2023-02-10"), "East", 75.0},
	})
	require.NoError(t, err)
	return tab
}

func executeOn(t *testing.T, expr string) (*Outcome, error) {
	t.Helper()
	exec := NewExecutor(Config{})
	return exec.Execute(context.Background(), expr, fixture(t))
}

func TestExecute_TableOutcome(t *testing.T) {
	outcome, err := executeOn(t, `result = df.head(2)`)
	require.NoError(t, err)

	assert.Equal(t, KindTable, outcome.Kind)
	assert.Equal(t, []string{"date", "region", "sales"}, outcome.Columns)
	require.Len(t, outcome.Rows, 2)
	assert.Equal(t, "East", outcome.Rows[0]["region"])
	assert.Equal(t, "2023-07-01", outcome.Rows[0]["date"])
}

func TestExecute_GroupbySum(t *testing.T) {
	outcome, err := executeOn(t, `result = df.groupby("region").sum("sales")`)
	require.NoError(t, err)

	assert.Equal(t, KindTable, outcome.Kind)
	assert.Equal(t, []string{"region", "sales"}, outcome.Columns)
	require.Len(t, outcome.Rows, 2)
	// First-seen key order.
	assert.Equal(t, "East", outcome.Rows[0]["region"])
	assert.Equal(t, 175.0, outcome.Rows[0]["sales"])
	assert.Equal(t, "West", outcome.Rows[1]["region"])
	assert.Equal(t, 135.0, outcome.Rows[1]["sales"])
}

func TestExecute_GroupByMonth(t *testing.T) {
	outcome, err := executeOn(t, `result = df.group_by_month("date").sum("sales")`)
	require.NoError(t, err)

	assert.Equal(t, KindTable, outcome.Kind)
	require.Len(t, outcome.Rows, 3)
	assert.Equal(t, "2023-07", outcome.Rows[0]["date"])
	assert.Equal(t, 185.0, outcome.Rows[0]["sales"])
	assert.Equal(t, "2023-01", outcome.Rows[1]["date"])
	assert.Equal(t, "2023-02", outcome.Rows[2]["date"])
}

func TestExecute_FilterByMonth(t *testing.T) {
	outcome, err := executeOn(t, `result = df.filter(lambda row: row["date"].month == 7)`)
	require.NoError(t, err)

	assert.Equal(t, KindTable, outcome.Kind)
	assert.Equal(t, []string{"date", "region", "sales"}, outcome.Columns)
	require.Len(t, outcome.Rows, 2)
	assert.Equal(t, "2023-07-01", outcome.Rows[0]["date"])
	assert.Equal(t, "2023-07-14", outcome.Rows[1]["date"])
}

func TestExecute_SeriesOutcome(t *testing.T) {
	outcome, err := executeOn(t, `result = df.col("sales")`)
	require.NoError(t, err)

	assert.Equal(t, KindSeries, outcome.Kind)
	assert.Equal(t, "sales", outcome.Name)
	assert.Equal(t, map[string]any{
		"0": 100.0,
		"1": 50.0,
		"2": 85.0,
		"3": 75.0,
	}, outcome.Values)
}

func TestExecute_ScalarOutcomes(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want any
	}{
		{"float sum", `result = df.col("sales").sum()`, 310.0},
		{"int count", `result = df.count()`, int64(4)},
		{"string", `result = "hello"`, "hello"},
		{"bool", `result = len(df) > 0`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := executeOn(t, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, KindScalar, outcome.Kind)
			assert.Equal(t, tt.want, outcome.Value)
		})
	}
}

func TestExecute_OpaqueOutcome(t *testing.T) {
	outcome, err := executeOn(t, `result = [1, 2, 3]`)
	require.NoError(t, err)

	assert.Equal(t, KindOpaque, outcome.Kind)
	assert.Equal(t, "[1, 2, 3]", outcome.Text)
}

func TestExecute_EmptyTableJSON(t *testing.T) {
	outcome, err := executeOn(t, `result = df.filter(lambda row: False)`)
	require.NoError(t, err)
	require.Empty(t, outcome.Rows)

	data, err := json.Marshal(outcome)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"columns":["date","region","sales"]`)
	assert.Contains(t, string(data), `"rows":[]`)
}

func TestExecute_MissingResult(t *testing.T) {
	_, err := executeOn(t, `x = df.head(2)`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingResult)
}

func TestExecute_RuntimeError(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"unknown column", `result = df.groupby("nope").sum("sales")`},
		{"non numeric aggregate", `result = df.col("region").sum()`},
		{"syntax error", `result = = df`},
		{"undefined name", `result = not_a_binding`},
		{"load unsupported", `load("time", "parse_time")` + "\n" + `result = 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeOn(t, tt.expr)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrMissingResult)
		})
	}
}

func TestExecute_HostNamesUnresolvable(t *testing.T) {
	for _, name := range []string{"os", "open", "json", "subprocess"} {
		_, err := executeOn(t, `result = `+name)
		assert.Error(t, err, "name %q resolved inside the sandbox", name)
	}
}

func TestExecute_IntrospectionDisabled(t *testing.T) {
	exprs := []string{
		`result = getattr(df, "head")`,
		`result = hasattr(df, "head")`,
		`result = dir(df)`,
	}
	for _, expr := range exprs {
		_, err := executeOn(t, expr)
		require.Error(t, err, "expression %q succeeded", expr)
		assert.Contains(t, err.Error(), "not available")
	}
}

func TestExecute_Idempotent(t *testing.T) {
	exec := NewExecutor(Config{})
	data := fixture(t)
	expr := `result = df.groupby("region").sum("sales")`

	first, err := exec.Execute(context.Background(), expr, data)
	require.NoError(t, err)
	second, err := exec.Execute(context.Background(), expr, data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 4, data.NumRows())
}

func TestExecute_DatasetNotMutated(t *testing.T) {
	exec := NewExecutor(Config{})
	data := fixture(t)

	// A sort followed by a filter builds new frames; the source table
	// must be untouched.
	_, err := exec.Execute(context.Background(), `result = df.sort_by("sales").filter(lambda row: row["sales"] > 60)`, data)
	require.NoError(t, err)

	assert.Equal(t, "East", data.Cell(0, 1))
	assert.Equal(t, 100.0, data.Cell(0, 2))
}

func TestExecute_BudgetCancelsRunaway(t *testing.T) {
	exec := NewExecutor(Config{Budget: 50 * time.Millisecond})
	data := fixture(t)

	expr := `
x = 0
for i in range(1000000000):
    x += 1
result = x
`
	_, err := exec.Execute(context.Background(), expr, data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget")
}
