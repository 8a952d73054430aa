package sandbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_SelectAndSort(t *testing.T) {
	outcome, err := executeOn(t, `result = df.select("region", "sales").sort_by("sales", reverse=True)`)
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "sales"}, outcome.Columns)
	require.Len(t, outcome.Rows, 4)
	assert.Equal(t, 100.0, outcome.Rows[0]["sales"])
	assert.Equal(t, 50.0, outcome.Rows[3]["sales"])
}

func TestFrame_SelectUnknownColumn(t *testing.T) {
	_, err := executeOn(t, `result = df.select("nope")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestFrame_Nlargest(t *testing.T) {
	outcome, err := executeOn(t, `result = df.nlargest(2, "sales")`)
	require.NoError(t, err)

	require.Len(t, outcome.Rows, 2)
	assert.Equal(t, 100.0, outcome.Rows[0]["sales"])
	assert.Equal(t, 85.0, outcome.Rows[1]["sales"])
	// All columns survive.
	assert.Equal(t, []string{"date", "region", "sales"}, outcome.Columns)
}

func TestFrame_NlargestNonNumericColumn(t *testing.T) {
	_, err := executeOn(t, `result = df.nlargest(2, "region")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not numeric")
}

func TestFrame_HeadBeyondLength(t *testing.T) {
	outcome, err := executeOn(t, `result = df.head(100)`)
	require.NoError(t, err)
	assert.Len(t, outcome.Rows, 4)
}

func TestFrame_ColumnsAttr(t *testing.T) {
	outcome, err := executeOn(t, `result = df.columns`)
	require.NoError(t, err)

	assert.Equal(t, KindOpaque, outcome.Kind)
	assert.Equal(t, `["date", "region", "sales"]`, outcome.Text)
}

func TestFrame_Indexing(t *testing.T) {
	outcome, err := executeOn(t, `result = df[0]["region"]`)
	require.NoError(t, err)

	assert.Equal(t, KindScalar, outcome.Kind)
	assert.Equal(t, "East", outcome.Value)
}

func TestSeries_Aggregates(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{`result = df.col("sales").mean()`, 77.5},
		{`result = df.col("sales").min()`, 50.0},
		{`result = df.col("sales").max()`, 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			outcome, err := executeOn(t, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, KindScalar, outcome.Kind)
			assert.Equal(t, tt.want, outcome.Value)
		})
	}
}

func TestSeries_MinOfEmpty(t *testing.T) {
	_, err := executeOn(t, `result = df.filter(lambda row: False).col("sales").min()`)
	require.Error(t, err)
}

func TestGroupBy_MeanAndCount(t *testing.T) {
	outcome, err := executeOn(t, `result = df.groupby("region").mean("sales")`)
	require.NoError(t, err)
	require.Len(t, outcome.Rows, 2)
	assert.Equal(t, 87.5, outcome.Rows[0]["sales"])
	assert.Equal(t, 67.5, outcome.Rows[1]["sales"])

	outcome, err = executeOn(t, `result = df.groupby("region").count()`)
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "count"}, outcome.Columns)
	assert.Equal(t, int64(2), outcome.Rows[0]["count"])
}

func TestGroupByMonth_NonDateColumn(t *testing.T) {
	_, err := executeOn(t, `result = df.group_by_month("region").sum("sales")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")
}

func TestTabModule_FrameAndConcat(t *testing.T) {
	expr := `
a = tab.frame(["k", "v"], [["x", 1], ["y", 2]])
b = tab.frame(["k", "v"], [["z", 3]])
result = tab.concat(a, b)
`
	exec := NewExecutor(Config{})
	outcome, err := exec.Execute(context.Background(), expr, fixture(t))
	require.NoError(t, err)

	assert.Equal(t, KindTable, outcome.Kind)
	assert.Equal(t, []string{"k", "v"}, outcome.Columns)
	require.Len(t, outcome.Rows, 3)
	assert.Equal(t, "z", outcome.Rows[2]["k"])
}

func TestTabModule_ConcatColumnMismatch(t *testing.T) {
	expr := `
a = tab.frame(["k"], [["x"]])
b = tab.frame(["v"], [["y"]])
result = tab.concat(a, b)
`
	exec := NewExecutor(Config{})
	_, err := exec.Execute(context.Background(), expr, fixture(t))
	require.Error(t, err)
}

func TestTimeBinding(t *testing.T) {
	outcome, err := executeOn(t, `result = time.parse_time("2023-07-01T00:00:00Z").year`)
	require.NoError(t, err)

	assert.Equal(t, KindScalar, outcome.Kind)
	assert.Equal(t, int64(2023), outcome.Value)
}
