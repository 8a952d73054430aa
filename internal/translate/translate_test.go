package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var columns = []string{"date", "region", "sales"}

func TestTranslate_CatalogSelection(t *testing.T) {
	tr := New()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "sales by region",
			query: "show me sales by region",
			want:  `result = df.groupby("region").sum("sales")`,
		},
		{
			name:  "total sales by region prefers the fuller match",
			query: "total sales by region",
			want:  `result = df.groupby("region").sum("sales")`,
		},
		{
			name:  "sales in july",
			query: "sales in july",
			want:  `result = df.filter(lambda row: row["date"].month == 7)`,
		},
		{
			name:  "top sales",
			query: "top 10 highest sales",
			want:  `result = df.nlargest(10, "sales")`,
		},
		{
			name:  "total sales",
			query: "what are total sales",
			want:  `result = df.col("sales").sum()`,
		},
		{
			name:  "count records",
			query: "count of records",
			want:  `result = df.count()`,
		},
		{
			name:  "case insensitive",
			query: "SALES BY REGION",
			want:  `result = df.groupby("region").sum("sales")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Translate(tt.query, columns))
		})
	}
}

func TestTranslate_Default(t *testing.T) {
	tr := New()
	for _, query := range []string{
		"tell me something interesting",
		"zzz",
		"",
	} {
		assert.Equal(t, DefaultExpression, tr.Translate(query, columns), "query %q", query)
	}
}

func TestTranslate_TieBreakByCatalogOrder(t *testing.T) {
	tr := NewWithCatalog([]Entry{
		{Keywords: []string{"alpha", "beta"}, Expression: "first"},
		{Keywords: []string{"beta", "gamma"}, Expression: "second"},
	})

	// Both entries score 2; the earlier entry wins.
	assert.Equal(t, "first", tr.Translate("alpha beta gamma", columns))

	// A strictly greater score beats catalog order.
	assert.Equal(t, "second", tr.Translate("beta gamma", columns))
}

func TestCatalog_AssignsResult(t *testing.T) {
	for _, entry := range Catalog {
		assert.Contains(t, entry.Expression, "result = ", "entry %q", entry.Description)
	}
}
