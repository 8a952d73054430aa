// Package translate provides the deterministic local translator from a
// natural-language question to a query expression. It is a greedy keyword
// scorer over an ordered catalog, not a parser: it never fails, degrading
// to a default preview expression when nothing matches.
package translate

import (
	"strings"
)

// Entry pairs a set of required keywords with the expression emitted when
// they match.
type Entry struct {
	// Keywords are matched case-insensitively as substrings of the query.
	Keywords []string
	// Expression is the emitted query text; it assigns its output to
	// the "result" binding.
	Expression string
	// Description summarizes what the expression computes.
	Description string
}

// DefaultExpression is emitted when no catalog entry matches.
const DefaultExpression = `result = df.head(10)`

// Catalog is the ordered pattern catalog. Order matters: when two entries
// score the same keyword count, the earlier entry wins. That tie-break is a
// stable, documented default.
var Catalog = []Entry{
	{
		Keywords:    []string{"sales", "by", "region"},
		Expression:  `result = df.groupby("region").sum("sales")`,
		Description: "Total sales by region",
	},
	{
		Keywords:    []string{"sales", "month", "by"},
		Expression:  `result = df.group_by_month("date").sum("sales")`,
		Description: "Sales by month",
	},
	{
		Keywords:    []string{"average", "sales", "region"},
		Expression:  `result = df.groupby("region").mean("sales")`,
		Description: "Average sales by region",
	},
	{
		Keywords:    []string{"top", "highest", "sales"},
		Expression:  `result = df.nlargest(10, "sales")`,
		Description: "Top 10 highest sales",
	},
	{
		Keywords:    []string{"sales", "july"},
		Expression:  `result = df.filter(lambda row: row["date"].month == 7)`,
		Description: "Sales in July",
	},
	{
		Keywords:    []string{"sales", "2023"},
		Expression:  `result = df.filter(lambda row: row["date"].year == 2023)`,
		Description: "Sales in 2023",
	},
	{
		Keywords:    []string{"total", "sales"},
		Expression:  `result = df.col("sales").sum()`,
		Description: "Total sales",
	},
	{
		Keywords:    []string{"trend", "sales"},
		Expression:  `result = df.group_by_month("date").sum("sales")`,
		Description: "Sales trends over time",
	},
	{
		Keywords:    []string{"count", "records"},
		Expression:  `result = df.count()`,
		Description: "Total number of records",
	},
	{
		Keywords:    []string{"average", "daily", "sales"},
		Expression:  `result = df.groupby("date").sum("sales").col("sales").mean()`,
		Description: "Average daily sales",
	},
}

// Translator scores queries against a catalog.
type Translator struct {
	catalog []Entry
}

// New returns a translator over the default catalog.
func New() *Translator {
	return &Translator{catalog: Catalog}
}

// NewWithCatalog returns a translator over a custom catalog. Used by tests.
func NewWithCatalog(catalog []Entry) *Translator {
	return &Translator{catalog: catalog}
}

// Translate converts a query into an expression. For each entry it counts
// the keywords present in the lower-cased query and selects the entry with
// the strictly greatest positive count; earlier entries win ties. With no
// match it returns DefaultExpression. The column list is accepted for
// interface parity with the remote generator; the catalog expressions are
// fixed.
func (t *Translator) Translate(query string, _ []string) string {
	q := strings.ToLower(strings.TrimSpace(query))

	var best *Entry
	bestCount := 0
	for i := range t.catalog {
		entry := &t.catalog[i]
		count := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(q, kw) {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			best = entry
		}
	}

	if best == nil {
		return DefaultExpression
	}
	return best.Expression
}
