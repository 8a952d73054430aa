package sandbox

// Kind identifies the shape of an execution outcome.
type Kind string

// Outcome kinds.
const (
	KindTable  Kind = "table"
	KindSeries Kind = "series"
	KindScalar Kind = "scalar"
	KindOpaque Kind = "opaque"
)

// Outcome is the normalized, JSON-safe result of a successful execution.
// Exactly one variant is populated, selected by Kind: Columns+Rows for a
// table, Values+Name for a series, Value for a scalar, Text for everything
// else. An Outcome is never mutated after Classify builds it.
//
// Columns and Rows use omitzero rather than omitempty so a zero-row table
// still serializes its column list and an empty rows array; only the nil
// slices of non-table outcomes are dropped.
type Outcome struct {
	Kind    Kind             `json:"kind"`
	Columns []string         `json:"columns,omitzero"`
	Rows    []map[string]any `json:"rows,omitzero"`
	Values  map[string]any   `json:"values,omitempty"`
	Name    string           `json:"name,omitempty"`
	Value   any              `json:"value,omitempty"`
	Text    string           `json:"text,omitempty"`
}
