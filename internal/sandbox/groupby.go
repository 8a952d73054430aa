package sandbox

// groupby.go - grouped aggregation over a frame

import (
	"fmt"
	"time"

	"go.starlark.net/starlark"
)

// GroupBy holds rows bucketed by a key column, in first-seen key order.
// Aggregations produce a new two-column frame: the key column followed by
// the aggregate column.
type GroupBy struct {
	keyCol string
	keys   []any   // one rendered key cell per bucket
	rows   [][]int // row indices per bucket, aligned with keys
	frame  *Frame
}

func newGroupBy(f *Frame, keyCol string, byMonth bool, op string) (*GroupBy, error) {
	j := f.table.ColumnIndex(keyCol)
	if j < 0 {
		return nil, fmt.Errorf("%s: unknown column %q", op, keyCol)
	}

	g := &GroupBy{keyCol: keyCol, frame: f}
	seen := make(map[string]int)
	for i := 0; i < f.table.NumRows(); i++ {
		cell := f.table.Cell(i, j)
		if byMonth {
			ts, ok := cell.(time.Time)
			if !ok {
				return nil, fmt.Errorf("%s: column %q is not a date column", op, keyCol)
			}
			cell = ts.Format("2006-01")
		}
		k := renderKey(cell)
		idx, ok := seen[k]
		if !ok {
			idx = len(g.keys)
			seen[k] = idx
			g.keys = append(g.keys, cell)
			g.rows = append(g.rows, nil)
		}
		g.rows[idx] = append(g.rows[idx], i)
	}
	return g, nil
}

var (
	_ starlark.Value    = (*GroupBy)(nil)
	_ starlark.HasAttrs = (*GroupBy)(nil)
)

func (g *GroupBy) String() string {
	return fmt.Sprintf("groupby(%q, %d groups)", g.keyCol, len(g.keys))
}

func (g *GroupBy) Type() string          { return "groupby" }
func (g *GroupBy) Freeze()               {}
func (g *GroupBy) Truth() starlark.Bool  { return len(g.keys) > 0 }
func (g *GroupBy) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: groupby") }

func (g *GroupBy) Attr(name string) (starlark.Value, error) {
	return builtinAttr(g, name, groupMethods)
}

func (g *GroupBy) AttrNames() []string { return attrNames(groupMethods) }

var groupMethods = map[string]*starlark.Builtin{
	"sum":   starlark.NewBuiltin("sum", groupSum),
	"mean":  starlark.NewBuiltin("mean", groupMean),
	"count": starlark.NewBuiltin("count", groupCount),
}

// sum(col) totals a numeric column per group.
func groupSum(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return groupAggregate(b, args, kwargs, func(vals []float64) float64 {
		var total float64
		for _, v := range vals {
			total += v
		}
		return total
	})
}

// mean(col) averages a numeric column per group.
func groupMean(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return groupAggregate(b, args, kwargs, func(vals []float64) float64 {
		if len(vals) == 0 {
			return 0
		}
		var total float64
		for _, v := range vals {
			total += v
		}
		return total / float64(len(vals))
	})
}

// count() reports the number of rows per group.
func groupCount(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	g := b.Receiver().(*GroupBy)

	rows := make([][]any, len(g.keys))
	for i, key := range g.keys {
		rows[i] = []any{key, int64(len(g.rows[i]))}
	}
	return newDerivedFrame([]string{g.keyCol, "count"}, rows)
}

func groupAggregate(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, agg func([]float64) float64) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "col", &name); err != nil {
		return nil, err
	}
	g := b.Receiver().(*GroupBy)
	j := g.frame.table.ColumnIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("%s: unknown column %q", b.Name(), name)
	}

	rows := make([][]any, len(g.keys))
	for i, key := range g.keys {
		var vals []float64
		for _, r := range g.rows[i] {
			cell := g.frame.table.Cell(r, j)
			if cell == nil {
				continue
			}
			v, ok := asFloat(cell)
			if !ok {
				return nil, fmt.Errorf("%s: column %q is not numeric", b.Name(), name)
			}
			vals = append(vals, v)
		}
		rows[i] = []any{key, agg(vals)}
	}
	return newDerivedFrame([]string{g.keyCol, name}, rows)
}
