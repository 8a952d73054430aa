// Package sandbox executes accepted query expressions against the dataset
// inside a restricted Starlark environment. Exactly three host bindings
// are exposed to an expression: df (the dataset frame), tab (the frame
// library), and time (the Starlark time module). The pure Starlark
// universe builtins remain usable, with the introspection primitives
// shadowed by error-raising stubs. Nothing else from the host is
// reachable, and every frame operation returns a new frame, so the
// dataset itself is never mutated by a query.
package sandbox

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/askql/internal/dataset"
	startime "go.starlark.net/lib/time"
	"go.starlark.net/starlark"
)

// Frame is a Starlark view over an immutable dataset.Table.
type Frame struct {
	table *dataset.Table
}

// NewFrame wraps a dataset table as a Starlark value.
func NewFrame(t *dataset.Table) *Frame {
	return &Frame{table: t}
}

// Table returns the underlying dataset table.
func (f *Frame) Table() *dataset.Table { return f.table }

var (
	_ starlark.Value     = (*Frame)(nil)
	_ starlark.HasAttrs  = (*Frame)(nil)
	_ starlark.Sequence  = (*Frame)(nil)
	_ starlark.Indexable = (*Frame)(nil)
)

func (f *Frame) String() string {
	return fmt.Sprintf("frame(%d rows, columns=[%s])", f.table.NumRows(), strings.Join(f.table.Columns(), ", "))
}

func (f *Frame) Type() string          { return "frame" }
func (f *Frame) Freeze()               {} // frames are immutable
func (f *Frame) Truth() starlark.Bool  { return f.table.NumRows() > 0 }
func (f *Frame) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: frame") }
func (f *Frame) Len() int              { return f.table.NumRows() }

// Index returns row i as a dict of column name to cell value.
func (f *Frame) Index(i int) starlark.Value { return f.rowDict(i) }

func (f *Frame) Iterate() starlark.Iterator { return &frameIterator{frame: f} }

type frameIterator struct {
	frame *Frame
	i     int
}

func (it *frameIterator) Next(v *starlark.Value) bool {
	if it.i >= it.frame.table.NumRows() {
		return false
	}
	*v = it.frame.rowDict(it.i)
	it.i++
	return true
}

func (it *frameIterator) Done() {}

func (f *Frame) rowDict(i int) *starlark.Dict {
	cols := f.table.Columns()
	d := starlark.NewDict(len(cols))
	for j, c := range cols {
		_ = d.SetKey(starlark.String(c), cellToStarlark(f.table.Cell(i, j)))
	}
	return d
}

func (f *Frame) Attr(name string) (starlark.Value, error) {
	if name == "columns" {
		cols := f.table.Columns()
		elems := make([]starlark.Value, len(cols))
		for i, c := range cols {
			elems[i] = starlark.String(c)
		}
		return starlark.NewList(elems), nil
	}
	return builtinAttr(f, name, frameMethods)
}

func (f *Frame) AttrNames() []string {
	names := append(attrNames(frameMethods), "columns")
	sort.Strings(names)
	return names
}

var frameMethods = map[string]*starlark.Builtin{
	"head":           starlark.NewBuiltin("head", frameHead),
	"select":         starlark.NewBuiltin("select", frameSelect),
	"col":            starlark.NewBuiltin("col", frameCol),
	"filter":         starlark.NewBuiltin("filter", frameFilter),
	"sort_by":        starlark.NewBuiltin("sort_by", frameSortBy),
	"nlargest":       starlark.NewBuiltin("nlargest", frameNlargest),
	"groupby":        starlark.NewBuiltin("groupby", frameGroupby),
	"group_by_month": starlark.NewBuiltin("group_by_month", frameGroupByMonth),
	"count":          starlark.NewBuiltin("count", frameCount),
}

func builtinAttr(recv starlark.Value, name string, methods map[string]*starlark.Builtin) (starlark.Value, error) {
	b := methods[name]
	if b == nil {
		return nil, nil // no such attr
	}
	return b.BindReceiver(recv), nil
}

func attrNames(methods map[string]*starlark.Builtin) []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	return names
}

// head(n=5) returns the first n rows.
func frameHead(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	n := 5
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "n?", &n); err != nil {
		return nil, err
	}
	f := b.Receiver().(*Frame)
	if n < 0 {
		n = 0
	}
	if n > f.table.NumRows() {
		n = f.table.NumRows()
	}
	rows := make([][]any, n)
	for i := 0; i < n; i++ {
		rows[i] = f.table.Row(i)
	}
	return newDerivedFrame(f.table.Columns(), rows)
}

// select(*cols) returns a frame restricted to the named columns, in the
// given order.
func frameSelect(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	f := b.Receiver().(*Frame)

	var names []string
	for i := 0; i < args.Len(); i++ {
		s, ok := starlark.AsString(args.Index(i))
		if !ok {
			return nil, fmt.Errorf("%s: argument %d is not a string", b.Name(), i+1)
		}
		names = append(names, s)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: requires at least one column name", b.Name())
	}

	idx := make([]int, len(names))
	for i, name := range names {
		j := f.table.ColumnIndex(name)
		if j < 0 {
			return nil, fmt.Errorf("%s: unknown column %q", b.Name(), name)
		}
		idx[i] = j
	}

	rows := make([][]any, f.table.NumRows())
	for r := range rows {
		row := make([]any, len(idx))
		for i, j := range idx {
			row[i] = f.table.Cell(r, j)
		}
		rows[r] = row
	}
	return newDerivedFrame(names, rows)
}

// col(name) extracts a single column as a series.
func frameCol(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	f := b.Receiver().(*Frame)
	vals, err := f.table.Column(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	keys := make([]string, len(vals))
	for i := range vals {
		keys[i] = strconv.Itoa(i)
	}
	return &Series{name: name, keys: keys, vals: vals}, nil
}

// filter(pred) keeps rows for which pred(row) is true. The predicate
// receives each row as a dict of column name to value.
func frameFilter(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pred starlark.Callable
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pred", &pred); err != nil {
		return nil, err
	}
	f := b.Receiver().(*Frame)

	var rows [][]any
	for i := 0; i < f.table.NumRows(); i++ {
		keep, err := starlark.Call(thread, pred, starlark.Tuple{f.rowDict(i)}, nil)
		if err != nil {
			return nil, err
		}
		if keep.Truth() {
			rows = append(rows, f.table.Row(i))
		}
	}
	return newDerivedFrame(f.table.Columns(), rows)
}

// sort_by(col, reverse=False) returns the rows ordered by the named column.
func frameSortBy(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	reverse := false
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "col", &name, "reverse?", &reverse); err != nil {
		return nil, err
	}
	f := b.Receiver().(*Frame)
	j := f.table.ColumnIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("%s: unknown column %q", b.Name(), name)
	}

	order := make([]int, f.table.NumRows())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, c int) bool {
		cmp := compareCells(f.table.Cell(order[a], j), f.table.Cell(order[c], j))
		if reverse {
			return cmp > 0
		}
		return cmp < 0
	})

	rows := make([][]any, len(order))
	for i, r := range order {
		rows[i] = f.table.Row(r)
	}
	return newDerivedFrame(f.table.Columns(), rows)
}

// nlargest(n, col) returns the n rows with the largest numeric values in
// the named column, largest first. Ties keep their original order.
func frameNlargest(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var n int
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "n", &n, "col", &name); err != nil {
		return nil, err
	}
	f := b.Receiver().(*Frame)
	j := f.table.ColumnIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("%s: unknown column %q", b.Name(), name)
	}

	// Nil cells sort last; anything else must be numeric.
	vals := make([]float64, f.table.NumRows())
	for i := range vals {
		cell := f.table.Cell(i, j)
		if cell == nil {
			vals[i] = math.Inf(-1)
			continue
		}
		v, ok := asFloat(cell)
		if !ok {
			return nil, fmt.Errorf("%s: column %q is not numeric", b.Name(), name)
		}
		vals[i] = v
	}

	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, c int) bool {
		return vals[order[a]] > vals[order[c]]
	})

	if n < 0 {
		n = 0
	}
	if n > len(order) {
		n = len(order)
	}
	rows := make([][]any, n)
	for i := 0; i < n; i++ {
		rows[i] = f.table.Row(order[i])
	}
	return newDerivedFrame(f.table.Columns(), rows)
}

// groupby(col) groups rows by the values of the named column.
func frameGroupby(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "col", &name); err != nil {
		return nil, err
	}
	f := b.Receiver().(*Frame)
	return newGroupBy(f, name, false, b.Name())
}

// group_by_month(col) groups rows by the calendar month of a date column,
// with keys rendered as "YYYY-MM" strings.
func frameGroupByMonth(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "col", &name); err != nil {
		return nil, err
	}
	f := b.Receiver().(*Frame)
	return newGroupBy(f, name, true, b.Name())
}

// count() returns the number of rows.
func frameCount(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	f := b.Receiver().(*Frame)
	return starlark.MakeInt(f.table.NumRows()), nil
}

func newDerivedFrame(cols []string, rows [][]any) (*Frame, error) {
	t, err := dataset.New(cols, rows)
	if err != nil {
		return nil, err
	}
	return NewFrame(t), nil
}

// cellToStarlark converts a dataset cell to its Starlark representation.
func cellToStarlark(v any) starlark.Value {
	switch x := v.(type) {
	case nil:
		return starlark.None
	case string:
		return starlark.String(x)
	case float64:
		return starlark.Float(x)
	case int:
		return starlark.MakeInt(x)
	case int64:
		return starlark.MakeInt64(x)
	case bool:
		return starlark.Bool(x)
	case time.Time:
		return startime.Time(x)
	default:
		return starlark.String(fmt.Sprintf("%v", x))
	}
}

// starlarkToCell converts a Starlark value to a dataset cell.
func starlarkToCell(v starlark.Value) (any, error) {
	switch x := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(x), nil
	case starlark.Float:
		return float64(x), nil
	case starlark.Int:
		i, ok := x.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s out of range", x.String())
		}
		return i, nil
	case starlark.Bool:
		return bool(x), nil
	case startime.Time:
		return time.Time(x), nil
	default:
		return nil, fmt.Errorf("cannot use %s as a cell value", v.Type())
	}
}

// asFloat coerces a numeric cell to float64.
func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	}
	return 0, false
}

// compareCells imposes a total order across cell values: nil first, then
// numbers, booleans, times, and strings; mismatched kinds fall back to
// their rendered form.
func compareCells(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case !ab && bb:
				return -1
			case ab && !bb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(renderKey(a), renderKey(b))
}

// renderKey renders a cell as a stable string key.
func renderKey(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return dataset.FormatTime(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
