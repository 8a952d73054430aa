package sandbox

// series.go - a single named column of values

import (
	"fmt"

	"go.starlark.net/starlark"
)

// Series is a named, indexed sequence of values extracted from a frame.
type Series struct {
	name string
	keys []string
	vals []any
}

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// Keys returns the ordered index keys.
func (s *Series) Keys() []string { return append([]string(nil), s.keys...) }

// Values returns the values aligned with Keys.
func (s *Series) Values() []any { return append([]any(nil), s.vals...) }

var (
	_ starlark.Value     = (*Series)(nil)
	_ starlark.HasAttrs  = (*Series)(nil)
	_ starlark.Sequence  = (*Series)(nil)
	_ starlark.Indexable = (*Series)(nil)
)

func (s *Series) String() string {
	return fmt.Sprintf("series(%q, %d values)", s.name, len(s.vals))
}

func (s *Series) Type() string               { return "series" }
func (s *Series) Freeze()                    {}
func (s *Series) Truth() starlark.Bool       { return len(s.vals) > 0 }
func (s *Series) Hash() (uint32, error)      { return 0, fmt.Errorf("unhashable type: series") }
func (s *Series) Len() int                   { return len(s.vals) }
func (s *Series) Index(i int) starlark.Value { return cellToStarlark(s.vals[i]) }
func (s *Series) Iterate() starlark.Iterator { return &seriesIterator{series: s} }

type seriesIterator struct {
	series *Series
	i      int
}

func (it *seriesIterator) Next(v *starlark.Value) bool {
	if it.i >= len(it.series.vals) {
		return false
	}
	*v = cellToStarlark(it.series.vals[it.i])
	it.i++
	return true
}

func (it *seriesIterator) Done() {}

func (s *Series) Attr(name string) (starlark.Value, error) {
	if name == "name" {
		return starlark.String(s.name), nil
	}
	return builtinAttr(s, name, seriesMethods)
}

func (s *Series) AttrNames() []string {
	return append(attrNames(seriesMethods), "name")
}

var seriesMethods = map[string]*starlark.Builtin{
	"sum":  starlark.NewBuiltin("sum", seriesSum),
	"mean": starlark.NewBuiltin("mean", seriesMean),
	"min":  starlark.NewBuiltin("min", seriesMin),
	"max":  starlark.NewBuiltin("max", seriesMax),
}

func seriesSum(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	vals, err := seriesNumeric(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	return starlark.Float(total), nil
}

func seriesMean(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	vals, err := seriesNumeric(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return starlark.Float(0), nil
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	return starlark.Float(total / float64(len(vals))), nil
}

func seriesMin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return seriesExtreme(b, args, kwargs, func(a, c float64) bool { return c < a })
}

func seriesMax(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return seriesExtreme(b, args, kwargs, func(a, c float64) bool { return c > a })
}

func seriesExtreme(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, better func(cur, cand float64) bool) (starlark.Value, error) {
	vals, err := seriesNumeric(b, args, kwargs)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%s: empty series", b.Name())
	}
	best := vals[0]
	for _, v := range vals[1:] {
		if better(best, v) {
			best = v
		}
	}
	return starlark.Float(best), nil
}

// seriesNumeric unpacks a no-argument aggregate call and coerces the series
// values to floats, skipping nils.
func seriesNumeric(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) ([]float64, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	s := b.Receiver().(*Series)

	vals := make([]float64, 0, len(s.vals))
	for _, cell := range s.vals {
		if cell == nil {
			continue
		}
		v, ok := asFloat(cell)
		if !ok {
			return nil, fmt.Errorf("%s: series %q is not numeric", b.Name(), s.name)
		}
		vals = append(vals, v)
	}
	return vals, nil
}
