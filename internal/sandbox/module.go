package sandbox

// module.go - the "tab" frame-library module exposed to expressions

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// Module is the frame library made available to expressions as "tab".
var Module = &starlarkstruct.Module{
	Name: "tab",
	Members: starlark.StringDict{
		"frame":  starlark.NewBuiltin("tab.frame", tabFrame),
		"concat": starlark.NewBuiltin("tab.concat", tabConcat),
	},
}

// tab.frame(columns, rows) builds a frame from a list of column names and a
// list of rows, each row a list with one value per column.
func tabFrame(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var colList, rowList *starlark.List
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "columns", &colList, "rows", &rowList); err != nil {
		return nil, err
	}

	cols := make([]string, colList.Len())
	for i := 0; i < colList.Len(); i++ {
		s, ok := starlark.AsString(colList.Index(i))
		if !ok {
			return nil, fmt.Errorf("%s: column %d is not a string", b.Name(), i)
		}
		cols[i] = s
	}

	rows := make([][]any, rowList.Len())
	for i := 0; i < rowList.Len(); i++ {
		seq, ok := rowList.Index(i).(starlark.Indexable)
		if !ok {
			return nil, fmt.Errorf("%s: row %d is not a list", b.Name(), i)
		}
		row := make([]any, seq.Len())
		for j := 0; j < seq.Len(); j++ {
			cell, err := starlarkToCell(seq.Index(j))
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", b.Name(), i, err)
			}
			row[j] = cell
		}
		rows[i] = row
	}

	return newDerivedFrame(cols, rows)
}

// tab.concat(*frames) appends frames with identical column lists.
func tabConcat(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	if args.Len() == 0 {
		return nil, fmt.Errorf("%s: requires at least one frame", b.Name())
	}

	var cols []string
	var rows [][]any
	for i := 0; i < args.Len(); i++ {
		f, ok := args.Index(i).(*Frame)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d is not a frame", b.Name(), i+1)
		}
		fcols := f.table.Columns()
		if cols == nil {
			cols = fcols
		} else if !sameColumns(cols, fcols) {
			return nil, fmt.Errorf("%s: frame %d has a different column list", b.Name(), i+1)
		}
		for r := 0; r < f.table.NumRows(); r++ {
			rows = append(rows, f.table.Row(r))
		}
	}

	return newDerivedFrame(cols, rows)
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
