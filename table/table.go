// Package table implements Ripple's tabular operations: col, row, len,
// sum, avg, min, max, count_if, and filter. col and row take a
// value.Value tagged table and len takes a table or a list; sum, avg,
// min, max, count_if and filter take a list, such as a column returned by
// col, and reject a table.
package table

import (
	"fmt"

	"github.com/dekarrin/ripple/value"
)

// ErrKind distinguishes the distinct ways a tabular builtin can fail, so
// the engine can wrap them with the correct rerr.Kind.
type ErrKind int

const (
	ErrNone ErrKind = iota
	ErrType
	ErrRange
)

// OpError is returned by the functions in this package when an operand
// has the wrong shape or an index falls outside the table's bounds.
type OpError struct {
	Kind ErrKind
	Msg  string
}

func (e *OpError) Error() string { return e.Msg }

func typeErr(format string, args ...interface{}) *OpError {
	return &OpError{Kind: ErrType, Msg: fmt.Sprintf(format, args...)}
}

func rangeErr(format string, args ...interface{}) *OpError {
	return &OpError{Kind: ErrRange, Msg: fmt.Sprintf(format, args...)}
}

// Col returns column n (0-indexed) of t, as a list Value holding one
// element per row in row order. The column count is taken from the
// header when t has one, otherwise from the width of its first row.
func Col(t value.Value, n int) (value.Value, *OpError) {
	if t.Tag() != value.Table {
		return value.NullValue, typeErr("col: expected a table, got %s", t.Tag())
	}
	tab := t.Table()
	width := len(tab.Header)
	if width == 0 && len(tab.Rows) > 0 {
		width = len(tab.Rows[0])
	}
	if n < 0 || n >= width {
		return value.NullValue, rangeErr("col: index %d out of range [0, %d)", n, width)
	}
	out := make([]value.Value, len(tab.Rows))
	for i, r := range tab.Rows {
		out[i] = r[n]
	}
	return value.OfList(out), nil
}

// Row returns the n-th row (0-indexed) of t as a list Value.
func Row(t value.Value, n int) (value.Value, *OpError) {
	if t.Tag() != value.Table {
		return value.NullValue, typeErr("row: expected a table, got %s", t.Tag())
	}
	tab := t.Table()
	if n < 0 || n >= len(tab.Rows) {
		return value.NullValue, rangeErr("row: index %d out of range [0, %d)", n, len(tab.Rows))
	}
	return value.OfList(append([]value.Value(nil), tab.Rows[n]...)), nil
}

// Len returns the number of rows in t, or the number of elements if t is a
// list.
func Len(t value.Value) (int, *OpError) {
	switch t.Tag() {
	case value.Table:
		return len(t.Table().Rows), nil
	case value.List:
		return len(t.List()), nil
	default:
		return 0, typeErr("len: expected a table or list, got %s", t.Tag())
	}
}

// elements extracts a numeric slice from either a list or a single table
// column selected by Col; sum/avg/min/max all operate on lists of numbers.
func elements(v value.Value) ([]value.Value, *OpError) {
	switch v.Tag() {
	case value.List:
		return v.List(), nil
	default:
		return nil, typeErr("expected a list, got %s", v.Tag())
	}
}

// Sum adds every numeric element of a list. Non-numeric elements are a
// type error.
func Sum(v value.Value) (value.Value, *OpError) {
	els, err := elements(v)
	if err != nil {
		return value.NullValue, err
	}
	allInt := true
	fsum := 0.0
	isum := 0
	for _, e := range els {
		if !e.IsNumeric() {
			return value.NullValue, typeErr("sum: non-numeric element %s", e.Tag())
		}
		if e.Tag() != value.Int {
			allInt = false
		}
		fsum += e.AsFloat()
		if e.Tag() == value.Int {
			isum += e.Int()
		}
	}
	if allInt {
		return value.OfInt(isum), nil
	}
	return value.OfFloat(fsum), nil
}

// Avg computes the arithmetic mean of a list's numeric elements. An empty
// list has average 0.0 rather than raising a divide-by-zero error.
func Avg(v value.Value) (value.Value, *OpError) {
	els, err := elements(v)
	if err != nil {
		return value.NullValue, err
	}
	if len(els) == 0 {
		return value.OfFloat(0.0), nil
	}
	total := 0.0
	for _, e := range els {
		if !e.IsNumeric() {
			return value.NullValue, typeErr("avg: non-numeric element %s", e.Tag())
		}
		total += e.AsFloat()
	}
	return value.OfFloat(total / float64(len(els))), nil
}

// Min returns the smallest element of a non-empty numeric list.
func Min(v value.Value) (value.Value, *OpError) {
	return extreme(v, "min", func(a, b float64) bool { return a < b })
}

// Max returns the largest element of a non-empty numeric list.
func Max(v value.Value) (value.Value, *OpError) {
	return extreme(v, "max", func(a, b float64) bool { return a > b })
}

func extreme(v value.Value, name string, better func(a, b float64) bool) (value.Value, *OpError) {
	els, err := elements(v)
	if err != nil {
		return value.NullValue, err
	}
	if len(els) == 0 {
		return value.NullValue, rangeErr("%s: empty list", name)
	}
	best := els[0]
	for _, e := range els[1:] {
		if !e.IsNumeric() || !best.IsNumeric() {
			return value.NullValue, typeErr("%s: non-numeric element %s", name, e.Tag())
		}
		if better(e.AsFloat(), best.AsFloat()) {
			best = e
		}
	}
	return best, nil
}

// CountIf counts how many elements of a list satisfy pred.
func CountIf(v value.Value, pred func(value.Value) (bool, error)) (value.Value, error) {
	els, oerr := elements(v)
	if oerr != nil {
		return value.NullValue, oerr
	}
	n := 0
	for _, e := range els {
		ok, err := pred(e)
		if err != nil {
			return value.NullValue, err
		}
		if ok {
			n++
		}
	}
	return value.OfInt(n), nil
}

// Filter returns the subsequence of a list's elements for which pred
// returns true, preserving order.
func Filter(v value.Value, pred func(value.Value) (bool, error)) (value.Value, error) {
	els, oerr := elements(v)
	if oerr != nil {
		return value.NullValue, oerr
	}
	out := make([]value.Value, 0, len(els))
	for _, e := range els {
		ok, err := pred(e)
		if err != nil {
			return value.NullValue, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return value.OfList(out), nil
}
