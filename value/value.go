// Package value implements Ripple's dynamically-tagged value union: int,
// float, bool, string, null, list, and table. Arithmetic and comparison
// dispatch on the tag pair.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tag identifies which field of a Value is meaningful.
type Tag int

const (
	Null Tag = iota
	Int
	Float
	Bool
	String
	List
	Table
)

func (t Tag) String() string {
	switch t {
	case Null:
		return "null"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case List:
		return "list"
	case Table:
		return "table"
	default:
		return "tag?"
	}
}

// Row is one row of a Table: a flat slice of cell values.
type Row []Value

// Tab is the payload of a Table-tagged Value: a list of rows with an
// optional header row. A nil Header means the table has no header.
type Tab struct {
	Header []string
	Rows   []Row
}

// Value is Ripple's single dynamically-tagged value type. Only the field
// indicated by Tag is meaningful; the zero Value is Null.
type Value struct {
	tag   Tag
	i     int
	f     float64
	b     bool
	s     string
	list  []Value
	table Tab
}

// NullValue is the singular null value.
var NullValue = Value{tag: Null}

func OfInt(i int) Value       { return Value{tag: Int, i: i} }
func OfFloat(f float64) Value { return Value{tag: Float, f: f} }
func OfBool(b bool) Value     { return Value{tag: Bool, b: b} }
func OfString(s string) Value { return Value{tag: String, s: s} }
func OfList(l []Value) Value  { return Value{tag: List, list: l} }
func OfTable(t Tab) Value     { return Value{tag: Table, table: t} }

// Tag returns the value's dynamic tag.
func (v Value) Tag() Tag { return v.tag }

// Int returns the underlying int. Only meaningful when Tag() == Int.
func (v Value) Int() int { return v.i }

// Float returns the underlying float64. Only meaningful when Tag() == Float.
func (v Value) Float() float64 { return v.f }

// Bool returns the underlying bool. Only meaningful when Tag() == Bool.
func (v Value) Bool() bool { return v.b }

// Str returns the underlying string. Only meaningful when Tag() == String.
func (v Value) Str() string { return v.s }

// List returns the underlying element slice. Only meaningful when Tag() ==
// List.
func (v Value) List() []Value { return v.list }

// Table returns the underlying tabular payload. Only meaningful when Tag()
// == Table.
func (v Value) Table() Tab { return v.table }

// IsNumeric reports whether v is an Int or a Float.
func (v Value) IsNumeric() bool {
	return v.tag == Int || v.tag == Float
}

// AsFloat coerces a numeric value to float64. Panics if not numeric; callers
// must check IsNumeric first (the engine only calls this from arithmetic
// paths that have already dispatched on tag).
func (v Value) AsFloat() float64 {
	switch v.tag {
	case Int:
		return float64(v.i)
	case Float:
		return v.f
	default:
		panic(fmt.Sprintf("AsFloat: not numeric: %s", v.tag))
	}
}

// String renders v for diagnostics and the --ast/debug renderers. It is not
// used for TunaScript-style text concatenation; String() on a string Value
// returns the raw string without quotes.
func (v Value) String() string {
	switch v.tag {
	case Null:
		return "null"
	case Int:
		return strconv.Itoa(v.i)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(v.b)
	case String:
		return v.s
	case List:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Table:
		return fmt.Sprintf("table(%d rows)", len(v.table.Rows))
	default:
		return "?"
	}
}

// Equal implements the tagged, structural equality used for change
// detection (spec.md §4.5) and the `==`/`!=` operators. Floats compare
// with Go's ==, so 0.0 equals -0.0, with NaN always considered different from anything including
// itself — the "always different" resolution of the NaN open question (see
// DESIGN.md), which guarantees propagation always makes progress instead of
// silently wedging on a NaN-valued stream.
func (v Value) Equal(o Value) bool {
	if v.tag != o.tag {
		return false
	}
	switch v.tag {
	case Null:
		return true
	case Int:
		return v.i == o.i
	case Float:
		if math.IsNaN(v.f) || math.IsNaN(o.f) {
			return false
		}
		return v.f == o.f
	case Bool:
		return v.b == o.b
	case String:
		return v.s == o.s
	case List:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case Table:
		return tabEqual(v.table, o.table)
	default:
		return false
	}
}

func tabEqual(a, b Tab) bool {
	if len(a.Rows) != len(b.Rows) {
		return false
	}
	if len(a.Header) != len(b.Header) {
		return false
	}
	for i := range a.Header {
		if a.Header[i] != b.Header[i] {
			return false
		}
	}
	for i := range a.Rows {
		if len(a.Rows[i]) != len(b.Rows[i]) {
			return false
		}
		for j := range a.Rows[i] {
			if !a.Rows[i][j].Equal(b.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}
