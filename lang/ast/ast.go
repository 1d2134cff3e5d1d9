// Package ast defines the abstract syntax tree produced by the Ripple
// parser: declarations (source/stream/sink) and the tagged union of
// expression nodes they contain.
package ast

// Span marks the source range a node was parsed from.
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol      int
}

// DeclKind distinguishes the three declaration forms.
type DeclKind int

const (
	DeclSource DeclKind = iota
	DeclStream
	DeclSink
)

func (k DeclKind) String() string {
	switch k {
	case DeclSource:
		return "source"
	case DeclStream:
		return "stream"
	case DeclSink:
		return "sink"
	default:
		return "decl?"
	}
}

// ValueTypeAnnot is the optional static type annotation on a source
// declaration (`source A: int;`). It has no effect beyond documentation; the
// runtime value model stays dynamically tagged.
type ValueTypeAnnot int

const (
	AnnotNone ValueTypeAnnot = iota
	AnnotInt
	AnnotFloat
	AnnotBool
	AnnotString
)

// Decl is one top-level declaration: a source, stream, or sink.
type Decl struct {
	Span Span

	DeclKind DeclKind
	Name     string

	// Type is only meaningful for DeclSource; AnnotNone otherwise.
	Type ValueTypeAnnot

	// Init is the optional source initializer (`:= expr`) or the mandatory
	// stream/sink expression (`<- expr`). Sources may have a nil Init.
	Init Expr
}

// Expr is the marker interface implemented by every expression node.
type Expr interface {
	exprNode()
	Pos() Span
}

type Base struct{ Span Span }

func (Base) exprNode()   {}
func (b Base) Pos() Span { return b.Span }

// BaseExprOf constructs the embeddable Base carrying the given span. Parser
// code uses this to fill in the Base field of each concrete node literal.
func BaseExprOf(span Span) Base { return Base{Span: span} }

// LitKind distinguishes the literal tag carried by a Literal node.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitBool
)

// Literal is a literal int/float/string/bool value.
type Literal struct {
	Base
	Kind LitKind
	I    int
	F    float64
	S    string
	B    bool
}

// Ident is a reference to a declared name or a lambda parameter.
type Ident struct {
	Base
	Name string
}

// BinOp enumerates the binary operators.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpAnd
	OpOr
)

// Binary is a binary operator expression.
type Binary struct {
	Base
	Op          BinOp
	Left, Right Expr
}

// UnOp enumerates the unary operators.
type UnOp int

const (
	OpNeg UnOp = iota
	OpNot
)

// Unary is a unary operator expression.
type Unary struct {
	Base
	Op      UnOp
	Operand Expr
}

// If is the `if cond then then else else end` expression form.
type If struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

// Call is a built-in function call: a name and its argument expressions.
// User-defined functions do not exist; Name must be one of the built-ins the
// engine dispatches on, and an unknown name is reported when the call is
// evaluated.
type Call struct {
	Base
	Name string
	Args []Expr
}

// Lambda is an anonymous function passed to a higher-order built-in
// (`fold`, `filter`, `count_if`). It is never itself a graph node.
type Lambda struct {
	Base
	Params []string
	Body   Expr
}

// Pre is the `pre(name, initial)` temporal operator. Name is not treated as
// a dependency for cycle-detection purposes (see package analyzer); Initial
// is.
type Pre struct {
	Base
	Name    string
	Initial Expr
}

// Fold is the `fold(streamExpr, initial, lambda)` stateful reduction.
// Lambda must have exactly two parameters, (accumulator, element).
type Fold struct {
	Base
	Source  Expr
	Initial Expr
	Lambda  *Lambda
}

// exprNode and Pos are promoted from Base for every concrete node type
// above; no further declarations are needed here.
