// Package rerr holds the structured diagnostics produced at every stage of
// the Ripple pipeline: lex errors, parse errors, analyzer errors, and the
// runtime errors surfaced from a push. Each carries a source span (where
// applicable) and can render itself with three lines of context and a
// caret under the offending column.
package rerr

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/ripple/lang/token"
)

// Kind identifies which of the error kinds in the error-handling table an
// error belongs to.
type Kind string

const (
	KindLex          Kind = "LexError"
	KindParse        Kind = "ParseError"
	KindDuplicate    Kind = "DuplicateDefinition"
	KindUndefined    Kind = "UndefinedReference"
	KindCircular     Kind = "CircularDependency"
	KindType         Kind = "TypeMismatch"
	KindDivByZero    Kind = "DivisionByZero"
	KindIndexRange   Kind = "IndexOutOfRange"
	KindIO           Kind = "IOError"
	KindEval         Kind = "EvalError"
	KindStepBudget   Kind = "StepBudgetExceeded"
)

// Error is a single structured diagnostic. The zero-value is not meaningful;
// construct with the New* helpers below.
type Error struct {
	Kind    Kind
	Message string

	// Source position, if known. Line and Col are 1-indexed; Line == 0 means
	// no position is attached (e.g. a whole-program error).
	Line int
	Col  int

	// SourceLine is the exact text of the offending line, used to render the
	// three-line context block. It may be empty if unavailable.
	SourceLine string

	// Path, when set, names extra identifiers relevant to the error (a cycle
	// path, the undefined name, etc). Kept as a plain slice so formatting
	// stays simple.
	Path []string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: line %d, col %d: %s", e.Kind, e.Line, e.Col, e.Message)
}

// Headline is the single-line, machine-parseable summary of the error.
func (e *Error) Headline() string {
	return e.Error()
}

// FullMessage renders the error along with its source context and a caret
// under the offending column, wrapped to a fixed width.
func (e *Error) FullMessage() string {
	msg := e.Headline()
	if e.SourceLine != "" {
		msg = e.contextBlock() + "\n" + msg
	}
	return rosed.Edit(msg).Wrap(100).String()
}

func (e *Error) contextBlock() string {
	cursor := strings.Repeat(" ", max(0, e.Col-1)) + "^"
	return e.SourceLine + "\n" + cursor
}

// FromToken builds an Error anchored at tok's position.
func FromToken(kind Kind, tok token.Token, sourceLine, format string, args ...interface{}) *Error {
	return &Error{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		Line:       tok.Line,
		Col:        tok.Col,
		SourceLine: sourceLine,
	}
}

// New builds a position-less Error (used for whole-program or wrapper
// errors, such as the EvalError returned from a push).
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Report collects every diagnostic raised while compiling a single program.
// The analyzer may accumulate several DuplicateDefinition/UndefinedReference
// errors and several CircularDependency errors (one per simple cycle) before
// giving up; the lexer and parser stop at the first error.
type Report struct {
	Errors []*Error
}

// NewReport returns an empty Report ready for Add.
func NewReport() *Report {
	return &Report{}
}

func (r *Report) Add(e *Error) {
	r.Errors = append(r.Errors, e)
}

func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

func (r *Report) Error() string {
	var sb strings.Builder
	for i, e := range r.Errors {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.FullMessage())
	}
	return sb.String()
}
