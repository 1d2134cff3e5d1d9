// Package token defines the lexical tokens produced by the Ripple lexer and
// consumed by the parser.
package token

import "fmt"

// Kind identifies the lexical class of a Token.
type Kind int

const (
	EOF Kind = iota
	Error

	Ident
	Int
	Float
	String
	Bool

	// keywords
	KwSource
	KwStream
	KwSink
	KwIf
	KwThen
	KwElse
	KwEnd
	KwPre
	KwFold
	KwTrue
	KwFalse
	KwInt
	KwFloat
	KwBool
	KwString

	// punctuation
	Colon
	ColonEq
	Arrow    // <-
	Semi     // ;
	LParen   // (
	RParen   // )
	Comma    // ,
	FatArrow // =>

	// operators
	Plus
	Minus
	Star
	Slash
	Percent
	EqEq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	AndAnd
	OrOr
	Bang
)

var names = map[Kind]string{
	EOF:      "EOF",
	Error:    "ERROR",
	Ident:    "IDENT",
	Int:      "INT",
	Float:    "FLOAT",
	String:   "STRING",
	Bool:     "BOOL",
	KwSource: "source",
	KwStream: "stream",
	KwSink:   "sink",
	KwIf:     "if",
	KwThen:   "then",
	KwElse:   "else",
	KwEnd:    "end",
	KwPre:    "pre",
	KwFold:   "fold",
	KwTrue:   "true",
	KwFalse:  "false",
	KwInt:    "int",
	KwFloat:  "float",
	KwBool:   "bool",
	KwString: "string",
	Colon:    ":",
	ColonEq:  ":=",
	Arrow:    "<-",
	Semi:     ";",
	LParen:   "(",
	RParen:   ")",
	Comma:    ",",
	FatArrow: "=>",
	Plus:     "+",
	Minus:    "-",
	Star:     "*",
	Slash:    "/",
	Percent:  "%",
	EqEq:     "==",
	NotEq:    "!=",
	Lt:       "<",
	LtEq:     "<=",
	Gt:       ">",
	GtEq:     ">=",
	AndAnd:   "&&",
	OrOr:     "||",
	Bang:     "!",
}

// Keywords maps the reserved-word spelling to its Kind. Built once so the
// lexer can do a plain map lookup after scanning an identifier run.
var Keywords = map[string]Kind{
	"source": KwSource,
	"stream": KwStream,
	"sink":   KwSink,
	"if":     KwIf,
	"then":   KwThen,
	"else":   KwElse,
	"end":    KwEnd,
	"pre":    KwPre,
	"fold":   KwFold,
	"true":   KwTrue,
	"false":  KwFalse,
	"int":    KwInt,
	"float":  KwFloat,
	"bool":   KwBool,
	"string": KwString,
}

// String gives the human-readable name of the Kind, suitable for error
// messages ("expected ';', found 'IDENT'").
func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// Token is a single lexical token with its source position. Line and Col are
// both 1-indexed.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Col    int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Lexeme, t.Line, t.Col)
}
