// Package lexer turns Ripple source text into a stream of tokens.
package lexer

import (
	"strings"
	"unicode"

	"github.com/dekarrin/ripple/lang/rerr"
	"github.com/dekarrin/ripple/lang/token"
)

// Lexer scans a single source text into tokens on demand. Zero-value is not
// usable; construct with New.
type Lexer struct {
	src   []rune
	pos   int
	line  int
	col   int
	lines []string
}

// New creates a Lexer over the given source text.
func New(src string) *Lexer {
	return &Lexer{
		src:   []rune(src),
		pos:   0,
		line:  1,
		col:   1,
		lines: strings.Split(src, "\n"),
	}
}

// Tokenize scans the entire source and returns every token, including a
// trailing token.EOF. It stops and returns the first LexError encountered.
func Tokenize(src string) ([]token.Token, *rerr.Error) {
	lx := New(src)
	var toks []token.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) sourceLine(line int) string {
	if line < 1 || line > len(l.lines) {
		return ""
	}
	return l.lines[line-1]
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) rune {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) lexErr(line, col int, format string, args ...interface{}) *rerr.Error {
	return rerr.FromToken(rerr.KindLex, token.Token{Line: line, Col: col}, l.sourceLine(line), format, args...)
}

// Next scans and returns the single next token.
func (l *Lexer) Next() (token.Token, *rerr.Error) {
	l.skipWhitespaceAndComments()

	startLine, startCol := l.line, l.col

	if l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Line: startLine, Col: startCol}, nil
	}

	r := l.peek()

	switch {
	case unicode.IsDigit(r):
		return l.lexNumber(startLine, startCol)
	case r == '"':
		return l.lexString(startLine, startCol)
	case isIdentStart(r):
		return l.lexIdent(startLine, startCol)
	default:
		return l.lexSymbol(startLine, startCol)
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.src) {
		r := l.peek()
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			l.advance()
			continue
		}
		if r == '/' && l.peekAt(1) == '/' {
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentCont(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (l *Lexer) lexIdent(line, col int) (token.Token, *rerr.Error) {
	var sb strings.Builder
	for l.pos < len(l.src) && isIdentCont(l.peek()) {
		sb.WriteRune(l.advance())
	}
	lexeme := sb.String()

	lower := strings.ToLower(lexeme)
	if kw, ok := token.Keywords[lower]; ok {
		if kw == token.KwTrue || kw == token.KwFalse {
			return token.Token{Kind: token.Bool, Lexeme: lexeme, Line: line, Col: col}, nil
		}
		return token.Token{Kind: kw, Lexeme: lexeme, Line: line, Col: col}, nil
	}
	return token.Token{Kind: token.Ident, Lexeme: lexeme, Line: line, Col: col}, nil
}

func (l *Lexer) lexNumber(line, col int) (token.Token, *rerr.Error) {
	var sb strings.Builder
	isFloat := false
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		sb.WriteRune(l.advance())
	}
	if l.peek() == '.' && unicode.IsDigit(l.peekAt(1)) {
		isFloat = true
		sb.WriteRune(l.advance())
		for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
			sb.WriteRune(l.advance())
		}
	}
	kind := token.Int
	if isFloat {
		kind = token.Float
	}
	return token.Token{Kind: kind, Lexeme: sb.String(), Line: line, Col: col}, nil
}

// lexString scans a double-quoted string literal. The only recognized escape
// sequences are \", \\, \n, \t; anything else is passed through literally.
func (l *Lexer) lexString(line, col int) (token.Token, *rerr.Error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token.Token{}, l.lexErr(line, col, "unterminated string literal")
		}
		r := l.peek()
		if r == '"' {
			l.advance()
			return token.Token{Kind: token.String, Lexeme: sb.String(), Line: line, Col: col}, nil
		}
		if r == '\n' {
			return token.Token{}, l.lexErr(line, col, "unterminated string literal")
		}
		if r == '\\' {
			l.advance()
			esc := l.peek()
			switch esc {
			case '"':
				sb.WriteRune('"')
			case '\\':
				sb.WriteRune('\\')
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			default:
				sb.WriteRune('\\')
				sb.WriteRune(esc)
			}
			l.advance()
			continue
		}
		sb.WriteRune(l.advance())
	}
}

// multiChar is a maximal-munch operator table, longest lexemes first so a
// naive scan down the list is correct.
var multiChar = []struct {
	lexeme string
	kind   token.Kind
}{
	{":=", token.ColonEq},
	{"<-", token.Arrow},
	{"==", token.EqEq},
	{"!=", token.NotEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"=>", token.FatArrow},
}

var singleChar = map[rune]token.Kind{
	':': token.Colon,
	';': token.Semi,
	'(': token.LParen,
	')': token.RParen,
	',': token.Comma,
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'<': token.Lt,
	'>': token.Gt,
	'!': token.Bang,
}

func (l *Lexer) lexSymbol(line, col int) (token.Token, *rerr.Error) {
	for _, m := range multiChar {
		if l.matchesHere(m.lexeme) {
			for range m.lexeme {
				l.advance()
			}
			return token.Token{Kind: m.kind, Lexeme: m.lexeme, Line: line, Col: col}, nil
		}
	}

	r := l.peek()
	if kind, ok := singleChar[r]; ok {
		l.advance()
		return token.Token{Kind: kind, Lexeme: string(r), Line: line, Col: col}, nil
	}

	l.advance()
	return token.Token{}, l.lexErr(line, col, "unexpected character %q", r)
}

func (l *Lexer) matchesHere(lexeme string) bool {
	rs := []rune(lexeme)
	for i, r := range rs {
		if l.peekAt(i) != r {
			return false
		}
	}
	return true
}
