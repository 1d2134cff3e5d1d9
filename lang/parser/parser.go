// Package parser builds an ast.Decl list from a Ripple token stream using
// recursive descent with Pratt-style binding powers for the expression
// grammar.
package parser

import (
	"strconv"

	"github.com/dekarrin/ripple/lang/ast"
	"github.com/dekarrin/ripple/lang/lexer"
	"github.com/dekarrin/ripple/lang/rerr"
	"github.com/dekarrin/ripple/lang/token"
)

// Parse lexes and parses a full Ripple program, returning its declaration
// list or the first ParseError (or LexError) encountered.
func Parse(src string) ([]*ast.Decl, *rerr.Error) {
	toks, lexErr := lexer.Tokenize(src)
	if lexErr != nil {
		return nil, lexErr
	}
	p := &parser{toks: toks, lines: splitLines(src)}
	return p.program()
}

func splitLines(src string) []string {
	lines := []string{""}
	line := 0
	for _, r := range src {
		if r == '\n' {
			lines = append(lines, "")
			line++
			continue
		}
		lines[line] += string(r)
	}
	return lines
}

type parser struct {
	toks []token.Token
	pos  int

	lines []string
}

func (p *parser) sourceLine(line int) string {
	if line < 1 || line > len(p.lines) {
		return ""
	}
	return p.lines[line-1]
}

func (p *parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *parser) peekKind() token.Kind {
	return p.toks[p.pos].Kind
}

func (p *parser) next() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errAt(tok token.Token, format string, args ...interface{}) *rerr.Error {
	return rerr.FromToken(rerr.KindParse, tok, p.sourceLine(tok.Line), format, args...)
}

func (p *parser) expect(k token.Kind) (token.Token, *rerr.Error) {
	if p.peekKind() != k {
		return token.Token{}, p.errAt(p.peek(), "expected %s, found %s %q", k, p.peekKind(), p.peek().Lexeme)
	}
	return p.next(), nil
}

func (p *parser) program() ([]*ast.Decl, *rerr.Error) {
	var decls []*ast.Decl
	for p.peekKind() != token.EOF {
		d, err := p.decl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

func (p *parser) decl() (*ast.Decl, *rerr.Error) {
	switch p.peekKind() {
	case token.KwSource:
		return p.sourceDecl()
	case token.KwStream:
		return p.streamDecl()
	case token.KwSink:
		return p.sinkDecl()
	default:
		return nil, p.errAt(p.peek(), "expected 'source', 'stream', or 'sink', found %s %q", p.peekKind(), p.peek().Lexeme)
	}
}

func (p *parser) sourceDecl() (*ast.Decl, *rerr.Error) {
	start := p.next() // 'source'
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	d := &ast.Decl{
		DeclKind: ast.DeclSource,
		Name:     name.Lexeme,
		Type:     ast.AnnotNone,
	}

	if p.peekKind() == token.Colon {
		p.next()
		typeTok := p.next()
		switch typeTok.Kind {
		case token.KwInt:
			d.Type = ast.AnnotInt
		case token.KwFloat:
			d.Type = ast.AnnotFloat
		case token.KwBool:
			d.Type = ast.AnnotBool
		case token.KwString:
			d.Type = ast.AnnotString
		default:
			return nil, p.errAt(typeTok, "expected a type name, found %s %q", typeTok.Kind, typeTok.Lexeme)
		}
	}

	if p.peekKind() == token.ColonEq {
		p.next()
		init, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		d.Init = init
	}

	end, err := p.expect(token.Semi)
	if err != nil {
		return nil, err
	}
	d.Span = spanOf(start, end)
	return d, nil
}

func (p *parser) streamDecl() (*ast.Decl, *rerr.Error) {
	return p.arrowDecl(ast.DeclStream, token.KwStream)
}

func (p *parser) sinkDecl() (*ast.Decl, *rerr.Error) {
	return p.arrowDecl(ast.DeclSink, token.KwSink)
}

func (p *parser) arrowDecl(kind ast.DeclKind, kw token.Kind) (*ast.Decl, *rerr.Error) {
	start := p.next() // keyword
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Arrow); err != nil {
		return nil, err
	}
	body, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	end, err := p.expect(token.Semi)
	if err != nil {
		return nil, err
	}
	return &ast.Decl{
		Span:     spanOf(start, end),
		DeclKind: kind,
		Name:     name.Lexeme,
		Init:     body,
	}, nil
}

func spanOf(start, end token.Token) ast.Span {
	return ast.Span{StartLine: start.Line, StartCol: start.Col, EndLine: end.Line, EndCol: end.Col}
}

// binding powers, lowest to highest, per spec.md's precedence table.
const (
	bpNone = iota
	bpOr
	bpAnd
	bpCompare
	bpAdd
	bpMul
	bpUnary
)

var binOpOf = map[token.Kind]ast.BinOp{
	token.Plus:    ast.OpAdd,
	token.Minus:   ast.OpSub,
	token.Star:    ast.OpMul,
	token.Slash:   ast.OpDiv,
	token.Percent: ast.OpMod,
	token.EqEq:    ast.OpEq,
	token.NotEq:   ast.OpNotEq,
	token.Lt:      ast.OpLt,
	token.LtEq:    ast.OpLtEq,
	token.Gt:      ast.OpGt,
	token.GtEq:    ast.OpGtEq,
	token.AndAnd:  ast.OpAnd,
	token.OrOr:    ast.OpOr,
}

func lbp(k token.Kind) int {
	switch k {
	case token.OrOr:
		return bpOr
	case token.AndAnd:
		return bpAnd
	case token.EqEq, token.NotEq, token.Lt, token.LtEq, token.Gt, token.GtEq:
		return bpCompare
	case token.Plus, token.Minus:
		return bpAdd
	case token.Star, token.Slash, token.Percent:
		return bpMul
	default:
		return bpNone
	}
}

// expr parses an expression with precedence climbing: it keeps absorbing
// infix operators whose binding power exceeds rbp.
func (p *parser) expr(rbp int) (ast.Expr, *rerr.Error) {
	left, err := p.prefix()
	if err != nil {
		return nil, err
	}

	for rbp < lbp(p.peekKind()) {
		opTok := p.next()
		right, err := p.expr(lbp(opTok.Kind))
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{
			Base:  ast.BaseExprOf(spanOf(opTok, opTok)),
			Op:    binOpOf[opTok.Kind],
			Left:  left,
			Right: right,
		}
	}
	return left, nil
}

func (p *parser) prefix() (ast.Expr, *rerr.Error) {
	tok := p.peek()

	switch tok.Kind {
	case token.Minus:
		p.next()
		operand, err := p.expr(bpUnary)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Base: ast.BaseExprOf(spanOf(tok, tok)), Op: ast.OpNeg, Operand: operand}, nil
	case token.Bang:
		p.next()
		operand, err := p.expr(bpUnary)
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Base: ast.BaseExprOf(spanOf(tok, tok)), Op: ast.OpNot, Operand: operand}, nil
	case token.LParen:
		return p.groupOrLambda()
	case token.Int:
		p.next()
		n, convErr := strconv.Atoi(tok.Lexeme)
		if convErr != nil {
			return nil, p.errAt(tok, "malformed integer literal %q", tok.Lexeme)
		}
		return &ast.Literal{Base: ast.BaseExprOf(spanOf(tok, tok)), Kind: ast.LitInt, I: n}, nil
	case token.Float:
		p.next()
		f, convErr := strconv.ParseFloat(tok.Lexeme, 64)
		if convErr != nil {
			return nil, p.errAt(tok, "malformed float literal %q", tok.Lexeme)
		}
		return &ast.Literal{Base: ast.BaseExprOf(spanOf(tok, tok)), Kind: ast.LitFloat, F: f}, nil
	case token.String:
		p.next()
		return &ast.Literal{Base: ast.BaseExprOf(spanOf(tok, tok)), Kind: ast.LitString, S: tok.Lexeme}, nil
	case token.Bool:
		p.next()
		return &ast.Literal{Base: ast.BaseExprOf(spanOf(tok, tok)), Kind: ast.LitBool, B: equalFoldTrue(tok.Lexeme)}, nil
	case token.KwIf:
		return p.ifExpr()
	case token.KwPre:
		return p.preExpr()
	case token.KwFold:
		return p.foldExpr()
	case token.Ident:
		return p.identOrCall()
	default:
		return nil, p.errAt(tok, "unexpected %s %q (expected start of an expression)", tok.Kind, tok.Lexeme)
	}
}

func equalFoldTrue(s string) bool {
	return len(s) > 0 && (s[0] == 't' || s[0] == 'T')
}

func (p *parser) identOrCall() (ast.Expr, *rerr.Error) {
	name := p.next()
	if p.peekKind() != token.LParen {
		return &ast.Ident{Base: ast.BaseExprOf(spanOf(name, name)), Name: name.Lexeme}, nil
	}

	p.next() // '('
	var args []ast.Expr
	if p.peekKind() != token.RParen {
		for {
			a, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.peekKind() != token.Comma {
				break
			}
			p.next()
		}
	}
	end, err := p.expect(token.RParen)
	if err != nil {
		return nil, err
	}
	return &ast.Call{Base: ast.BaseExprOf(spanOf(name, end)), Name: name.Lexeme, Args: args}, nil
}

// groupOrLambda disambiguates `( expr )` from `(p1, p2, ...) => expr` by
// scanning ahead for the matching close-paren and checking what follows it.
func (p *parser) groupOrLambda() (ast.Expr, *rerr.Error) {
	if p.looksLikeLambda() {
		return p.lambda()
	}

	p.next() // '('
	inner, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return inner, nil
}

// looksLikeLambda scans forward from the current '(' to its matching ')'
// and reports whether a '=>' immediately follows. It does not consume any
// tokens.
func (p *parser) looksLikeLambda() bool {
	depth := 0
	i := p.pos
	for i < len(p.toks) {
		switch p.toks[i].Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return i+1 < len(p.toks) && p.toks[i+1].Kind == token.FatArrow
			}
		case token.EOF:
			return false
		}
		i++
	}
	return false
}

func (p *parser) lambda() (*ast.Lambda, *rerr.Error) {
	start, err := p.expect(token.LParen)
	if err != nil {
		return nil, err
	}

	var params []string
	if p.peekKind() != token.RParen {
		for {
			id, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			params = append(params, id.Lexeme)
			if p.peekKind() != token.Comma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.FatArrow); err != nil {
		return nil, err
	}

	body, err := p.expr(0)
	if err != nil {
		return nil, err
	}

	return &ast.Lambda{
		Base: ast.BaseExprOf(spanOf(start, start)),
		Params:   params,
		Body:     body,
	}, nil
}

func (p *parser) ifExpr() (ast.Expr, *rerr.Error) {
	start := p.next() // 'if'
	cond, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwThen); err != nil {
		return nil, err
	}
	thenE, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwElse); err != nil {
		return nil, err
	}
	elseE, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	end, err := p.expect(token.KwEnd)
	if err != nil {
		return nil, err
	}
	return &ast.If{
		Base: ast.BaseExprOf(spanOf(start, end)),
		Cond:     cond,
		Then:     thenE,
		Else:     elseE,
	}, nil
}

func (p *parser) preExpr() (ast.Expr, *rerr.Error) {
	start := p.next() // 'pre'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Comma); err != nil {
		return nil, err
	}
	initial, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	end, err := p.expect(token.RParen)
	if err != nil {
		return nil, err
	}
	return &ast.Pre{
		Base: ast.BaseExprOf(spanOf(start, end)),
		Name:     name.Lexeme,
		Initial:  initial,
	}, nil
}

func (p *parser) foldExpr() (ast.Expr, *rerr.Error) {
	start := p.next() // 'fold'
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	source, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Comma); err != nil {
		return nil, err
	}
	initial, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Comma); err != nil {
		return nil, err
	}

	if p.peekKind() != token.LParen || !p.looksLikeLambda() {
		return nil, p.errAt(p.peek(), "fold requires a two-parameter lambda as its third argument")
	}
	lam, err := p.lambda()
	if err != nil {
		return nil, err
	}
	if len(lam.Params) != 2 {
		return nil, p.errAt(p.peek(), "fold's lambda must take exactly 2 parameters (accumulator, element), got %d", len(lam.Params))
	}

	end, err := p.expect(token.RParen)
	if err != nil {
		return nil, err
	}
	return &ast.Fold{
		Base: ast.BaseExprOf(spanOf(start, end)),
		Source:   source,
		Initial:  initial,
		Lambda:   lam,
	}, nil
}
