package engine

import (
	"fmt"
	"path/filepath"

	"github.com/dekarrin/ripple/csvsrc"
	"github.com/dekarrin/ripple/graph"
	"github.com/dekarrin/ripple/lang/ast"
	"github.com/dekarrin/ripple/lang/rerr"
	"github.com/dekarrin/ripple/table"
	"github.com/dekarrin/ripple/value"
)

// resolveCSVPath prepends baseDir to path when path is relative and
// baseDir is set, so a compiled program's load_csv/csv_header calls can
// use paths relative to a configured data directory instead of the
// process's working directory.
func resolveCSVPath(baseDir, path string) string {
	if baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// evalCtx carries everything needed to evaluate one node's Formula: the
// graph it belongs to, the node itself (for pre/fold state keys), and the
// set of lambda-bound names currently shadowing a graph node of the same
// name.
type evalCtx struct {
	g       *graph.Graph
	node    *graph.Node
	bound   map[string]value.Value
	baseDir string
}

func (c *evalCtx) withBound(name string, v value.Value) *evalCtx {
	next := make(map[string]value.Value, len(c.bound)+1)
	for k, val := range c.bound {
		next[k] = val
	}
	next[name] = v
	return &evalCtx{g: c.g, node: c.node, bound: next, baseDir: c.baseDir}
}

// evalError is a plain Go error carrying the rerr.Kind the engine should
// wrap it with; eval never constructs a *rerr.Error directly. The engine
// wraps it with the failing node's name only; no source position is
// attached.
type evalError struct {
	kind rerr.Kind
	msg  string
}

func (e *evalError) Error() string { return e.msg }

func typeErr(format string, args ...interface{}) error {
	return &evalError{kind: rerr.KindType, msg: fmt.Sprintf(format, args...)}
}

func divZeroErr(msg string) error {
	return &evalError{kind: rerr.KindDivByZero, msg: msg}
}

func rangeErr(format string, args ...interface{}) error {
	return &evalError{kind: rerr.KindIndexRange, msg: fmt.Sprintf(format, args...)}
}

func evalErrFrom(err error) error {
	if _, ok := err.(*evalError); ok {
		return err
	}
	return &evalError{kind: rerr.KindEval, msg: err.Error()}
}

// eval walks e and produces its value against ctx.
func eval(ctx *evalCtx, e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return litValue(n), nil
	case *ast.Ident:
		return evalIdent(ctx, n)
	case *ast.Unary:
		return evalUnary(ctx, n)
	case *ast.Binary:
		return evalBinary(ctx, n)
	case *ast.If:
		return evalIf(ctx, n)
	case *ast.Call:
		return evalCall(ctx, n)
	case *ast.Pre:
		return evalPre(ctx, n)
	case *ast.Fold:
		return evalFold(ctx, n)
	default:
		return value.NullValue, typeErr("cannot evaluate expression of type %T", e)
	}
}

func litValue(lit *ast.Literal) value.Value {
	switch lit.Kind {
	case ast.LitInt:
		return value.OfInt(lit.I)
	case ast.LitFloat:
		return value.OfFloat(lit.F)
	case ast.LitString:
		return value.OfString(lit.S)
	case ast.LitBool:
		return value.OfBool(lit.B)
	default:
		return value.NullValue
	}
}

func evalIdent(ctx *evalCtx, id *ast.Ident) (value.Value, error) {
	if v, ok := ctx.bound[id.Name]; ok {
		return v, nil
	}
	n, ok := ctx.g.Nodes[id.Name]
	if !ok {
		return value.NullValue, typeErr("reference to undeclared name %q", id.Name)
	}
	if !n.HasValue {
		return value.NullValue, nil
	}
	return n.Cached, nil
}

func evalUnary(ctx *evalCtx, u *ast.Unary) (value.Value, error) {
	v, err := eval(ctx, u.Operand)
	if err != nil {
		return value.NullValue, err
	}
	switch u.Op {
	case ast.OpNeg:
		switch v.Tag() {
		case value.Int:
			return value.OfInt(-v.Int()), nil
		case value.Float:
			return value.OfFloat(-v.Float()), nil
		default:
			return value.NullValue, typeErr("unary '-' requires a number, got %s", v.Tag())
		}
	case ast.OpNot:
		if v.Tag() != value.Bool {
			return value.NullValue, typeErr("unary 'not' requires a bool, got %s", v.Tag())
		}
		return value.OfBool(!v.Bool()), nil
	default:
		return value.NullValue, typeErr("unknown unary operator")
	}
}

func evalBinary(ctx *evalCtx, b *ast.Binary) (value.Value, error) {
	// && and || short-circuit, so the right operand is evaluated lazily.
	if b.Op == ast.OpAnd || b.Op == ast.OpOr {
		l, err := eval(ctx, b.Left)
		if err != nil {
			return value.NullValue, err
		}
		if l.Tag() != value.Bool {
			return value.NullValue, typeErr("'%s' requires bool operands, got %s", binOpSymbol(b.Op), l.Tag())
		}
		if b.Op == ast.OpAnd && !l.Bool() {
			return value.OfBool(false), nil
		}
		if b.Op == ast.OpOr && l.Bool() {
			return value.OfBool(true), nil
		}
		r, err := eval(ctx, b.Right)
		if err != nil {
			return value.NullValue, err
		}
		if r.Tag() != value.Bool {
			return value.NullValue, typeErr("'%s' requires bool operands, got %s", binOpSymbol(b.Op), r.Tag())
		}
		return r, nil
	}

	l, err := eval(ctx, b.Left)
	if err != nil {
		return value.NullValue, err
	}
	r, err := eval(ctx, b.Right)
	if err != nil {
		return value.NullValue, err
	}

	switch b.Op {
	case ast.OpAdd:
		if l.Tag() == value.String || r.Tag() == value.String {
			if l.Tag() != value.String || r.Tag() != value.String {
				return value.NullValue, typeErr("'+' between string and %s is not allowed", otherTag(l, r))
			}
			return value.OfString(l.Str() + r.Str()), nil
		}
		return arith(l, r, "+", func(a, b int) int { return a + b }, func(a, b float64) float64 { return a + b })
	case ast.OpSub:
		return arith(l, r, "-", func(a, b int) int { return a - b }, func(a, b float64) float64 { return a - b })
	case ast.OpMul:
		return arith(l, r, "*", func(a, b int) int { return a * b }, func(a, b float64) float64 { return a * b })
	case ast.OpDiv:
		return divide(l, r)
	case ast.OpMod:
		return modulo(l, r)
	case ast.OpEq:
		return value.OfBool(l.Equal(r)), nil
	case ast.OpNotEq:
		return value.OfBool(!l.Equal(r)), nil
	case ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		return compare(l, r, b.Op)
	default:
		return value.NullValue, typeErr("unknown binary operator")
	}
}

func otherTag(l, r value.Value) value.Tag {
	if l.Tag() == value.String {
		return r.Tag()
	}
	return l.Tag()
}

func binOpSymbol(op ast.BinOp) string {
	switch op {
	case ast.OpAnd:
		return "&&"
	case ast.OpOr:
		return "||"
	default:
		return "?"
	}
}

func arith(l, r value.Value, sym string, iop func(a, b int) int, fop func(a, b float64) float64) (value.Value, error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return value.NullValue, typeErr("'%s' requires numbers, got %s and %s", sym, l.Tag(), r.Tag())
	}
	if l.Tag() == value.Int && r.Tag() == value.Int {
		return value.OfInt(iop(l.Int(), r.Int())), nil
	}
	return value.OfFloat(fop(l.AsFloat(), r.AsFloat())), nil
}

func divide(l, r value.Value) (value.Value, error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return value.NullValue, typeErr("'/' requires numbers, got %s and %s", l.Tag(), r.Tag())
	}
	if l.Tag() == value.Int && r.Tag() == value.Int {
		if r.Int() == 0 {
			return value.NullValue, divZeroErr("division by zero")
		}
		return value.OfFloat(float64(l.Int()) / float64(r.Int())), nil
	}
	if r.AsFloat() == 0 {
		return value.NullValue, divZeroErr("division by zero")
	}
	return value.OfFloat(l.AsFloat() / r.AsFloat()), nil
}

func modulo(l, r value.Value) (value.Value, error) {
	if l.Tag() != value.Int || r.Tag() != value.Int {
		return value.NullValue, typeErr("'%%' requires ints, got %s and %s", l.Tag(), r.Tag())
	}
	if r.Int() == 0 {
		return value.NullValue, divZeroErr("modulo by zero")
	}
	return value.OfInt(l.Int() % r.Int()), nil
}

func compare(l, r value.Value, op ast.BinOp) (value.Value, error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return value.NullValue, typeErr("comparison requires numbers, got %s and %s", l.Tag(), r.Tag())
	}
	a, b := l.AsFloat(), r.AsFloat()
	switch op {
	case ast.OpLt:
		return value.OfBool(a < b), nil
	case ast.OpLtEq:
		return value.OfBool(a <= b), nil
	case ast.OpGt:
		return value.OfBool(a > b), nil
	case ast.OpGtEq:
		return value.OfBool(a >= b), nil
	default:
		return value.NullValue, typeErr("unknown comparison operator")
	}
}

func evalIf(ctx *evalCtx, n *ast.If) (value.Value, error) {
	c, err := eval(ctx, n.Cond)
	if err != nil {
		return value.NullValue, err
	}
	if c.Tag() != value.Bool {
		return value.NullValue, typeErr("if condition must be bool, got %s", c.Tag())
	}
	if c.Bool() {
		return eval(ctx, n.Then)
	}
	return eval(ctx, n.Else)
}

func evalPre(ctx *evalCtx, p *ast.Pre) (value.Value, error) {
	if v, seeded := ctx.node.PreState(p); seeded {
		return v, nil
	}
	return eval(ctx, p.Initial)
}

func evalFold(ctx *evalCtx, f *ast.Fold) (value.Value, error) {
	src, err := eval(ctx, f.Source)
	if err != nil {
		return value.NullValue, err
	}
	acc, seeded := ctx.node.FoldState(f)
	if !seeded {
		acc, err = eval(ctx, f.Initial)
		if err != nil {
			return value.NullValue, err
		}
	}
	next, err := callLambda(ctx, f.Lambda, []value.Value{acc, src})
	if err != nil {
		return value.NullValue, err
	}
	ctx.node.SetFoldState(f, next)
	return next, nil
}

func callLambda(ctx *evalCtx, lam *ast.Lambda, args []value.Value) (value.Value, error) {
	if len(lam.Params) != len(args) {
		return value.NullValue, typeErr("lambda expects %d argument(s), got %d", len(lam.Params), len(args))
	}
	inner := ctx
	for i, p := range lam.Params {
		inner = inner.withBound(p, args[i])
	}
	return eval(inner, lam.Body)
}

// evalCall dispatches a built-in function call. filter and count_if take a
// lambda as their second argument and so are handled here rather than in
// the plain-value builtin table, since they need to call back into eval
// for each element.
func evalCall(ctx *evalCtx, call *ast.Call) (value.Value, error) {
	switch call.Name {
	case "filter", "count_if":
		return evalHigherOrder(ctx, call)
	default:
		args := make([]value.Value, len(call.Args))
		for i, a := range call.Args {
			v, err := eval(ctx, a)
			if err != nil {
				return value.NullValue, err
			}
			args[i] = v
		}
		return dispatchBuiltin(call.Name, args, ctx.baseDir)
	}
}

func evalHigherOrder(ctx *evalCtx, call *ast.Call) (value.Value, error) {
	if len(call.Args) != 2 {
		return value.NullValue, typeErr("%s expects 2 arguments, got %d", call.Name, len(call.Args))
	}
	coll, err := eval(ctx, call.Args[0])
	if err != nil {
		return value.NullValue, err
	}
	lam, ok := call.Args[1].(*ast.Lambda)
	if !ok {
		return value.NullValue, typeErr("%s's second argument must be a lambda", call.Name)
	}

	pred := func(el value.Value) (bool, error) {
		out, err := callLambda(ctx, lam, []value.Value{el})
		if err != nil {
			return false, err
		}
		if out.Tag() != value.Bool {
			return false, typeErr("%s's lambda must return bool, got %s", call.Name, out.Tag())
		}
		return out.Bool(), nil
	}

	switch call.Name {
	case "filter":
		v, err := table.Filter(coll, pred)
		if err != nil {
			return value.NullValue, wrapTableErr(err)
		}
		return v, nil
	case "count_if":
		v, err := table.CountIf(coll, pred)
		if err != nil {
			return value.NullValue, wrapTableErr(err)
		}
		return v, nil
	default:
		return value.NullValue, typeErr("unknown higher-order builtin %q", call.Name)
	}
}

func wrapTableErr(err error) error {
	if oe, ok := err.(*table.OpError); ok {
		if oe.Kind == table.ErrRange {
			return rangeErr("%s", oe.Msg)
		}
		return typeErr("%s", oe.Msg)
	}
	return evalErrFrom(err)
}

func dispatchBuiltin(name string, args []value.Value, baseDir string) (value.Value, error) {
	switch name {
	case "col":
		if len(args) != 2 || args[1].Tag() != value.Int {
			return value.NullValue, typeErr("col(table, index) expects a table and an int")
		}
		v, err := table.Col(args[0], args[1].Int())
		return v, wrapOrNil(err)
	case "row":
		if len(args) != 2 || args[1].Tag() != value.Int {
			return value.NullValue, typeErr("row(table, index) expects a table and an int")
		}
		v, err := table.Row(args[0], args[1].Int())
		return v, wrapOrNil(err)
	case "len":
		if len(args) != 1 {
			return value.NullValue, typeErr("len(x) expects 1 argument")
		}
		n, err := table.Len(args[0])
		if err != nil {
			return value.NullValue, wrapOrNil(err)
		}
		return value.OfInt(n), nil
	case "sum":
		if len(args) != 1 {
			return value.NullValue, typeErr("sum(list) expects 1 argument")
		}
		v, err := table.Sum(args[0])
		return v, wrapOrNil(err)
	case "avg":
		if len(args) != 1 {
			return value.NullValue, typeErr("avg(list) expects 1 argument")
		}
		v, err := table.Avg(args[0])
		return v, wrapOrNil(err)
	case "min":
		if len(args) != 1 {
			return value.NullValue, typeErr("min(list) expects 1 argument")
		}
		v, err := table.Min(args[0])
		return v, wrapOrNil(err)
	case "max":
		if len(args) != 1 {
			return value.NullValue, typeErr("max(list) expects 1 argument")
		}
		v, err := table.Max(args[0])
		return v, wrapOrNil(err)
	case "load_csv":
		if len(args) != 2 || args[0].Tag() != value.String || args[1].Tag() != value.Bool {
			return value.NullValue, typeErr("load_csv(path, hasHeader) expects a string and a bool")
		}
		v, err := csvsrc.Load(resolveCSVPath(baseDir, args[0].Str()), args[1].Bool())
		if err != nil {
			return value.NullValue, &evalError{kind: rerr.KindIO, msg: err.Error()}
		}
		return v, nil
	case "csv_header":
		if len(args) != 1 || args[0].Tag() != value.String {
			return value.NullValue, typeErr("csv_header(path) expects a string")
		}
		h, err := csvsrc.Header(resolveCSVPath(baseDir, args[0].Str()))
		if err != nil {
			return value.NullValue, &evalError{kind: rerr.KindIO, msg: err.Error()}
		}
		out := make([]value.Value, len(h))
		for i, s := range h {
			out[i] = value.OfString(s)
		}
		return value.OfList(out), nil
	default:
		return value.NullValue, typeErr("unknown builtin %q", name)
	}
}

func wrapOrNil(err *table.OpError) error {
	if err == nil {
		return nil
	}
	return wrapTableErr(err)
}
