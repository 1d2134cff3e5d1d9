package engine

import "github.com/dekarrin/ripple/lang/ast"

// walk calls visit on every expression node in e, including e itself,
// recursing into lambda bodies. It does not track lambda-bound names;
// callers that care about scoping (the analyzer) have their own walker.
func walk(e ast.Expr, visit func(ast.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch n := e.(type) {
	case *ast.Literal, *ast.Ident:
		// leaves
	case *ast.Unary:
		walk(n.Operand, visit)
	case *ast.Binary:
		walk(n.Left, visit)
		walk(n.Right, visit)
	case *ast.If:
		walk(n.Cond, visit)
		walk(n.Then, visit)
		walk(n.Else, visit)
	case *ast.Call:
		for _, a := range n.Args {
			walk(a, visit)
		}
	case *ast.Lambda:
		walk(n.Body, visit)
	case *ast.Pre:
		walk(n.Initial, visit)
	case *ast.Fold:
		walk(n.Source, visit)
		walk(n.Initial, visit)
		if n.Lambda != nil {
			walk(n.Lambda, visit)
		}
	}
}

// preExprs returns every pre(...) subexpression within e.
func preExprs(e ast.Expr) []*ast.Pre {
	var out []*ast.Pre
	walk(e, func(x ast.Expr) {
		if p, ok := x.(*ast.Pre); ok {
			out = append(out, p)
		}
	})
	return out
}

// isTimeDependent reports whether e contains any pre(...) subexpression,
// meaning the node it belongs to must be reconsidered on every wave rather
// than only when one of its data dependencies changes. fold(...) does not
// count: a fold node is re-evaluated only when something it reads, such as
// its stream, changes.
func isTimeDependent(e ast.Expr) bool {
	found := false
	walk(e, func(x ast.Expr) {
		switch x.(type) {
		case *ast.Pre:
			found = true
		}
	})
	return found
}
