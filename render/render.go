// Package render implements the --ast tree|dot|json output formats: pure
// presentation over ast.Decl, never reaching into lexer/parser internals.
//
// The tree form's tabular layout is grounded on the rosed-based table
// rendering internal/ictiobus/parse/slr.go uses for its state tables
// (rosed.Edit("").InsertTableOpts(...)); the dot form is a minimal
// hand-rolled Graphviz emitter, and the json form is plain encoding/json.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/ripple/lang/ast"
)

// Tree renders decls as an indented outline, one row per declaration and
// its formula, with the declaration kind/name fields laid out in a
// two-column table.
func Tree(decls []*ast.Decl) string {
	rows := make([][]string, 0, len(decls)+1)
	rows = append(rows, []string{"decl", "formula"})
	for _, d := range decls {
		rows = append(rows, []string{declHeader(d), exprTree(d.Init, 0)})
	}

	return rosed.Edit("").
		InsertTableOpts(0, rows, 28, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func declHeader(d *ast.Decl) string {
	if d.Type != ast.AnnotNone {
		return fmt.Sprintf("%s %s: %s", d.DeclKind, d.Name, annotName(d.Type))
	}
	return fmt.Sprintf("%s %s", d.DeclKind, d.Name)
}

func annotName(a ast.ValueTypeAnnot) string {
	switch a {
	case ast.AnnotInt:
		return "int"
	case ast.AnnotFloat:
		return "float"
	case ast.AnnotBool:
		return "bool"
	case ast.AnnotString:
		return "string"
	default:
		return ""
	}
}

func exprTree(e ast.Expr, depth int) string {
	if e == nil {
		return ""
	}
	indent := strings.Repeat("  ", depth)
	switch n := e.(type) {
	case *ast.Literal:
		return indent + litRepr(n)
	case *ast.Ident:
		return indent + n.Name
	case *ast.Unary:
		return indent + fmt.Sprintf("(%s\n%s)", unOpSymbol(n.Op), exprTree(n.Operand, depth+1))
	case *ast.Binary:
		return indent + fmt.Sprintf("(%s\n%s\n%s)", binOpSymbol(n.Op), exprTree(n.Left, depth+1), exprTree(n.Right, depth+1))
	case *ast.If:
		return indent + fmt.Sprintf("(if\n%s\n%s\n%s)", exprTree(n.Cond, depth+1), exprTree(n.Then, depth+1), exprTree(n.Else, depth+1))
	case *ast.Call:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			parts[i] = exprTree(a, depth+1)
		}
		return indent + fmt.Sprintf("(%s\n%s)", n.Name, strings.Join(parts, "\n"))
	case *ast.Lambda:
		return indent + fmt.Sprintf("(lambda (%s)\n%s)", strings.Join(n.Params, ", "), exprTree(n.Body, depth+1))
	case *ast.Pre:
		return indent + fmt.Sprintf("(pre %s\n%s)", n.Name, exprTree(n.Initial, depth+1))
	case *ast.Fold:
		return indent + fmt.Sprintf("(fold\n%s\n%s\n%s)", exprTree(n.Source, depth+1), exprTree(n.Initial, depth+1), exprTree(n.Lambda, depth+1))
	default:
		return indent + "?"
	}
}

func litRepr(lit *ast.Literal) string {
	switch lit.Kind {
	case ast.LitInt:
		return fmt.Sprintf("%d", lit.I)
	case ast.LitFloat:
		return fmt.Sprintf("%g", lit.F)
	case ast.LitString:
		return fmt.Sprintf("%q", lit.S)
	case ast.LitBool:
		return fmt.Sprintf("%t", lit.B)
	default:
		return "?"
	}
}

func unOpSymbol(op ast.UnOp) string {
	switch op {
	case ast.OpNeg:
		return "-"
	case ast.OpNot:
		return "not"
	default:
		return "?"
	}
}

func binOpSymbol(op ast.BinOp) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpMod:
		return "%"
	case ast.OpEq:
		return "=="
	case ast.OpNotEq:
		return "!="
	case ast.OpLt:
		return "<"
	case ast.OpLtEq:
		return "<="
	case ast.OpGt:
		return ">"
	case ast.OpGtEq:
		return ">="
	case ast.OpAnd:
		return "&&"
	case ast.OpOr:
		return "||"
	default:
		return "?"
	}
}

// DOT renders decls as a Graphviz dependency graph: one node per
// declaration, an edge from every identifier it references to itself.
func DOT(decls []*ast.Decl) string {
	var sb strings.Builder
	sb.WriteString("digraph ripple {\n")
	for _, d := range decls {
		sb.WriteString(fmt.Sprintf("  %q [shape=box label=%q];\n", d.Name, declHeader(d)))
	}
	for _, d := range decls {
		for _, ref := range identsOf(d.Init) {
			sb.WriteString(fmt.Sprintf("  %q -> %q;\n", ref, d.Name))
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

func identsOf(e ast.Expr) []string {
	var out []string
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.Ident:
			out = append(out, n.Name)
		case *ast.Unary:
			walk(n.Operand)
		case *ast.Binary:
			walk(n.Left)
			walk(n.Right)
		case *ast.If:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case *ast.Call:
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.Lambda:
			walk(n.Body)
		case *ast.Pre:
			out = append(out, n.Name)
			walk(n.Initial)
		case *ast.Fold:
			walk(n.Source)
			walk(n.Initial)
			if n.Lambda != nil {
				walk(n.Lambda)
			}
		}
	}
	walk(e)
	return out
}

// jsonDecl is the JSON-friendly shadow of ast.Decl; ast.Expr values render
// as their Go-syntax-ish exprTree string rather than a nested JSON tree,
// since the marker interface has no exported fields to marshal generically.
type jsonDecl struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Formula string `json:"formula,omitempty"`
}

// JSON renders decls as a JSON array, one object per declaration.
func JSON(decls []*ast.Decl) (string, error) {
	out := make([]jsonDecl, len(decls))
	for i, d := range decls {
		out[i] = jsonDecl{
			Kind:    d.DeclKind.String(),
			Name:    d.Name,
			Type:    annotName(d.Type),
			Formula: exprTree(d.Init, 0),
		}
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
