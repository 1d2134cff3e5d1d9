// Package analyzer runs the three ordered static checks over a parsed
// Ripple program — duplicate definitions, undefined references, and
// circular dependencies — and, once a program passes all three, computes
// the rank each declaration needs for glitch-free evaluation order.
//
// Free-identifier collection extends scope for lambda parameters using
// internal/rset for bound-name tracking. Cycle detection is iterative DFS
// with an explicit stack rather than recursion.
package analyzer

import (
	"fmt"
	"sort"

	"github.com/dekarrin/ripple/internal/rset"
	"github.com/dekarrin/ripple/lang/ast"
	"github.com/dekarrin/ripple/lang/rerr"
)

// Result is what a clean analysis produces for the graph builder to
// consume.
type Result struct {
	// Order lists every declared name in source order.
	Order []string

	// Decls maps a name to the declaration that defines it.
	Decls map[string]*ast.Decl

	// Deps maps a name to the set of other declared names its formula
	// reads directly, EXCLUDING any name that only appears as the first
	// argument of a pre(...) call. These are the edges used for rank and
	// cycle computation, since pre deliberately breaks an otherwise
	// circular dependency by reading the previous wave's value.
	Deps map[string]rset.Set[string]

	// PreRefs maps a name to the set of other declared names it reads
	// through pre(...). The engine needs these to know which prior-wave
	// values to snapshot, even though they don't participate in ranking.
	PreRefs map[string]rset.Set[string]

	// Rank maps a name to its evaluation rank: nodes with no dependencies
	// are rank 0, and every other node is one more than the highest rank
	// among its Deps.
	Rank map[string]int
}

// Analyze runs the duplicate, undefined-reference, and circular-dependency
// checks in that order, stopping at the first category that reports a
// violation. Within the undefined-reference and circular-dependency
// categories, every violation found is collected into the returned report
// rather than stopping at the first one.
func Analyze(decls []*ast.Decl) (*Result, *rerr.Report) {
	if rep := checkDuplicates(decls); rep.HasErrors() {
		return nil, rep
	}

	order := make([]string, 0, len(decls))
	byName := make(map[string]*ast.Decl, len(decls))
	for _, d := range decls {
		order = append(order, d.Name)
		byName[d.Name] = d
	}

	deps := make(map[string]rset.Set[string], len(decls))
	preRefs := make(map[string]rset.Set[string], len(decls))
	for _, d := range decls {
		dSet := rset.New[string]()
		pSet := rset.New[string]()
		if d.Init != nil {
			collect(d.Init, rset.New[string](), dSet, pSet)
		}
		deps[d.Name] = dSet
		preRefs[d.Name] = pSet
	}

	if rep := checkUndefined(decls, byName, deps, preRefs); rep.HasErrors() {
		return nil, rep
	}

	if rep := checkCycles(order, deps); rep.HasErrors() {
		return nil, rep
	}

	rank := computeRank(order, deps)

	return &Result{
		Order:   order,
		Decls:   byName,
		Deps:    deps,
		PreRefs: preRefs,
		Rank:    rank,
	}, rerr.NewReport()
}

func checkDuplicates(decls []*ast.Decl) *rerr.Report {
	rep := rerr.NewReport()
	seen := make(map[string]*ast.Decl, len(decls))
	for _, d := range decls {
		if prev, ok := seen[d.Name]; ok {
			rep.Add(rerr.New(rerr.KindDuplicate,
				"%q is already defined at line %d (redefined at line %d)",
				d.Name, prev.Span.StartLine, d.Span.StartLine))
			continue
		}
		seen[d.Name] = d
	}
	return rep
}

// collect walks e, adding every free identifier reference to deps (or to
// preRefs, if the reference is the first argument of a pre(...) call)
// while bound tracks names currently shadowed by enclosing lambda
// parameters.
func collect(e ast.Expr, bound rset.Set[string], deps, preRefs rset.Set[string]) {
	switch n := e.(type) {
	case *ast.Literal:
		// no free identifiers
	case *ast.Ident:
		if !bound.Has(n.Name) {
			deps.Add(n.Name)
		}
	case *ast.Unary:
		collect(n.Operand, bound, deps, preRefs)
	case *ast.Binary:
		collect(n.Left, bound, deps, preRefs)
		collect(n.Right, bound, deps, preRefs)
	case *ast.If:
		collect(n.Cond, bound, deps, preRefs)
		collect(n.Then, bound, deps, preRefs)
		collect(n.Else, bound, deps, preRefs)
	case *ast.Call:
		for _, a := range n.Args {
			collect(a, bound, deps, preRefs)
		}
	case *ast.Lambda:
		inner := bound.Union(rset.Of(n.Params...))
		collect(n.Body, inner, deps, preRefs)
	case *ast.Pre:
		if !bound.Has(n.Name) {
			preRefs.Add(n.Name)
		}
		collect(n.Initial, bound, deps, preRefs)
	case *ast.Fold:
		collect(n.Source, bound, deps, preRefs)
		collect(n.Initial, bound, deps, preRefs)
		if n.Lambda != nil {
			collect(n.Lambda, bound, deps, preRefs)
		}
	default:
		// unreachable for a well-formed AST; left unhandled deliberately
		// so a new node type surfaces here instead of silently being
		// treated as having no free identifiers.
		panic(fmt.Sprintf("analyzer: collect: unhandled expr type %T", e))
	}
}

func checkUndefined(decls []*ast.Decl, byName map[string]*ast.Decl, deps, preRefs map[string]rset.Set[string]) *rerr.Report {
	rep := rerr.NewReport()
	for _, d := range decls {
		refs := deps[d.Name].Union(preRefs[d.Name])
		for _, name := range refs.StringElements() {
			if _, ok := byName[name]; !ok {
				rep.Add(rerr.New(rerr.KindUndefined,
					"undefined reference to %q in definition of %q (line %d)",
					name, d.Name, d.Span.StartLine))
			}
		}
	}
	return rep
}

// checkCycles runs an iterative DFS over the Deps edges (pre-only
// references excluded, per the package doc) looking for any cycle. Every
// distinct cycle found is reported.
func checkCycles(order []string, deps map[string]rset.Set[string]) *rerr.Report {
	rep := rerr.NewReport()

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(order))
	for _, n := range order {
		color[n] = white
	}

	type frame struct {
		name    string
		edges   []string
		edgeIdx int
	}

	for _, start := range order {
		if color[start] != white {
			continue
		}
		stack := []*frame{{name: start, edges: deps[start].StringElements()}}
		color[start] = gray
		path := []string{start}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.edgeIdx >= len(top.edges) {
				color[top.name] = black
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}
			next := top.edges[top.edgeIdx]
			top.edgeIdx++

			switch color[next] {
			case white:
				color[next] = gray
				path = append(path, next)
				stack = append(stack, &frame{name: next, edges: deps[next].StringElements()})
			case gray:
				cyclePath := append(append([]string(nil), path...), next)
				rep.Add(rerr.New(rerr.KindCircular, "circular dependency: %s", joinArrow(cyclePath)))
			case black:
				// already fully explored, no new cycle through it
			}
		}
	}

	return rep
}

func joinArrow(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " -> "
		}
		out += n
	}
	return out
}

// computeRank assigns each declared name a rank via Kahn's algorithm over
// the Deps edges: a node with no dependencies gets rank 0, and every other
// node gets one more than the highest rank among its dependencies. Callers
// must only invoke this once checkCycles has confirmed the graph is
// acyclic.
func computeRank(order []string, deps map[string]rset.Set[string]) map[string]int {
	dependents := make(map[string][]string, len(order))
	indegree := make(map[string]int, len(order))
	for _, n := range order {
		indegree[n] = deps[n].Len()
	}
	for _, n := range order {
		for _, d := range deps[n].StringElements() {
			dependents[d] = append(dependents[d], n)
		}
	}

	rank := make(map[string]int, len(order))
	queue := make([]string, 0, len(order))
	for _, n := range order {
		if indegree[n] == 0 {
			rank[n] = 0
			queue = append(queue, n)
		}
	}
	// process in deterministic (declaration) order for ties
	sort.SliceStable(queue, func(i, j int) bool { return indexOf(order, queue[i]) < indexOf(order, queue[j]) })

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range dependents[cur] {
			if r := rank[cur] + 1; r > rank[dep] {
				rank[dep] = r
			}
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	return rank
}

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}
