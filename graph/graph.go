// Package graph builds the reactive dependency graph from an analyzed
// Ripple program: one Node per source/stream/sink declaration, wired
// together with the forward/back edges the engine's scheduler walks.
//
// Nodes carry domain-specific Dependencies/BackRefs edge sets, a PreRefs
// edge set for pre() references, and the persistent-cell bookkeeping a
// reactive node needs beyond a generic graph node.
package graph

import (
	"sort"

	"github.com/dekarrin/ripple/lang/analyzer"
	"github.com/dekarrin/ripple/lang/ast"
	"github.com/dekarrin/ripple/lang/rerr"
	"github.com/dekarrin/ripple/value"
)

// Node is one declared name in a Ripple program: a source, stream, or
// sink, together with its evaluation rank and its wiring to the rest of
// the graph.
type Node struct {
	Name string
	Kind ast.DeclKind
	Rank int

	// Formula is the expression that computes this node's value on every
	// wave. It is nil for a source with no initializer, which only ever
	// takes its value from an external Push.
	Formula ast.Expr

	// Dependencies are the nodes this one reads directly (excluding
	// pre-only references). BackRefs is the reverse of Dependencies: the
	// nodes that read this one. PreRefs are the nodes this one reads
	// through pre(...), tracked separately because they don't gate this
	// node's evaluation on the current wave.
	Dependencies []*Node
	BackRefs     []*Node
	PreRefs      []*Node

	// Cached is this node's value as of the most recently completed wave.
	// HasValue is false until the node has been evaluated at least once.
	Cached   value.Value
	HasValue bool

	// Dirty marks a node queued for re-evaluation in the current wave.
	Dirty bool

	// preState and foldState hold the persistent accumulator for every
	// pre(...) and fold(...) subexpression within Formula, keyed by AST
	// node identity so a formula with more than one such subexpression
	// keeps them independent.
	preState  map[*ast.Pre]preCell
	foldState map[*ast.Fold]value.Value
}

// preCell holds the value pre(name, initial) yields on the next wave: the
// referenced node's value as captured at the end of the previous wave
// (the cold build counts). A pre(...) with no stored cell, because its
// referenced node had no value yet, evaluates its initial expression.
type preCell struct {
	Value value.Value
}

func newNode(d *ast.Decl) *Node {
	return &Node{
		Name:      d.Name,
		Kind:      d.DeclKind,
		Formula:   d.Init,
		preState:  make(map[*ast.Pre]preCell),
		foldState: make(map[*ast.Fold]value.Value),
	}
}

// PreState returns the current persistent value for a pre(...) subexpression
// belonging to this node's Formula, and whether it has been seeded yet.
func (n *Node) PreState(p *ast.Pre) (value.Value, bool) {
	c, ok := n.preState[p]
	return c.Value, ok
}

// SetPreState seeds or updates the persistent value for a pre(...)
// subexpression.
func (n *Node) SetPreState(p *ast.Pre, v value.Value) {
	n.preState[p] = preCell{Value: v}
}

// FoldState returns the current accumulator for a fold(...) subexpression
// belonging to this node's Formula, and whether it has been seeded yet.
func (n *Node) FoldState(f *ast.Fold) (value.Value, bool) {
	v, ok := n.foldState[f]
	return v, ok
}

// SetFoldState updates the accumulator for a fold(...) subexpression.
func (n *Node) SetFoldState(f *ast.Fold, v value.Value) {
	n.foldState[f] = v
}

// Graph is a fully wired, analyzed Ripple program, ready for the engine to
// evaluate.
type Graph struct {
	Nodes map[string]*Node

	// Order lists every node name sorted by ascending rank, ties broken by
	// declaration order. This is the order the engine uses for the
	// cold-build initial evaluation (spec.md §4.4).
	Order []string
}

// Build analyzes decls and constructs the wired Graph. Analysis errors
// (duplicate, undefined, circular) are returned unchanged.
func Build(decls []*ast.Decl) (*Graph, *rerr.Report) {
	res, rep := analyzer.Analyze(decls)
	if rep.HasErrors() {
		return nil, rep
	}

	g := &Graph{Nodes: make(map[string]*Node, len(res.Order))}
	for _, name := range res.Order {
		g.Nodes[name] = newNode(res.Decls[name])
		g.Nodes[name].Rank = res.Rank[name]
	}

	for _, name := range res.Order {
		n := g.Nodes[name]
		for _, depName := range res.Deps[name].StringElements() {
			dep := g.Nodes[depName]
			n.Dependencies = append(n.Dependencies, dep)
			dep.BackRefs = append(dep.BackRefs, n)
		}
		for _, preName := range res.PreRefs[name].StringElements() {
			n.PreRefs = append(n.PreRefs, g.Nodes[preName])
		}
	}

	order := append([]string(nil), res.Order...)
	sort.SliceStable(order, func(i, j int) bool {
		return g.Nodes[order[i]].Rank < g.Nodes[order[j]].Rank
	})
	g.Order = order

	return g, rerr.NewReport()
}
