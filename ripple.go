// Package ripple is the embedding surface for the reactive dataflow
// language: compile program text into a running graph, push values into
// its sources, read any node's current value, and subscribe to a sink's
// changes.
//
// Lex/parse/analyze/build/evaluate live in lang/*, graph, and engine;
// Compile/Push/Read/Subscribe are the only door a host program needs.
package ripple

import (
	"github.com/dekarrin/ripple/engine"
	"github.com/dekarrin/ripple/graph"
	"github.com/dekarrin/ripple/lang/parser"
	"github.com/dekarrin/ripple/lang/rerr"
	"github.com/dekarrin/ripple/value"
)

// Program is a compiled, running instance of a Ripple dataflow graph: the
// structural Graph plus the Engine driving it. It is the handle a host
// holds onto across a program's lifetime.
type Program struct {
	Graph  *graph.Graph
	engine *engine.Engine
}

// Compile lexes, parses, analyzes, and builds text into a running Program.
// Every source/stream/sink has already received its cold-build value by
// the time Compile returns; the returned report carries a lex, parse,
// analyzer, or cold-evaluation error, one per failure, with the graph
// always nil when the report is non-empty.
//
// An optional baseDir is applied to the engine before the cold build
// runs, so a load_csv source with a relative path resolves against it
// from the very first evaluation (see config.Config.CSVBaseDir).
func Compile(text string, baseDir ...string) (*Program, *rerr.Report) {
	decls, perr := parser.Parse(text)
	if perr != nil {
		rep := rerr.NewReport()
		rep.Add(perr)
		return nil, rep
	}

	g, rep := graph.Build(decls)
	if rep.HasErrors() {
		return nil, rep
	}

	eng, rep := engine.New(g, baseDir...)
	if rep.HasErrors() {
		return nil, rep
	}

	return &Program{Graph: g, engine: eng}, rerr.NewReport()
}

// Engine returns the underlying engine.Engine driving this Program, for
// collaborators (package watch, package server) that need to push or
// subscribe directly rather than through this thinner wrapper.
func (p *Program) Engine() *engine.Engine {
	return p.engine
}

// StepBudget reports the maximum number of node evaluations a single Push
// may trigger before it gives up with a StepBudgetExceeded error.
func (p *Program) StepBudget() int {
	return p.engine.StepBudget
}

// SetStepBudget overrides the default step budget (engine.DefaultStepBudget).
func (p *Program) SetStepBudget(n int) {
	p.engine.StepBudget = n
}

// Push sets a source's value and propagates the change to quiescence. name
// must be a declared source; pushing to a stream or sink name is reported
// as an EvalError, not a panic.
func (p *Program) Push(name string, v value.Value) *rerr.Report {
	return p.engine.Push(name, v)
}

// Read returns a node's current cached value and whether it has been
// assigned one yet. Any declared name is valid, not just sinks.
func (p *Program) Read(name string) (value.Value, bool) {
	return p.engine.Read(name)
}

// Subscribe registers cb to be called with a sink's new value every time a
// Push causes it to change. cb is never called for a push that leaves the
// sink's value unchanged.
func (p *Program) Subscribe(sinkName string, cb func(value.Value)) {
	p.engine.Subscribe(sinkName, cb)
}
