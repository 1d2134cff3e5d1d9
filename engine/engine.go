// Package engine implements Ripple's evaluation: a single-threaded,
// cooperative push-to-quiescence scheduler that walks the dependency
// graph in rank order, re-evaluating what a change can actually reach
// plus every node containing pre(...), which is reconsidered on every
// wave, then synchronously notifies everything downstream before
// accepting the next push.
package engine

import (
	"sync"

	"github.com/dekarrin/ripple/graph"
	"github.com/dekarrin/ripple/internal/rset"
	"github.com/dekarrin/ripple/lang/ast"
	"github.com/dekarrin/ripple/lang/rerr"
	"github.com/dekarrin/ripple/value"
)

// DefaultStepBudget bounds how many node evaluations a single Push may
// trigger before the engine gives up and reports StepBudgetExceeded. This
// exists to turn a runaway formula (which should be impossible given the
// cycle check, but could still arise from an unbounded fan-out) into a
// diagnosable error instead of a hang.
const DefaultStepBudget = 100_000

// Engine evaluates one compiled Graph. It is safe for concurrent use; Push
// calls are serialized so the single-threaded propagation model the
// algorithm depends on holds even when, for example, the HTTP server and
// a file watcher both push at once.
type Engine struct {
	G          *graph.Graph
	StepBudget int

	// BaseDir, when set, is prepended to any relative path passed to
	// load_csv/csv_header, so a compiled program can refer to its data
	// files relative to a configured directory rather than the
	// process's current working directory.
	BaseDir string

	mu            sync.Mutex
	timeDependent []*graph.Node
	subs          map[string][]func(value.Value)
}

// New builds an Engine over g and performs the cold build: every node is
// evaluated once, in ascending rank order, so sinks have a value even
// before the first Push (spec.md §4.4). An optional baseDir is applied
// before the cold build runs, so a load_csv source with a relative path
// resolves correctly on its very first evaluation rather than only on
// pushes made after the caller sets Engine.BaseDir by hand.
func New(g *graph.Graph, baseDir ...string) (*Engine, *rerr.Report) {
	e := &Engine{
		G:          g,
		StepBudget: DefaultStepBudget,
		subs:       make(map[string][]func(value.Value)),
	}
	if len(baseDir) > 0 {
		e.BaseDir = baseDir[0]
	}
	for _, n := range g.Nodes {
		if n.Formula != nil && isTimeDependent(n.Formula) {
			e.timeDependent = append(e.timeDependent, n)
		}
	}

	rep := rerr.NewReport()
	for _, name := range g.Order {
		n := g.Nodes[name]
		if n.Formula == nil {
			continue
		}
		v, err := e.evalNode(n)
		if err != nil {
			rep.Add(toRerr(err, n.Name))
			continue
		}
		n.Cached = v
		n.HasValue = true
	}
	e.finalizePre()

	return e, rep
}

func (e *Engine) evalNode(n *graph.Node) (value.Value, error) {
	ctx := &evalCtx{g: e.G, node: n, bound: map[string]value.Value{}, baseDir: e.BaseDir}
	return eval(ctx, n.Formula)
}

func toRerr(err error, nodeName string) *rerr.Error {
	if ee, ok := err.(*evalError); ok {
		return rerr.New(ee.kind, "%s: %s", nodeName, ee.msg)
	}
	return rerr.New(rerr.KindEval, "%s: %s", nodeName, err.Error())
}

// Push sets a source node's value and propagates the change to quiescence.
// It returns a report containing every error raised while evaluating
// affected nodes; a node that errors keeps its previously cached value and
// does not propagate further, but the wave continues for everything else
// that's still reachable and error-free.
func (e *Engine) Push(name string, v value.Value) *rerr.Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	rep := rerr.NewReport()

	n, ok := e.G.Nodes[name]
	if !ok {
		rep.Add(rerr.New(rerr.KindEval, "push: no such source %q", name))
		return rep
	}
	if n.Kind != ast.DeclSource {
		rep.Add(rerr.New(rerr.KindEval, "push: %q is a %s, not a source", name, n.Kind))
		return rep
	}

	changedNow := rset.New[string]()
	q := newWaveQueue()

	srcChanged := !n.HasValue || !v.Equal(n.Cached)
	n.Cached = v
	n.HasValue = true
	if srcChanged {
		changedNow.Add(n.Name)
		for _, dep := range n.BackRefs {
			dep.Dirty = true
			q.Enqueue(dep.Name, dep.Rank)
		}
	}
	for _, td := range e.timeDependent {
		td.Dirty = true
		q.Enqueue(td.Name, td.Rank)
	}

	steps := 0
	for {
		next, ok := q.Dequeue()
		if !ok {
			break
		}
		steps++
		if e.budget() > 0 && steps > e.budget() {
			rep.Add(rerr.New(rerr.KindStepBudget, "push %q exceeded step budget of %d", name, e.budget()))
			break
		}

		cur := e.G.Nodes[next]
		cur.Dirty = false
		newVal, err := e.evalNode(cur)
		if err != nil {
			rep.Add(toRerr(err, cur.Name))
			continue
		}
		valChanged := !cur.HasValue || !newVal.Equal(cur.Cached)
		cur.Cached = newVal
		cur.HasValue = true
		if valChanged {
			changedNow.Add(cur.Name)
			for _, dep := range cur.BackRefs {
				dep.Dirty = true
				q.Enqueue(dep.Name, dep.Rank)
			}
		}
	}

	e.finalizePre()
	e.notify(changedNow)

	return rep
}

func (e *Engine) budget() int {
	if e.StepBudget <= 0 {
		return DefaultStepBudget
	}
	return e.StepBudget
}

// finalizePre snapshots, for every time-dependent node's pre(...)
// subexpressions, the current value of the referenced node — this is what
// that pre(...) call will yield starting with the next wave.
func (e *Engine) finalizePre() {
	for _, n := range e.timeDependent {
		for _, p := range preExprs(n.Formula) {
			ref, ok := e.G.Nodes[p.Name]
			if !ok || !ref.HasValue {
				continue
			}
			n.SetPreState(p, ref.Cached)
		}
	}
}

func (e *Engine) notify(changed rset.Set[string]) {
	for _, name := range changed.StringElements() {
		n := e.G.Nodes[name]
		if n.Kind != ast.DeclSink {
			continue
		}
		for _, cb := range e.subs[name] {
			cb(n.Cached)
		}
	}
}

// Read returns a node's current cached value and whether it has ever been
// assigned one.
func (e *Engine) Read(name string) (value.Value, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.G.Nodes[name]
	if !ok {
		return value.NullValue, false
	}
	return n.Cached, n.HasValue
}

// Subscribe registers cb to be called with a sink's new value every time a
// Push causes it to change.
func (e *Engine) Subscribe(sinkName string, cb func(value.Value)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs[sinkName] = append(e.subs[sinkName], cb)
}
