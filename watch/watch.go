// Package watch implements Ripple's CSV hot-reload: a filesystem watcher
// that re-runs load_csv for a source whenever its backing file changes on
// disk and pushes the freshly parsed table into the graph.
//
// fsnotify is wired in because it's the library the reactive-runtime repo
// in the retrieval pack (purpleidea/mgmt) uses to drive its own hot
// reload of external data sources — the closest analog in the pack to
// Ripple's requirement here.
package watch

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dekarrin/ripple/csvsrc"
	"github.com/dekarrin/ripple/engine"
	"github.com/dekarrin/ripple/lang/ast"
)

// Source binds a graph source name to the CSV file it should be reloaded
// from whenever that file changes.
type Source struct {
	NodeName  string
	Path      string
	HasHeader bool
}

// Watcher watches a set of CSV-backed sources and pushes their freshly
// parsed contents into an Engine whenever the underlying file changes.
// Rapid successive writes to the same file are debounced to a single
// reload.
type Watcher struct {
	eng      *engine.Engine
	sources  []Source
	baseDir  string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *log.Logger
	done     chan struct{}
}

// New creates a Watcher over the given sources. debounce bounds how
// quickly repeated writes to the same file are re-collapsed into a
// single reload; a debounce of 0 reloads on every event. baseDir, when
// non-empty, is prepended to any source path that isn't already
// absolute, matching load_csv's own base-dir resolution so a watched
// path and its cold-built counterpart always refer to the same file.
func New(eng *engine.Engine, sources []Source, baseDir string, debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	paths := make(map[string]bool)
	for _, s := range sources {
		p := resolvePath(baseDir, s.Path)
		if !paths[p] {
			if err := fsw.Add(p); err != nil {
				fsw.Close()
				return nil, err
			}
			paths[p] = true
		}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		eng:      eng,
		sources:  sources,
		baseDir:  baseDir,
		debounce: debounce,
		fsw:      fsw,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

func resolvePath(baseDir, path string) string {
	if baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Run blocks, dispatching reloads as filesystem events arrive, until
// Close is called.
func (w *Watcher) Run() {
	pending := make(map[string]*time.Timer)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			path := ev.Name
			if t, exists := pending[path]; exists {
				t.Stop()
			}
			pending[path] = time.AfterFunc(w.debounce, func() {
				w.reload(path)
			})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Printf("watch: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload(path string) {
	for _, s := range w.sources {
		resolved := resolvePath(w.baseDir, s.Path)
		if resolved != path {
			continue
		}
		v, err := csvsrc.Load(resolved, s.HasHeader)
		if err != nil {
			w.logger.Printf("watch: reload %s: %v", resolved, err)
			continue
		}
		if rep := w.eng.Push(s.NodeName, v); rep.HasErrors() {
			w.logger.Printf("watch: push %s: %v", s.NodeName, rep.Error())
		}
	}
}

// Close stops the watcher and releases its filesystem handles.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

// DiscoverSources scans every source declaration for a top-level
// load_csv(path, hasHeader) call and returns the Source bindings a Watcher
// needs to hot-reload them. A source whose Init is anything other than a
// direct load_csv call (arithmetic on one, a different builtin, a literal)
// is not watchable and is silently skipped — --watch only ever does
// something useful for the common "one source is exactly a CSV load" shape.
func DiscoverSources(decls []*ast.Decl) []Source {
	var out []Source
	for _, d := range decls {
		if d.DeclKind != ast.DeclSource {
			continue
		}
		call, ok := d.Init.(*ast.Call)
		if !ok || call.Name != "load_csv" || len(call.Args) != 2 {
			continue
		}
		pathLit, ok := call.Args[0].(*ast.Literal)
		if !ok || pathLit.Kind != ast.LitString {
			continue
		}
		headerLit, ok := call.Args[1].(*ast.Literal)
		if !ok || headerLit.Kind != ast.LitBool {
			continue
		}
		out = append(out, Source{NodeName: d.Name, Path: pathLit.S, HasHeader: headerLit.B})
	}
	return out
}
