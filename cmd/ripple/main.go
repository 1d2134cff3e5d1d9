/*
Ripple runs or interactively drives a Ripple dataflow program.

Usage:

	ripple run <file>.rpl [flags]
	ripple repl <file>.rpl [flags]

The flags are:

	-v, --version
		Give the current version of Ripple and then exit.

	--ast FORMAT
		Instead of running the program, render its declarations in the
		given FORMAT (tree, dot, or json) to stdout and exit.

	--watch
		Watch every source that's a direct load_csv(...) call and
		re-push its contents whenever the backing file changes.

	--http ADDRESS
		Also start the HTTP introspection server (see package server)
		listening on ADDRESS, e.g. ":8080". The same server also exposes
		a snapshot of the graph's current values at GET /snapshot.

	--snapshot FILE
		Write a REZI-encoded snapshot of the cold-built graph (see
		package snapshot) to FILE instead of running, and exit.

	--config FILE
		Load a TOML config file (see package config) setting the step
		budget, watch debounce interval, CSV base directory, and the
		HTTP server's auth/history settings.

	-d, --direct
		Force reading REPL input directly from stdin instead of going
		through GNU readline, even when attached to a tty.

Exit codes: 0 success, 1 compile error, 2 evaluation error at push time,
3 I/O error loading the program source or a CSV file.
*/
package main

import (
	"bufio"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/dekarrin/ripple"
	"github.com/dekarrin/ripple/config"
	"github.com/dekarrin/ripple/internal/input"
	"github.com/dekarrin/ripple/internal/replcmd"
	"github.com/dekarrin/ripple/internal/version"
	"github.com/dekarrin/ripple/lang/parser"
	"github.com/dekarrin/ripple/lang/rerr"
	"github.com/dekarrin/ripple/render"
	"github.com/dekarrin/ripple/server"
	"github.com/dekarrin/ripple/snapshot"
	"github.com/dekarrin/ripple/watch"
)

const (
	ExitSuccess = iota
	ExitCompileError
	ExitEvalError
	ExitIOError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of Ripple and then exit.")
	flagAST     = pflag.String("ast", "", "Render declarations as tree, dot, or json instead of running.")
	flagWatch   = pflag.Bool("watch", false, "Hot-reload CSV-backed sources on file change.")
	flagHTTP    = pflag.String("http", "", "Also serve HTTP introspection on this address.")
	flagDirect  = pflag.BoolP("direct", "d", false, "Force direct stdin reads instead of readline in the REPL.")
	flagSnap    = pflag.String("snapshot", "", "Write a REZI-encoded snapshot of the cold-built graph to this file and exit.")
	flagConfig  = pflag.String("config", "", "Load a TOML config file (step budget, watch debounce, CSV base dir, auth, history).")
)

func main() {
	defer func() {
		if p := recover(); p != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", p))
		}
		os.Exit(returnCode)
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("ripple %s\n", version.Current)
		return
	}

	args := pflag.Args()
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: ripple run|repl <file>.rpl [flags]\nDo -h for help.\n")
		returnCode = ExitIOError
		return
	}

	subcommand, file := args[0], args[1]

	text, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		returnCode = ExitIOError
		return
	}

	if *flagAST != "" {
		runAST(string(text))
		return
	}

	cfg := config.Config{}
	if *flagConfig != "" {
		c, err := config.Load(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			returnCode = ExitIOError
			return
		}
		cfg = c
	}
	cfg = cfg.FillDefaults()
	if *flagHTTP != "" {
		cfg.ListenAddr = *flagHTTP
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: config: %s\n", err)
		returnCode = ExitIOError
		return
	}

	prog, rep := ripple.Compile(string(text), cfg.CSVBaseDir)
	if rep.HasErrors() {
		fmt.Fprintln(os.Stderr, rep.Error())
		returnCode = ExitCompileError
		for _, e := range rep.Errors {
			if e.Kind == rerr.KindIO {
				returnCode = ExitIOError
			}
		}
		return
	}
	if cfg.StepBudget > 0 {
		prog.SetStepBudget(cfg.StepBudget)
	}

	if *flagSnap != "" {
		data, err := snapshot.Export(prog.Graph)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: snapshot: %s\n", err)
			returnCode = ExitIOError
			return
		}
		if err := os.WriteFile(*flagSnap, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: snapshot: %s\n", err)
			returnCode = ExitIOError
			return
		}
		return
	}

	var watcher *watch.Watcher
	if *flagWatch {
		decls, _ := parser.Parse(string(text))
		sources := watch.DiscoverSources(decls)
		if len(sources) > 0 {
			w, err := watch.New(prog.Engine(), sources, cfg.CSVBaseDir, cfg.WatchDebounce(), log.Default())
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: watch: %s\n", err)
				returnCode = ExitIOError
				return
			}
			watcher = w
			go watcher.Run()
			defer watcher.Close()
		}
	}

	var httpServer *http.Server
	if *flagHTTP != "" {
		srv := server.New(prog.Engine(), cfg, log.Default())
		httpServer = &http.Server{Addr: cfg.ListenAddr, Handler: srv}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http: %s", err)
			}
		}()
	}

	switch subcommand {
	case "run":
		// the cold build already ran inside Compile; nothing further to do
		// unless driven interactively or over HTTP, so just block if either
		// is active, otherwise exit immediately.
		if httpServer != nil || watcher != nil {
			select {}
		}
	case "repl":
		runREPL(prog)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q; expected run or repl\n", subcommand)
		returnCode = ExitIOError
	}
}

func runAST(text string) {
	decls, perr := parser.Parse(text)
	if perr != nil {
		fmt.Fprintln(os.Stderr, perr.FullMessage())
		returnCode = ExitCompileError
		return
	}

	switch *flagAST {
	case "tree":
		fmt.Println(render.Tree(decls))
	case "dot":
		fmt.Println(render.DOT(decls))
	case "json":
		out, err := render.JSON(decls)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			returnCode = ExitIOError
			return
		}
		fmt.Println(out)
	default:
		fmt.Fprintf(os.Stderr, "unknown --ast format %q; expected tree, dot, or json\n", *flagAST)
		returnCode = ExitIOError
	}
}

func runREPL(prog *ripple.Program) {
	var reader interface {
		ReadCommand() (string, error)
		AllowBlank(bool)
		Close() error
	}

	useReadline := !*flagDirect && isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	if useReadline {
		r, err := input.NewInteractiveReader()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: initializing readline: %s\n", err)
			returnCode = ExitIOError
			return
		}
		reader = r
	} else {
		reader = input.NewDirectReader(os.Stdin)
	}
	defer reader.Close()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	fmt.Fprintln(out, "Ripple REPL. Type :help for commands, :quit to exit.")
	out.Flush()

	reader.AllowBlank(true)
	for {
		line, err := reader.ReadCommand()
		if err != nil {
			break
		}
		if line == "" {
			continue
		}

		cmd, perr := replcmd.Parse(line)
		if perr != nil {
			fmt.Fprintf(out, "error: %s\n", perr)
			out.Flush()
			continue
		}

		switch cmd.Verb {
		case replcmd.VerbNone:
			continue
		case replcmd.VerbHelp:
			fmt.Fprintln(out, replcmd.HelpText)
		case replcmd.VerbQuit:
			out.Flush()
			return
		case replcmd.VerbPush:
			rep := prog.Push(cmd.Node, cmd.Value)
			if rep.HasErrors() {
				fmt.Fprintln(out, rep.Error())
				returnCode = ExitEvalError
			}
		case replcmd.VerbRead:
			v, ok := prog.Read(cmd.Node)
			if !ok {
				fmt.Fprintf(out, "%s has no value yet\n", cmd.Node)
			} else {
				fmt.Fprintf(out, "%s = %s\n", cmd.Node, v.String())
			}
		}
		out.Flush()
	}
}

