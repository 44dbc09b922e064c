package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/orizon-lang/lty/internal/catalog"
	"github.com/orizon-lang/lty/internal/cli"
	"github.com/orizon-lang/lty/internal/config"
	"github.com/orizon-lang/lty/internal/session"
	"github.com/orizon-lang/lty/internal/types"
)

const (
	toolName = "lty-repl"
	prompt   = "lty> "
)

func main() {
	var (
		showVersion bool
		jsonOutput  bool
		catalogFile string
		evalStr     string
	)

	fs := flag.NewFlagSet(toolName, flag.ExitOnError)
	fs.BoolVar(&showVersion, "version", false, "show version information")
	fs.BoolVar(&jsonOutput, "json", false, "output version in JSON format")
	fs.StringVar(&catalogFile, "catalog", "", "load declarations from this catalogue")
	fs.StringVar(&evalStr, "eval", "", "evaluate one line and exit")

	fs.Usage = func() {
		cli.PrintCommandUsage(os.Stderr, toolName, cli.CommandInfo{
			Name:        "repl",
			Usage:       "lty-repl [OPTIONS]",
			Description: "interactive labeled type tree explorer",
			Examples: []string{
				"lty-repl -catalog types.yaml",
				"lty-repl -eval 'Pair<u8, &str>'",
			},
			Flags: cli.FlagsOf(fs),
		})
		printHelp(os.Stderr)
	}

	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		cli.ExitWithCode(2, "Error: %v", err)
	}

	if showVersion {
		cli.PrintVersion(toolName, jsonOutput)
		return
	}

	logger := cli.NewLevelLogger(cfg.LogLevel, os.Stderr)

	tcx := types.NewContext()
	cat := catalog.New(tcx)
	if catalogFile != "" {
		cat, err = catalog.Load(catalogFile, tcx)
		cli.HandleError(err, logger)
		logger.Info("loaded %d types from %s", cat.Len(), catalogFile)
	}

	s, err := session.New(cfg, cat, logger)
	cli.HandleError(err, logger)

	repl := NewREPL(s, os.Stdout)

	if evalStr != "" {
		repl.Eval(evalStr)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repl.Run(ctx, cfg.HistoryFile)
}

// REPL evaluates type expressions and commands against one session.
type REPL struct {
	session *session.Session
	mode    session.Mode
	out     io.Writer
}

// NewREPL creates a REPL writing its results to out.
func NewREPL(s *session.Session, out io.Writer) *REPL {
	return &REPL{session: s, mode: session.ModeKind, out: out}
}

// Run reads lines until EOF, :quit or ctx is cancelled.
func (r *REPL) Run(ctx context.Context, historyFile string) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(r.complete)

	if f, err := os.Open(historyFile); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	info := cli.GetVersionInfo()
	fmt.Fprintf(r.out, "%s v%s\n", toolName, info.Version)
	fmt.Fprintf(r.out, "Type :help for help, :quit to exit\n\n")

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) || ctx.Err() != nil {
			fmt.Fprintln(r.out)
			return
		}
		if err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if r.Eval(line) {
			return
		}
	}
}

// Eval handles one line and reports whether the user asked to exit.
func (r *REPL) Eval(line string) (exit bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		if err := r.render(line, nil); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch cmd {
	case ":help", ":h":
		printHelp(r.out)
	case ":quit", ":q", ":exit":
		return true
	case ":label":
		err = r.setMode(rest)
	case ":subst":
		err = r.subst(rest)
	case ":decl":
		err = r.decl(rest)
	case ":list":
		r.list()
	case ":stats":
		fmt.Fprintln(r.out, r.session.Stats())
	case ":reset":
		r.session.Reset()
		fmt.Fprintln(r.out, "Arena reset")
	default:
		fmt.Fprintf(r.out, "Unknown command: %s\n", cmd)
		fmt.Fprintln(r.out, "Type :help for available commands")
	}

	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
	}

	return false
}

func (r *REPL) render(src string, args []types.Type) error {
	t, err := r.session.Catalog.Resolve(src)
	if err != nil {
		return err
	}

	tree, err := r.session.Build(t, r.mode)
	if err != nil {
		return err
	}

	if args != nil {
		if tree, err = r.session.Substitute(tree, args, r.mode); err != nil {
			return err
		}
	}

	fmt.Fprint(r.out, session.Outline(tree))

	return nil
}

func (r *REPL) setMode(arg string) error {
	if arg == "" {
		fmt.Fprintf(r.out, "Label mode: %s\n", r.mode)
		return nil
	}

	mode, err := session.ParseMode(arg)
	if err != nil {
		return err
	}

	r.mode = mode
	fmt.Fprintf(r.out, "Label mode: %s\n", mode)

	return nil
}

// subst handles ":subst <type> | <arg>; <arg>".
func (r *REPL) subst(arg string) error {
	target, list, ok := strings.Cut(arg, "|")
	if !ok || strings.TrimSpace(target) == "" {
		return fmt.Errorf("usage: :subst <type> | <arg>; <arg> ...")
	}

	var args []types.Type
	if list = strings.TrimSpace(list); list != "" {
		var err error
		if args, err = r.session.Resolve(strings.Split(list, ";")); err != nil {
			return err
		}
	} else {
		args = []types.Type{}
	}

	return r.render(strings.TrimSpace(target), args)
}

// decl handles ":decl Name<P, Q> = type", where both the parameter list
// and the type are optional.
func (r *REPL) decl(arg string) error {
	head, body, _ := strings.Cut(arg, "=")
	head = strings.TrimSpace(head)

	d := catalog.Decl{Type: strings.TrimSpace(body)}
	if name, params, generic := strings.Cut(head, "<"); generic {
		if !strings.HasSuffix(params, ">") {
			return fmt.Errorf("usage: :decl Name<P, Q> = type")
		}
		d.Name = strings.TrimSpace(name)
		for _, p := range strings.Split(strings.TrimSuffix(params, ">"), ",") {
			d.Params = append(d.Params, strings.TrimSpace(p))
		}
	} else {
		d.Name = head
	}

	e, err := r.session.Catalog.Declare(d)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%s = %s\n", e.Name, e.Type)

	return nil
}

func (r *REPL) list() {
	entries := r.session.Catalog.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "No types declared")
		return
	}

	for _, e := range entries {
		fmt.Fprintf(r.out, "  %s = %s\n", e.Name, e.Type)
	}
}

var commands = []string{":help", ":quit", ":label", ":subst", ":decl", ":list", ":stats", ":reset"}

func (r *REPL) complete(line string) []string {
	var out []string
	if strings.HasPrefix(line, ":") {
		for _, c := range commands {
			if strings.HasPrefix(c, line) {
				out = append(out, c)
			}
		}
		return out
	}

	for _, e := range r.session.Catalog.Entries() {
		if strings.HasPrefix(e.Name, line) {
			out = append(out, e.Name)
		}
	}

	return out
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "REPL Commands:")
	fmt.Fprintln(w, "  <type>                      Render the labeled tree of a type or declared name")
	fmt.Fprintln(w, "  :label kind|type|depth|index Set the label mode")
	fmt.Fprintln(w, "  :subst <type> | <a>; <b>    Substitute arguments for placeholders $0, $1, ...")
	fmt.Fprintln(w, "  :decl Name<P, Q> = <type>   Declare a named type")
	fmt.Fprintln(w, "  :list                       List declared types")
	fmt.Fprintln(w, "  :stats                      Show arena statistics")
	fmt.Fprintln(w, "  :reset                      Release every tree built so far")
	fmt.Fprintln(w, "  :help, :h                   Show this help")
	fmt.Fprintln(w, "  :quit, :q, :exit            Exit")
}
