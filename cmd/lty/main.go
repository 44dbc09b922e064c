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

	"github.com/orizon-lang/lty/internal/catalog"
	"github.com/orizon-lang/lty/internal/cli"
	"github.com/orizon-lang/lty/internal/config"
	"github.com/orizon-lang/lty/internal/labeled"
	"github.com/orizon-lang/lty/internal/session"
	"github.com/orizon-lang/lty/internal/types"
)

const toolName = "lty"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	label   string
	subst   string
	stats   bool
	check   bool
	watch   bool
	version bool
	json    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options

	fs := flag.NewFlagSet(toolName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.label, "label", string(session.ModeKind), "label mode: kind, type, depth or index")
	fs.StringVar(&opts.subst, "subst", "", "substitute placeholders with these types, separated by ';'")
	fs.BoolVar(&opts.stats, "stats", false, "print arena statistics")
	fs.BoolVar(&opts.check, "check", false, "validate every tree and fail on the first invalid one")
	fs.BoolVar(&opts.watch, "watch", false, "re-render whenever the catalogue changes")
	fs.BoolVar(&opts.version, "version", false, "show version information")
	fs.BoolVar(&opts.json, "json", false, "output version in JSON format")

	fs.Usage = func() {
		cli.PrintCommandUsage(stderr, toolName, cli.CommandInfo{
			Name:        "render",
			Usage:       "lty [OPTIONS] <catalog.yaml> [name|type ...]",
			Description: "render labeled type trees for a catalogue",
			Examples: []string{
				"lty types.yaml                          # every declared type",
				"lty -label depth types.yaml Pair        # one entry, depth labels",
				"lty -subst 'u8; &str' types.yaml Pair   # Pair<u8, &str>",
				"lty -check -stats types.yaml            # validate and report usage",
			},
			Flags: cli.FlagsOf(fs),
		})
	}

	cfg, err := config.Load(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if opts.version {
		cli.PrintVersion(toolName, opts.json)
		return 0
	}

	if err := cli.ValidateArgs(fs.Args(), 1, "lty [OPTIONS] <catalog.yaml> [name|type ...]"); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	mode, err := session.ParseMode(opts.label)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	logger := cli.NewLevelLogger(cfg.LogLevel, stderr)
	path, targets := fs.Arg(0), fs.Args()[1:]

	tcx := types.NewContext()
	cat, err := catalog.Load(path, tcx)
	if err != nil {
		logger.Error("%v", err)
		return 1
	}
	logger.Info("loaded %d types from %s (schema %s)", cat.Len(), path, cat.Version())

	s, err := session.New(cfg, cat, logger)
	if err != nil {
		logger.Error("%v", err)
		return 1
	}

	r := &renderer{out: stdout, session: s, mode: mode, opts: opts, targets: targets}
	if err := r.render(); err != nil {
		logger.Error("%v", err)
		if !opts.watch {
			return 1
		}
	}

	if !opts.watch {
		return 0
	}

	w := catalog.NewWatcher(path, tcx, func(cat *catalog.Catalog, err error) {
		if err != nil {
			logger.Warn("reload failed: %v", err)
			return
		}

		logger.Info("reloaded %s", path)
		s.Reset()
		s.Catalog = cat
		if err := r.render(); err != nil {
			logger.Error("%v", err)
		}
	})

	if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("%v", err)
		return 1
	}

	return 0
}

type renderer struct {
	out     io.Writer
	session *session.Session
	mode    session.Mode
	opts    options
	targets []string
}

func (r *renderer) render() error {
	targets := r.targets
	if len(targets) == 0 {
		for _, e := range r.session.Catalog.Entries() {
			targets = append(targets, e.Name)
		}
	}

	var args []types.Type
	if r.opts.subst != "" {
		var err error
		args, err = r.session.Resolve(strings.Split(r.opts.subst, ";"))
		if err != nil {
			return fmt.Errorf("-subst: %w", err)
		}
	}

	for _, target := range targets {
		if err := r.renderOne(target, args); err != nil {
			return err
		}
	}

	if r.opts.stats {
		fmt.Fprintln(r.out, r.session.Stats())
	}

	return nil
}

func (r *renderer) renderOne(target string, args []types.Type) error {
	t, err := r.session.Catalog.Resolve(target)
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}

	tree, err := r.session.Build(t, r.mode)
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}

	if args != nil {
		tree, err = r.session.Substitute(tree, args, r.mode)
		if err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
	}

	if r.opts.check {
		if err := labeled.Validate(tree); err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
	}

	fmt.Fprintf(r.out, "%s:\n%s", target, session.Outline(tree))

	return nil
}
