// Package main is the entry point for the fenceline exercise guard.
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
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/dshills/fenceline/internal/app"
	"github.com/dshills/fenceline/internal/config"
	"github.com/dshills/fenceline/internal/exercise"
	"github.com/dshills/fenceline/internal/guard"
	"github.com/dshills/fenceline/internal/input/key"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitRejected = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitError
	}

	var err error
	code := exitOK
	switch args[0] {
	case "check":
		code, err = runCheck(ctx, args[1:], stdout, stderr)
	case "window":
		err = runWindow(args[1:], stdout, stderr)
	case "key":
		code, err = runKey(args[1:], stdout, stderr)
	case "list":
		err = runList(ctx, args[1:], stdout, stderr)
	case "version", "-version", "--version":
		fmt.Fprintf(stdout, "fenceline %s\nCommit: %s\nBuilt: %s\n", version, commit, date)
	case "help", "-h", "-help", "--help":
		usage(stdout)
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", args[0])
		usage(stderr)
		return exitError
	}

	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitError
	}
	return code
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "fenceline - editable window guard for coding exercises\n\n")
	fmt.Fprintf(w, "Usage: fenceline <command> [options]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  check    Apply a solution to an exercise and grade it\n")
	fmt.Fprintf(w, "  window   Show the editable window of an exercise starter\n")
	fmt.Fprintf(w, "  key      Report whether a keystroke would be suppressed\n")
	fmt.Fprintf(w, "  list     List the exercises in the catalog directory\n")
	fmt.Fprintf(w, "  version  Show version information\n")
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  fenceline check -exercise hello.toml -solution main.rs\n")
	fmt.Fprintf(w, "  fenceline check -exercise hello.json -solution main.rs -run\n")
	fmt.Fprintf(w, "  fenceline window -exercise hello.toml\n")
	fmt.Fprintf(w, "  fenceline key -exercise hello.toml -line 1 -col 1 Ctrl+V\n")
	fmt.Fprintf(w, "  fenceline key -exercise hello.toml -dom -meta -line 1 v\n")
	fmt.Fprintf(w, "  fenceline key -exercise hello.toml -term -line 2 Backspace2\n")
}

// commonFlags are shared by every command that builds an App.
type commonFlags struct {
	configPath string
	logLevel   string
	exercise   string
}

func (c *commonFlags) register(fs *flag.FlagSet, withExercise bool) {
	fs.StringVar(&c.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&c.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	if withExercise {
		fs.StringVar(&c.exercise, "exercise", "", "Exercise file (.toml or .json)")
		fs.StringVar(&c.exercise, "e", "", "Exercise file (shorthand)")
	}
}

// loadConfig reads the configuration layers and applies flag overrides.
func (c *commonFlags) loadConfig(ctx context.Context) (*config.Config, error) {
	var opts []config.Option
	if c.configPath != "" {
		opts = append(opts, config.WithFile(c.configPath))
	}
	cfg := config.New(opts...)
	if err := cfg.Load(ctx); err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		switch c.logLevel {
		case "debug", "info", "warn", "error":
		default:
			return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", c.logLevel)
		}
		if err := cfg.Set("logging.level", c.logLevel); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openApp builds an App with the exercise from the -exercise flag loaded.
func (c *commonFlags) openApp(ctx context.Context, stderr io.Writer) (*app.App, error) {
	if c.exercise == "" {
		return nil, errors.New("-exercise is required")
	}
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	ex, err := exercise.LoadFile(c.exercise)
	if err != nil {
		return nil, err
	}

	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(cfg.Logging().Level),
		Output: stderr,
		Prefix: "fenceline",
	})
	a := app.New(cfg, app.WithLogger(logger))
	if err := a.LoadExercise(ex); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func runCheck(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
	var (
		common   commonFlags
		solution string
		submit   bool
	)
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common.register(fs, true)
	fs.StringVar(&solution, "solution", "", "Solution file")
	fs.StringVar(&solution, "s", "", "Solution file (shorthand)")
	fs.BoolVar(&submit, "run", false, "Submit the solution to the runner")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}
	if solution == "" {
		return exitError, errors.New("-solution is required")
	}

	data, err := os.ReadFile(solution)
	if err != nil {
		return exitError, err
	}
	a, err := common.openApp(ctx, stderr)
	if err != nil {
		return exitError, err
	}
	defer a.Close()

	starter := a.Buffer().Text()
	text := exercise.DecodeText(string(data))
	if v := a.ReplaceText(text); v == guard.VerdictRejected {
		fmt.Fprintf(stdout, "rejected: solution edits lines outside the editable window %s\n", a.Session().Window())
		writeDiff(stdout, starter, text)
		return exitRejected, nil
	}
	fmt.Fprintf(stdout, "accepted: editable window %s\n", a.Session().Window())

	code := exitOK
	report, err := a.Grade(ctx)
	if err != nil {
		return exitError, err
	}
	if report.TokenRequired != "" {
		fmt.Fprintf(stdout, "token %q: %s\n", report.TokenRequired, yesNo(report.TokenUsed, "used", "missing"))
	}
	if report.CheckRan {
		fmt.Fprintf(stdout, "check: %s %s\n", yesNo(report.CheckPassed, "passed", "failed"), report.CheckMessage)
	}
	if !report.Passed() {
		code = exitRejected
	}

	if submit {
		sub, err := a.Submit(ctx)
		if err != nil {
			return exitError, err
		}
		fmt.Fprintf(stdout, "run %s: %s\n", sub.ID, sub.Result.Status())
		if out := strings.TrimRight(sub.Result.Output, "\n"); out != "" {
			fmt.Fprintf(stdout, "%s\n", out)
		}
		if !sub.Result.Passed {
			code = exitRejected
		}
	}
	return code, nil
}

// writeDiff prints a unified diff of a rejected solution against the starter.
func writeDiff(w io.Writer, from, to string) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(from),
		B:        difflib.SplitLines(to),
		FromFile: "starter",
		ToFile:   "solution",
		Context:  1,
	})
	if err == nil {
		fmt.Fprint(w, diff)
	}
}

func runWindow(args []string, stdout, stderr io.Writer) error {
	var common commonFlags
	fs := flag.NewFlagSet("window", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common.register(fs, true)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := common.openApp(ctx, stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.Session()
	ex := a.Exercise()
	blocks := ex.Blocks(a.Config().Guard().Options())

	fmt.Fprintf(stdout, "exercise %d (%s)\n", ex.ID, ex.Slug)
	fmt.Fprintf(stdout, "editable %s\n", s.Window())
	fmt.Fprintf(stdout, "fixed top: %d lines, fixed bottom: %d lines\n", len(blocks.Top), len(blocks.Bottom))
	for i, line := range strings.Split(s.Snapshot(), "\n") {
		marker := " "
		if s.Window().Contains(i + 1) {
			marker = ">"
		}
		fmt.Fprintf(stdout, "%s %4d  %s\n", marker, i+1, line)
	}
	return nil
}

func runKey(args []string, stdout, stderr io.Writer) (int, error) {
	var (
		common           commonFlags
		line, col        int
		dom, term        bool
		ctrl, alt, shift bool
		meta             bool
	)
	fs := flag.NewFlagSet("key", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common.register(fs, true)
	fs.IntVar(&line, "line", 1, "Cursor line (1-indexed)")
	fs.IntVar(&col, "col", 1, "Cursor column (1-indexed)")
	fs.BoolVar(&dom, "dom", false, "Read a browser KeyboardEvent.key value (ArrowUp, v, Backspace)")
	fs.BoolVar(&term, "term", false, "Read a terminal key name (Ctrl-V, Backspace2, Up) or a single rune")
	fs.BoolVar(&ctrl, "ctrl", false, "Ctrl held (with -dom or -term)")
	fs.BoolVar(&alt, "alt", false, "Alt held (with -dom or -term)")
	fs.BoolVar(&shift, "shift", false, "Shift held (with -dom or -term)")
	fs.BoolVar(&meta, "meta", false, "Meta/Cmd held (with -dom or -term)")
	if err := fs.Parse(args); err != nil {
		return exitError, err
	}
	if fs.NArg() != 1 {
		return exitError, errors.New("expected one key, e.g. Ctrl+V or <C-v>")
	}
	if dom && term {
		return exitError, errors.New("-dom and -term are mutually exclusive")
	}

	var mods key.Modifier
	for _, m := range []struct {
		set bool
		mod key.Modifier
	}{{ctrl, key.ModCtrl}, {alt, key.ModAlt}, {shift, key.ModShift}, {meta, key.ModMeta}} {
		if m.set {
			mods = mods.With(m.mod)
		}
	}

	name := fs.Arg(0)
	var handle func(a *app.App, cur guard.Cursor) bool
	switch {
	case dom:
		handle = func(a *app.App, cur guard.Cursor) bool { return a.HandleDOMKey(name, mods, cur) }
	case term:
		ev, err := terminalKey(name, mods)
		if err != nil {
			return exitError, err
		}
		handle = func(a *app.App, cur guard.Cursor) bool { return a.HandleTerminalKey(ev, cur) }
	default:
		ev, err := key.Parse(name)
		if err != nil {
			return exitError, err
		}
		handle = func(a *app.App, cur guard.Cursor) bool { return a.HandleKey(ev, cur) }
	}

	a, err := common.openApp(context.Background(), stderr)
	if err != nil {
		return exitError, err
	}
	defer a.Close()

	if handle(a, guard.Cursor{Line: line, Column: col}) {
		fmt.Fprintf(stdout, "%s at %d:%d: suppressed (editable %s)\n", name, line, col, a.Session().Window())
		return exitRejected, nil
	}
	fmt.Fprintf(stdout, "%s at %d:%d: allowed\n", name, line, col)
	return exitOK, nil
}

// terminalKey builds the event a tcell screen would deliver for a key named
// as in tcell.KeyNames, or for a single rune.
func terminalKey(name string, mods key.Modifier) (*tcell.EventKey, error) {
	var mask tcell.ModMask
	if mods.HasCtrl() {
		mask |= tcell.ModCtrl
	}
	if mods.HasAlt() {
		mask |= tcell.ModAlt
	}
	if mods.HasShift() {
		mask |= tcell.ModShift
	}
	if mods.HasMeta() {
		mask |= tcell.ModMeta
	}

	if r, size := utf8.DecodeRuneInString(name); size == len(name) && r != utf8.RuneError {
		return tcell.NewEventKey(tcell.KeyRune, r, mask), nil
	}
	for k, n := range tcell.KeyNames {
		if strings.EqualFold(n, name) {
			return tcell.NewEventKey(k, 0, mask), nil
		}
	}
	return nil, fmt.Errorf("unknown terminal key %q", name)
}

func runList(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		common commonFlags
		dir    string
	)
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common.register(fs, false)
	fs.StringVar(&dir, "dir", "", "Exercise directory (overrides catalog.dir)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.loadConfig(ctx)
	if err != nil {
		return err
	}
	if dir != "" {
		if err := cfg.Set("catalog.dir", dir); err != nil {
			return err
		}
	}
	if err := cfg.Set("catalog.watch", false); err != nil {
		return err
	}
	if cfg.Catalog().Dir == "" {
		return errors.New("no catalog directory: set -dir or catalog.dir")
	}

	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(cfg.Logging().Level),
		Output: stderr,
		Prefix: "fenceline",
	})
	a := app.New(cfg, app.WithLogger(logger))
	defer a.Close()
	if err := a.Open(ctx); err != nil {
		return err
	}

	for _, ex := range a.Catalog().List() {
		title := ex.Title
		if title == "" {
			title = ex.Slug
		}
		fmt.Fprintf(stdout, "%4d  %-24s %s\n", ex.ID, ex.Slug, title)
	}
	return nil
}

func yesNo(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
