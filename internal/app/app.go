// Package app wires the editable-window guard to the editor buffer, the
// exercise catalog, the grading checks and the remote runner.
//
// The buffer reports every mutation synchronously; App translates it into
// guard notifications so that an edit reaching a protected line is rolled
// back before the caller regains control. Buffer edits must come from a
// single goroutine, as they would from an editor's input loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/fenceline/internal/config"
	"github.com/dshills/fenceline/internal/engine/buffer"
	"github.com/dshills/fenceline/internal/exercise"
	"github.com/dshills/fenceline/internal/grade"
	"github.com/dshills/fenceline/internal/guard"
	"github.com/dshills/fenceline/internal/input/key"
	"github.com/dshills/fenceline/internal/runner"
)

// App is the running exercise environment.
type App struct {
	cfg     *config.Config
	logger  *Logger
	metrics *Metrics

	catalog *exercise.Catalog
	watcher *exercise.Watcher
	checker *grade.Checker
	runner  *runner.Client

	buf   *buffer.Buffer
	unsub func()

	mu          sync.RWMutex
	session     *guard.Session
	exercise    *exercise.Exercise
	lastVerdict guard.Verdict
	submissions []runner.Submission
	closed      bool
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(l *Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRunner sets the runner client.
func WithRunner(c *runner.Client) Option {
	return func(a *App) {
		if c != nil {
			a.runner = c
		}
	}
}

// WithChecker sets the grading checker.
func WithChecker(c *grade.Checker) Option {
	return func(a *App) {
		if c != nil {
			a.checker = c
		}
	}
}

// WithCatalog sets the exercise catalog.
func WithCatalog(c *exercise.Catalog) Option {
	return func(a *App) {
		if c != nil {
			a.catalog = c
		}
	}
}

// New creates an App from cfg. A nil cfg uses the defaults.
func New(cfg *config.Config, opts ...Option) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	rc := cfg.Runner()
	a := &App{
		cfg: cfg,
		logger: NewLogger(LoggerConfig{
			Level:  ParseLogLevel(cfg.Logging().Level),
			Output: os.Stderr,
			Prefix: "fenceline",
		}),
		metrics: NewMetrics(),
		catalog: exercise.NewCatalog(),
		checker: grade.NewChecker(),
		runner:  runner.NewClient(rc.Endpoint, runner.WithTimeout(rc.Timeout)),
		buf:     buffer.NewBuffer(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.unsub = a.buf.OnChange(a.onBufferChange)
	return a
}

// Open loads the configured catalog directory and, if enabled, starts
// watching it. Files that fail to load are logged and skipped.
func (a *App) Open(_ context.Context) error {
	cc := a.cfg.Catalog()
	if cc.Dir == "" {
		return nil
	}
	log := a.logger.WithComponent("catalog")

	n, err := a.catalog.LoadDir(cc.Dir)
	if n == 0 && err != nil {
		return NewOperationError("load catalog", cc.Dir, err)
	}
	if err != nil {
		log.Warn("some exercises failed to load: %v", err)
	}
	log.Info("loaded %d exercises from %s", n, cc.Dir)

	if cc.Watch {
		w, err := exercise.NewWatcher(a.catalog, cc.Dir, a.onCatalogEvent)
		if err != nil {
			return NewOperationError("watch catalog", cc.Dir, err)
		}
		a.watcher = w
	}
	return nil
}

// Close stops watching and detaches from the buffer.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	a.unsub()
	if a.watcher != nil {
		return a.watcher.Close()
	}
	return nil
}

// Accessors

// Config returns the configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *App) Logger() *Logger { return a.logger }

// Metrics returns the activity counters.
func (a *App) Metrics() *Metrics { return a.metrics }

// Catalog returns the exercise catalog.
func (a *App) Catalog() *exercise.Catalog { return a.catalog }

// Buffer returns the editor buffer.
func (a *App) Buffer() *buffer.Buffer { return a.buf }

// Session returns the active guard session, or nil.
func (a *App) Session() *guard.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// Exercise returns the active exercise, or nil.
func (a *App) Exercise() *exercise.Exercise {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.exercise
}

// Submissions returns a copy of the run history, oldest first.
func (a *App) Submissions() []runner.Submission {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]runner.Submission(nil), a.submissions...)
}

// Exercises

// LoadExercise makes ex the active exercise. The outgoing session is
// detached before the starter is written and the new session is published
// only once the buffer holds the starter, so readers see either no session
// or a fully loaded one.
func (a *App) LoadExercise(ex *exercise.Exercise) error {
	if ex == nil {
		return ErrNoExercise
	}
	opts := ex.Options(a.cfg.Guard().Options())

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.session = nil
	a.exercise = nil
	a.mu.Unlock()

	a.buf.SetText(ex.Starter())
	s, err := guard.NewSession(a.buf, ex.LiteralBlocks(), guard.WithOptions(opts))
	if err != nil {
		return NewOperationError("load", ex.Slug, err)
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.session = s
	a.exercise = ex
	a.mu.Unlock()

	a.logger.WithComponent("guard").WithField("session", s.ID()).
		Info("loaded exercise %d (%s), editable %s", ex.ID, ex.Slug, s.Window())
	return nil
}

// LoadExerciseByID loads an exercise from the catalog.
func (a *App) LoadExerciseByID(id int64) error {
	ex, err := a.catalog.Get(id)
	if err != nil {
		return NewOperationError("load", strconv.FormatInt(id, 10), err)
	}
	return a.LoadExercise(ex)
}

// Reset restores the starter program of the active exercise.
func (a *App) Reset() error {
	s, ex := a.active()
	if s == nil {
		return ErrNoExercise
	}
	s.Load(ex.Starter())
	return nil
}

func (a *App) active() (*guard.Session, *exercise.Exercise) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session, a.exercise
}

// Editing

// HandleKey reports whether a keystroke at cur should be dropped before it
// reaches the buffer.
func (a *App) HandleKey(ev key.Event, cur guard.Cursor) bool {
	s := a.Session()
	if s == nil {
		return false
	}
	suppress := s.ShouldSuppress(ev, cur)
	a.metrics.RecordKey(suppress)
	if suppress {
		a.logger.WithComponent("keys").Debug("suppressed %s at %d:%d outside %s",
			ev, cur.Line, cur.Column, s.Window())
	}
	return suppress
}

// HandleTerminalKey is HandleKey for a key event read from a tcell screen.
func (a *App) HandleTerminalKey(ev *tcell.EventKey, cur guard.Cursor) bool {
	return a.HandleKey(key.FromTcell(ev), cur)
}

// HandleDOMKey is HandleKey for a browser KeyboardEvent, given its key value
// and modifier state.
func (a *App) HandleDOMKey(name string, mods key.Modifier, cur guard.Cursor) bool {
	return a.HandleKey(key.FromDOM(name, mods), cur)
}

// ApplyEdit applies edits to the buffer and returns the guard's verdict.
func (a *App) ApplyEdit(edits ...buffer.Edit) (guard.Verdict, error) {
	a.setVerdict(guard.VerdictIgnored)
	if err := a.buf.ApplyEdits(edits); err != nil {
		return guard.VerdictIgnored, err
	}
	return a.verdict(), nil
}

// ReplaceText replaces the whole buffer and returns the guard's verdict.
// Replacing the text with itself is reported as ignored.
func (a *App) ReplaceText(text string) guard.Verdict {
	a.setVerdict(guard.VerdictIgnored)
	a.buf.SetText(text)
	return a.verdict()
}

func (a *App) setVerdict(v guard.Verdict) {
	a.mu.Lock()
	a.lastVerdict = v
	a.mu.Unlock()
}

func (a *App) verdict() guard.Verdict {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastVerdict
}

// onBufferChange forwards buffer mutations to the active session.
func (a *App) onBufferChange(cc buffer.ContentChange) {
	s := a.Session()
	if s == nil {
		return
	}

	var v guard.Verdict
	if cc.Full {
		v = s.OnTextReplaced(a.buf.Text())
	} else {
		v = s.OnContentChanged(toGuardChanges(cc.Changes))
	}
	if v == guard.VerdictIgnored {
		return
	}

	a.setVerdict(v)
	a.metrics.RecordEdit(v == guard.VerdictRejected)
	if v == guard.VerdictRejected {
		a.logger.WithComponent("guard").WithField("session", s.ID()).
			Debug("rejected edit outside %s at revision %d", s.Window(), cc.RevisionID)
	}
}

// toGuardChanges converts 0-indexed buffer ranges to 1-indexed line spans.
func toGuardChanges(changes []buffer.Change) []guard.Change {
	out := make([]guard.Change, len(changes))
	for i, c := range changes {
		out[i] = guard.Change{
			StartLine: c.Range.Start.Line + 1,
			EndLine:   c.Range.End.Line + 1,
		}
	}
	return out
}

func (a *App) onCatalogEvent(ev exercise.Event) {
	log := a.logger.WithComponent("catalog")
	switch {
	case ev.Err != nil:
		log.Warn("reload %s: %v", ev.Path, ev.Err)
	case ev.Removed:
		log.Info("removed exercise %d (%s)", ev.ID, ev.Path)
	default:
		log.Info("reloaded exercise %d (%s)", ev.Exercise.ID, ev.Path)
	}
}

// Grading

// Grade runs the token and script checks against the editable window.
func (a *App) Grade(ctx context.Context) (grade.Report, error) {
	s, ex := a.active()
	if s == nil {
		return grade.Report{}, ErrNoExercise
	}
	r, err := a.checker.Check(ctx, ex, s.WindowText())
	if err != nil {
		a.logger.WithComponent("grade").Warn("check script for %s: %v", ex.Slug, err)
		return r, NewOperationError("grade", ex.Slug, err)
	}
	return r, nil
}

// Submit sends the current program to the runner and records the result.
// A failed run leaves the session and buffer untouched.
func (a *App) Submit(ctx context.Context) (runner.Submission, error) {
	s, ex := a.active()
	if s == nil {
		return runner.Submission{}, ErrNoExercise
	}
	code := a.buf.Text()
	log := a.logger.WithComponent("runner").WithField("exercise", ex.ID)

	start := time.Now()
	res, err := a.runner.Run(ctx, ex.ID, code)
	if err == nil {
		res = res.Judge(ex.ExpectedStdout)
	}
	a.metrics.RecordRun(time.Since(start), res.Passed, err)
	if err != nil {
		if errors.Is(err, runner.ErrRunInFlight) {
			log.Debug("run already in progress")
		} else {
			log.Error("run failed: %v", err)
		}
		return runner.Submission{}, NewOperationError("submit", ex.Slug, err)
	}

	sub := runner.NewSubmission(ex.ID, code, res)
	a.mu.Lock()
	a.submissions = append(a.submissions, sub)
	a.mu.Unlock()

	log.Info("run %s: %s", sub.ID, res.Status())
	return sub, nil
}

// Describe returns a one-line summary of the active session.
func (a *App) Describe() string {
	s, ex := a.active()
	if s == nil {
		return "no exercise"
	}
	st := s.Stats()
	return fmt.Sprintf("%s: editable %s, %d accepted, %d rejected", ex.Slug, s.Window(), st.Accepted, st.Rejected)
}
