package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/fenceline/internal/config"
	"github.com/dshills/fenceline/internal/engine/buffer"
	"github.com/dshills/fenceline/internal/exercise"
	"github.com/dshills/fenceline/internal/guard"
	"github.com/dshills/fenceline/internal/input/key"
	"github.com/dshills/fenceline/internal/runner"
)

const starter = "use std::io;\nfn main() {\n    let x = 1;\n    println!(\"{}\", x);\n}"

func testExercise() *exercise.Exercise {
	return &exercise.Exercise{
		ID:             7,
		Slug:           "print-x",
		StarterCode:    starter,
		ExpectedStdout: "1",
		FixedTop:       "use std::io;\nfn main() {",
		FixedBottom:    "}",
		RequiredToken:  "println",
		CheckScript: `
function check(src)
  if contains_token(src, "x") then
    return true, "uses x"
  end
  return false, "x is unused"
end
`,
	}
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithLogger(NullLogger)}, opts...)
	a := New(config.Default(), opts...)
	t.Cleanup(func() { _ = a.Close() })
	if err := a.LoadExercise(testExercise()); err != nil {
		t.Fatalf("LoadExercise: %v", err)
	}
	return a
}

func TestLoadExercise(t *testing.T) {
	a := newTestApp(t)

	if got := a.Buffer().Text(); got != starter {
		t.Errorf("buffer = %q, want starter", got)
	}
	s := a.Session()
	if s == nil {
		t.Fatal("no session")
	}
	if w := s.Window(); w.Start != 3 || w.End != 4 {
		t.Errorf("window = %s, want [3,4]", w)
	}
	if s.State() != guard.StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
	if a.Exercise().Slug != "print-x" {
		t.Errorf("exercise = %q", a.Exercise().Slug)
	}
}

func TestLoadExerciseNil(t *testing.T) {
	a := New(config.Default(), WithLogger(NullLogger))
	defer a.Close()

	if err := a.LoadExercise(nil); !errors.Is(err, ErrNoExercise) {
		t.Errorf("err = %v, want ErrNoExercise", err)
	}
}

func TestApplyEdit(t *testing.T) {
	tests := []struct {
		name string
		edit buffer.Edit
		want guard.Verdict
	}{
		{
			name: "insert inside window",
			edit: buffer.NewInsert(buffer.Point{Line: 2, Column: 4}, "mut "),
			want: guard.VerdictAccepted,
		},
		{
			name: "insert in top block",
			edit: buffer.NewInsert(buffer.Point{Line: 0, Column: 0}, "// "),
			want: guard.VerdictRejected,
		},
		{
			name: "delete across the top boundary",
			edit: buffer.NewDelete(buffer.Point{Line: 1, Column: 11}, buffer.Point{Line: 2, Column: 0}),
			want: guard.VerdictRejected,
		},
		{
			name: "delete closing brace",
			edit: buffer.NewDelete(buffer.Point{Line: 4, Column: 0}, buffer.Point{Line: 4, Column: 1}),
			want: guard.VerdictRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t)

			v, err := a.ApplyEdit(tt.edit)
			if err != nil {
				t.Fatalf("ApplyEdit: %v", err)
			}
			if v != tt.want {
				t.Errorf("verdict = %s, want %s", v, tt.want)
			}
			if tt.want == guard.VerdictRejected {
				if got := a.Buffer().Text(); got != starter {
					t.Errorf("buffer not restored: %q", got)
				}
			}
			if got := a.Buffer().Text(); got != a.Session().Snapshot() {
				t.Errorf("buffer and snapshot diverged")
			}
		})
	}
}

func TestApplyEditInvalidRange(t *testing.T) {
	a := newTestApp(t)

	_, err := a.ApplyEdit(buffer.NewInsert(buffer.Point{Line: 40, Column: 0}, "x"))
	if !errors.Is(err, buffer.ErrPointOutOfRange) {
		t.Errorf("err = %v, want ErrPointOutOfRange", err)
	}
}

func TestApplyEditGrowsWindow(t *testing.T) {
	a := newTestApp(t)

	v, err := a.ApplyEdit(buffer.NewInsert(buffer.Point{Line: 3, Column: 0}, "    let y = 2;\n"))
	if err != nil || v != guard.VerdictAccepted {
		t.Fatalf("verdict = %s, err = %v", v, err)
	}
	if w := a.Session().Window(); w.Start != 3 || w.End != 5 {
		t.Errorf("window = %s, want [3,5]", w)
	}
}

func TestReplaceText(t *testing.T) {
	a := newTestApp(t)

	inside := strings.Replace(starter, "let x = 1;", "let x = 2;", 1)
	if v := a.ReplaceText(inside); v != guard.VerdictAccepted {
		t.Errorf("inside: verdict = %s", v)
	}

	outside := strings.Replace(inside, "use std::io;", "use std::fs;", 1)
	if v := a.ReplaceText(outside); v != guard.VerdictRejected {
		t.Errorf("outside: verdict = %s", v)
	}
	if got := a.Buffer().Text(); got != inside {
		t.Errorf("buffer = %q, want last accepted text", got)
	}

	if v := a.ReplaceText(inside); v != guard.VerdictIgnored {
		t.Errorf("unchanged: verdict = %s, want ignored", v)
	}
}

func TestRejectionCountsOnce(t *testing.T) {
	a := newTestApp(t)

	_, _ = a.ApplyEdit(buffer.NewInsert(buffer.Point{Line: 0, Column: 0}, "x"))

	st := a.Session().Stats()
	if st.Rejected != 1 || st.Accepted != 0 {
		t.Errorf("stats = %+v", st)
	}
	if m := a.Metrics().Snapshot(); m.EditsRejected != 1 || m.EditsAccepted != 0 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestHandleKey(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		spec string
		cur  guard.Cursor
		want bool
	}{
		{"x", guard.Cursor{Line: 1, Column: 1}, true},
		{"Ctrl+V", guard.Cursor{Line: 5, Column: 1}, true},
		{"x", guard.Cursor{Line: 3, Column: 5}, false},
		{"Down", guard.Cursor{Line: 1, Column: 1}, false},
		{"Backspace", guard.Cursor{Line: 3, Column: 1}, true},
	}

	for _, tt := range tests {
		if got := a.HandleKey(key.MustParse(tt.spec), tt.cur); got != tt.want {
			t.Errorf("HandleKey(%s, %d:%d) = %v, want %v", tt.spec, tt.cur.Line, tt.cur.Column, got, tt.want)
		}
	}

	m := a.Metrics().Snapshot()
	if m.KeysHandled != 5 || m.KeysSuppressed != 3 {
		t.Errorf("keys = %d/%d, want 5/3", m.KeysHandled, m.KeysSuppressed)
	}
}

func TestHandleTerminalKey(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name string
		ev   *tcell.EventKey
		cur  guard.Cursor
		want bool
	}{
		{"ctrl+v in header", tcell.NewEventKey(tcell.KeyCtrlV, 0, tcell.ModCtrl), guard.Cursor{Line: 1, Column: 1}, true},
		{"rune in window", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), guard.Cursor{Line: 3, Column: 2}, false},
		{"backspace at window start", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), guard.Cursor{Line: 3, Column: 1}, true},
		{"arrow in footer", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), guard.Cursor{Line: 5, Column: 1}, false},
	}

	for _, tt := range tests {
		if got := a.HandleTerminalKey(tt.ev, tt.cur); got != tt.want {
			t.Errorf("%s: HandleTerminalKey() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHandleDOMKey(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name string
		mods key.Modifier
		cur  guard.Cursor
		want bool
	}{
		{"v", key.ModMeta, guard.Cursor{Line: 5, Column: 1}, true},
		{"é", key.ModNone, guard.Cursor{Line: 1, Column: 4}, true},
		{"é", key.ModNone, guard.Cursor{Line: 4, Column: 4}, false},
		{"ArrowDown", key.ModNone, guard.Cursor{Line: 1, Column: 1}, false},
		{"Shift", key.ModShift, guard.Cursor{Line: 1, Column: 1}, false},
		{"Backspace", key.ModNone, guard.Cursor{Line: 3, Column: 1}, true},
	}

	for _, tt := range tests {
		if got := a.HandleDOMKey(tt.name, tt.mods, tt.cur); got != tt.want {
			t.Errorf("HandleDOMKey(%q, %d:%d) = %v, want %v", tt.name, tt.cur.Line, tt.cur.Column, got, tt.want)
		}
	}
}

func TestNoExercise(t *testing.T) {
	a := New(config.Default(), WithLogger(NullLogger))
	defer a.Close()

	if a.HandleKey(key.MustParse("x"), guard.Cursor{Line: 1, Column: 1}) {
		t.Error("HandleKey without a session should not suppress")
	}
	if err := a.Reset(); !errors.Is(err, ErrNoExercise) {
		t.Errorf("Reset: %v", err)
	}
	if _, err := a.Submit(context.Background()); !errors.Is(err, ErrNoExercise) {
		t.Errorf("Submit: %v", err)
	}
	if _, err := a.Grade(context.Background()); !errors.Is(err, ErrNoExercise) {
		t.Errorf("Grade: %v", err)
	}
	if a.Describe() != "no exercise" {
		t.Errorf("Describe() = %q", a.Describe())
	}

	// Without a session every edit goes through.
	if v := a.ReplaceText("anything"); v != guard.VerdictIgnored {
		t.Errorf("verdict = %s", v)
	}
	if a.Buffer().Text() != "anything" {
		t.Error("edit was blocked without a session")
	}
}

func TestReset(t *testing.T) {
	a := newTestApp(t)
	_, _ = a.ApplyEdit(buffer.NewInsert(buffer.Point{Line: 2, Column: 4}, "mut "))

	if err := a.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got := a.Buffer().Text(); got != starter {
		t.Errorf("buffer = %q", got)
	}
	if a.Session().Snapshot() != starter {
		t.Error("snapshot not reset")
	}
}

func TestSwitchExercise(t *testing.T) {
	a := newTestApp(t)

	next := &exercise.Exercise{
		ID:          8,
		Slug:        "hello",
		StarterCode: "fn main() {\n    println!(\"hi\");\n}",
		FixedTop:    "fn main() {",
		FixedBottom: "}",
	}
	if err := a.LoadExercise(next); err != nil {
		t.Fatalf("LoadExercise: %v", err)
	}
	if got := a.Buffer().Text(); got != next.StarterCode {
		t.Errorf("buffer = %q, the previous session blocked the load", got)
	}
	if w := a.Session().Window(); w.Start != 2 || w.End != 2 {
		t.Errorf("window = %s, want [2,2]", w)
	}
}

func TestLoadExerciseDetachesDuringStarterWrite(t *testing.T) {
	a := newTestApp(t)
	old := a.Session()

	var seen []*guard.Session
	unsub := a.Buffer().OnChange(func(buffer.ContentChange) {
		seen = append(seen, a.Session())
	})
	defer unsub()

	next := &exercise.Exercise{
		ID:          8,
		Slug:        "hello",
		StarterCode: "fn main() {\n    println!(\"hi\");\n}",
		FixedTop:    "fn main() {",
		FixedBottom: "}",
	}
	if err := a.LoadExercise(next); err != nil {
		t.Fatalf("LoadExercise: %v", err)
	}

	if len(seen) == 0 {
		t.Fatal("starter write was not observed")
	}
	for i, s := range seen {
		if s != nil {
			t.Errorf("write %d saw session %s during load (old: %v)", i, s.ID(), s == old)
		}
	}

	s := a.Session()
	if s == nil || s == old {
		t.Fatal("new session was not published")
	}
	if s.Snapshot() != next.StarterCode {
		t.Errorf("snapshot = %q, want starter", s.Snapshot())
	}
	if s.Stats() != (guard.Stats{}) {
		t.Errorf("stats = %+v, the starter write was judged", s.Stats())
	}
	if a.Exercise() != next {
		t.Error("exercise was not published with the session")
	}
}

func TestLoadExerciseByID(t *testing.T) {
	cat := exercise.NewCatalog()
	cat.Put(testExercise())
	a := New(config.Default(), WithLogger(NullLogger), WithCatalog(cat))
	defer a.Close()

	if err := a.LoadExerciseByID(7); err != nil {
		t.Fatalf("LoadExerciseByID: %v", err)
	}
	err := a.LoadExerciseByID(99)
	if !errors.Is(err, exercise.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if a.Exercise().ID != 7 {
		t.Error("failed load replaced the active exercise")
	}
}

func TestEmptyStarter(t *testing.T) {
	a := New(config.Default(), WithLogger(NullLogger))
	defer a.Close()

	if err := a.LoadExercise(&exercise.Exercise{ID: 1, Slug: "blank"}); err != nil {
		t.Fatal(err)
	}
	if a.Buffer().Text() != exercise.EmptyStarter {
		t.Errorf("buffer = %q", a.Buffer().Text())
	}
}

func TestGrade(t *testing.T) {
	a := newTestApp(t)

	r, err := a.Grade(context.Background())
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if !r.TokenUsed || !r.CheckRan || !r.CheckPassed || r.CheckMessage != "uses x" {
		t.Errorf("report = %+v", r)
	}
	if !r.Passed() {
		t.Error("expected a passing report")
	}
}

func TestGradeIgnoresFixedBlocks(t *testing.T) {
	a := newTestApp(t)
	a.ReplaceText("use std::io;\nfn main() {\n    let y = 1;\n}")

	r, err := a.Grade(context.Background())
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if r.TokenUsed || r.CheckPassed {
		t.Errorf("report = %+v", r)
	}
}

func TestGradeScriptError(t *testing.T) {
	a := New(config.Default(), WithLogger(NullLogger))
	defer a.Close()
	ex := testExercise()
	ex.CheckScript = "function check(src) error('bad') end"
	if err := a.LoadExercise(ex); err != nil {
		t.Fatal(err)
	}

	r, err := a.Grade(context.Background())
	var op *OperationError
	if !errors.As(err, &op) || op.Op != "grade" {
		t.Fatalf("err = %v, want grade OperationError", err)
	}
	if !r.TokenUsed {
		t.Error("token check should complete despite the script error")
	}
}

func runnerServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmit(t *testing.T) {
	srv := runnerServer(t, http.StatusOK,
		`{"compiled":true,"timed_out":false,"stdout":"1\n","stderr":"","passed":true,"output":"1\n"}`)
	a := newTestApp(t, WithRunner(runner.NewClient(srv.URL)))

	sub, err := a.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.ExerciseID != 7 || sub.Code != starter || sub.Result.Status() != runner.StatusPassed {
		t.Errorf("submission = %+v", sub)
	}
	if subs := a.Submissions(); len(subs) != 1 || subs[0].ID != sub.ID {
		t.Errorf("history = %+v", subs)
	}
	if m := a.Metrics().Snapshot(); m.Runs != 1 || m.RunsPassed != 1 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestSubmitGradesUnjudgedReply(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status runner.Status
	}{
		{"matching stdout", `{"compiled":true,"timed_out":false,"stdout":"1\n","stderr":""}`, runner.StatusPassed},
		{"wrong stdout", `{"compiled":true,"timed_out":false,"stdout":"2\n","stderr":""}`, runner.StatusWrongAnswer},
		{"service verdict wins", `{"compiled":true,"stdout":"2\n","passed":true}`, runner.StatusPassed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := runnerServer(t, http.StatusOK, tt.body)
			a := newTestApp(t, WithRunner(runner.NewClient(srv.URL)))

			sub, err := a.Submit(context.Background())
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if got := sub.Result.Status(); got != tt.status {
				t.Errorf("status = %v, want %v", got, tt.status)
			}
		})
	}
}

func TestSubmitFailureLeavesSession(t *testing.T) {
	srv := runnerServer(t, http.StatusInternalServerError, "down")
	a := newTestApp(t, WithRunner(runner.NewClient(srv.URL)))
	_, _ = a.ApplyEdit(buffer.NewInsert(buffer.Point{Line: 2, Column: 4}, "mut "))
	before := a.Buffer().Text()

	_, err := a.Submit(context.Background())
	var se *runner.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %v, want StatusError 500", err)
	}
	if a.Buffer().Text() != before || a.Session().Snapshot() != before {
		t.Error("failed run changed the buffer")
	}
	if len(a.Submissions()) != 0 {
		t.Error("failed run was recorded")
	}
	if m := a.Metrics().Snapshot(); m.RunsFailed != 1 {
		t.Errorf("RunsFailed = %d", m.RunsFailed)
	}
}

const catalogTOML = `
id = 11
slug = "loops"
starter_code = """
fn main() {
    for i in 0..3 {}
}"""
fixed_top = "fn main() {"
fixed_bottom = "}"
`

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "loops.toml"), []byte(catalogTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	if err := cfg.Set("catalog.dir", dir); err != nil {
		t.Fatal(err)
	}

	a := New(cfg, WithLogger(NullLogger))
	defer a.Close()
	if err := a.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.Catalog().Len() != 1 {
		t.Fatalf("catalog has %d exercises", a.Catalog().Len())
	}
	if err := a.LoadExerciseByID(11); err != nil {
		t.Fatal(err)
	}
	if w := a.Session().Window(); w.Start != 2 || w.End != 2 {
		t.Errorf("window = %s", w)
	}
}

func TestOpenNoDir(t *testing.T) {
	a := New(config.Default(), WithLogger(NullLogger))
	defer a.Close()

	if err := a.Open(context.Background()); err != nil {
		t.Errorf("Open: %v", err)
	}
}

func TestCloseTwice(t *testing.T) {
	a := New(config.Default(), WithLogger(NullLogger))
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := a.LoadExercise(testExercise()); !errors.Is(err, ErrClosed) {
		t.Errorf("LoadExercise after Close: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	a := newTestApp(t)
	_, _ = a.ApplyEdit(buffer.NewInsert(buffer.Point{Line: 0, Column: 0}, "x"))

	want := "print-x: editable [3,4], 0 accepted, 1 rejected"
	if got := a.Describe(); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
