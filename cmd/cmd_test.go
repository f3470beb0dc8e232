package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fakeyudi/intervals/internal/config"
	"github.com/fakeyudi/intervals/internal/engine"
	"github.com/fakeyudi/intervals/internal/playback"
	"github.com/fakeyudi/intervals/internal/session"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	return executeWithInput(root, "", args...)
}

func executeWithInput(root *cobra.Command, input string, args ...string) (string, error) {
	resetFlags(root)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return buf.String(), err
}

// resetFlags restores every flag to its default; package-level flag
// variables otherwise leak between test runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// isolate points every data and config lookup at temp directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("INTERVALS_AUDIO", "off")
	t.Setenv("INTERVALS_LOG_LEVEL", "error")
	t.Setenv("INTERVALS_STORE", "")
}

func testStore(t *testing.T) session.Store {
	t.Helper()
	store, err := session.Open(session.BackendJSON, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

var createdID = regexp.MustCompile(`Created .* \(([0-9a-f-]{36})\)`)

func mustCreate(t *testing.T, args ...string) string {
	t.Helper()
	out, err := executeCommand(rootCmd, append([]string{"create"}, args...)...)
	if err != nil {
		t.Fatalf("create: %v\n%s", err, out)
	}
	m := createdID.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no id in create output: %q", out)
	}
	return m[1]
}

func TestCreateListShow(t *testing.T) {
	isolate(t)
	id := mustCreate(t, "Hills")

	out, err := executeCommand(rootCmd, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Hills") || !strings.Contains(out, id[:8]) || !strings.Contains(out, "50m 0s") {
		t.Errorf("list output missing session:\n%s", out)
	}

	out, err = executeCommand(rootCmd, "show", id[:8])
	if err != nil {
		t.Fatalf("show by prefix: %v", err)
	}
	for _, want := range []string{"Hills", "Warm-up", "Work-out", "Cool-down"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestCreateDefaultsName(t *testing.T) {
	isolate(t)
	id := mustCreate(t)
	s, err := testStore(t).Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != defaultSessionName {
		t.Errorf("Name = %q, want %q", s.Name, defaultSessionName)
	}
}

func TestListEmpty(t *testing.T) {
	isolate(t)
	out, err := executeCommand(rootCmd, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "no sessions yet") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestListSortsByName(t *testing.T) {
	isolate(t)
	mustCreate(t, "Bravo")
	mustCreate(t, "Alpha")

	out, err := executeCommand(rootCmd, "list", "--sort", "name", "--asc")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Index(out, "Alpha") > strings.Index(out, "Bravo") {
		t.Errorf("Alpha should be listed before Bravo:\n%s", out)
	}

	_, err = executeCommand(rootCmd, "list", "--sort", "colour")
	if mapExitCode(err) != exitInvalidUsage {
		t.Errorf("unknown sort key: exit %d, want %d (%v)", mapExitCode(err), exitInvalidUsage, err)
	}
}

func TestShowUnknownSessionIsNotFound(t *testing.T) {
	isolate(t)
	_, err := executeCommand(rootCmd, "show", "nope")
	if !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if got := mapExitCode(err); got != exitNotFound {
		t.Errorf("exit code = %d, want %d", got, exitNotFound)
	}
}

func TestEmptyIDMatchesNothing(t *testing.T) {
	isolate(t)
	mustCreate(t, "Only")

	for _, args := range [][]string{{"show", ""}, {"run", " ", "--headless"}, {"delete", "--yes", ""}} {
		_, err := executeCommand(rootCmd, args...)
		if !errors.Is(err, session.ErrNotFound) {
			t.Errorf("%q: err = %v, want ErrNotFound", args, err)
		}
		if got := mapExitCode(err); got != exitNotFound {
			t.Errorf("%q: exit code = %d, want %d", args, got, exitNotFound)
		}
	}
	all, err := testStore(t).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].LastUsedAt != nil {
		t.Errorf("empty id touched a session: %+v", all)
	}
}

func TestDuplicateAndDelete(t *testing.T) {
	isolate(t)
	id := mustCreate(t, "Tempo")

	out, err := executeCommand(rootCmd, "duplicate", id)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	m := createdID.FindStringSubmatch(out)
	if m == nil || m[1] == id {
		t.Fatalf("duplicate did not report a new id: %q", out)
	}
	dup, err := testStore(t).Get(m[1])
	if err != nil {
		t.Fatal(err)
	}
	if dup.Name != "Tempo (Copy)" {
		t.Errorf("Name = %q", dup.Name)
	}

	if _, err := executeCommand(rootCmd, "delete", "--yes", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := testStore(t).Get(id); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("deleted session still readable: %v", err)
	}
	// Not a terminal, so no prompt.
	if _, err := executeCommand(rootCmd, "delete", m[1]); err != nil {
		t.Fatalf("delete without --yes: %v", err)
	}
}

func TestPace(t *testing.T) {
	isolate(t)
	id := mustCreate(t, "Pace")
	store := testStore(t)

	steps := []struct {
		args []string
		want bool
	}{
		{[]string{"pace", id}, true},
		{[]string{"pace", id}, false},
		{[]string{"pace", id, "on"}, true},
		{[]string{"pace", id, "on"}, true},
		{[]string{"pace", id, "off"}, false},
	}
	for _, step := range steps {
		if _, err := executeCommand(rootCmd, step.args...); err != nil {
			t.Fatalf("%v: %v", step.args, err)
		}
		s, err := store.Get(id)
		if err != nil {
			t.Fatal(err)
		}
		if s.ShowPace != step.want {
			t.Errorf("after %v ShowPace = %v, want %v", step.args, s.ShowPace, step.want)
		}
	}

	_, err := executeCommand(rootCmd, "pace", id, "maybe")
	if mapExitCode(err) != exitInvalidUsage {
		t.Errorf("bad value: exit %d, want %d", mapExitCode(err), exitInvalidUsage)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".yaml", ".md"} {
		t.Run(ext, func(t *testing.T) {
			isolate(t)
			id := mustCreate(t, "Ladder")
			path := filepath.Join(t.TempDir(), "ladder"+ext)

			if out, err := executeCommand(rootCmd, "export", id, "-o", path); err != nil {
				t.Fatalf("export: %v\n%s", err, out)
			}

			out, err := executeCommand(rootCmd, "import", path)
			if err != nil {
				t.Fatalf("import: %v\n%s", err, out)
			}
			if !strings.Contains(out, "Imported Ladder") {
				t.Errorf("import output: %q", out)
			}

			all, err := testStore(t).List()
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 2 {
				t.Fatalf("got %d sessions, want 2 (colliding id re-assigned)", len(all))
			}
			if all[0].ID == all[1].ID {
				t.Error("imported session reused an existing id")
			}
			if all[0].TotalTime != all[1].TotalTime {
				t.Errorf("totals differ: %d vs %d", all[0].TotalTime, all[1].TotalTime)
			}
		})
	}
}

func TestExportToStdout(t *testing.T) {
	isolate(t)
	id := mustCreate(t, "Stdout")
	out, err := executeCommand(rootCmd, "export", id, "--format", "markdown")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "<!-- intervals-session-version: 1 -->") {
		t.Errorf("markdown sentinel missing:\n%s", out)
	}
}

func TestImportFromStdin(t *testing.T) {
	isolate(t)
	input := `[{"id":"a1","name":"Browser","showPace":false,"items":[
		{"id":"i1","type":"Action","description":"Run","speed":10,"incline":1,"timer":60,"sets":2,"color":"#36903D","subItems":[]}
	],"createdAt":"2024-01-01T00:00:00Z","totalTime":0}]`

	out, err := executeWithInput(rootCmd, input, "import", "-")
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	s, err := testStore(t).Get("a1")
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalTime != 120 || s.Items[0].Kind != session.KindWorkOut {
		t.Errorf("imported session = %+v", s)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := executeCommand(rootCmd, "import", path)
	if mapExitCode(err) != exitInvalidUsage {
		t.Errorf("exit code = %d, want %d (%v)", mapExitCode(err), exitInvalidUsage, err)
	}

	_, err = executeCommand(rootCmd, "import", filepath.Join(t.TempDir(), "missing.json"))
	if mapExitCode(err) != exitNotFound {
		t.Errorf("missing file: exit code = %d, want %d", mapExitCode(err), exitNotFound)
	}
}

func TestRunHeadlessCompletes(t *testing.T) {
	isolate(t)
	store := testStore(t)
	s := &session.Session{
		ID:   "quick",
		Name: "Quick",
		Items: []session.Item{{
			Kind: session.KindWorkOut, Description: "Go", Speed: 10, Duration: 2, Sets: 2,
		}},
	}
	if err := store.Save(s); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(rootCmd, "run", "quick", "--headless", "--no-countdown", "--tick", "1ms")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}

	var last playback.Update
	lines := 0
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "{") {
			continue
		}
		if err := json.Unmarshal([]byte(line), &last); err != nil {
			t.Fatalf("bad JSON line %q: %v", line, err)
		}
		lines++
	}
	if lines < 5 {
		t.Errorf("got %d updates, want at least one per tick", lines)
	}
	if last.Display.Status != engine.StatusFinished || last.Display.Outcome != engine.OutcomeCompleted {
		t.Errorf("last display = %s/%s, want finished/completed", last.Display.Status, last.Display.Outcome)
	}
	if last.Display.Elapsed != 4 || last.Display.Percent != 100 {
		t.Errorf("elapsed %d, percent %d", last.Display.Elapsed, last.Display.Percent)
	}

	got, err := store.Get("quick")
	if err != nil {
		t.Fatal(err)
	}
	if got.LastUsedAt == nil || time.Since(*got.LastUsedAt) > time.Minute {
		t.Errorf("LastUsedAt = %v, want just now", got.LastUsedAt)
	}
}

func TestRunEmptyPlanIsUsageError(t *testing.T) {
	isolate(t)
	s := &session.Session{
		ID:    "empty",
		Name:  "Empty",
		Items: []session.Item{{Kind: session.KindWarmUp, Sets: 1}},
	}
	if err := testStore(t).Save(s); err != nil {
		t.Fatal(err)
	}

	_, err := executeCommand(rootCmd, "run", "empty", "--headless")
	if !errors.Is(err, playback.ErrEmptyPlan) {
		t.Fatalf("err = %v, want ErrEmptyPlan", err)
	}
	if mapExitCode(err) != exitInvalidUsage {
		t.Errorf("exit code = %d, want %d", mapExitCode(err), exitInvalidUsage)
	}
}

func TestInvalidConfigExitCode(t *testing.T) {
	isolate(t)
	t.Setenv("INTERVALS_STORE", "postgres")
	_, err := executeCommand(rootCmd, "list")
	if got := mapExitCode(err); got != exitInvalidConfig {
		t.Errorf("exit code = %d, want %d (%v)", got, exitInvalidConfig, err)
	}
}

func TestUsageErrors(t *testing.T) {
	isolate(t)
	cases := [][]string{
		{"list", "--bogus"},
		{"frobnicate"},
		{"show"},
		{"pace", "a", "on", "extra"},
	}
	for _, args := range cases {
		_, err := executeCommand(rootCmd, args...)
		if got := mapExitCode(err); got != exitInvalidUsage {
			t.Errorf("%v: exit code = %d, want %d (%v)", args, got, exitInvalidUsage, err)
		}
	}
}

func TestSetupWritesConfig(t *testing.T) {
	isolate(t)
	out, err := executeWithInput(rootCmd, "sqlite\ny\n2\noff\n", "setup")
	if err != nil {
		t.Fatalf("setup: %v\n%s", err, out)
	}
	global, err := config.LoadGlobal()
	if err != nil {
		t.Fatal(err)
	}
	if global.Store != "sqlite" || global.PreCueWindow() != 2 || global.Audio.Mode != "off" {
		t.Errorf("saved config = %+v", global)
	}
}

func TestCompletionScript(t *testing.T) {
	isolate(t)
	out, err := executeCommand(rootCmd, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "intervals") {
		t.Errorf("script does not mention the command:\n%.200s", out)
	}
}

func TestMapExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, exitSuccess},
		{errors.New("boom"), exitRuntimeFailure},
		{withExitCode(exitInterrupted, errInterrupted), exitInterrupted},
		{errors.Join(errors.New("wrapped"), session.ErrNotFound), exitNotFound},
		{&config.ValidationError{Problems: []string{"x"}}, exitInvalidConfig},
		{&config.ParseError{Path: "c.yaml", Err: errors.New("bad")}, exitInvalidConfig},
		{errors.New(`unknown command "x" for "intervals"`), exitInvalidUsage},
	}
	for _, tc := range cases {
		if got := mapExitCode(tc.err); got != tc.want {
			t.Errorf("mapExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
