package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const passing = `version: v1.0.0
name: nested
root:
  name: App
  hooks: [state]
  render:
    roots: [element]
    listeners: [onclick]
    children:
      - name: Header
        props: Welcome
        render:
          texts: [hello]
expect:
  - sever s1->Header
  - clear s1 onclick
  - reclaim e2
  - drop s2 Header
  - reclaim e1
  - hook s1 state
  - drop s1 App
`

const failing = `version = "v1.0.0"
name = "wrong"
expect = ["drop s1 App", "reclaim e1"]

[root]
name = "App"

[root.render]
roots = ["element"]
`

func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithLog(t, args...)
	return out, err
}

func executeWithLog(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestCheck(t *testing.T) {
	dir := project(t, map[string]string{
		"scenarios/nested.yaml": passing,
		"scenarios/notes.txt":   "ignored",
	})

	out, err := execute(t, "check", "--config", dir, "--color", "off")
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, out)
	}
	want := "ok   " + filepath.Join(dir, "scenarios", "nested.yaml") + " (7 steps)"
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
}

func TestCheck_Failure(t *testing.T) {
	dir := project(t, map[string]string{
		"scenarios/nested.yaml": passing,
		"scenarios/wrong.toml":  failing,
	})

	out, logs, err := executeWithLog(t, "check", "--config", dir, "--color", "off")
	if err == nil {
		t.Fatalf("check should fail:\n%s", out)
	}
	if !strings.Contains(logs, "scenario failed") {
		t.Errorf("failure should be logged, got:\n%s", logs)
	}
	if got, want := err.Error(), "1 of 2 scenarios failed"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
	if !strings.Contains(out, "FAIL "+filepath.Join(dir, "scenarios", "wrong.toml")) {
		t.Errorf("output missing failure line:\n%s", out)
	}
	if !strings.Contains(out, `step 1: want "drop s1 App", got "reclaim e1"`) {
		t.Errorf("output missing step diff:\n%s", out)
	}
}

func TestRunAndShow(t *testing.T) {
	dir := project(t, map[string]string{"nested.yaml": passing})
	outDir := filepath.Join(dir, "traces")

	out, err := execute(t, "run", "--config", dir, "--color", "off", "--out", outDir, filepath.Join(dir, "nested.yaml"))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.HasPrefix(out, "scenario nested: drop s1\n") {
		t.Errorf("unexpected run output:\n%s", out)
	}

	shown, err := execute(t, "show", "--config", dir, "--color", "off", filepath.Join(outDir, "nested.trace"))
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if shown != out {
		t.Errorf("show output differs from run output:\nrun:\n%s\nshow:\n%s", out, shown)
	}
}

func TestRun_NoScenarios(t *testing.T) {
	dir := project(t, map[string]string{"scenarios/readme.md": "nothing here"})

	_, err := execute(t, "run", "--config", dir)
	if err == nil || !strings.Contains(err.Error(), "no scenario files") {
		t.Errorf("err = %v, want no scenario files", err)
	}
}

func TestRun_BadConfig(t *testing.T) {
	dir := project(t, map[string]string{"vdom.yaml": "output: {color: rainbow}\n"})

	_, err := execute(t, "run", "--config", dir)
	if err == nil || !strings.Contains(err.Error(), "output.color") {
		t.Errorf("err = %v, want output.color error", err)
	}
}

func TestVersion(t *testing.T) {
	dir := project(t, map[string]string{"go.mod": "module example.com/trees\n"})

	out, err := execute(t, "version", "--config", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "vdomtrace version "+Version) {
		t.Errorf("missing version line:\n%s", out)
	}
	if !strings.Contains(out, "project trees (example.com/trees)") {
		t.Errorf("missing project line:\n%s", out)
	}
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	if useColor("auto", &buf) {
		t.Error("auto should be off for a buffer")
	}
	if !useColor("on", &buf) {
		t.Error("on should force color")
	}
	if useColor("off", os.Stdout) {
		t.Error("off should disable color")
	}
}
