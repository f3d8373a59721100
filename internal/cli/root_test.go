package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetVersion(t *testing.T) {
	SetVersion("v0.3.0", "4f2a1c9", "2026-08-01T00:00:00Z")

	if version != "v0.3.0" {
		t.Errorf("version = %q, want %q", version, "v0.3.0")
	}
	if commit != "4f2a1c9" {
		t.Errorf("commit = %q, want %q", commit, "4f2a1c9")
	}
	if date != "2026-08-01T00:00:00Z" {
		t.Errorf("date = %q, want %q", date, "2026-08-01T00:00:00Z")
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	if root.Use != "dagopt" {
		t.Errorf("Use = %q, want dagopt", root.Use)
	}

	got := make(map[string]bool)
	for _, c := range root.Commands() {
		got[c.Name()] = true
	}
	for _, name := range []string{"optimize", "analyze", "random", "render", "serve", "export", "snapshots"} {
		if !got[name] {
			t.Errorf("command tree missing %q", name)
		}
	}
}

func TestRootVersionOutput(t *testing.T) {
	SetVersion("v1.2.3", "abc123", "2026-08-01")
	t.Cleanup(func() { SetVersion("", "", "") })

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--version"})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "dagopt v1.2.3") || !strings.Contains(out, "commit: abc123") {
		t.Errorf("version output = %q", out)
	}
}

func TestRootUnknownCommand(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"defragment"})

	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("unknown command did not error")
	}
}

// End-to-end through the command tree: analyze a graph file and check the
// JSON the schedule analyzer writes.
func TestRootAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph.json")
	outPath := filepath.Join(dir, "schedule.json")
	graph := `{"edges": [
        {"source": "a", "target": "b"},
        {"source": "b", "target": "d"},
        {"source": "a", "target": "c"},
        {"source": "c", "target": "d"}
    ]}`
	if err := os.WriteFile(graphPath, []byte(graph), 0o644); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"analyze", graphPath, "--kind", "schedule", "--json", "-o", outPath})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `"makespan": 2`) {
		t.Errorf("schedule output missing makespan: %s", data)
	}
}
