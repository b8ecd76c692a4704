package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/prefixtower/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	old := [3]string{buildinfo.Version, buildinfo.Commit, buildinfo.Date}
	defer func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = old[0], old[1], old[2] }()

	SetVersion("1.0.0", "abc123", "2024-01-01")
	if buildinfo.Version != "1.0.0" {
		t.Errorf("Version = %q, want %q", buildinfo.Version, "1.0.0")
	}
	if buildinfo.Commit != "abc123" {
		t.Errorf("Commit = %q, want %q", buildinfo.Commit, "abc123")
	}

	SetVersion("", "", "")
	if buildinfo.Version != "1.0.0" {
		t.Errorf("empty SetVersion changed Version to %q", buildinfo.Version)
	}
}

// isolate points the XDG directories at fresh temporary directories for the
// rest of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

// run executes the root command with args in fresh XDG directories,
// returning stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolate(t)
	return runIn(t, args...)
}

// runIn is run without resetting the XDG directories, for multi-step tests.
func runIn(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	c.SetOutput(&out)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(&logs)
	err := root.Execute()
	return out.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("--help error: %v", err)
	}
	for _, cmd := range []string{"synth", "rank", "unrank", "enumerate", "explore", "serve", "history", "cache", "completion"} {
		if !strings.Contains(out, cmd) {
			t.Errorf("help output missing command %q", cmd)
		}
	}
}

func TestCompletion(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "__start_prefixtower"},
		{"zsh", "#compdef prefixtower"},
		{"fish", "complete -c prefixtower"},
		{"powershell", "Register-ArgumentCompleter"},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			out, err := run(t, "completion", tt.shell)
			if err != nil {
				t.Fatalf("completion %s error: %v", tt.shell, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("completion %s output missing %q", tt.shell, tt.want)
			}
		})
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}
