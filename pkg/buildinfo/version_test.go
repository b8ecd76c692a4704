package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromVCS(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	defer func() { Version, Commit, Date = old[0], old[1], old[2] }()

	tests := []struct {
		name       string
		commit     string
		date       string
		wantCommit string
		wantDate   string
	}{
		{"unset", "none", "unknown", "0123456789abcdef0123", "2026-01-02T03:04:05Z"},
		{"stamped", "cafe", "yesterday", "cafe", "yesterday"},
	}
	settings := []debug.BuildSetting{
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Commit, Date = tt.commit, tt.date
			fromVCS(settings)
			if Commit != tt.wantCommit || Date != tt.wantDate {
				t.Errorf("fromVCS() = %q, %q; want %q, %q", Commit, Date, tt.wantCommit, tt.wantDate)
			}
		})
	}
}

func TestShortCommit(t *testing.T) {
	old := Commit
	defer func() { Commit = old }()

	Commit = "0123456789abcdef"
	if got := ShortCommit(); got != "0123456789ab" {
		t.Errorf("ShortCommit() = %q, want 0123456789ab", got)
	}
	Commit = "abc"
	if got := ShortCommit(); got != "abc" {
		t.Errorf("ShortCommit() = %q, want abc", got)
	}
}

func TestTemplate(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	defer func() { Version, Commit, Date = old[0], old[1], old[2] }()

	Version, Commit, Date = "v0.3.0", "abc", "today"
	got := Template()
	for _, want := range []string{"{{.Name}} v0.3.0", "commit abc", "built  today"} {
		if !strings.Contains(got, want) {
			t.Errorf("Template() = %q, missing %q", got, want)
		}
	}
	if got := String(); got != "prefixtower v0.3.0 (abc, today)" {
		t.Errorf("String() = %q", got)
	}
}
