// Package buildinfo reports which prefixtower binary is running.
//
// Release builds stamp the three variables with the linker, for example
//
//	go build -ldflags "-X github.com/matzehuels/prefixtower/pkg/buildinfo.Version=v0.3.0" ./cmd/prefixtower
//
// A plain "go build" or "go install" leaves them unset; the commit and the
// commit time are then taken from the VCS stamp the toolchain embeds.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Linker-stamped build identity.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	fromVCS(info.Settings)
}

// fromVCS fills Commit and Date from the vcs.revision and vcs.time build
// settings unless the linker already set them.
func fromVCS(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" && s.Value != "" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == "unknown" && s.Value != "" {
				Date = s.Value
			}
		}
	}
}

// ShortCommit is Commit cut to twelve characters.
func ShortCommit() string {
	if len(Commit) > 12 {
		return Commit[:12]
	}
	return Commit
}

// String is a one-line summary, as logged at startup.
func String() string {
	return fmt.Sprintf("prefixtower %s (%s, %s)", Version, ShortCommit(), Date)
}

// Template is the cobra version template printed by --version.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\n  commit %s\n  built  %s\n", Version, Commit, Date)
}
