package version

import (
	"fmt"
	"runtime/debug"
)

// Set at link time:
// go build -ldflags "-X git.home.luguber.info/inful/pillarsite/internal/version.Version=v0.3.0".
var (
	Version   = "unknown"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// String renders the version line printed by --version. Values not set via
// ldflags fall back to the VCS stamp the go tool embeds in the binary.
func String() string {
	version, commit, built := Version, GitCommit, BuildTime
	if info, ok := readBuildInfo(); ok {
		if version == "unknown" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "unknown":
				commit = shortRevision(s.Value)
			case s.Key == "vcs.time" && built == "unknown":
				built = s.Value
			}
		}
	}
	return fmt.Sprintf("pillarsite %s (commit %s, built %s)", version, commit, built)
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
