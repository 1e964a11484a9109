package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func stubBuildInfo(t *testing.T, info *debug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestString_Defaults(t *testing.T) {
	stubBuildInfo(t, nil)
	require.Equal(t, "pillarsite unknown (commit unknown, built unknown)", String())
}

func TestString_FallsBackToVCSStamp(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})
	require.Equal(t, "pillarsite v0.4.1 (commit 0123456789ab, built 2026-01-02T03:04:05Z)", String())
}

func TestString_LdflagsWin(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}},
	})
	orig := Version
	Version = "v1.0.0"
	t.Cleanup(func() { Version = orig })

	require.Equal(t, "pillarsite v1.0.0 (commit abc, built unknown)", String())
}
