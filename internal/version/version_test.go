package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFull(t *testing.T) {
	result := Full()
	if !strings.HasPrefix(result, "blight "+Version) {
		t.Errorf("Full() = %q, want prefix blight %s", result, Version)
	}
}

func TestShort(t *testing.T) {
	if Short() != Version {
		t.Errorf("Short() = %q, want %q", Short(), Version)
	}
}

func TestBackfill(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })

	Version, Commit, Date = "dev", "none", "unknown"
	backfill(&debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2024-05-01T00:00:00Z"},
		},
	})
	if Version != "v0.3.0" || Commit != "0123456" || Date != "2024-05-01T00:00:00Z" {
		t.Errorf("backfill = %s %s %s", Version, Commit, Date)
	}

	Version, Commit = "v1.0.0", "abc"
	backfill(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffffff"}}})
	if Version != "v1.0.0" || Commit != "abc" {
		t.Errorf("ldflags values must win, got %s %s", Version, Commit)
	}
}
