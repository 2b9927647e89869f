package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" {
		t.Error("Get().Version is empty")
	}
	if info.Version != strings.TrimSpace(info.Version) {
		t.Errorf("Version = %q, contains surrounding whitespace", info.Version)
	}
	if info.GitCommit == "" {
		t.Error("Get().GitCommit is empty, want a hash or \"unknown\"")
	}
	if info.BuildDate == "" {
		t.Error("Get().BuildDate is empty, want a timestamp or \"unknown\"")
	}
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:   "1.2.3",
		GitCommit: "abc1234",
		BuildDate: "2026-08-30T00:00:00Z",
	}

	s := info.String()
	for _, want := range []string{"1.2.3", "abc1234", "2026-08-30T00:00:00Z"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
