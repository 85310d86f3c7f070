package main

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	Version = "0.1.0-test"
	GitCommit = "abc123"
	BuildDate = "2026-10-01"

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })
	versionCmd.Run(versionCmd, nil)

	for _, want := range []string{"copycheck 0.1.0-test", "Git Commit: abc123", "Build Date: 2026-10-01", runtime.Version()} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("version output missing %q:\n%s", want, out.String())
		}
	}
}

func TestCommandTree(t *testing.T) {
	want := []string{"batch", "cache", "check", "completion", "config", "history", "rules", "schedule", "version", "watch"}

	have := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		have[cmd.Name()] = true
		if cmd.Short == "" {
			t.Errorf("%s: Short should not be empty", cmd.Name())
		}
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q is not registered", name)
		}
	}
}
