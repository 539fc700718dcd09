package appdirs

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestConfigFilePathEndsWithAppFile(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	}
	path, err := ConfigFilePath()
	if err != nil {
		t.Fatalf("ConfigFilePath failed: %v", err)
	}
	want := filepath.Join(AppName, "config.toml")
	if !strings.HasSuffix(path, want) {
		t.Fatalf("expected config path to end with %q, got %q", want, path)
	}
}

func TestStateFilePathUsesStateDir(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Setenv("XDG_STATE_HOME", t.TempDir())
	}
	path, err := StateFilePath("transcript.jsonl")
	if err != nil {
		t.Fatalf("StateFilePath failed: %v", err)
	}
	want := filepath.Join(AppName, "state", "transcript.jsonl")
	if !strings.HasSuffix(path, want) {
		t.Fatalf("expected state path to end with %q, got %q", want, path)
	}
}

func TestXDGOverridesAreHonored(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG override behavior applies to linux")
	}
	configHome := t.TempDir()
	stateHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_STATE_HOME", stateHome)

	configDir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir failed: %v", err)
	}
	if configDir != filepath.Join(configHome, AppName) {
		t.Fatalf("expected config dir under XDG_CONFIG_HOME, got %q", configDir)
	}

	stateDir, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir failed: %v", err)
	}
	if stateDir != filepath.Join(stateHome, AppName, "state") {
		t.Fatalf("expected state dir under XDG_STATE_HOME, got %q", stateDir)
	}
}
