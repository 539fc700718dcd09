package appdirs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const AppName = "vox"

func baseDir(xdgVar string, windowsVar string, unixFallback []string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support"), nil
	case "windows":
		if dir := os.Getenv(windowsVar); dir != "" {
			return dir, nil
		}
		return filepath.Join(home, "AppData", "Roaming"), nil
	default:
		if xdg := os.Getenv(xdgVar); xdg != "" {
			return xdg, nil
		}
		return filepath.Join(append([]string{home}, unixFallback...)...), nil
	}
}

func ConfigDir() (string, error) {
	base, err := baseDir("XDG_CONFIG_HOME", "APPDATA", []string{".config"})
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func StateDir() (string, error) {
	base, err := baseDir("XDG_STATE_HOME", "LOCALAPPDATA", []string{".local", "state"})
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName, "state"), nil
}

func StateFilePath(name string) (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("could not create directory %s: %w", dir, err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return "", fmt.Errorf("could not secure directory permissions for %s: %w", dir, err)
	}
	return dir, nil
}

func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return ensureDir(dir)
}

func EnsureStateDir() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return ensureDir(dir)
}
