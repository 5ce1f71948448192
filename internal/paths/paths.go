// Package paths resolves the configuration and data directories used by the
// agriledger CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under the platform config and data
// roots.
const AppName = "agriledger"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "AGRILEDGER_CONFIG_DIR"
	EnvDataDir   = "AGRILEDGER_DATA_DIR"
)

// platform holds platform-detection hooks that tests override.
var platform = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/agriledger (fallback ~/.config/agriledger)
// macOS:   ~/Library/Application Support/agriledger
// Windows: %APPDATA%/agriledger
func DefaultConfigDir() (string, error) {
	return platformDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific data directory.
//
// Linux:   $XDG_DATA_HOME/agriledger (fallback ~/.local/share/agriledger)
// Others:  same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	return platformDir("XDG_DATA_HOME", ".local", "share")
}

// platformDir applies the XDG rule on linux and os.UserConfigDir elsewhere.
func platformDir(xdgEnv string, homeFallback ...string) (string, error) {
	if platform.goos != "linux" {
		dir, err := platform.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platform.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, homeFallback...)
	return filepath.Join(append(parts, AppName)...), nil
}

// ResolveConfigDir returns the configuration directory:
// flag > AGRILEDGER_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstNonEmpty(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory:
// flag > AGRILEDGER_DATA_DIR > configValue > DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstNonEmpty(flag, os.Getenv(EnvDataDir), configValue); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultDataDir()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
