package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// PlatformDataDir returns the directory holding the crack history.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/kaiser/
//   - Linux:   $XDG_DATA_HOME/kaiser/ or ~/.local/share/kaiser/
//   - Windows: %APPDATA%\kaiser\
//
// KAISER_DATA_DIR overrides all of them.
func PlatformDataDir() string {
	if v := os.Getenv("KAISER_DATA_DIR"); v != "" {
		return v
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", "kaiser")
	case "windows":
		return windowsAppData("kaiser")
	default:
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
}

// PlatformConfigDir returns the directory holding config.toml.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/kaiser/
//   - Linux:   $XDG_CONFIG_HOME/kaiser/ or ~/.config/kaiser/
//   - Windows: %APPDATA%\kaiser\
func PlatformConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", "kaiser")
	case "windows":
		return windowsAppData("kaiser")
	default:
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
}

func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, "kaiser")
	}
	return filepath.Join(homeDir(), fallback, "kaiser")
}

func windowsAppData(name string) string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, name)
	}
	return filepath.Join(homeDir(), "AppData", "Roaming", name)
}

func homeDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home == "" {
		return "."
	}
	return home
}
