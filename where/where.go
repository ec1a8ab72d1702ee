// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/eonplay/eonplay/constant"
	"github.com/eonplay/eonplay/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the default configuration directory.
const EnvConfigPath = "EONPLAY_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the primary configuration directory.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Logs resolves the directory used for diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Resume resolves the file holding remembered playback positions.
func Resume() string {
	return filepath.Join(Config(), "resume.json")
}

// DefaultScreenshots is the screenshot directory used when none is configured.
// Unlike the other resolvers it does not create the directory; screenshot
// capture creates it on first use.
func DefaultScreenshots() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), constant.AppName)
	}
	return filepath.Join(home, "Pictures", constant.AppName)
}

// Temp resolves a volatile directory for transient artifacts such as IPC sockets and grabbed frames.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
