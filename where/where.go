// Package where resolves the directories and files the application uses.
package where

import (
	"os"
	"path/filepath"

	"github.com/anisan-cli/vidresolve/constant"
	"github.com/anisan-cli/vidresolve/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "VIDRESOLVE_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the configuration directory, XDG_CONFIG_HOME/vidresolve on Linux
// and the platform equivalent elsewhere.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache is the cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}

	return ensureDir(filepath.Join(base, constant.App))
}

// Logs is where log files are written.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Plugins is the directory scanned for Lua extractors.
func Plugins() string {
	return ensureDir(filepath.Join(Config(), "plugins"))
}

// Env is the optional dotenv file loaded at startup.
func Env() string {
	return filepath.Join(Config(), ".env")
}

// Unshortened is the cache of resolved short links.
func Unshortened() string {
	return filepath.Join(Cache(), "unshortened.json")
}

// Temp is a scratch directory removed on startup.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}
