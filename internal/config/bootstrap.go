package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	FileName   = "config.yml"
	DataDirEnv = "APPLYSYNC_DATA_DIR"
)

// ResolveDataDir picks the data directory: the flag value, then
// $APPLYSYNC_DATA_DIR, then ~/.applysync.
func ResolveDataDir(flagValue string) (string, error) {
	if d := strings.TrimSpace(flagValue); d != "" {
		return filepath.Abs(d)
	}
	if d := strings.TrimSpace(os.Getenv(DataDirEnv)); d != "" {
		return filepath.Abs(d)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".applysync"), nil
}

// EnsureUserConfig returns the config path inside dataDir, writing the
// defaults there first if no file exists yet.
func EnsureUserConfig(dataDir string) (path string, created bool, err error) {
	userPath := filepath.Join(dataDir, FileName)

	_, err = os.Stat(userPath)
	if err == nil {
		return userPath, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", false, err
	}

	cfg := Default()
	cfg.App.DataDir = dataDir
	if err := SaveAtomic(userPath, cfg); err != nil {
		return "", false, err
	}
	return userPath, true, nil
}
