package instance

import (
	"os"
	"path/filepath"
)

// BaseDirEnv overrides the default ~/.wppclone root.
const BaseDirEnv = "WPP_HOME"

// BaseDir returns ~/.wppclone, or $WPP_HOME when set.
func BaseDir() string {
	if dir := os.Getenv(BaseDirEnv); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wppclone")
}

// Dir returns the instance-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "instances", name)
}

// LockPath returns the lock file path for an instance.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// DataPath returns the JSON snapshot path used by the file backend.
func DataPath(name string) string {
	return filepath.Join(Dir(name), "database.json")
}

// SQLitePath returns the snapshot database used by the sqlite backend.
func SQLitePath(name string) string {
	return filepath.Join(Dir(name), "wpp.db")
}

// LogDir returns the log directory for an instance.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the daemon log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "wppd.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the instance directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
