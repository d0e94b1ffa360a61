package domain

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// AppDirName is the directory name used under the user cache and config dirs.
	AppDirName = "ptree"

	// ConfigFileName is the name of the optional configuration file.
	ConfigFileName = "config.yaml"

	// SnapshotExt is the file extension of cache records.
	SnapshotExt = ".snap"

	// ConfigEnvVar overrides the configuration file location.
	ConfigEnvVar = "PTREE_CONFIG"

	// CacheDirEnvVar overrides the cache directory.
	CacheDirEnvVar = "PTREE_CACHE_DIR"

	// DefaultTTL bounds the age of a snapshot that is served without rescanning.
	DefaultTTL = time.Hour

	// DefaultSortThreshold is the child count at which sorting switches to the parallel strategy.
	DefaultSortThreshold = 100

	// Unlimited disables a depth bound.
	Unlimited = -1

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultCacheDir returns the per-user cache directory for snapshots.
func DefaultCacheDir() string {
	if dir := os.Getenv(CacheDirEnvVar); dir != "" {
		return dir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, AppDirName)
}

// DefaultConfigPath returns the configuration file location.
func DefaultConfigPath() string {
	if path := os.Getenv(ConfigEnvVar); path != "" {
		return path
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, AppDirName, ConfigFileName)
}

// DefaultThreads returns the default walker thread budget.
func DefaultThreads() int {
	return runtime.NumCPU() * 2
}

// DefaultSkipNames returns the entry names excluded from every scan.
// System locations are added unless admin is set.
func DefaultSkipNames(admin bool) []string {
	names := []string{"System Volume Information", "$Recycle.Bin", ".git"}
	if admin {
		return names
	}
	names = append(names, "System32", "WinSxS", "Temp", "Temporary Internet Files")
	if runtime.GOOS == "linux" {
		names = append(names, "proc", "sys")
	}
	return names
}
