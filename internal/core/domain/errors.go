package domain

import (
	"errors"
	"strings"

	"go.trai.ch/zerr"
)

// DetailKey is the metadata key under which adapters attach the underlying
// OS or library failure text to a domain sentinel.
const DetailKey = "detail"

var (
	// ErrRootInaccessible is returned when the scan root cannot be read.
	ErrRootInaccessible = zerr.New("scan root is not accessible")

	// ErrRootNotDirectory is returned when the scan root is not a directory.
	ErrRootNotDirectory = zerr.New("scan root is not a directory")

	// ErrTargetOutsideRoot is returned when the requested directory is not under the scan root.
	ErrTargetOutsideRoot = zerr.New("target directory is outside the scan root")

	// ErrPathOutsideRoot is returned when a merge location is not under the snapshot root.
	ErrPathOutsideRoot = zerr.New("path is outside the snapshot root")

	// ErrSymlinkOnPath is returned when a merge location lies beneath a symbolic link.
	ErrSymlinkOnPath = zerr.New("path crosses a symbolic link")

	// ErrNothingToMerge is returned when a merge is missing its snapshot or subtree.
	ErrNothingToMerge = zerr.New("nothing to merge")

	// ErrCacheCorrupt is returned when a cache file cannot be decoded.
	ErrCacheCorrupt = zerr.New("cache file is corrupt")

	// ErrVersionMismatch is returned when a cache file was written by an incompatible format version.
	ErrVersionMismatch = zerr.New("cache format version mismatch")

	// ErrCacheReadFailed is returned when a cache file exists but cannot be read.
	ErrCacheReadFailed = zerr.New("failed to read cache file")

	// ErrCacheWriteFailed is returned when a snapshot cannot be persisted.
	ErrCacheWriteFailed = zerr.New("failed to write cache file")

	// ErrCacheEncodeFailed is returned when a snapshot cannot be encoded.
	ErrCacheEncodeFailed = zerr.New("failed to encode snapshot")

	// ErrCacheCreateFailed is returned when the cache directory cannot be created.
	ErrCacheCreateFailed = zerr.New("failed to create cache directory")

	// ErrCacheCleanFailed is returned when the cache directory cannot be removed.
	ErrCacheCleanFailed = zerr.New("failed to remove cache directory")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidTTL is returned when a TTL value is not a positive duration.
	ErrInvalidTTL = zerr.New("invalid ttl, expected a positive duration such as 1h or 30m")

	// ErrInvalidOutputFormat is returned when an unknown output format is requested.
	ErrInvalidOutputFormat = zerr.New("invalid output format, expected 'tree' or 'json'")

	// ErrInvalidColorMode is returned when an unknown color mode is requested.
	ErrInvalidColorMode = zerr.New("invalid color mode, expected 'auto', 'always' or 'never'")

	// ErrInvalidLogFormat is returned when an unknown log format is requested.
	ErrInvalidLogFormat = zerr.New("invalid log format, expected 'pretty' or 'json'")

	// ErrFailedToGetTarget is returned when the target directory cannot be made absolute.
	ErrFailedToGetTarget = zerr.New("failed to get absolute path of target")

	// ErrRenderFailed is returned when the tree cannot be written to the output.
	ErrRenderFailed = zerr.New("failed to render tree")
)

// Describe renders err on one line with every detail attached along its chain.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	var details []string
	for current := err; current != nil; current = errors.Unwrap(current) {
		a, ok := current.(interface{ Metadata() map[string]any })
		if !ok {
			continue
		}
		if d, ok := a.Metadata()[DetailKey].(string); ok && d != "" {
			details = append(details, d)
		}
	}
	if len(details) == 0 {
		return text
	}
	return text + " (" + strings.Join(details, "; ") + ")"
}
