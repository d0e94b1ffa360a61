// Package cas implements the snapshot store: one record per scan root,
// addressed by the hash of the root path.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store implements ports.SnapshotStore using a file-per-root strategy.
type Store struct {
	settings domain.CacheSettings
	codec    ports.SnapshotCodec
}

// NewStore creates a Store that keeps records in settings.Dir.
func NewStore(settings domain.CacheSettings, codec ports.SnapshotCodec) *Store {
	if settings.TTL <= 0 {
		settings.TTL = domain.DefaultTTL
	}
	return &Store{settings: settings, codec: codec}
}

// Dir returns the directory holding the records.
func (s *Store) Dir() string {
	return s.settings.Dir
}

// Lookup loads the record for root and classifies it for target at now.
func (s *Store) Lookup(root, target string, now time.Time, ttl time.Duration) (domain.CacheLookup, error) {
	if ttl <= 0 {
		ttl = s.settings.TTL
	}

	path := s.Path(root)
	//nolint:gosec // Path is constructed from the cache directory and a hashed filename
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.CacheLookup{Freshness: domain.Missing}, nil
		}
		return domain.CacheLookup{Freshness: domain.Missing},
			zerr.With(zerr.With(zerr.Wrap(domain.ErrCacheReadFailed, "cannot load snapshot"), "path", path), domain.DetailKey, err.Error())
	}

	snap, err := s.codec.Decode(data)
	if err != nil {
		return domain.CacheLookup{Freshness: domain.Missing}, zerr.With(err, "path", path)
	}
	if filepath.Clean(snap.Root) != filepath.Clean(root) {
		return domain.CacheLookup{Freshness: domain.Missing},
			zerr.With(zerr.Wrap(domain.ErrCacheCorrupt, "record belongs to another root"), "path", path)
	}

	freshness, age := domain.Classify(snap, target, now, ttl)
	return domain.CacheLookup{
		Snapshot:  snap,
		Age:       age,
		Freshness: freshness,
	}, nil
}

// Save replaces the record for the snapshot's root. Readers observe either
// the previous record or the new one.
func (s *Store) Save(snap *domain.Snapshot) error {
	data, err := s.codec.Encode(snap)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, "cannot encode snapshot"), domain.DetailKey, err.Error())
	}

	path := s.Path(snap.Root)
	if err := atomicWriteFile(path, data); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrCacheWriteFailed, "cannot save snapshot"), "path", path), domain.DetailKey, domain.Describe(err))
	}
	return nil
}

// Path returns the record file for root.
func (s *Store) Path(root string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(root)))
	return filepath.Join(s.settings.Dir, hex.EncodeToString(hash[:])+domain.SnapshotExt)
}

// Clear removes the cache directory and every record in it.
func (s *Store) Clear() error {
	if err := os.RemoveAll(s.settings.Dir); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrCacheCleanFailed, "cannot clear cache"), "path", s.settings.Dir), domain.DetailKey, err.Error())
	}
	return nil
}

// atomicWriteFile writes data to a temp file next to path and renames it into place.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheCreateFailed, "cannot prepare cache"), domain.DetailKey, err.Error())
	}

	tmpFile, err := os.CreateTemp(dir, "snapshot-*.tmp")
	if err != nil {
		return zerr.Wrap(err, "failed to create temp cache file")
	}
	tmpName := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return zerr.Wrap(err, "failed to write temp cache file")
	}

	if err := tmpFile.Close(); err != nil {
		return zerr.Wrap(err, "failed to close temp cache file")
	}

	if err := os.Chmod(tmpName, domain.PrivateFilePerm); err != nil {
		return zerr.Wrap(err, "failed to chmod cache file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return zerr.Wrap(err, "failed to rename temp cache file")
	}
	return nil
}
