// Package config provides the configuration loader for ptree.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration file at path, or the default location when
// path is empty. Settings absent from the file keep their defaults.
func (l *Loader) Load(path string) (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	if path == "" {
		path = domain.DefaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}

	//nolint:gosec // Path comes from the user's environment
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.Logger.Debug("no config file at " + path + ", using defaults")
			return cfg, nil
		}
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, "cannot load settings"), "path", path), domain.DetailKey, err.Error())
	}

	var file Configfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "cannot load settings"), "path", path), domain.DetailKey, err.Error())
	}

	if err := apply(cfg, &file, filepath.Dir(path)); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return cfg, nil
}

// apply overlays the settings present in file onto cfg. Relative directories
// resolve against the directory holding the config file.
func apply(cfg *domain.Config, file *Configfile, baseDir string) error {
	if file.CacheDir != "" && os.Getenv(domain.CacheDirEnvVar) == "" {
		cfg.CacheDir = resolve(baseDir, file.CacheDir)
	}
	if file.TTL != "" {
		ttl, err := time.ParseDuration(file.TTL)
		if err != nil {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidTTL, "cannot parse ttl"), "ttl", file.TTL), domain.DetailKey, err.Error())
		}
		if ttl <= 0 {
			return zerr.With(zerr.Wrap(domain.ErrInvalidTTL, "non-positive ttl"), "ttl", file.TTL)
		}
		cfg.TTL = ttl
	}
	if file.Threads > 0 {
		cfg.Threads = file.Threads
	}
	if file.SortThreads > 0 {
		cfg.SortThreads = file.SortThreads
	}
	if file.SortThreshold > 0 {
		cfg.SortThreshold = file.SortThreshold
	}
	if len(file.Skip) > 0 {
		cfg.Skip = append(cfg.Skip, file.Skip...)
	}
	if file.ScanRoot != "" {
		cfg.ScanRoot = resolve(baseDir, file.ScanRoot)
	}
	if file.ScanDepth != nil {
		cfg.ScanDepth = max(*file.ScanDepth, domain.Unlimited)
	}
	switch file.LogFormat {
	case "":
	case "pretty", "json":
		cfg.LogFormat = file.LogFormat
	default:
		return zerr.With(zerr.Wrap(domain.ErrInvalidLogFormat, "cannot load settings"), "log_format", file.LogFormat)
	}
	return nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}
