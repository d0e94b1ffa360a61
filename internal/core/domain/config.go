package domain

import "time"

// Config holds user settings read from the configuration file.
// Zero values mean "use the default".
type Config struct {
	CacheDir      string
	TTL           time.Duration
	Threads       int
	SortThreads   int
	SortThreshold int
	Skip          []string
	ScanRoot      string
	ScanDepth     int
	LogFormat     string
}

// DefaultConfig returns the settings used when no configuration file exists.
func DefaultConfig() *Config {
	return &Config{
		CacheDir:      DefaultCacheDir(),
		TTL:           DefaultTTL,
		Threads:       DefaultThreads(),
		SortThreads:   DefaultThreads(),
		SortThreshold: DefaultSortThreshold,
		ScanDepth:     Unlimited,
		LogFormat:     "pretty",
	}
}

// CacheSettings returns the cache location and TTL of c.
func (c *Config) CacheSettings() CacheSettings {
	return CacheSettings{Dir: c.CacheDir, TTL: c.TTL}
}
