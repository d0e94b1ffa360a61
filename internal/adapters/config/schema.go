package config

// Configfile represents the structure of the ptree configuration file.
type Configfile struct {
	CacheDir      string   `yaml:"cache_dir"`
	TTL           string   `yaml:"ttl"`
	Threads       int      `yaml:"threads"`
	SortThreads   int      `yaml:"sort_threads"`
	SortThreshold int      `yaml:"sort_threshold"`
	Skip          []string `yaml:"skip"`
	ScanRoot      string   `yaml:"scan_root"`
	ScanDepth     *int     `yaml:"scan_depth"`
	LogFormat     string   `yaml:"log_format"`
}
