// file: internal/config/config.go
// version: 1.1.0
// guid: 4c5d6e7f-8091-a2b3-c4d5-e6f708192a3b

package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/jdfalk/audiobook-curator/internal/matcher"
)

// Config holds application configuration. It is built once at startup and
// passed explicitly; nothing here is a process-wide singleton, which keeps
// tests isolated and parallel runs honest.
type Config struct {
	LibraryRoots   []string
	CacheDir       string
	CoverDir       string
	MatchThreshold float64
	BatchSize      int
	ParallelJobs   int // 0 means derive from sysinfo at startup
	Providers      struct {
		GoogleBooks bool
		OpenLibrary bool
	}
}

// Load reads configuration from viper's bound sources (config file, env,
// flags) and fills in defaults.
func Load() Config {
	viper.SetDefault("cache_dir", defaultStateDir("cache"))
	viper.SetDefault("cover_dir", defaultStateDir("")) // covers/ is created inside
	viper.SetDefault("match_threshold", matcher.DefaultAcceptThreshold)
	viper.SetDefault("batch_size", 5)
	viper.SetDefault("parallel_jobs", 0)
	viper.SetDefault("providers.google_books", true)
	viper.SetDefault("providers.open_library", true)

	cfg := Config{
		LibraryRoots:   viper.GetStringSlice("library_roots"),
		CacheDir:       viper.GetString("cache_dir"),
		CoverDir:       viper.GetString("cover_dir"),
		MatchThreshold: viper.GetFloat64("match_threshold"),
		BatchSize:      viper.GetInt("batch_size"),
		ParallelJobs:   viper.GetInt("parallel_jobs"),
	}
	cfg.Providers.GoogleBooks = viper.GetBool("providers.google_books")
	cfg.Providers.OpenLibrary = viper.GetBool("providers.open_library")

	// Bound-but-unset CLI flags surface as zero values; fall back to the
	// real defaults.
	if cfg.CacheDir == "" {
		cfg.CacheDir = defaultStateDir("cache")
	}
	if cfg.CoverDir == "" {
		cfg.CoverDir = defaultStateDir("")
	}
	if cfg.MatchThreshold <= 0 || cfg.MatchThreshold > 1 {
		cfg.MatchThreshold = matcher.DefaultAcceptThreshold
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	return cfg
}

// defaultStateDir places state under the user config dir, falling back to
// a dotdir in $HOME.
func defaultStateDir(sub string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return filepath.Join(".audiobook-curator", sub)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "audiobook-curator", sub)
}
