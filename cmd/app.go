// file: cmd/app.go
// version: 1.1.0
// guid: 7f801920-1a2b-3c4d-5e6f-708192a3b4c5

package cmd

import (
	"fmt"
	"os"

	"github.com/jdfalk/audiobook-curator/internal/cache"
	"github.com/jdfalk/audiobook-curator/internal/codec"
	"github.com/jdfalk/audiobook-curator/internal/config"
	"github.com/jdfalk/audiobook-curator/internal/matcher"
	"github.com/jdfalk/audiobook-curator/internal/metrics"
	"github.com/jdfalk/audiobook-curator/internal/orchestrator"
	"github.com/jdfalk/audiobook-curator/internal/persist"
	"github.com/jdfalk/audiobook-curator/internal/provider"
	"github.com/jdfalk/audiobook-curator/internal/resolver"
	"github.com/jdfalk/audiobook-curator/internal/scanner"
	"github.com/jdfalk/audiobook-curator/internal/sysinfo"
)

// app bundles the wired components for one CLI invocation.
type app struct {
	cfg      config.Config
	codec    *codec.Codec
	store    *cache.Store
	scanner  *scanner.Scanner
	resolver *resolver.Resolver
	engine   *persist.Engine
}

// newApp wires the pipeline from configuration. Call close when done.
func newApp(cfg config.Config) (*app, error) {
	metrics.Register()

	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	store, err := cache.Open(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata cache: %w", err)
	}

	cd := codec.New()
	scorer := &matcher.Scorer{Threshold: cfg.MatchThreshold}

	var providers []provider.Provider
	if cfg.Providers.GoogleBooks {
		providers = append(providers, provider.NewGoogleBooksClient())
	}
	if cfg.Providers.OpenLibrary {
		providers = append(providers, provider.NewOpenLibraryClient())
	}

	jobs := cfg.ParallelJobs
	if jobs <= 0 {
		jobs = sysinfo.SuggestedParallelJobs()
	}

	return &app{
		cfg:      cfg,
		codec:    cd,
		store:    store,
		scanner:  scanner.New(cd),
		resolver: resolver.New(cd, store, scorer, providers, cfg.CoverDir),
		engine:   persist.New(cd, store, int64(jobs)),
	}, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}

func (a *app) orchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(a.resolver, a.engine, a.cfg.BatchSize)
}
