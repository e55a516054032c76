// file: internal/resolver/resolver.go
// version: 1.2.0
// guid: 1a2b3c4d-5e6f-7081-92a3-b4c5d6e7f809

package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jdfalk/audiobook-curator/internal/cache"
	"github.com/jdfalk/audiobook-curator/internal/codec"
	"github.com/jdfalk/audiobook-curator/internal/matcher"
	"github.com/jdfalk/audiobook-curator/internal/metrics"
	"github.com/jdfalk/audiobook-curator/internal/models"
	"github.com/jdfalk/audiobook-curator/internal/provider"
)

// ErrUnresolved is the terminal outcome when neither the file's own tags nor
// any provider produced usable metadata.
var ErrUnresolved = errors.New("no metadata could be resolved")

// maxQueryAttempts bounds how many derived queries a single resolution tries
// before giving up: the primary query plus one alternate.
const maxQueryAttempts = 2

// Result is the outcome of a resolution. AuthErrors collects provider
// authentication and quota failures encountered along the way; they never
// abort a resolution but callers surface them so credentials can be fixed.
type Result struct {
	Record     models.Record
	FromCache  bool
	AuthErrors []*provider.AuthError
}

// Resolver turns a file path into a Metadata Record by walking local tags,
// the cache and the registered providers in order. Concurrent resolves of
// the same path share a single execution.
type Resolver struct {
	codec     *codec.Codec
	store     *cache.Store
	scorer    *matcher.Scorer
	providers []provider.Provider
	coverDir  string

	group singleflight.Group
}

// New builds a Resolver. coverDir is where accepted candidates' remote
// thumbnails are downloaded to; empty disables cover localization.
func New(cd *codec.Codec, store *cache.Store, scorer *matcher.Scorer, providers []provider.Provider, coverDir string) *Resolver {
	return &Resolver{
		codec:     cd,
		store:     store,
		scorer:    scorer,
		providers: providers,
		coverDir:  coverDir,
	}
}

// Resolve resolves metadata for path. Calls for the same path made while a
// resolution is in flight attach to it instead of starting another. A Result
// may accompany ErrUnresolved so collected auth errors are not lost.
func (r *Resolver) Resolve(ctx context.Context, path string) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %q: %w", path, err)
	}

	ch := r.group.DoChan(abs, func() (interface{}, error) {
		return r.resolve(ctx, abs)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-ch:
		res, _ := out.Val.(*Result)
		if out.Err != nil {
			return res, out.Err
		}
		return res, nil
	}
}

func (r *Resolver) resolve(ctx context.Context, path string) (*Result, error) {
	metrics.IncResolutionStarted()
	start := time.Now()
	defer func() { metrics.ObserveResolution(time.Since(start)) }()

	if rec, err := r.store.GetFile(path); err == nil {
		log.Printf("[DEBUG] resolver: file cache hit for %s", path)
		metrics.IncCacheHit("file")
		metrics.IncResolutionOutcome("resolved")
		return &Result{Record: rec, FromCache: true}, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Printf("[WARN] resolver: file cache read failed for %s: %v", path, err)
	} else {
		metrics.IncCacheMiss("file")
	}

	partial, err := r.codec.Read(path)
	hasPartial := err == nil && !partial.IsEmpty()
	if err != nil && !errors.Is(err, codec.ErrNotTagged) {
		log.Printf("[WARN] resolver: tag read failed for %s: %v", path, err)
	}

	if hasPartial && partial.IsComprehensive() {
		log.Printf("[DEBUG] resolver: %s fully tagged, skipping lookup", path)
		r.cacheFile(path, partial)
		metrics.IncResolutionOutcome("resolved")
		return &Result{Record: partial}, nil
	}

	res := &Result{}
	var seed models.Record
	if hasPartial {
		seed = partial
	}
	queries := buildQueries(seed, path)
	if len(queries) > maxQueryAttempts {
		queries = queries[:maxQueryAttempts]
	}

	for _, query := range queries {
		if cached, err := r.store.GetQuery(query); err == nil {
			log.Printf("[DEBUG] resolver: query cache hit for %q", query)
			metrics.IncCacheHit("query")
			merged := r.mergeRemote(partial, hasPartial, cached)
			r.cacheFile(path, merged)
			res.Record = merged
			metrics.IncResolutionOutcome("resolved")
			return res, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("[WARN] resolver: query cache read failed for %q: %v", query, err)
		} else {
			metrics.IncCacheMiss("query")
		}

		candidates := r.search(ctx, query, res)
		if len(candidates) == 0 {
			continue
		}

		idx, score := r.scorer.Best(query, candidates)
		if idx < 0 || !r.scorer.Accept(score) {
			log.Printf("[DEBUG] resolver: best candidate for %q scored %.3f, below threshold", query, score)
			continue
		}

		best := candidates[idx]
		log.Printf("[INFO] resolver: accepted %q from %s for %s (score %.3f)",
			best.Title, best.Provider, path, score)
		r.localizeCover(ctx, &best)

		if err := r.store.PutQuery(query, best); err != nil {
			log.Printf("[WARN] resolver: query cache write failed for %q: %v", query, err)
		}
		merged := r.mergeRemote(partial, hasPartial, best)
		r.cacheFile(path, merged)
		res.Record = merged
		metrics.IncResolutionOutcome("resolved")
		return res, nil
	}

	if hasPartial {
		// Partial local data beats nothing. Deliberately not cached under
		// fileCache so a later run retries the providers.
		log.Printf("[INFO] resolver: falling back to partial tags for %s", path)
		res.Record = partial
		metrics.IncResolutionOutcome("partial")
		return res, nil
	}

	metrics.IncResolutionOutcome("unresolved")
	return res, ErrUnresolved
}

// search queries every provider for candidates, isolating per-provider
// failures: transport errors count as zero candidates, auth and quota errors
// are collected onto res.
func (r *Resolver) search(ctx context.Context, query string, res *Result) []models.Record {
	var candidates []models.Record
	for _, p := range r.providers {
		recs, err := p.Search(ctx, query)
		if err != nil {
			var authErr *provider.AuthError
			if errors.As(err, &authErr) {
				log.Printf("[WARN] resolver: %s auth failure: %v", p.Name(), err)
				metrics.IncProviderSearch(p.Name(), "auth_error")
				res.AuthErrors = append(res.AuthErrors, authErr)
				continue
			}
			log.Printf("[WARN] resolver: %s search failed for %q: %v", p.Name(), query, err)
			metrics.IncProviderSearch(p.Name(), "unavailable")
			continue
		}
		metrics.IncProviderSearch(p.Name(), "ok")
		candidates = append(candidates, recs...)
	}
	return candidates
}

// mergeRemote combines a remote record with the locally extracted partial.
// Enhance keeps the local technical fields authoritative and fills the
// descriptive gaps from the catalog.
func (r *Resolver) mergeRemote(partial models.Record, hasPartial bool, remote models.Record) models.Record {
	if !hasPartial {
		if remote.ID == "" {
			remote.ID = models.NewID()
		}
		return remote
	}
	return models.Enhance(partial, remote)
}

// localizeCover swaps a remote thumbnail URL for a local download. Records
// never reach the cache or the persistence engine with a remote URL.
func (r *Resolver) localizeCover(ctx context.Context, rec *models.Record) {
	if r.coverDir == "" || rec.ThumbnailURL == "" {
		return
	}
	if !strings.HasPrefix(rec.ThumbnailURL, "http://") && !strings.HasPrefix(rec.ThumbnailURL, "https://") {
		return
	}
	local, err := provider.DownloadCover(ctx, rec.ThumbnailURL, r.coverDir, rec.ID)
	if err != nil {
		log.Printf("[WARN] resolver: cover download failed for %s: %v", rec.ID, err)
		rec.ThumbnailURL = ""
		return
	}
	rec.ThumbnailURL = local
}

func (r *Resolver) cacheFile(path string, rec models.Record) {
	if err := r.store.PutFile(path, rec); err != nil {
		log.Printf("[WARN] resolver: file cache write failed for %s: %v", path, err)
	}
}
