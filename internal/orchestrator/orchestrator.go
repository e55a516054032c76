// file: internal/orchestrator/orchestrator.go
// version: 1.1.0
// guid: 2a3b4c5d-6e7f-8091-a2b3-c4d5e6f70819

package orchestrator

import (
	"context"
	"errors"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/jdfalk/audiobook-curator/internal/mediainfo"
	"github.com/jdfalk/audiobook-curator/internal/models"
	"github.com/jdfalk/audiobook-curator/internal/provider"
	"github.com/jdfalk/audiobook-curator/internal/resolver"
)

// DefaultBatchSize bounds how many files resolve in parallel per batch.
// Provider calls are rate-sensitive; five keeps the catalogs happy.
const DefaultBatchSize = 5

// MetadataResolver is the resolution half of the pipeline.
type MetadataResolver interface {
	Resolve(ctx context.Context, path string) (*resolver.Result, error)
}

// Persister is the write half of the pipeline.
type Persister interface {
	Persist(ctx context.Context, path string, rec models.Record, coverPath string) error
}

// FileOutcome describes how one file fared.
type FileOutcome struct {
	Path       string
	Record     models.Record
	Resolved   bool
	FromCache  bool
	Persisted  bool
	Err        error
	AuthErrors []*provider.AuthError
}

// Summary aggregates a run over a set of files.
type Summary struct {
	Total      int
	Resolved   int
	FromCache  int
	Unresolved int
	Persisted  int
	Failed     int
	AuthErrors []*provider.AuthError
	Outcomes   []FileOutcome
}

// Orchestrator drives the resolver and persistence engine over batches of
// files. Resolution within a batch runs in parallel; persistence runs
// sequentially per file, its parallelism already bounded by the engine.
type Orchestrator struct {
	resolver  MetadataResolver
	persister Persister
	batchSize int

	// OnFile, when set, is called after each file finishes; the CLI hooks
	// its progress bar here.
	OnFile func(outcome FileOutcome)
}

// New builds an Orchestrator. batchSize <= 0 selects DefaultBatchSize.
func New(r MetadataResolver, p Persister, batchSize int) *Orchestrator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Orchestrator{resolver: r, persister: p, batchSize: batchSize}
}

// Run resolves every path batch by batch and, when write is true, persists
// each resolved record back into its file. Per-file failures are recorded in
// the summary, not returned; only context cancellation aborts the run.
func (o *Orchestrator) Run(ctx context.Context, paths []string, write bool) (*Summary, error) {
	summary := &Summary{Total: len(paths)}

	for start := 0; start < len(paths); start += o.batchSize {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		end := start + o.batchSize
		if end > len(paths) {
			end = len(paths)
		}
		batch := paths[start:end]

		outcomes := make([]FileOutcome, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		for i, path := range batch {
			g.Go(func() error {
				outcomes[i] = o.resolveOne(gctx, path)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return summary, err
		}

		for i := range outcomes {
			out := &outcomes[i]
			if write && out.Resolved {
				o.persistOne(ctx, out)
			}
			o.tally(summary, *out)
			if o.OnFile != nil {
				o.OnFile(*out)
			}
		}
	}
	return summary, nil
}

func (o *Orchestrator) resolveOne(ctx context.Context, path string) FileOutcome {
	out := FileOutcome{Path: path}
	res, err := o.resolver.Resolve(ctx, path)
	if res != nil {
		out.AuthErrors = res.AuthErrors
	}
	if err != nil {
		if !errors.Is(err, resolver.ErrUnresolved) {
			log.Printf("[WARN] orchestrator: resolve failed for %s: %v", path, err)
		}
		out.Err = err
		return out
	}
	out.Resolved = true
	out.FromCache = res.FromCache
	out.Record = res.Record

	// Technical facts come from the local stream, never the catalog.
	if info, err := mediainfo.Extract(path); err == nil {
		info.Apply(&out.Record)
	}
	return out
}

func (o *Orchestrator) persistOne(ctx context.Context, out *FileOutcome) {
	coverPath := ""
	if p := out.Record.ThumbnailURL; p != "" {
		if _, err := os.Stat(p); err == nil {
			coverPath = p
		}
	}
	if err := o.persister.Persist(ctx, out.Path, out.Record, coverPath); err != nil {
		log.Printf("[WARN] orchestrator: persist failed for %s: %v", out.Path, err)
		out.Err = err
		return
	}
	out.Persisted = true
}

func (o *Orchestrator) tally(summary *Summary, out FileOutcome) {
	summary.Outcomes = append(summary.Outcomes, out)
	summary.AuthErrors = append(summary.AuthErrors, out.AuthErrors...)
	switch {
	case out.Resolved && out.Err == nil:
		summary.Resolved++
	case out.Resolved:
		summary.Resolved++
		summary.Failed++
	case errors.Is(out.Err, resolver.ErrUnresolved):
		summary.Unresolved++
	default:
		summary.Failed++
	}
	if out.FromCache {
		summary.FromCache++
	}
	if out.Persisted {
		summary.Persisted++
	}
}
