// file: internal/persist/persist.go
// version: 1.2.0
// guid: 9a0b1c2d-3e4f-5061-7283-94a5b6c7d8e9

package persist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jdfalk/audiobook-curator/internal/cache"
	"github.com/jdfalk/audiobook-curator/internal/codec"
	"github.com/jdfalk/audiobook-curator/internal/fileops"
	"github.com/jdfalk/audiobook-curator/internal/metrics"
	"github.com/jdfalk/audiobook-curator/internal/models"
)

var (
	// ErrWriteInFlight rejects a second write for a path already undergoing
	// a transaction. Concurrent writers racing on the same backup and temp
	// naming would corrupt the transaction.
	ErrWriteInFlight = errors.New("write already in flight for this path")

	// ErrAllStrategiesExhausted is the terminal persistence failure. The
	// original file is guaranteed untouched when it is returned.
	ErrAllStrategiesExhausted = errors.New("all write strategies exhausted")
)

// VerifyError reports a post-write verification failure; the attempt is
// rolled back and the next strategy tried.
type VerifyError struct {
	Reason string
}

func (e *VerifyError) Error() string {
	return "verification failed: " + e.Reason
}

// minSizeRatio guards against silent truncation: the tagged output must be
// at least this share of the original's size.
const minSizeRatio = 0.70

// Engine durably embeds records into audio files through an ordered chain of
// write strategies, each wrapped in a backup/verify/rollback transaction.
type Engine struct {
	codec      *codec.Codec
	store      *cache.Store
	strategies []Strategy
	sem        *semaphore.Weighted

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New builds an Engine with the default strategy chain. maxParallel bounds
// concurrent transactions across distinct paths; sysinfo.SuggestedParallelJobs
// is the reference source for the hint.
func New(cd *codec.Codec, store *cache.Store, maxParallel int64) *Engine {
	strategies := []Strategy{
		&taglibStrategy{codec: cd},
		&ffmpegStrategy{},
		&codecStrategy{codec: cd},
		&stripRetryStrategy{codec: cd},
	}
	return newEngine(cd, store, maxParallel, strategies)
}

func newEngine(cd *codec.Codec, store *cache.Store, maxParallel int64, strategies []Strategy) *Engine {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Engine{
		codec:      cd,
		store:      store,
		strategies: strategies,
		sem:        semaphore.NewWeighted(maxParallel),
		inFlight:   make(map[string]struct{}),
	}
}

// Persist embeds rec (and the cover image at coverPath, when non-empty) into
// the file at path. On success the file carries the new metadata and the
// resolver cache entry for the path is invalidated; on failure the file is
// byte-identical to before the call.
func (e *Engine) Persist(ctx context.Context, path string, rec models.Record, coverPath string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("target file not accessible: %w", err)
	}

	if !e.markInFlight(abs) {
		return ErrWriteInFlight
	}
	defer e.releaseInFlight(abs)

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.sem.Release(1)

	start := time.Now()
	err = e.transact(ctx, abs, rec, coverPath)
	metrics.ObservePersist(time.Since(start))
	return err
}

// transact runs the strategy chain for one path. Every attempt follows the
// same protocol: back up the original, produce output into a separate temp
// file, verify it, then promote; any failure restores the original from the
// backup before the next strategy runs.
func (e *Engine) transact(ctx context.Context, path string, rec models.Record, coverPath string) error {
	origSize, err := fileops.FileSize(path)
	if err != nil {
		return fmt.Errorf("failed to stat original: %w", err)
	}

	backup := path + ".backup"
	if err := fileops.CopyFile(path, backup); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	defer os.Remove(backup)

	var lastErr error
	for _, s := range e.strategies {
		// Cancellation mid-chain still restores before giving up; rollback
		// already ran for the failed attempt, so only the marker cleanup in
		// Persist remains.
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		if !s.Available(path) {
			log.Printf("[DEBUG] persist: strategy %s unavailable for %s, skipping", s.Name(), path)
			metrics.IncPersistAttempt(s.Name(), "skipped")
			continue
		}

		tmp := tempPath(path, s.Name())
		err := s.Apply(ctx, path, tmp, rec, coverPath)
		if err == nil {
			err = e.verify(tmp, origSize, coverPath != "")
		}
		if err != nil {
			e.rollback(path, backup, tmp)
			log.Printf("[WARN] persist: strategy %s failed for %s: %v", s.Name(), path, err)
			metrics.IncPersistAttempt(s.Name(), "failed")
			lastErr = err
			continue
		}

		if err := fileops.CopyFile(tmp, path); err != nil {
			e.rollback(path, backup, tmp)
			log.Printf("[WARN] persist: failed to promote %s output for %s: %v", s.Name(), path, err)
			metrics.IncPersistAttempt(s.Name(), "failed")
			lastErr = err
			continue
		}
		os.Remove(tmp)

		if e.store != nil {
			if err := e.store.Invalidate(path); err != nil {
				log.Printf("[WARN] persist: cache invalidation failed for %s: %v", path, err)
			}
		}
		log.Printf("[INFO] persist: wrote %s via %s strategy", path, s.Name())
		metrics.IncPersistAttempt(s.Name(), "ok")
		return nil
	}

	if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
		return lastErr
	}
	if lastErr != nil {
		return fmt.Errorf("%w: last failure: %v", ErrAllStrategiesExhausted, lastErr)
	}
	return ErrAllStrategiesExhausted
}

// verify checks a strategy's output before promotion: the file exists, is at
// least minSizeRatio of the original and, when a cover was requested, the
// embedded picture reads back non-empty.
func (e *Engine) verify(tmp string, origSize int64, wantCover bool) error {
	size, err := fileops.FileSize(tmp)
	if err != nil {
		return &VerifyError{Reason: "output missing: " + err.Error()}
	}
	if float64(size) < float64(origSize)*minSizeRatio {
		return &VerifyError{Reason: fmt.Sprintf("output size %d below %.0f%% of original %d",
			size, minSizeRatio*100, origSize)}
	}
	if wantCover {
		pic, err := e.codec.ReadPicture(tmp)
		if err != nil {
			return &VerifyError{Reason: "cover readback failed: " + err.Error()}
		}
		if len(pic) == 0 {
			return &VerifyError{Reason: "cover readback empty"}
		}
	}
	return nil
}

// rollback restores the original from the backup and removes the attempt's
// temp output. Strategies never write to the original, but restoring anyway
// keeps the guarantee independent of strategy behavior.
func (e *Engine) rollback(path, backup, tmp string) {
	os.Remove(tmp)
	if err := fileops.CopyFile(backup, path); err != nil {
		log.Printf("[ERROR] persist: rollback restore failed for %s: %v", path, err)
	}
}

// tempPath keeps the audio extension so container-aware writers and the
// verifier recognize the format: "book.m4b" -> "book.tmp-taglib.m4b".
func tempPath(path, strategy string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + ".tmp-" + strategy + ext
}

func (e *Engine) markInFlight(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[path]; busy {
		return false
	}
	e.inFlight[path] = struct{}{}
	return true
}

func (e *Engine) releaseInFlight(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, path)
}
