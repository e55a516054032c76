// file: internal/persist/strategy.go
// version: 1.1.0
// guid: 0d1e2f3a-4b5c-6d7e-8f90-a1b2c3d4e5f6

package persist

import (
	"context"
	"fmt"
	"os"

	"github.com/jdfalk/audiobook-curator/internal/codec"
	"github.com/jdfalk/audiobook-curator/internal/fileops"
	"github.com/jdfalk/audiobook-curator/internal/models"
)

// Strategy is one way of embedding a record into an audio file. Apply reads
// src and produces the tagged result at dst; it must never modify src.
// Available lets a strategy opt out for a given file (missing tool,
// unsupported container) without counting as a failure.
type Strategy interface {
	Name() string
	Available(path string) bool
	Apply(ctx context.Context, src, dst string, rec models.Record, coverPath string) error
}

// readCover loads the cover bytes when a cover was requested.
func readCover(coverPath string) ([]byte, error) {
	if coverPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(coverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cover %s: %w", coverPath, err)
	}
	return data, nil
}

// taglibStrategy writes through the in-process TagLib binding. First in the
// chain: no subprocess, and one write path covers every supported container.
type taglibStrategy struct {
	codec *codec.Codec
}

func (s *taglibStrategy) Name() string { return "taglib" }

func (s *taglibStrategy) Available(path string) bool {
	return s.codec.Supported(path)
}

func (s *taglibStrategy) Apply(ctx context.Context, src, dst string, rec models.Record, coverPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cover, err := readCover(coverPath)
	if err != nil {
		return err
	}
	if err := fileops.CopyFile(src, dst); err != nil {
		return fmt.Errorf("failed to stage output: %w", err)
	}
	return codec.WriteTagLib(dst, rec, cover)
}

// codecStrategy rewrites the container's tag block directly through the Tag
// Codec: a full-metadata replacement that leaves the audio stream alone.
type codecStrategy struct {
	codec *codec.Codec
}

func (s *codecStrategy) Name() string { return "codec" }

func (s *codecStrategy) Available(path string) bool {
	return s.codec.Supported(path)
}

func (s *codecStrategy) Apply(ctx context.Context, src, dst string, rec models.Record, coverPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cover, err := readCover(coverPath)
	if err != nil {
		return err
	}
	if err := fileops.CopyFile(src, dst); err != nil {
		return fmt.Errorf("failed to stage output: %w", err)
	}
	return s.codec.Write(dst, rec, cover)
}

// stripRetryStrategy strips any existing picture before rewriting. Some
// container writers cannot replace a picture atom but can add one to a
// picture-less file.
type stripRetryStrategy struct {
	codec *codec.Codec
}

func (s *stripRetryStrategy) Name() string { return "strip-retry" }

func (s *stripRetryStrategy) Available(path string) bool {
	return s.codec.Supported(path)
}

func (s *stripRetryStrategy) Apply(ctx context.Context, src, dst string, rec models.Record, coverPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cover, err := readCover(coverPath)
	if err != nil {
		return err
	}
	if err := fileops.CopyFile(src, dst); err != nil {
		return fmt.Errorf("failed to stage output: %w", err)
	}
	if err := s.codec.StripPicture(dst); err != nil {
		return fmt.Errorf("failed to strip existing picture: %w", err)
	}
	return s.codec.Write(dst, rec, cover)
}
