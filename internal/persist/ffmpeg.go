// file: internal/persist/ffmpeg.go
// version: 1.1.0
// guid: 7e8f90a1-b2c3-4d5e-6f70-8192a3b4c5d6

package persist

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jdfalk/audiobook-curator/internal/codec"
	"github.com/jdfalk/audiobook-curator/internal/models"
)

// wellKnownFFmpegPaths is probed when ffmpeg is not on PATH.
var wellKnownFFmpegPaths = []string{
	"/usr/bin/ffmpeg",
	"/usr/local/bin/ffmpeg",
	"/opt/homebrew/bin/ffmpeg",
	"/opt/ffmpeg/bin/ffmpeg",
	`C:\ffmpeg\bin\ffmpeg.exe`,
	`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
}

// ffmpegMetadataKeys maps logical fields to the -metadata keys ffmpeg
// understands across mp3 and mp4 muxers.
var ffmpegMetadataKeys = map[codec.Field]string{
	codec.FieldTitle:       "title",
	codec.FieldArtist:      "artist",
	codec.FieldAlbumArtist: "album_artist",
	codec.FieldComposer:    "composer",
	codec.FieldAlbum:       "album",
	codec.FieldTrack:       "track",
	codec.FieldPublisher:   "publisher",
	codec.FieldGenre:       "genre",
	codec.FieldComment:     "comment",
	codec.FieldLanguage:    "language",
	codec.FieldDate:        "date",
	codec.FieldSeries:      "SERIES",
	codec.FieldISBN:        "ISBN",
	codec.FieldUserTags:    "TAGS",
}

// ffmpegStrategy shells out to ffmpeg, remuxing the audio stream with fresh
// metadata and an optional attached picture. Second in the chain: slower
// than the in-process binding but handles containers the binding chokes on.
type ffmpegStrategy struct {
	once sync.Once
	path string
}

func (s *ffmpegStrategy) Name() string { return "ffmpeg" }

// locate finds the ffmpeg executable once, checking PATH first and then the
// well-known install locations.
func (s *ffmpegStrategy) locate() string {
	s.once.Do(func() {
		if p, err := exec.LookPath("ffmpeg"); err == nil {
			s.path = p
			return
		}
		for _, candidate := range wellKnownFFmpegPaths {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				s.path = candidate
				return
			}
		}
		log.Printf("[DEBUG] persist: ffmpeg not found, strategy disabled")
	})
	return s.path
}

func (s *ffmpegStrategy) Available(path string) bool {
	return s.locate() != ""
}

func (s *ffmpegStrategy) Apply(ctx context.Context, src, dst string, rec models.Record, coverPath string) error {
	ffmpeg := s.locate()
	if ffmpeg == "" {
		return fmt.Errorf("ffmpeg executable not found")
	}

	args := []string{"-y", "-i", src}
	if coverPath != "" {
		args = append(args,
			"-i", coverPath,
			"-map", "0:a",
			"-map", "1",
			"-disposition:v:0", "attached_pic",
		)
	} else {
		args = append(args, "-map", "0:a")
	}
	args = append(args, "-c", "copy")

	// Drop the source's metadata so the output carries only the record.
	args = append(args, "-map_metadata", "-1")
	for field, value := range codec.FieldValues(rec) {
		key, ok := ffmpegMetadataKeys[field]
		if !ok {
			continue
		}
		args = append(args, "-metadata", key+"="+value)
	}

	if isMP4Container(dst) {
		args = append(args, "-movflags", "+faststart")
	}
	args = append(args, dst)

	cmd := exec.CommandContext(ctx, ffmpeg, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w\noutput: %s", err, string(output))
	}
	return nil
}

func isMP4Container(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m4b", ".m4a", ".aac", ".mp4":
		return true
	}
	return false
}
