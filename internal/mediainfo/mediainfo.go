// file: internal/mediainfo/mediainfo.go
// version: 1.2.0
// guid: e3d4c5b6-a798-4c8d-9e0f-2b3c4d5e6f70

package mediainfo

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	taglib "go.senan.xyz/taglib"

	"github.com/jdfalk/audiobook-curator/internal/models"
)

// Info holds technical stream facts for an audio file.
type Info struct {
	DurationMS int64  // milliseconds
	Bitrate    int    // bits per second
	SampleRate int    // Hz
	Channels   int
	Format     string // extension without dot
	Estimated  bool   // true when values were inferred, not read
}

// defaultBitrates is the per-format assumption used when the stream cannot
// be probed. Audiobook rips skew low; these are the common encode rates.
var defaultBitrates = map[string]int{
	"mp3":  128000,
	"m4b":  64000,
	"m4a":  128000,
	"aac":  128000,
	"flac": 700000,
	"ogg":  96000,
	"opus": 48000,
}

// Extract probes the file's audio properties through TagLib. When probing
// fails, duration is estimated from the file size and a per-format bitrate
// assumption, flagged via Info.Estimated.
func Extract(path string) (*Info, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	info := &Info{Format: ext}

	props, err := taglib.ReadProperties(path)
	if err == nil && props.Length > 0 {
		info.DurationMS = props.Length.Milliseconds()
		info.Bitrate = int(props.Bitrate) * 1000
		info.SampleRate = int(props.SampleRate)
		info.Channels = int(props.Channels)
		return info, nil
	}
	if err != nil {
		log.Printf("[DEBUG] mediainfo: property probe failed for %s, estimating: %v", path, err)
	}
	return estimate(path, info)
}

// estimate fills technical facts from the file size and format assumptions.
func estimate(path string, info *Info) (*Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	bitrate, ok := defaultBitrates[info.Format]
	if !ok {
		bitrate = 128000
	}
	info.Bitrate = bitrate
	info.SampleRate = 44100
	info.Channels = 2
	info.DurationMS = stat.Size() * 8 * 1000 / int64(bitrate)
	info.Estimated = true
	return info, nil
}

// Apply copies the technical facts onto a record. The record's technical
// fields are authoritative-from-local, so this overwrites whatever merge
// left there.
func (i *Info) Apply(rec *models.Record) {
	rec.AudioDuration = i.DurationMS
	rec.Bitrate = i.Bitrate
	rec.SampleRate = i.SampleRate
	rec.Channels = i.Channels
	rec.FileFormat = i.Format
}
