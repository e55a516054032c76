// file: internal/codec/codec.go
// version: 1.3.1
// guid: b4e8f2a1-9c6d-4f50-8e27-3a1b5d9c0f64

package codec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/jdfalk/audiobook-curator/internal/models"
)

// ErrNotTagged is returned by Read when a file carries no readable tag
// block. It is a valid outcome for untagged rips, not a malformed file.
var ErrNotTagged = errors.New("file has no readable tags")

// ErrUnsupportedFormat is returned for extensions outside the known set.
var ErrUnsupportedFormat = errors.New("unsupported container format")

// Error wraps a container-level failure so callers can distinguish a
// malformed container from plain I/O problems.
type Error struct {
	Path string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("codec %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// frameExtensions are the frame-based (ID3) container family.
var frameExtensions = map[string]bool{
	".mp3": true,
}

// atomExtensions are the atom/box-based container family plus the
// vorbis-comment formats TagLib handles the same way for our purposes.
var atomExtensions = map[string]bool{
	".m4b": true, ".m4a": true, ".aac": true,
	".flac": true, ".ogg": true, ".opus": true,
}

// Codec reads and writes Metadata Records from/to audio container files.
type Codec struct{}

// New returns a Codec.
func New() *Codec { return &Codec{} }

// Supported reports whether the codec can handle the file's container.
func (c *Codec) Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return frameExtensions[ext] || atomExtensions[ext]
}

// Read decodes the file's tag block into a Record. Technical stream facts
// (duration, bitrate) are not read here; mediainfo owns those.
func (c *Codec) Read(path string) (models.Record, error) {
	var rec models.Record

	ext := strings.ToLower(filepath.Ext(path))
	if !c.Supported(path) {
		return rec, &Error{Path: path, Op: "read", Err: ErrUnsupportedFormat}
	}

	f, err := os.Open(path)
	if err != nil {
		return rec, fmt.Errorf("open for tag read: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// dhowden/tag errors on files without any tag block; report that
		// as the distinguished not-tagged outcome.
		return rec, ErrNotTagged
	}

	rec.Provider = models.ProviderFile
	rec.FileFormat = strings.TrimPrefix(ext, ".")
	rec.Title = strings.TrimSpace(m.Title())
	if artist := strings.TrimSpace(m.Artist()); artist != "" {
		rec.Authors = splitAuthors(artist)
	}
	if genre := strings.TrimSpace(m.Genre()); genre != "" {
		rec.MainCategory = genre
		rec.Categories = []string{genre}
	}
	rec.Description = strings.TrimSpace(m.Comment())
	if y := m.Year(); y > 0 {
		rec.PublishedDate = strconv.Itoa(y)
	}

	aliases := id3ReadAliases
	if atomExtensions[ext] {
		aliases = mp4ReadAliases
	}
	raw := m.Raw()

	rec.Subtitle = probeRaw(raw, aliases[FieldSubtitle])
	rec.Narrator = probeRaw(raw, aliases[FieldComposer])
	rec.Publisher = probeRaw(raw, aliases[FieldPublisher])
	rec.Language = probeRaw(raw, aliases[FieldLanguage])
	rec.Series = probeRaw(raw, aliases[FieldSeries])
	rec.SeriesPosition = probeRaw(raw, aliases[FieldSeriesPosition])
	if isbn := probeRaw(raw, aliases[FieldISBN]); isbn != "" {
		idType := "ISBN_13"
		if len(isbn) == 10 {
			idType = "ISBN_10"
		}
		rec.Identifiers = []models.Identifier{{Type: idType, Value: isbn}}
	}
	if tags := probeRaw(raw, aliases[FieldUserTags]); tags != "" {
		rec.UserTags = splitList(tags, ";")
	}

	// Album doubles as the series for audiobook rips that predate the
	// movement frames.
	album := strings.TrimSpace(m.Album())
	if rec.Series == "" && album != "" && !strings.EqualFold(album, rec.Title) {
		rec.Series = album
	}
	if rec.SeriesPosition == "" {
		if n, _ := m.Track(); n > 0 {
			rec.SeriesPosition = strconv.Itoa(n)
		}
	}

	if rec.IsEmpty() {
		return models.Record{}, ErrNotTagged
	}
	rec.ID = models.NewID()
	return rec, nil
}

// ReadPicture returns the embedded picture bytes, or nil when the file has
// none.
func (c *Codec) ReadPicture(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open for picture read: %w", err)
	}
	defer f.Close()

	if m, err := tag.ReadFrom(f); err == nil {
		if pic := m.Picture(); pic != nil {
			return pic.Data, nil
		}
	}
	if atomExtensions[strings.ToLower(filepath.Ext(path))] {
		return readTagLibPicture(path)
	}
	return nil, nil
}

// Write embeds the record (and cover, when non-nil) into the file in place
// as a full-metadata replacement: the mapped tag block is rebuilt from the
// record, the audio stream is untouched.
func (c *Codec) Write(path string, rec models.Record, cover []byte) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case frameExtensions[ext]:
		return writeID3(path, rec, cover)
	case atomExtensions[ext]:
		return writeTagLib(path, rec, cover)
	default:
		return &Error{Path: path, Op: "write", Err: ErrUnsupportedFormat}
	}
}

// StripPicture removes any embedded picture from the file. Some container
// writers cannot replace an existing picture atom but can add one to a
// picture-less file, so the persistence engine strips first as a fallback.
func (c *Codec) StripPicture(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case frameExtensions[ext]:
		return stripID3Picture(path)
	case atomExtensions[ext]:
		return stripTagLibPicture(path)
	default:
		return &Error{Path: path, Op: "strip", Err: ErrUnsupportedFormat}
	}
}

// probeRaw checks each alias in order against the raw tag map and returns
// the first non-empty string value.
func probeRaw(raw map[string]interface{}, aliases []string) string {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			if t := strings.TrimSpace(s); t != "" {
				return t
			}
		case *tag.Comm:
			if s != nil && strings.TrimSpace(s.Text) != "" {
				return strings.TrimSpace(s.Text)
			}
		}
	}
	return ""
}

// splitAuthors splits a joined artist field into individual author names.
func splitAuthors(artist string) []string {
	var out []string
	for _, sep := range []string{";", "/", " & ", ", "} {
		if strings.Contains(artist, sep) {
			for _, part := range strings.Split(artist, sep) {
				if p := strings.TrimSpace(part); p != "" {
					out = append(out, p)
				}
			}
			return out
		}
	}
	return []string{strings.TrimSpace(artist)}
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
