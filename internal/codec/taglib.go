// file: internal/codec/taglib.go
// version: 1.1.1
// guid: e2f7b3c8-6a1d-4e95-b740-9d3c5f8a2e06

package codec

import (
	"fmt"

	taglib "go.senan.xyz/taglib"

	"github.com/jdfalk/audiobook-curator/internal/models"
)

// taglibKeys maps logical fields to TagLib property names. TagLib abstracts
// the per-container atom/frame naming, so one table covers MP4, FLAC and
// Ogg targets.
var taglibKeys = map[Field]string{
	FieldTitle:          taglib.Title,
	FieldSubtitle:       "SUBTITLE",
	FieldArtist:         taglib.Artist,
	FieldAlbumArtist:    taglib.AlbumArtist,
	FieldComposer:       "COMPOSER",
	FieldAlbum:          taglib.Album,
	FieldTrack:          taglib.TrackNumber,
	FieldPublisher:      "PUBLISHER",
	FieldGenre:          taglib.Genre,
	FieldComment:        "COMMENT",
	FieldLanguage:       "LANGUAGE",
	FieldISBN:           "ISBN",
	FieldSeries:         "SERIES",
	FieldSeriesPosition: "SERIES-PART",
	FieldDate:           taglib.Date,
	FieldUserTags:       "TAGS",
}

// writeTagLib rebuilds the file's property map from the record via the
// in-process TagLib binding and embeds the cover when provided.
func writeTagLib(path string, rec models.Record, cover []byte) error {
	props := make(map[string][]string)
	for field, v := range FieldValues(rec) {
		key, ok := taglibKeys[field]
		if !ok {
			continue
		}
		props[key] = []string{v}
	}
	if len(props) == 0 {
		return &Error{Path: path, Op: "write", Err: fmt.Errorf("record maps to no writable properties")}
	}

	// Clear drops every existing property first: a full-metadata
	// replacement, not a patch.
	if err := taglib.WriteTags(path, props, taglib.Clear); err != nil {
		return &Error{Path: path, Op: "write", Err: fmt.Errorf("taglib write: %w", err)}
	}

	if len(cover) > 0 {
		if err := taglib.WriteImage(path, cover); err != nil {
			return &Error{Path: path, Op: "write", Err: fmt.Errorf("taglib cover write: %w", err)}
		}
	}
	return nil
}

// WriteTagLib writes the record through the in-process TagLib binding
// regardless of container family. TagLib handles MP3 as well as the atom
// formats, which makes this the broadest single write path available.
func WriteTagLib(path string, rec models.Record, cover []byte) error {
	return writeTagLib(path, rec, cover)
}

// stripTagLibPicture clears the embedded picture from an atom-based file.
func stripTagLibPicture(path string) error {
	if err := taglib.WriteImage(path, nil); err != nil {
		return &Error{Path: path, Op: "strip", Err: fmt.Errorf("taglib picture strip: %w", err)}
	}
	return nil
}

// readTagLibPicture returns embedded picture bytes via TagLib; used for
// containers dhowden/tag cannot picture-probe.
func readTagLibPicture(path string) ([]byte, error) {
	data, err := taglib.ReadImage(path)
	if err != nil {
		return nil, &Error{Path: path, Op: "read", Err: fmt.Errorf("taglib picture read: %w", err)}
	}
	return data, nil
}
