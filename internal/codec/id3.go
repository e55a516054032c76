// file: internal/codec/id3.go
// version: 1.1.0
// guid: c7d2a950-1e4f-4b83-9a06-5f2e8c4b7d19

package codec

import (
	"fmt"
	"net/http"

	"github.com/bogem/id3v2"

	"github.com/jdfalk/audiobook-curator/internal/models"
)

// id3WriteFrames maps logical fields to the ID3v2.4 frame each is written
// under. Reading probes the historical aliases; writing always uses the
// canonical frame.
var id3WriteFrames = map[Field]string{
	FieldSubtitle:       "TIT3",
	FieldAlbumArtist:    "TPE2",
	FieldComposer:       "TCOM",
	FieldTrack:          "TRCK",
	FieldPublisher:      "TPUB",
	FieldLanguage:       "TLAN",
	FieldSeries:         "MVNM",
	FieldSeriesPosition: "MVIN",
	FieldDate:           "TDRC",
}

// id3UserFrames are written as TXXX frames keyed by description.
var id3UserFrames = map[Field]string{
	FieldISBN:     "ISBN",
	FieldSeries:   "SERIES",
	FieldUserTags: "TAGS",
}

// writeID3 rebuilds the file's ID3 tag from the record. Existing frames are
// dropped first so stale values from previous taggers cannot survive.
func writeID3(path string, rec models.Record, cover []byte) error {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return &Error{Path: path, Op: "write", Err: fmt.Errorf("open id3: %w", err)}
	}
	defer t.Close()

	t.DeleteAllFrames()
	t.SetVersion(4)
	t.SetDefaultEncoding(id3v2.EncodingUTF8)

	vals := FieldValues(rec)

	if v := vals[FieldTitle]; v != "" {
		t.SetTitle(v)
	}
	if v := vals[FieldArtist]; v != "" {
		t.SetArtist(v)
	}
	if v := vals[FieldAlbum]; v != "" {
		t.SetAlbum(v)
	}
	if v := vals[FieldGenre]; v != "" {
		t.SetGenre(v)
	}
	for field, frame := range id3WriteFrames {
		if v := vals[field]; v != "" {
			t.AddTextFrame(frame, id3v2.EncodingUTF8, v)
		}
	}
	for field, desc := range id3UserFrames {
		if v := vals[field]; v != "" {
			t.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
				Encoding:    id3v2.EncodingUTF8,
				Description: desc,
				Value:       v,
			})
		}
	}
	if v := vals[FieldComment]; v != "" {
		t.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    id3Language(rec.Language),
			Description: "",
			Text:        v,
		})
	}

	if len(cover) > 0 {
		t.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    http.DetectContentType(cover),
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     cover,
		})
	}

	if err := t.Save(); err != nil {
		return &Error{Path: path, Op: "write", Err: fmt.Errorf("save id3: %w", err)}
	}
	return nil
}

// stripID3Picture removes all APIC frames, leaving other frames intact.
func stripID3Picture(path string) error {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return &Error{Path: path, Op: "strip", Err: fmt.Errorf("open id3: %w", err)}
	}
	defer t.Close()

	t.DeleteFrames(t.CommonID("Attached picture"))
	if err := t.Save(); err != nil {
		return &Error{Path: path, Op: "strip", Err: fmt.Errorf("save id3: %w", err)}
	}
	return nil
}

// id3Language returns a 3-byte language code for COMM frames; ID3 requires
// one even when the record has no language.
func id3Language(lang string) string {
	switch len(lang) {
	case 3:
		return lang
	case 2:
		// Common two-letter codes the catalogs return.
		known := map[string]string{
			"en": "eng", "de": "deu", "fr": "fra", "es": "spa",
			"it": "ita", "pt": "por", "nl": "nld", "ru": "rus",
			"ja": "jpn", "zh": "zho",
		}
		if v, ok := known[lang]; ok {
			return v
		}
	}
	return "und"
}
