// file: internal/codec/fields.go
// version: 1.2.0
// guid: 7a1c4e90-2f6b-4d38-8c5a-0e9d3b7f6a12

package codec

import (
	"fmt"
	"strings"

	"github.com/jdfalk/audiobook-curator/internal/models"
)

// Field is a logical metadata field. Container formats store these under
// differing frame or atom names; the alias tables below map each logical
// field to the container identifiers it may live under, in probe order.
type Field int

const (
	FieldTitle Field = iota
	FieldSubtitle
	FieldArtist
	FieldAlbumArtist
	FieldComposer
	FieldAlbum
	FieldTrack
	FieldPublisher
	FieldGenre
	FieldComment
	FieldLanguage
	FieldISBN
	FieldSeries
	FieldSeriesPosition
	FieldDate
	FieldUserTags
)

// id3ReadAliases maps logical fields to ID3 frame identifiers, newest-first.
// Readers probe every alias and keep the first non-empty value.
var id3ReadAliases = map[Field][]string{
	FieldSubtitle:       {"TIT3", "TXXX:SUBTITLE", "TXXX:Subtitle"},
	FieldComposer:       {"TCOM", "TXXX:NARRATOR", "TXXX:Narrator", "NARRATOR"},
	FieldAlbumArtist:    {"TPE2"},
	FieldPublisher:      {"TPUB"},
	FieldLanguage:       {"TLAN"},
	FieldISBN:           {"TXXX:ISBN", "TXXX:ISBN13", "ISBN"},
	FieldSeries:         {"MVNM", "TXXX:SERIES", "TXXX:Series", "TGID", "GRP1", "TIT1"},
	FieldSeriesPosition: {"MVIN", "TXXX:SERIES-PART", "TXXX:seriespart"},
	FieldUserTags:       {"TXXX:TAGS", "TXXX:Tags"},
}

// mp4ReadAliases maps logical fields to MP4 atom names.
var mp4ReadAliases = map[Field][]string{
	FieldSubtitle:       {"----:com.apple.iTunes:SUBTITLE"},
	FieldComposer:       {"©wrt", "©nrt", "----:com.apple.iTunes:NARRATOR"},
	FieldAlbumArtist:    {"aART"},
	FieldPublisher:      {"©pub", "----:com.apple.iTunes:PUBLISHER"},
	FieldLanguage:       {"----:com.apple.iTunes:LANGUAGE"},
	FieldISBN:           {"----:com.apple.iTunes:ISBN"},
	FieldSeries:         {"©mvn", "©grp", "----:com.apple.iTunes:SERIES"},
	FieldSeriesPosition: {"©mvi", "----:com.apple.iTunes:SERIES-PART"},
	FieldUserTags:       {"----:com.apple.iTunes:TAGS"},
}

// FieldValues builds the container-agnostic field map for a record, applying
// the audiobook conventions: first author is the artist, all authors joined
// are the album artist, the narrator goes to the composer slot and the series
// (or the title for standalone books) becomes the album.
func FieldValues(rec models.Record) map[Field]string {
	vals := map[Field]string{
		FieldTitle:          rec.DisplayTitle(),
		FieldSubtitle:       rec.Subtitle,
		FieldArtist:         rec.PrimaryAuthor(),
		FieldAlbumArtist:    strings.Join(rec.Authors, ", "),
		FieldComposer:       rec.Narrator,
		FieldAlbum:          rec.AlbumName(),
		FieldTrack:          rec.SeriesPosition,
		FieldPublisher:      rec.Publisher,
		FieldGenre:          rec.Genre(),
		FieldComment:        rec.Description,
		FieldLanguage:       rec.Language,
		FieldISBN:           rec.ISBN(),
		FieldSeries:         rec.Series,
		FieldSeriesPosition: rec.SeriesPosition,
		FieldDate:           rec.PublishedDate,
		FieldUserTags:       strings.Join(rec.UserTags, ";"),
	}
	for f, v := range vals {
		if v == "" {
			delete(vals, f)
		}
	}
	return vals
}

// FormatDuration renders integer milliseconds as h:mm:ss. Sub-second
// precision is truncated, never rounded.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// ParseDuration parses h:mm:ss (or mm:ss) back into integer milliseconds.
func ParseDuration(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	var nums []int64
	for _, p := range parts {
		var n int64
		if _, err := fmt.Sscanf(p, "%d", &n); err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		nums = append(nums, n)
	}
	var seconds int64
	if len(nums) == 3 {
		seconds = nums[0]*3600 + nums[1]*60 + nums[2]
	} else {
		seconds = nums[0]*60 + nums[1]
	}
	return seconds * 1000, nil
}
