// file: internal/models/merge_test.go
// version: 1.1.0
// guid: 7a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3d

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func baseRecord() Record {
	return Record{
		ID:             "BASE01",
		Provider:       ProviderFile,
		Title:          "Storm Front",
		Authors:        []string{"Jim Butcher"},
		Series:         "The Dresden Files",
		SeriesPosition: "1",
		FileFormat:     "m4b",
		AudioDuration:  29520000,
		Bitrate:        64000,
		Channels:       2,
		SampleRate:     44100,
		UserRating:     4.5,
		IsFavorite:     true,
		UserTags:       []string{"reread"},
		Bookmarks: []Bookmark{
			{Position: 120000, Label: "ch 2", CreatedAt: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
		},
		Notes:              "great narrator",
		PlaybackPosition:   360000,
		LastPlayedPosition: 360000,
	}
}

func catalogRecord() Record {
	return Record{
		ID:            "GB001",
		Provider:      "Google Books",
		Title:         "Storm Front",
		Subtitle:      "The Dresden Files, Book One",
		Authors:       []string{"Jim Butcher"},
		Narrator:      "James Marsters",
		Series:        "Dresden Files",
		Description:   "Wizard for hire.",
		Publisher:     "Roc",
		PublishedDate: "2000-04-01",
		Categories:    []string{"Fantasy"},
		MainCategory:  "Fantasy",
		Language:      "en",
		Identifiers:   []Identifier{{Type: "ISBN_13", Value: "9780451457813"}},
		PageCount:     322,
		AverageRating: 4.5,
		RatingsCount:  1042,
		ThumbnailURL:  "covers/GB001.jpg",
	}
}

func TestEnhanceFillsOnlyGaps(t *testing.T) {
	base := baseRecord()
	out := Enhance(base, catalogRecord())

	// Populated base fields survive.
	assert.Equal(t, "BASE01", out.ID)
	assert.Equal(t, "Storm Front", out.Title)
	assert.Equal(t, "The Dresden Files", out.Series, "base series must not be replaced")

	// Gaps fill from incoming.
	assert.Equal(t, "The Dresden Files, Book One", out.Subtitle)
	assert.Equal(t, "James Marsters", out.Narrator)
	assert.Equal(t, "Roc", out.Publisher)
	assert.Equal(t, "2000-04-01", out.PublishedDate)
	assert.Equal(t, 322, out.PageCount)
	assert.Equal(t, "9780451457813", out.ISBN())
	assert.Equal(t, "covers/GB001.jpg", out.ThumbnailURL)
}

func TestEnhancePromotesProviderOverFile(t *testing.T) {
	out := Enhance(baseRecord(), catalogRecord())
	assert.Equal(t, "Google Books", out.Provider)

	manual := baseRecord()
	manual.Provider = ProviderManual
	out = Enhance(manual, catalogRecord())
	assert.Equal(t, ProviderManual, out.Provider, "manual edits outrank catalog data")
}

func TestEnhanceSelfMergeIsNoOp(t *testing.T) {
	base := baseRecord()
	assert.Equal(t, base, Enhance(base, base))
}

func TestUpdateVersionIncomingWins(t *testing.T) {
	base := baseRecord()
	incoming := catalogRecord()
	incoming.Series = "" // stale base had a series, the new edition does not
	out := UpdateVersion(base, incoming)

	assert.Equal(t, "GB001", out.ID)
	assert.Empty(t, out.Series, "empty incoming descriptive fields win too")
	assert.Equal(t, "Roc", out.Publisher)
}

func TestTechnicalFieldsAlwaysFromBase(t *testing.T) {
	base := baseRecord()
	incoming := catalogRecord()
	incoming.Bitrate = 128000
	incoming.FileFormat = "mp3"

	for name, out := range map[string]Record{
		"enhance": Enhance(base, incoming),
		"update":  UpdateVersion(base, incoming),
		"replace": ReplaceBook(base, incoming),
	} {
		assert.Equal(t, 64000, out.Bitrate, name)
		assert.Equal(t, "m4b", out.FileFormat, name)
		assert.Equal(t, int64(29520000), out.AudioDuration, name)
	}
}

func TestUserDataInvariantAcrossPolicies(t *testing.T) {
	base := baseRecord()
	incoming := catalogRecord()
	incoming.UserRating = 1.0
	incoming.UserTags = []string{"spam"}

	for name, out := range map[string]Record{
		"enhance": Enhance(base, incoming),
		"update":  UpdateVersion(base, incoming),
	} {
		assert.Equal(t, 4.5, out.UserRating, name)
		assert.True(t, out.IsFavorite, name)
		assert.Equal(t, []string{"reread"}, out.UserTags, name)
		assert.Len(t, out.Bookmarks, 1, name)
		assert.Equal(t, "great narrator", out.Notes, name)
		assert.Equal(t, int64(360000), out.PlaybackPosition, name)
	}
}

func TestReplaceBookResetsUserData(t *testing.T) {
	out := ReplaceBook(baseRecord(), catalogRecord())

	assert.Zero(t, out.UserRating)
	assert.False(t, out.IsFavorite)
	assert.Empty(t, out.UserTags)
	assert.Empty(t, out.Bookmarks)
	assert.Empty(t, out.Notes)
	assert.Zero(t, out.PlaybackPosition)
	assert.Zero(t, out.LastPlayedPosition)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := baseRecord()
	incoming := catalogRecord()
	baseCopy := baseRecord()
	incomingCopy := catalogRecord()

	out := Enhance(base, incoming)
	out.Authors[0] = "mutated"
	out.UserTags[0] = "mutated"

	assert.Equal(t, baseCopy, base)
	assert.Equal(t, incomingCopy, incoming)
}

func TestRecordHelpers(t *testing.T) {
	rec := catalogRecord()
	assert.Equal(t, "Jim Butcher", rec.PrimaryAuthor())
	assert.Equal(t, "Storm Front: The Dresden Files, Book One", rec.DisplayTitle())
	assert.Equal(t, "Dresden Files", rec.AlbumName())
	assert.Equal(t, "Fantasy", rec.Genre())

	standalone := Record{Title: "The Martian"}
	assert.Equal(t, "The Martian", standalone.AlbumName())
	assert.Equal(t, "Audiobook", standalone.Genre())
	assert.Empty(t, standalone.PrimaryAuthor())

	assert.True(t, Record{}.IsEmpty())
	assert.False(t, standalone.IsEmpty())

	assert.False(t, standalone.IsComprehensive())
	full := Record{Title: "t", Authors: []string{"a"}, Description: "d"}
	assert.True(t, full.IsComprehensive())
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
