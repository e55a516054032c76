// file: internal/models/record.go
// version: 1.2.0
// guid: 9e2b7c41-5a3d-4f8e-9b0c-6d1e2f3a4b5c

package models

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Provider origin tags. Every record carries one so merge policies and the
// resolver can tell local extractions apart from catalog responses.
const (
	ProviderFile     = "file"
	ProviderManual   = "manual"
	ProviderFilename = "filename-heuristic"
)

// Identifier is a typed external identifier, e.g. {"ISBN_13", "9780451457813"}.
type Identifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Bookmark marks a playback position the user wants to return to.
type Bookmark struct {
	Position  int64     `json:"position"` // milliseconds into the book
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Record is the metadata value object passed between the codec, resolver and
// persistence layers. Treat it as immutable: merge policies return fresh
// copies instead of mutating their inputs.
type Record struct {
	// Identity
	ID       string `json:"id"`
	Provider string `json:"provider"`

	// Descriptive
	Title          string   `json:"title"`
	Subtitle       string   `json:"subtitle,omitempty"`
	Authors        []string `json:"authors,omitempty"` // ordered, first is primary
	Narrator       string   `json:"narrator,omitempty"`
	Series         string   `json:"series,omitempty"`
	SeriesPosition string   `json:"series_position,omitempty"` // string: "2.5" happens
	Description    string   `json:"description,omitempty"`
	Publisher      string   `json:"publisher,omitempty"`
	PublishedDate  string   `json:"published_date,omitempty"` // year, year-month or full date
	Categories     []string `json:"categories,omitempty"`
	MainCategory   string   `json:"main_category,omitempty"`
	Language       string   `json:"language,omitempty"`

	// Catalog extras
	Identifiers   []Identifier `json:"identifiers,omitempty"`
	PageCount     int          `json:"page_count,omitempty"`
	AverageRating float64      `json:"average_rating,omitempty"`
	RatingsCount  int          `json:"ratings_count,omitempty"`
	ThumbnailURL  string       `json:"thumbnail_url,omitempty"` // local path once persisted

	// Audio-technical, always from local extraction
	AudioDuration int64  `json:"audio_duration,omitempty"` // milliseconds
	Bitrate       int    `json:"bitrate,omitempty"`        // bits per second
	Channels      int    `json:"channels,omitempty"`
	SampleRate    int    `json:"sample_rate,omitempty"`
	FileFormat    string `json:"file_format,omitempty"` // extension without dot

	// User data, never touched by resolution merges
	UserRating         float64    `json:"user_rating,omitempty"`
	IsFavorite         bool       `json:"is_favorite,omitempty"`
	UserTags           []string   `json:"user_tags,omitempty"`
	Bookmarks          []Bookmark `json:"bookmarks,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	PlaybackPosition   int64      `json:"playback_position,omitempty"`
	LastPlayedPosition int64      `json:"last_played_position,omitempty"`
}

// NewID mints a lexicographically sortable record ID.
func NewID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// PrimaryAuthor returns the first author, or "" for an anonymous record.
func (r Record) PrimaryAuthor() string {
	if len(r.Authors) == 0 {
		return ""
	}
	return r.Authors[0]
}

// DisplayTitle joins title and subtitle the way players show them.
func (r Record) DisplayTitle() string {
	if r.Subtitle != "" {
		return r.Title + ": " + r.Subtitle
	}
	return r.Title
}

// ISBN returns the preferred ISBN identifier, favouring ISBN_13.
func (r Record) ISBN() string {
	var fallback string
	for _, id := range r.Identifiers {
		if id.Type == "ISBN_13" {
			return id.Value
		}
		if fallback == "" && strings.HasPrefix(id.Type, "ISBN") {
			fallback = id.Value
		}
	}
	return fallback
}

// Genre returns the main category, defaulting to "Audiobook".
func (r Record) Genre() string {
	if r.MainCategory != "" {
		return r.MainCategory
	}
	if len(r.Categories) > 0 {
		return r.Categories[0]
	}
	return "Audiobook"
}

// AlbumName is the series when the record belongs to one, otherwise the
// title; players group audiobooks by album.
func (r Record) AlbumName() string {
	if r.Series != "" {
		return r.Series
	}
	return r.Title
}

// IsEmpty reports whether the record carries no descriptive data at all.
func (r Record) IsEmpty() bool {
	return r.Title == "" && len(r.Authors) == 0 && r.Series == "" &&
		r.Description == "" && r.Publisher == "" && r.PublishedDate == ""
}

// IsComprehensive reports whether the record is complete enough that remote
// lookup adds nothing: title, at least one author and one of series,
// published date or description.
func (r Record) IsComprehensive() bool {
	return r.Title != "" && len(r.Authors) > 0 &&
		(r.Series != "" || r.PublishedDate != "" || r.Description != "")
}
