// file: internal/models/merge.go
// version: 1.1.0
// guid: 2f8c1d0a-7b4e-4c9f-8a3d-5e6f7a8b9c0d

package models

// Merge policies. All three are pure: they build a new Record and never
// mutate base or incoming. Audio-technical fields always come from base
// because local extraction is authoritative for stream facts.

// Enhance fills base's empty descriptive and catalog fields from incoming.
// Populated base fields, user data and technical fields are untouched.
func Enhance(base, incoming Record) Record {
	out := base
	out.Authors = cloneStrings(base.Authors)
	out.Categories = cloneStrings(base.Categories)
	out.Identifiers = cloneIdentifiers(base.Identifiers)
	out.UserTags = cloneStrings(base.UserTags)
	out.Bookmarks = cloneBookmarks(base.Bookmarks)

	if out.ID == "" {
		out.ID = incoming.ID
	}
	if out.Provider == "" || out.Provider == ProviderFile {
		if incoming.Provider != "" {
			out.Provider = incoming.Provider
		}
	}
	out.Title = firstNonEmpty(base.Title, incoming.Title)
	out.Subtitle = firstNonEmpty(base.Subtitle, incoming.Subtitle)
	if len(out.Authors) == 0 {
		out.Authors = cloneStrings(incoming.Authors)
	}
	out.Narrator = firstNonEmpty(base.Narrator, incoming.Narrator)
	out.Series = firstNonEmpty(base.Series, incoming.Series)
	out.SeriesPosition = firstNonEmpty(base.SeriesPosition, incoming.SeriesPosition)
	out.Description = firstNonEmpty(base.Description, incoming.Description)
	out.Publisher = firstNonEmpty(base.Publisher, incoming.Publisher)
	out.PublishedDate = firstNonEmpty(base.PublishedDate, incoming.PublishedDate)
	if len(out.Categories) == 0 {
		out.Categories = cloneStrings(incoming.Categories)
	}
	out.MainCategory = firstNonEmpty(base.MainCategory, incoming.MainCategory)
	out.Language = firstNonEmpty(base.Language, incoming.Language)
	if len(out.Identifiers) == 0 {
		out.Identifiers = cloneIdentifiers(incoming.Identifiers)
	}
	if out.PageCount == 0 {
		out.PageCount = incoming.PageCount
	}
	if out.AverageRating == 0 {
		out.AverageRating = incoming.AverageRating
	}
	if out.RatingsCount == 0 {
		out.RatingsCount = incoming.RatingsCount
	}
	out.ThumbnailURL = firstNonEmpty(base.ThumbnailURL, incoming.ThumbnailURL)
	return out
}

// UpdateVersion takes incoming's descriptive and catalog fields wholesale,
// treating base as a stale record of the same work. Empty incoming fields
// win too. User data and technical fields stay with base.
func UpdateVersion(base, incoming Record) Record {
	out := incoming
	out.Authors = cloneStrings(incoming.Authors)
	out.Categories = cloneStrings(incoming.Categories)
	out.Identifiers = cloneIdentifiers(incoming.Identifiers)

	copyTechnical(&out, base)
	copyUserData(&out, base)
	return out
}

// ReplaceBook swaps in a different work: incoming's descriptive and catalog
// fields win and user data resets to defaults, since ratings and bookmarks
// for the old book mean nothing for the new one.
func ReplaceBook(base, incoming Record) Record {
	out := incoming
	out.Authors = cloneStrings(incoming.Authors)
	out.Categories = cloneStrings(incoming.Categories)
	out.Identifiers = cloneIdentifiers(incoming.Identifiers)

	copyTechnical(&out, base)
	resetUserData(&out)
	return out
}

func copyTechnical(dst *Record, src Record) {
	dst.AudioDuration = src.AudioDuration
	dst.Bitrate = src.Bitrate
	dst.Channels = src.Channels
	dst.SampleRate = src.SampleRate
	dst.FileFormat = src.FileFormat
}

func copyUserData(dst *Record, src Record) {
	dst.UserRating = src.UserRating
	dst.IsFavorite = src.IsFavorite
	dst.UserTags = cloneStrings(src.UserTags)
	dst.Bookmarks = cloneBookmarks(src.Bookmarks)
	dst.Notes = src.Notes
	dst.PlaybackPosition = src.PlaybackPosition
	dst.LastPlayedPosition = src.LastPlayedPosition
}

func resetUserData(dst *Record) {
	dst.UserRating = 0
	dst.IsFavorite = false
	dst.UserTags = nil
	dst.Bookmarks = nil
	dst.Notes = ""
	dst.PlaybackPosition = 0
	dst.LastPlayedPosition = 0
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneIdentifiers(in []Identifier) []Identifier {
	if in == nil {
		return nil
	}
	return append([]Identifier(nil), in...)
}

func cloneBookmarks(in []Bookmark) []Bookmark {
	if in == nil {
		return nil
	}
	return append([]Bookmark(nil), in...)
}
