// file: internal/resolver/query.go
// version: 1.0.0
// guid: 5d6e7f80-91a2-4b3c-8d4e-5f6a7b8c9d0e

package resolver

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jdfalk/audiobook-curator/internal/models"
)

var (
	// Leading track numbers: "01 - ", "03.", "12_".
	trackPrefixRe = regexp.MustCompile(`^\s*\d{1,3}\s*[-._)]\s*`)
	// Volume/part/chapter tokens: "Book 3", "Vol. 2", "Part 1 of 12",
	// "Chapter 07", "CD2", "Disc 1".
	volumeTokenRe = regexp.MustCompile(`(?i)\b(vol(ume)?|part|pt|chapter|ch|disc|disk|cd|book)\.?\s*\d+(\s+of\s+\d+)?`)
	// Bracketed release junk: "[64kbps]", "(Unabridged)", "{2004}".
	bracketRe    = regexp.MustCompile(`[\[({][^\])}]*[\])}]`)
	separatorRe  = regexp.MustCompile(`[_.+]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// folder names too generic to identify a book
var genericDirs = map[string]bool{
	"audiobooks": true,
	"audiobook":  true,
	"books":      true,
	"downloads":  true,
	"music":      true,
	"media":      true,
	"incoming":   true,
	"library":    true,
}

// queryFromRecord derives a provider search query from a partial record:
// title, primary author and series joined with spaces. Empty when the record
// has no title to anchor the search.
func queryFromRecord(rec models.Record) string {
	if rec.Title == "" {
		return ""
	}
	parts := []string{rec.Title}
	if a := rec.PrimaryAuthor(); a != "" {
		parts = append(parts, a)
	}
	if rec.Series != "" && !strings.EqualFold(rec.Series, rec.Title) {
		parts = append(parts, rec.Series)
	}
	return strings.Join(parts, " ")
}

// queryFromFolder derives a query from the file's parent folder name, or ""
// when the folder name is too generic to be useful.
func queryFromFolder(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if dir == "." || dir == "/" || dir == "" {
		return ""
	}
	if genericDirs[strings.ToLower(strings.TrimSpace(dir))] {
		return ""
	}
	return cleanName(dir)
}

// queryFromFilename derives a query from the file name itself.
func queryFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return cleanName(name)
}

// cleanName strips track prefixes, volume/part/chapter tokens and bracketed
// release junk, normalizes separators to spaces and collapses whitespace.
func cleanName(name string) string {
	name = trackPrefixRe.ReplaceAllString(name, "")
	name = bracketRe.ReplaceAllString(name, " ")
	name = separatorRe.ReplaceAllString(name, " ")
	name = volumeTokenRe.ReplaceAllString(name, " ")
	name = strings.ReplaceAll(name, " - ", " ")
	name = whitespaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// buildQueries returns candidate search queries in priority order with
// duplicates removed: partial-record query first, then folder, then filename.
func buildQueries(rec models.Record, path string) []string {
	var out []string
	seen := map[string]bool{}
	for _, q := range []string{queryFromRecord(rec), queryFromFolder(path), queryFromFilename(path)} {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}
