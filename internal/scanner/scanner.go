// file: internal/scanner/scanner.go
// version: 1.1.0
// guid: 0e1f2a3b-4c5d-6e7f-8091-a2b3c4d5e6f7

package scanner

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jdfalk/audiobook-curator/internal/codec"
)

// Scanner discovers audio files under library roots. It only produces path
// strings; resolution and persistence take it from there.
type Scanner struct {
	codec *codec.Codec
}

// New returns a Scanner using cd's container support to filter files.
func New(cd *codec.Codec) *Scanner {
	return &Scanner{codec: cd}
}

// Scan walks the given roots and returns every supported audio file, sorted
// for stable batch ordering. Hidden directories and files are skipped.
// Unreadable subtrees are logged and skipped rather than failing the scan.
func (s *Scanner) Scan(ctx context.Context, roots []string) ([]string, error) {
	var found []string
	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Printf("[WARN] scanner: skipping %s: %v", path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			name := d.Name()
			if strings.HasPrefix(name, ".") && path != root {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if s.codec.Supported(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(found)
	log.Printf("[INFO] scanner: found %d audio files under %d roots", len(found), len(roots))
	return found, nil
}
