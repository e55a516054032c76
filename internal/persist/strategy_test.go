// file: internal/persist/strategy_test.go
// version: 1.0.0
// guid: 5e9f3a0b-1c2d-4e6f-8a7b-9c0d1e2f3a4b

package persist

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jdfalk/audiobook-curator/internal/codec"
)

// copyFixture stages a real audio fixture into a temp dir; the in-process
// TagLib write path needs genuine container structure, so these tests skip
// when the fixture set is not checked out.
func copyFixture(t *testing.T, name string) string {
	t.Helper()

	fixturePath := filepath.Join("..", "..", "testdata", "fixtures", name)
	if _, err := os.Stat(fixturePath); err != nil {
		t.Skipf("fixture missing: %v", err)
	}

	dstPath := filepath.Join(t.TempDir(), name)
	src, err := os.Open(fixturePath)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		t.Fatalf("create temp fixture: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		t.Fatalf("copy fixture: %v", err)
	}

	return dstPath
}

func TestTaglibStrategyWritesRealContainer(t *testing.T) {
	src := copyFixture(t, "test_sample.m4b")
	dst := filepath.Join(filepath.Dir(src), "out.m4b")
	cd := codec.New()
	s := &taglibStrategy{codec: cd}

	if !s.Available(src) {
		t.Fatalf("taglib strategy should accept %s", src)
	}

	rec := testRecord()
	if err := s.Apply(context.Background(), src, dst, rec, ""); err != nil {
		t.Fatalf("apply: %v", err)
	}

	// Apply must never modify the source.
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source missing after apply: %v", err)
	}

	got, err := cd.Read(dst)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.Title != rec.Title {
		t.Errorf("title = %q, want %q", got.Title, rec.Title)
	}
	if got.PrimaryAuthor() != rec.PrimaryAuthor() {
		t.Errorf("author = %q, want %q", got.PrimaryAuthor(), rec.PrimaryAuthor())
	}
}

func TestTaglibStrategyRejectsUnsupportedContainer(t *testing.T) {
	s := &taglibStrategy{codec: codec.New()}
	if s.Available("/library/notes.txt") {
		t.Error("taglib strategy must decline unsupported extensions")
	}
}
