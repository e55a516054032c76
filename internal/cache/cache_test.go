// file: internal/cache/cache_test.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdfalk/audiobook-curator/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestQueryNamespace(t *testing.T) {
	s := openTestStore(t)

	rec := models.Record{Title: "Storm Front", Authors: []string{"Jim Butcher"}}
	require.NoError(t, s.PutQuery("Jim Butcher Storm Front", rec))

	got, err := s.GetQuery("Jim Butcher Storm Front")
	require.NoError(t, err)
	assert.Equal(t, rec.Title, got.Title)
	assert.Equal(t, rec.Authors, got.Authors)

	// Normalization: case and whitespace variants hit the same entry.
	got, err = s.GetQuery("  jim   butcher STORM front ")
	require.NoError(t, err)
	assert.Equal(t, rec.Title, got.Title)
}

func TestFileNamespace(t *testing.T) {
	s := openTestStore(t)

	rec := models.Record{Title: "Fool Moon"}
	require.NoError(t, s.PutFile("/library/fool-moon.mp3", rec))

	got, err := s.GetFile("/library/fool-moon.mp3")
	require.NoError(t, err)
	assert.Equal(t, "Fool Moon", got.Title)

	_, err = s.GetFile("/library/other.mp3")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestOverwrite(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutFile("/a.mp3", models.Record{Title: "First"}))
	require.NoError(t, s.PutFile("/a.mp3", models.Record{Title: "Second"}))

	got, err := s.GetFile("/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Title)
}

func TestInvalidate(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutFile("/a.mp3", models.Record{Title: "A"}))
	require.NoError(t, s.Invalidate("/a.mp3"))

	_, err := s.GetFile("/a.mp3")
	assert.ErrorIs(t, err, ErrMiss)

	// Invalidating an absent path is fine.
	assert.NoError(t, s.Invalidate("/never-there.mp3"))
}

func TestClearIsTotal(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutQuery("q1", models.Record{Title: "Q1"}))
	require.NoError(t, s.PutQuery("q2", models.Record{Title: "Q2"}))
	require.NoError(t, s.PutFile("/f1.mp3", models.Record{Title: "F1"}))

	require.NoError(t, s.Clear())

	_, err := s.GetQuery("q1")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = s.GetQuery("q2")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = s.GetFile("/f1.mp3")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.PutFile("/a.mp3", models.Record{Title: "Durable"}))
	require.NoError(t, s.Close())

	s2, err := Open(dir)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetFile("/a.mp3")
	require.NoError(t, err)
	assert.Equal(t, "Durable", got.Title)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "jim butcher storm front", NormalizeQuery("  Jim   Butcher\tStorm Front "))
	assert.Equal(t, "", NormalizeQuery("   "))
}
