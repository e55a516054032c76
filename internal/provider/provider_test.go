// file: internal/provider/provider_test.go
// version: 1.1.0
// guid: c3d4e5f6-a7b8-9c0d-1e2f-3a4b5c6d7e8f

package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleBooksSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("q"), "Storm Front")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"id": "vol123",
				"volumeInfo": {
					"title": "Storm Front",
					"subtitle": "The Dresden Files, Book One",
					"authors": ["Jim Butcher"],
					"publisher": "Roc",
					"publishedDate": "2000-04-01",
					"description": "Wizard for hire.",
					"industryIdentifiers": [
						{"type": "ISBN_13", "identifier": "9780451457813"},
						{"type": "ISBN_10", "identifier": "0451457811"}
					],
					"pageCount": 322,
					"categories": ["Fiction / Fantasy"],
					"averageRating": 4.5,
					"ratingsCount": 1042,
					"imageLinks": {"thumbnail": "http://books.example/cover.jpg"},
					"language": "en"
				}
			}]
		}`))
	}))
	defer srv.Close()

	c := NewGoogleBooksClientWithBaseURL(srv.URL)
	recs, err := c.Search(context.Background(), "Storm Front Jim Butcher")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "vol123", rec.ID)
	assert.Equal(t, "Google Books", rec.Provider)
	assert.Equal(t, "Storm Front", rec.Title)
	assert.Equal(t, []string{"Jim Butcher"}, rec.Authors)
	assert.Equal(t, "Roc", rec.Publisher)
	assert.Equal(t, "2000-04-01", rec.PublishedDate)
	assert.Equal(t, 322, rec.PageCount)
	assert.Equal(t, 4.5, rec.AverageRating)
	assert.Equal(t, "9780451457813", rec.ISBN())
	assert.Equal(t, "http://books.example/cover.jpg", rec.ThumbnailURL)
}

func TestGoogleBooksAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewGoogleBooksClientWithBaseURL(srv.URL)
	_, err := c.Search(context.Background(), "anything")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 429, authErr.StatusCode)
	assert.Equal(t, "Google Books", authErr.Provider)
}

func TestGoogleBooksServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewGoogleBooksClientWithBaseURL(srv.URL)
	_, err := c.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGoogleBooksTransportErrorIsUnavailable(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewGoogleBooksClientWithBaseURL(srv.URL)
	_, err := c.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenLibrarySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"numFound": 1,
			"docs": [{
				"key": "/works/OL45804W",
				"title": "Storm Front",
				"author_name": ["Jim Butcher"],
				"first_publish_year": 2000,
				"isbn": ["9780451457813"],
				"publisher": ["Roc"],
				"language": ["eng"],
				"subject": ["Fantasy", "Wizards", "Chicago"],
				"cover_i": 240727,
				"number_of_pages_median": 322,
				"ratings_average": 4.2,
				"ratings_count": 900
			}]
		}`))
	}))
	defer srv.Close()

	c := NewOpenLibraryClientWithBaseURL(srv.URL)
	recs, err := c.Search(context.Background(), "Storm Front")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "/works/OL45804W", rec.ID)
	assert.Equal(t, "Open Library", rec.Provider)
	assert.Equal(t, []string{"Jim Butcher"}, rec.Authors)
	assert.Equal(t, "2000", rec.PublishedDate)
	assert.Equal(t, "Fantasy", rec.MainCategory)
	assert.Equal(t, "9780451457813", rec.ISBN())
	assert.Contains(t, rec.ThumbnailURL, "240727")
}

func TestOpenLibraryGetByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works/OL45804W.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"key": "/works/OL45804W",
			"title": "Storm Front",
			"subjects": ["Fantasy"],
			"description": {"type": "/type/text", "value": "Wizard for hire."},
			"covers": [240727]
		}`))
	}))
	defer srv.Close()

	c := NewOpenLibraryClientWithBaseURL(srv.URL)
	rec, err := c.GetByID(context.Background(), "OL45804W")
	require.NoError(t, err)
	assert.Equal(t, "Storm Front", rec.Title)
	assert.Equal(t, "Wizard for hire.", rec.Description)
}

func TestOpenLibraryNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOpenLibraryClientWithBaseURL(srv.URL)
	_, err := c.GetByID(context.Background(), "OL0W")
	assert.ErrorIs(t, err, ErrNotFound)
}
