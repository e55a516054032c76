// file: internal/provider/openlibrary.go
// version: 2.0.0
// guid: 1a2b3c4d-5e6f-7a8b-9c0d-1e2f3a4b5c6d

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jdfalk/audiobook-curator/internal/models"
)

// OpenLibraryClient handles metadata fetching from the Open Library API.
type OpenLibraryClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewOpenLibraryClient creates a new Open Library API client.
func NewOpenLibraryClient() *OpenLibraryClient {
	baseURL := os.Getenv("OPENLIBRARY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	return NewOpenLibraryClientWithBaseURL(baseURL)
}

// NewOpenLibraryClientWithBaseURL creates a client with a custom base URL.
func NewOpenLibraryClientWithBaseURL(baseURL string) *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the display name for this metadata source.
func (c *OpenLibraryClient) Name() string {
	return "Open Library"
}

type olSearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Subtitle         string   `json:"subtitle"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	Publisher        []string `json:"publisher"`
	Language         []string `json:"language"`
	Subject          []string `json:"subject"`
	CoverI           int      `json:"cover_i"`
	NumberOfPages    int      `json:"number_of_pages_median"`
	RatingsAverage   float64  `json:"ratings_average"`
	RatingsCount     int      `json:"ratings_count"`
}

type olSearchResponse struct {
	NumFound int           `json:"numFound"`
	Docs     []olSearchDoc `json:"docs"`
}

// Search performs a free-text work search.
func (c *OpenLibraryClient) Search(ctx context.Context, query string) ([]models.Record, error) {
	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=5", c.baseURL, url.QueryEscape(query))

	var searchResp olSearchResponse
	if err := c.getJSON(ctx, searchURL, &searchResp); err != nil {
		return nil, err
	}

	results := make([]models.Record, 0, len(searchResp.Docs))
	for _, doc := range searchResp.Docs {
		results = append(results, c.docToRecord(doc))
	}
	return results, nil
}

// GetByID fetches a work by its Open Library key (e.g. "/works/OL45804W").
func (c *OpenLibraryClient) GetByID(ctx context.Context, id string) (*models.Record, error) {
	key := id
	if !strings.HasPrefix(key, "/") {
		key = "/works/" + key
	}

	var work struct {
		Key         string   `json:"key"`
		Title       string   `json:"title"`
		Subjects    []string `json:"subjects"`
		Description any      `json:"description"`
		Covers      []int    `json:"covers"`
	}
	if err := c.getJSON(ctx, c.baseURL+key+".json", &work); err != nil {
		return nil, err
	}
	if work.Key == "" {
		return nil, ErrNotFound
	}

	rec := models.Record{
		ID:         work.Key,
		Provider:   c.Name(),
		Title:      work.Title,
		Categories: append([]string(nil), work.Subjects...),
	}
	// Descriptions come back either as a bare string or a typed object.
	switch d := work.Description.(type) {
	case string:
		rec.Description = d
	case map[string]any:
		if v, ok := d["value"].(string); ok {
			rec.Description = v
		}
	}
	if len(work.Covers) > 0 {
		rec.ThumbnailURL = coverURL(work.Covers[0])
	}
	return &rec, nil
}

func (c *OpenLibraryClient) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build Open Library request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Open Library request failed: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return statusError(c.Name(), resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode Open Library response: %w", err)
	}
	return nil
}

func (c *OpenLibraryClient) docToRecord(doc olSearchDoc) models.Record {
	rec := models.Record{
		ID:            doc.Key,
		Provider:      c.Name(),
		Title:         doc.Title,
		Subtitle:      doc.Subtitle,
		Authors:       append([]string(nil), doc.AuthorName...),
		PageCount:     doc.NumberOfPages,
		AverageRating: doc.RatingsAverage,
		RatingsCount:  doc.RatingsCount,
	}
	if doc.FirstPublishYear > 0 {
		rec.PublishedDate = strconv.Itoa(doc.FirstPublishYear)
	}
	if len(doc.Publisher) > 0 {
		rec.Publisher = doc.Publisher[0]
	}
	if len(doc.Language) > 0 {
		rec.Language = doc.Language[0]
	}
	if len(doc.Subject) > 0 {
		// Subject lists run to hundreds of entries; keep a handful.
		n := len(doc.Subject)
		if n > 5 {
			n = 5
		}
		rec.Categories = append([]string(nil), doc.Subject[:n]...)
		rec.MainCategory = doc.Subject[0]
	}
	for _, isbn := range doc.ISBN {
		idType := "ISBN_10"
		if len(isbn) == 13 {
			idType = "ISBN_13"
		}
		rec.Identifiers = append(rec.Identifiers, models.Identifier{Type: idType, Value: isbn})
		if len(rec.Identifiers) == 2 {
			break
		}
	}
	if doc.CoverI > 0 {
		rec.ThumbnailURL = coverURL(doc.CoverI)
	}
	return rec
}

func coverURL(coverID int) string {
	return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", coverID)
}
