// file: internal/provider/googlebooks.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-f2a3b4c5d6e7

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jdfalk/audiobook-curator/internal/models"
)

// GoogleBooksClient fetches metadata from the Google Books Volume API.
// No API key is required for basic searches (free tier, ~1000 req/day).
type GoogleBooksClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewGoogleBooksClient creates a new Google Books API client.
func NewGoogleBooksClient() *GoogleBooksClient {
	baseURL := os.Getenv("GOOGLE_BOOKS_BASE_URL")
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/books/v1"
	}
	return NewGoogleBooksClientWithBaseURL(baseURL)
}

// NewGoogleBooksClientWithBaseURL creates a client with a custom base URL (for testing).
func NewGoogleBooksClientWithBaseURL(baseURL string) *GoogleBooksClient {
	return &GoogleBooksClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the display name for this metadata source.
func (c *GoogleBooksClient) Name() string {
	return "Google Books"
}

type googleBooksResponse struct {
	TotalItems int              `json:"totalItems"`
	Items      []googleBooksVol `json:"items"`
}

type googleBooksVol struct {
	ID         string                `json:"id"`
	VolumeInfo googleBooksVolumeInfo `json:"volumeInfo"`
}

type googleBooksVolumeInfo struct {
	Title               string                  `json:"title"`
	Subtitle            string                  `json:"subtitle"`
	Authors             []string                `json:"authors"`
	Publisher           string                  `json:"publisher"`
	PublishedDate       string                  `json:"publishedDate"`
	Description         string                  `json:"description"`
	IndustryIdentifiers []googleBooksIndustryID `json:"industryIdentifiers"`
	PageCount           int                     `json:"pageCount"`
	Categories          []string                `json:"categories"`
	MainCategory        string                  `json:"mainCategory"`
	AverageRating       float64                 `json:"averageRating"`
	RatingsCount        int                     `json:"ratingsCount"`
	ImageLinks          *googleBooksImageLinks  `json:"imageLinks"`
	Language            string                  `json:"language"`
}

type googleBooksIndustryID struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type googleBooksImageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

// Search queries the volumes endpoint with a free-text query.
func (c *GoogleBooksClient) Search(ctx context.Context, query string) ([]models.Record, error) {
	searchURL := fmt.Sprintf("%s/volumes?q=%s&maxResults=5", c.baseURL, url.QueryEscape(query))

	var gbResp googleBooksResponse
	if err := c.getJSON(ctx, searchURL, &gbResp); err != nil {
		return nil, err
	}

	results := make([]models.Record, 0, len(gbResp.Items))
	for _, item := range gbResp.Items {
		results = append(results, c.toRecord(item))
	}
	return results, nil
}

// GetByID fetches a single volume by its provider-assigned identifier.
func (c *GoogleBooksClient) GetByID(ctx context.Context, id string) (*models.Record, error) {
	var item googleBooksVol
	err := c.getJSON(ctx, fmt.Sprintf("%s/volumes/%s", c.baseURL, url.PathEscape(id)), &item)
	if err != nil {
		return nil, err
	}
	if item.ID == "" {
		return nil, ErrNotFound
	}
	rec := c.toRecord(item)
	return &rec, nil
}

func (c *GoogleBooksClient) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build Google Books request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Google Books request failed: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(c.Name(), resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode Google Books response: %w", err)
	}
	return nil
}

func (c *GoogleBooksClient) toRecord(item googleBooksVol) models.Record {
	vi := item.VolumeInfo
	rec := models.Record{
		ID:            item.ID,
		Provider:      c.Name(),
		Title:         vi.Title,
		Subtitle:      vi.Subtitle,
		Authors:       append([]string(nil), vi.Authors...),
		Publisher:     vi.Publisher,
		PublishedDate: vi.PublishedDate,
		Description:   vi.Description,
		Categories:    append([]string(nil), vi.Categories...),
		MainCategory:  vi.MainCategory,
		Language:      vi.Language,
		PageCount:     vi.PageCount,
		AverageRating: vi.AverageRating,
		RatingsCount:  vi.RatingsCount,
	}
	for _, id := range vi.IndustryIdentifiers {
		rec.Identifiers = append(rec.Identifiers, models.Identifier{
			Type:  id.Type,
			Value: id.Identifier,
		})
	}
	if vi.ImageLinks != nil {
		if vi.ImageLinks.Thumbnail != "" {
			rec.ThumbnailURL = vi.ImageLinks.Thumbnail
		} else {
			rec.ThumbnailURL = vi.ImageLinks.SmallThumbnail
		}
	}
	return rec
}
