// file: internal/provider/cover.go
// version: 1.1.0
// guid: 4efaa7b8-e29a-47f3-84f7-39b46bfc9a01

package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxCoverBytes caps cover downloads at 10 MB.
const maxCoverBytes = 10 * 1024 * 1024

// DownloadCover fetches a cover image and saves it to
// {destDir}/covers/{recordID}.{ext}, returning the local path. Records must
// never carry a remote thumbnail URL once persisted, so every accepted
// candidate's cover goes through here before the record is cached or
// written to a file. Existing covers are reused without re-downloading.
func DownloadCover(ctx context.Context, coverURL, destDir, recordID string) (string, error) {
	if coverURL == "" {
		return "", fmt.Errorf("empty cover URL")
	}
	if recordID == "" {
		return "", fmt.Errorf("empty record ID")
	}

	coversDir := filepath.Join(destDir, "covers")
	if existing := LocalCoverPath(destDir, recordID); existing != "" {
		return existing, nil
	}

	if err := os.MkdirAll(coversDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create covers directory: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build cover request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cover download returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unexpected content type: %s", contentType)
	}

	destPath := filepath.Join(coversDir, sanitizeID(recordID)+extensionFromContentType(contentType))

	f, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create cover file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(resp.Body, maxCoverBytes)); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to write cover file: %w", err)
	}

	return destPath, nil
}

// LocalCoverPath returns the local cover file for a record if one exists.
func LocalCoverPath(destDir, recordID string) string {
	coversDir := filepath.Join(destDir, "covers")
	matches, _ := filepath.Glob(filepath.Join(coversDir, sanitizeID(recordID)+".*"))
	for _, m := range matches {
		switch strings.ToLower(filepath.Ext(m)) {
		case ".jpg", ".jpeg", ".png", ".webp", ".gif":
			return m
		}
	}
	return ""
}

// sanitizeID makes provider IDs (which may contain slashes, e.g. Open
// Library work keys) safe as file names.
func sanitizeID(id string) string {
	id = strings.Trim(id, "/")
	return strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(id)
}

func extensionFromContentType(ct string) string {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "gif"):
		return ".gif"
	case strings.Contains(ct, "webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}
