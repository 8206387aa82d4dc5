package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// fetchResult carries the raw bytes of a source together with the validators
// the next conditional fetch will present.
type fetchResult struct {
	Body         []byte
	ETag         string
	LastModified string
	NotModified  bool
}

// isURL reports whether a source location is an HTTP(S) endpoint rather than a
// local file path.
func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// fetch retrieves the raw bytes of a source. For URLs it performs a
// conditional GET using the previous ETag/Last-Modified validators; a 304
// answer is reported via NotModified with an empty body.
func fetch(ctx context.Context, client *http.Client, src, etag, lastModified string) (*fetchResult, error) {
	if !isURL(src) {
		return fetchFile(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL %q: %w", src, err)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &fetchResult{NotModified: true, ETag: etag, LastModified: lastModified}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %q: unexpected status %s", src, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %q: %w", src, err)
	}

	return &fetchResult{
		Body:         body,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}

// fetchFile reads a local CSV file. The file modification time serves as the
// Last-Modified validator so repeated loads of an unchanged file short-circuit.
func fetchFile(path string) (*fetchResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return &fetchResult{
		Body:         body,
		LastModified: info.ModTime().UTC().Format(time.RFC1123),
	}, nil
}
