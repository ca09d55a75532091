// Package source loads base documents by location: an http or https URL,
// a file:// URL, a data: URI or a local path.
package source

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout bounds an HTTP fetch when the client sets no timeout.
const DefaultTimeout = 30 * time.Second

// ErrStatus is returned for HTTP responses outside 2xx.
var ErrStatus = errors.New("source: unexpected status")

// Loader fetches documents. The zero value uses a client with
// DefaultTimeout.
type Loader struct {
	Client *http.Client
}

// Load returns the bytes at location.
func (l *Loader) Load(ctx context.Context, location string) ([]byte, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("source: location is required")
	}
	if strings.HasPrefix(location, "data:") {
		return loadData(location)
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Not a URL, or a Windows drive letter.
		return loadFile(ctx, location)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return l.loadHTTP(ctx, u.String())
	case "file":
		return loadFile(ctx, u.Path)
	default:
		return nil, fmt.Errorf("source: unsupported scheme %q", u.Scheme)
	}
}

func (l *Loader) client() *http.Client {
	if l != nil && l.Client != nil {
		return l.Client
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func (l *Loader) loadHTTP(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	resp, err := l.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %s", ErrStatus, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("source: reading body: %w", err)
	}
	return data, nil
}

func loadFile(ctx context.Context, path string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	return data, nil
}

// loadData decodes a base64 data URI.
func loadData(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("source: data URI must be base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("source: data URI: %w", err)
	}
	return data, nil
}
