package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds one upstream request.
const DefaultFetchTimeout = 30 * time.Second

var ErrSourceURLRequired = errors.New("prices: update url is required")

// Source fetches the current upstream feed.
type Source interface {
	Fetch(ctx context.Context) (*Feed, error)
}

// HTTPSource reads the feed from a JSON endpoint.
type HTTPSource struct {
	url    string
	client *http.Client
}

type HTTPSourceOption func(*HTTPSource)

func WithHTTPClient(client *http.Client) HTTPSourceOption {
	return func(s *HTTPSource) {
		if client != nil {
			s.client = client
		}
	}
}

func NewHTTPSource(url string, opts ...HTTPSourceOption) (*HTTPSource, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrSourceURLRequired
	}
	s := &HTTPSource{url: url, client: &http.Client{Timeout: DefaultFetchTimeout}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *HTTPSource) Fetch(ctx context.Context) (*Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("prices: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prices: fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("prices: feed returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var feed Feed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("prices: decode feed: %w", err)
	}
	return &feed, nil
}
