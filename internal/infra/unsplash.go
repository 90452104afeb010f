package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Vovarama1992/companion/internal/ports"
)

const unsplashAttempts = 3

type UnsplashClient struct {
	accessKey string
	baseURL   string
	client    *http.Client
}

func NewUnsplashClient(accessKey, baseURL string, timeout time.Duration) *UnsplashClient {
	return &UnsplashClient{
		accessKey: accessKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
	}
}

type unsplashSearchResponse struct {
	Total   int `json:"total"`
	Results []struct {
		ID   string `json:"id"`
		URLs struct {
			Raw     string `json:"raw"`
			Full    string `json:"full"`
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
	} `json:"results"`
	Errors []string `json:"errors"`
}

// SearchPhotos asks for a single result; callers only ever use the first one.
func (u *UnsplashClient) SearchPhotos(ctx context.Context, query string) ([]ports.ImageHit, error) {
	if u.accessKey == "" {
		return nil, fmt.Errorf("%w: UNSPLASH_ACCESS_KEY not set", ports.ErrImageFetch)
	}

	endpoint := u.baseURL + "/search/photos?" + url.Values{
		"query":    {query},
		"per_page": {"1"},
	}.Encode()

	var lastErr error
	for attempt := 1; attempt <= unsplashAttempts; attempt++ {
		hits, retry, err := u.search(ctx, endpoint)
		if err == nil {
			return hits, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (u *UnsplashClient) search(ctx context.Context, endpoint string) ([]ports.ImageHit, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ports.ErrImageFetch, err)
	}
	req.Header.Set("Authorization", "Client-ID "+u.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: unsplash request: %v", ports.ErrImageFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("%w: unsplash http %d", ports.ErrImageFetch, resp.StatusCode)
	}

	raw, readErr := io.ReadAll(resp.Body)

	var parsed unsplashSearchResponse
	decodeErr := readErr
	if decodeErr == nil {
		decodeErr = json.Unmarshal(raw, &parsed)
	}

	if resp.StatusCode == http.StatusOK && decodeErr != nil {
		return nil, false, fmt.Errorf("%w: unsplash body: %v", ports.ErrImageFetch, decodeErr)
	}

	if resp.StatusCode != http.StatusOK {
		if len(parsed.Errors) > 0 {
			return nil, false, fmt.Errorf("%w: unsplash http %d: %s", ports.ErrImageFetch, resp.StatusCode, strings.Join(parsed.Errors, "; "))
		}
		return nil, false, fmt.Errorf("%w: unsplash http %d", ports.ErrImageFetch, resp.StatusCode)
	}

	hits := make([]ports.ImageHit, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URLs.Regular == "" {
			continue
		}
		hits = append(hits, ports.ImageHit{ID: r.ID, URL: r.URLs.Regular})
	}
	return hits, false, nil
}
