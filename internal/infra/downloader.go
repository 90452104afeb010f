package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Vovarama1992/companion/internal/ports"
)

// maxDownloadBytes caps a single image download.
const maxDownloadBytes = 32 << 20

type HTTPDownloader struct {
	client *http.Client
}

func NewHTTPDownloader(timeout time.Duration) *HTTPDownloader {
	return &HTTPDownloader{
		client: &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDownloader) Download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ports.ErrImageFetch, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: download: %v", ports.ErrImageFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: download status code %d", ports.ErrImageFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read: %v", ports.ErrImageFetch, err)
	}
	if len(data) > maxDownloadBytes {
		return nil, "", fmt.Errorf("%w: image larger than %d bytes", ports.ErrImageFetch, maxDownloadBytes)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
