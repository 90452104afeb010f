package ports

import (
	"context"
	"errors"
)

var (
	ErrNoImage    = errors.New("image: no result for query")
	ErrImageFetch = errors.New("image: fetch failed")
)

type ImageHit struct {
	ID  string
	URL string
}

type ImageSearchService interface {
	SearchPhotos(ctx context.Context, query string) ([]ImageHit, error)
}

type Downloader interface {
	Download(ctx context.Context, url string) (data []byte, contentType string, err error)
}
