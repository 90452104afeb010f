package stations

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"time"

	"github.com/Vovarama1992/companion/internal/models"
	"github.com/Vovarama1992/companion/internal/ports"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

type S2FetchImage struct {
	search     ports.ImageSearchService
	downloader ports.Downloader
	store      *ArtifactStore
	log        *zap.Logger
}

func NewS2FetchImage(
	search ports.ImageSearchService,
	downloader ports.Downloader,
	store *ArtifactStore,
	log *zap.Logger,
) *S2FetchImage {
	return &S2FetchImage{search: search, downloader: downloader, store: store, log: log}
}

// Run saves the first search hit for query as a PNG.
func (s *S2FetchImage) Run(ctx context.Context, sessionID, query string) (*models.MediaAsset, error) {
	start := time.Now()
	s.log.Debug("[S2][START]", zap.String("query", query))

	hits, err := s.search.SearchPhotos(ctx, query)
	if err != nil {
		return nil, s.fail(query, asFetchErr(err, "search"))
	}
	if len(hits) == 0 {
		s.log.Info("[S2][EMPTY] no relevant image", zap.String("query", query))
		return nil, fmt.Errorf("%w: %q", ports.ErrNoImage, query)
	}

	data, contentType, err := s.downloader.Download(ctx, hits[0].URL)
	if err != nil {
		return nil, s.fail(query, asFetchErr(err, "download"))
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, s.fail(query, fmt.Errorf("%w: decode %s (%s): %v", ports.ErrImageFetch, hits[0].URL, contentType, err))
	}

	id, path := s.store.Name(models.MediaImage, query)
	err = s.store.WriteFile(path, func(w io.Writer) error {
		return png.Encode(w, img)
	})
	if err != nil {
		return nil, s.fail(query, fmt.Errorf("%w: save: %v", ports.ErrImageFetch, err))
	}

	b := img.Bounds()
	s.log.Info("[S2][OK]",
		zap.String("query", query),
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("w", b.Dx()),
		zap.Int("h", b.Dy()),
		zap.Duration("dur", time.Since(start)),
	)

	return &models.MediaAsset{
		ID:          id,
		SessionID:   sessionID,
		Kind:        models.MediaImage,
		Path:        path,
		SourceQuery: query,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (s *S2FetchImage) fail(query string, err error) error {
	s.log.Error("[S2][ERR] fetching image", zap.String("query", query), zap.Error(err))
	return err
}

func asFetchErr(err error, step string) error {
	if errors.Is(err, ports.ErrImageFetch) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ports.ErrImageFetch, step, err)
}
