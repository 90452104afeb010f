package stations

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/Vovarama1992/companion/internal/models"
	"github.com/Vovarama1992/companion/internal/ports"
	"go.uber.org/zap"
)

type S3SynthesizeVideo struct {
	encoder  ports.VideoEncoder
	store    *ArtifactStore
	duration time.Duration
	fps      int
	log      *zap.Logger
}

func NewS3SynthesizeVideo(
	encoder ports.VideoEncoder,
	store *ArtifactStore,
	duration time.Duration,
	fps int,
	log *zap.Logger,
) *S3SynthesizeVideo {
	return &S3SynthesizeVideo{encoder: encoder, store: store, duration: duration, fps: fps, log: log}
}

// Run turns the still image into a clip of fixed length and frame rate.
// A nil image short-circuits before any path is read.
func (s *S3SynthesizeVideo) Run(ctx context.Context, sessionID string, img *models.MediaAsset, query string) (*models.MediaAsset, error) {
	if img == nil {
		s.log.Info("[S3][SKIP] no image to create video from", zap.String("query", query))
		return nil, ports.ErrNoSourceImage
	}

	start := time.Now()
	id, path := s.store.Name(models.MediaVideo, query)
	tmp := s.store.TempPath(path)

	s.log.Debug("[S3][START]", zap.String("image", img.Path), zap.String("out", path))

	if err := s.encoder.StillToVideo(ctx, img.Path, tmp, s.duration, s.fps); err != nil {
		_ = os.Remove(tmp)
		return nil, s.fail(query, asEncodeErr(err))
	}

	if err := s.verify(ctx, tmp); err != nil {
		_ = os.Remove(tmp)
		return nil, s.fail(query, err)
	}

	if err := s.store.Publish(tmp, path); err != nil {
		return nil, s.fail(query, asEncodeErr(err))
	}

	s.log.Info("[S3][OK] video created from image",
		zap.String("query", query),
		zap.String("path", path),
		zap.Duration("dur", time.Since(start)),
	)

	return &models.MediaAsset{
		ID:          id,
		SessionID:   sessionID,
		Kind:        models.MediaVideo,
		Path:        path,
		SourceQuery: query,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// verify accepts the clip when its length is within one frame of the target.
// A probe that cannot run is only logged.
func (s *S3SynthesizeVideo) verify(ctx context.Context, path string) error {
	info, err := s.encoder.Probe(ctx, path)
	if err != nil {
		s.log.Warn("[S3][PROBE] skipped", zap.String("path", path), zap.Error(err))
		return nil
	}

	frame := time.Second / time.Duration(s.fps)
	diff := info.Duration - s.duration
	if diff < 0 {
		diff = -diff
	}
	if diff > frame {
		return fmt.Errorf("%w: duration %s, want %s", ports.ErrVideoEncode, info.Duration, s.duration)
	}
	if math.Abs(info.FPS-float64(s.fps)) > 0.01 {
		return fmt.Errorf("%w: frame rate %.3f, want %d", ports.ErrVideoEncode, info.FPS, s.fps)
	}
	return nil
}

func (s *S3SynthesizeVideo) fail(query string, err error) error {
	s.log.Error("[S3][ERR] creating video", zap.String("query", query), zap.Error(err))
	return err
}

func asEncodeErr(err error) error {
	if errors.Is(err, ports.ErrVideoEncode) {
		return err
	}
	return fmt.Errorf("%w: %v", ports.ErrVideoEncode, err)
}
