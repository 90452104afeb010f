package domain

import (
	"context"
	"time"

	"github.com/Vovarama1992/companion/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

type lookupStation interface {
	Run(ctx context.Context, query string) (string, error)
}

type imageStation interface {
	Run(ctx context.Context, sessionID, query string) (*models.MediaAsset, error)
}

type videoStation interface {
	Run(ctx context.Context, sessionID string, img *models.MediaAsset, query string) (*models.MediaAsset, error)
}

// Pipeline runs the three stations for a turn. At most maxConcurrent turns
// run at once across all sessions.
type Pipeline struct {
	lookup lookupStation
	image  imageStation
	video  videoStation

	sem *semaphore.Weighted
	log *zap.Logger
}

func NewPipeline(
	lookup lookupStation,
	image imageStation,
	video videoStation,
	maxConcurrent int,
	log *zap.Logger,
) *Pipeline {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Pipeline{
		lookup: lookup,
		image:  image,
		video:  video,
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
		log:    log,
	}
}

// Run executes every stage in order, even when an earlier one produced nothing.
// The only returned error is ctx ending while waiting for a slot.
func (p *Pipeline) Run(ctx context.Context, sessionID, query string) (*models.Turn, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	turn := &models.Turn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Query:     query,
		StartedAt: time.Now().UTC(),
	}

	turn.Summary, turn.LookupErr = p.lookup.Run(ctx, query)
	turn.Image, turn.ImageErr = p.image.Run(ctx, sessionID, query)
	turn.Video, turn.VideoErr = p.video.Run(ctx, sessionID, turn.Image, query)

	// a video only stands next to the image it was made from
	if turn.ImageErr != nil {
		turn.Image = nil
	}
	if turn.Image == nil || turn.VideoErr != nil {
		turn.Video = nil
	}

	turn.FinishedAt = time.Now().UTC()

	p.log.Info("[TURN][DONE]",
		zap.String("session", sessionID),
		zap.String("turn", turn.ID),
		zap.Bool("summary", turn.LookupErr == nil),
		zap.Bool("image", turn.Image != nil),
		zap.Bool("video", turn.Video != nil),
		zap.Duration("dur", turn.FinishedAt.Sub(turn.StartedAt)),
	)
	return turn, nil
}
