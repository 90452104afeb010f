package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNoSourceImage = errors.New("video: no source image")
	ErrVideoEncode   = errors.New("video: encode failed")
)

type VideoInfo struct {
	Duration time.Duration
	FPS      float64
}

type VideoEncoder interface {
	// StillToVideo holds the image at imagePath for the whole clip.
	StillToVideo(ctx context.Context, imagePath, outPath string, duration time.Duration, fps int) error
	Probe(ctx context.Context, videoPath string) (VideoInfo, error)
}
