package stations

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/Vovarama1992/companion/internal/ports"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockKnowledge struct {
	mock.Mock
}

func (m *MockKnowledge) Summary(ctx context.Context, query string, sentences int) (string, error) {
	args := m.Called(ctx, query, sentences)
	return args.String(0), args.Error(1)
}

type MockSearch struct {
	mock.Mock
}

func (m *MockSearch) SearchPhotos(ctx context.Context, query string) ([]ports.ImageHit, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.ImageHit), args.Error(1)
}

type MockDownloader struct {
	mock.Mock
}

func (m *MockDownloader) Download(ctx context.Context, url string) ([]byte, string, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type MockEncoder struct {
	mock.Mock
}

func (m *MockEncoder) StillToVideo(ctx context.Context, imagePath, outPath string, duration time.Duration, fps int) error {
	args := m.Called(ctx, imagePath, outPath, duration, fps)
	return args.Error(0)
}

func (m *MockEncoder) Probe(ctx context.Context, videoPath string) (ports.VideoInfo, error) {
	args := m.Called(ctx, videoPath)
	return args.Get(0).(ports.VideoInfo), args.Error(1)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newStore(t *testing.T) *ArtifactStore {
	t.Helper()
	store, err := NewArtifactStore(t.TempDir()+"/images", t.TempDir()+"/videos")
	require.NoError(t, err)
	return store
}
