package stations

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Vovarama1992/companion/internal/models"
	"github.com/Vovarama1992/companion/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestS1Lookup_PassesThrough(t *testing.T) {
	k := new(MockKnowledge)
	k.On("Summary", mock.Anything, "cats", 2).Return("Cats are small.", nil).Once()
	k.On("Summary", mock.Anything, "zzz", 2).Return("", ports.ErrLookupNotFound).Once()

	s1 := NewS1Lookup(k, 2, zap.NewNop())

	got, err := s1.Run(context.Background(), "cats")
	require.NoError(t, err)
	assert.Equal(t, "Cats are small.", got)

	_, err = s1.Run(context.Background(), "zzz")
	assert.ErrorIs(t, err, ports.ErrLookupNotFound)

	k.AssertExpectations(t)
}

func TestS2FetchImage_SavesDecodablePNG(t *testing.T) {
	store := newStore(t)
	search := new(MockSearch)
	dl := new(MockDownloader)

	search.On("SearchPhotos", mock.Anything, "red panda").
		Return([]ports.ImageHit{{ID: "a", URL: "https://img/a"}, {ID: "b", URL: "https://img/b"}}, nil)
	dl.On("Download", mock.Anything, "https://img/a").Return(pngBytes(t, 8, 6), "image/png", nil)

	s2 := NewS2FetchImage(search, dl, store, zap.NewNop())
	asset, err := s2.Run(context.Background(), "sess", "red panda")
	require.NoError(t, err)
	require.NotNil(t, asset)

	assert.Equal(t, models.MediaImage, asset.Kind)
	assert.Equal(t, "red panda", asset.SourceQuery)
	assert.Equal(t, "sess", asset.SessionID)
	assert.Equal(t, store.ImageDir(), filepath.Dir(asset.Path))
	assert.Equal(t, ".png", filepath.Ext(asset.Path))

	data, err := os.ReadFile(asset.Path)
	require.NoError(t, err)
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 8, img.Bounds().Dx())

	dl.AssertNotCalled(t, "Download", mock.Anything, "https://img/b")
}

func TestS2FetchImage_NoResults(t *testing.T) {
	store := newStore(t)
	search := new(MockSearch)
	dl := new(MockDownloader)
	search.On("SearchPhotos", mock.Anything, "nothing").Return([]ports.ImageHit{}, nil)

	s2 := NewS2FetchImage(search, dl, store, zap.NewNop())
	asset, err := s2.Run(context.Background(), "sess", "nothing")

	assert.Nil(t, asset)
	assert.ErrorIs(t, err, ports.ErrNoImage)
	dl.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
}

func TestS2FetchImage_SearchFailure(t *testing.T) {
	store := newStore(t)
	search := new(MockSearch)
	search.On("SearchPhotos", mock.Anything, "cat").Return(nil, errors.New("connection reset"))

	s2 := NewS2FetchImage(search, new(MockDownloader), store, zap.NewNop())
	asset, err := s2.Run(context.Background(), "sess", "cat")

	assert.Nil(t, asset)
	assert.ErrorIs(t, err, ports.ErrImageFetch)
}

func TestS2FetchImage_DecodeFailure(t *testing.T) {
	store := newStore(t)
	search := new(MockSearch)
	dl := new(MockDownloader)
	search.On("SearchPhotos", mock.Anything, "cat").Return([]ports.ImageHit{{URL: "https://img/a"}}, nil)
	dl.On("Download", mock.Anything, "https://img/a").Return([]byte("<html>not an image</html>"), "text/html", nil)

	s2 := NewS2FetchImage(search, dl, store, zap.NewNop())
	asset, err := s2.Run(context.Background(), "sess", "cat")

	assert.Nil(t, asset)
	assert.ErrorIs(t, err, ports.ErrImageFetch)

	entries, _ := os.ReadDir(store.ImageDir())
	assert.Empty(t, entries)
}

func writeOutput(args mock.Arguments) {
	_ = os.WriteFile(args.String(2), []byte("mp4"), 0o644)
}

func TestS3SynthesizeVideo_NoImage(t *testing.T) {
	enc := new(MockEncoder)
	s3 := NewS3SynthesizeVideo(enc, newStore(t), 10*time.Second, 24, zap.NewNop())

	asset, err := s3.Run(context.Background(), "sess", nil, "cat")

	assert.Nil(t, asset)
	assert.ErrorIs(t, err, ports.ErrNoSourceImage)
	enc.AssertNotCalled(t, "StillToVideo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	enc.AssertNotCalled(t, "Probe", mock.Anything, mock.Anything)
}

func TestS3SynthesizeVideo_OK(t *testing.T) {
	store := newStore(t)
	enc := new(MockEncoder)
	img := &models.MediaAsset{Kind: models.MediaImage, Path: "/images/cat.png"}

	enc.On("StillToVideo", mock.Anything, "/images/cat.png", mock.Anything, 10*time.Second, 24).
		Run(writeOutput).Return(nil)
	enc.On("Probe", mock.Anything, mock.Anything).
		Return(ports.VideoInfo{Duration: 10*time.Second + 20*time.Millisecond, FPS: 24}, nil)

	s3 := NewS3SynthesizeVideo(enc, store, 10*time.Second, 24, zap.NewNop())
	asset, err := s3.Run(context.Background(), "sess", img, "cat")
	require.NoError(t, err)

	assert.Equal(t, models.MediaVideo, asset.Kind)
	assert.Equal(t, "cat", asset.SourceQuery)
	assert.Equal(t, store.VideoDir(), filepath.Dir(asset.Path))
	assert.Equal(t, ".mp4", filepath.Ext(asset.Path))
	assert.FileExists(t, asset.Path)

	entries, _ := os.ReadDir(store.VideoDir())
	assert.Len(t, entries, 1, "temp file renamed into place")
}

func TestS3SynthesizeVideo_WrongDurationRejected(t *testing.T) {
	store := newStore(t)
	enc := new(MockEncoder)
	img := &models.MediaAsset{Path: "/images/cat.png"}

	enc.On("StillToVideo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(writeOutput).Return(nil)
	enc.On("Probe", mock.Anything, mock.Anything).
		Return(ports.VideoInfo{Duration: 9 * time.Second, FPS: 24}, nil)

	s3 := NewS3SynthesizeVideo(enc, store, 10*time.Second, 24, zap.NewNop())
	asset, err := s3.Run(context.Background(), "sess", img, "cat")

	assert.Nil(t, asset)
	assert.ErrorIs(t, err, ports.ErrVideoEncode)
	entries, _ := os.ReadDir(store.VideoDir())
	assert.Empty(t, entries)
}

func TestS3SynthesizeVideo_ProbeUnavailable(t *testing.T) {
	store := newStore(t)
	enc := new(MockEncoder)
	img := &models.MediaAsset{Path: "/images/cat.png"}

	enc.On("StillToVideo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(writeOutput).Return(nil)
	enc.On("Probe", mock.Anything, mock.Anything).
		Return(ports.VideoInfo{}, errors.New("ffprobe: executable file not found"))

	s3 := NewS3SynthesizeVideo(enc, store, 10*time.Second, 24, zap.NewNop())
	asset, err := s3.Run(context.Background(), "sess", img, "cat")

	require.NoError(t, err)
	assert.FileExists(t, asset.Path)
}

func TestS3SynthesizeVideo_EncoderFailure(t *testing.T) {
	store := newStore(t)
	enc := new(MockEncoder)
	img := &models.MediaAsset{Path: "/images/cat.png"}

	enc.On("StillToVideo", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("exit status 1"))

	s3 := NewS3SynthesizeVideo(enc, store, 10*time.Second, 24, zap.NewNop())
	asset, err := s3.Run(context.Background(), "sess", img, "cat")

	assert.Nil(t, asset)
	assert.ErrorIs(t, err, ports.ErrVideoEncode)
	enc.AssertNotCalled(t, "Probe", mock.Anything, mock.Anything)
}
