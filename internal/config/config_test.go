package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "images", cfg.ImageDir)
	assert.Equal(t, "videos", cfg.VideoDir)
	assert.Equal(t, 10*time.Second, cfg.VideoDuration)
	assert.Equal(t, 24, cfg.VideoFPS)
	assert.Equal(t, 2*time.Second, cfg.FarewellDelay)
	assert.Equal(t, 2, cfg.SummarySentences)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COMPANION_IMAGE_DIR", "/tmp/img")
	t.Setenv("UNSPLASH_ACCESS_KEY", "key")
	t.Setenv("VIDEO_FPS", "30")
	t.Setenv("FAREWELL_DELAY", "500ms")

	cfg := Load()

	assert.Equal(t, "/tmp/img", cfg.ImageDir)
	assert.Equal(t, "key", cfg.UnsplashAccessKey)
	assert.Equal(t, 30, cfg.VideoFPS)
	assert.Equal(t, 500*time.Millisecond, cfg.FarewellDelay)
}

func TestLoad_BadNumbersKeepDefaults(t *testing.T) {
	t.Setenv("VIDEO_FPS", "fast")
	t.Setenv("MAX_CONCURRENT_TURNS", "-1")
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 24, cfg.VideoFPS)
	assert.Equal(t, 4, cfg.MaxConcurrentTurns)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}
