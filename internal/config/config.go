package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ImageDir string
	VideoDir string

	UnsplashAccessKey string
	UnsplashBaseURL   string
	WikipediaBaseURL  string
	SummarySentences  int
	HTTPTimeout       time.Duration

	FFmpegPath    string
	FFprobePath   string
	VideoDuration time.Duration
	VideoFPS      int

	FarewellDelay      time.Duration
	MaxConcurrentTurns int
	QueueSize          int

	Port         string
	DatabaseURL  string
	AuthSecret   string
	AuthPassword string
}

func Load() Config {
	return Config{
		ImageDir: getEnv("COMPANION_IMAGE_DIR", "images"),
		VideoDir: getEnv("COMPANION_VIDEO_DIR", "videos"),

		UnsplashAccessKey: getEnv("UNSPLASH_ACCESS_KEY", ""),
		UnsplashBaseURL:   getEnv("UNSPLASH_BASE_URL", "https://api.unsplash.com"),
		WikipediaBaseURL:  getEnv("WIKIPEDIA_BASE_URL", "https://en.wikipedia.org"),
		SummarySentences:  getInt("SUMMARY_SENTENCES", 2),
		HTTPTimeout:       getDuration("HTTP_TIMEOUT", 30*time.Second),

		FFmpegPath:    getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:   getEnv("FFPROBE_PATH", "ffprobe"),
		VideoDuration: getDuration("VIDEO_DURATION", 10*time.Second),
		VideoFPS:      getInt("VIDEO_FPS", 24),

		FarewellDelay:      getDuration("FAREWELL_DELAY", 2*time.Second),
		MaxConcurrentTurns: getInt("MAX_CONCURRENT_TURNS", 4),
		QueueSize:          getInt("SESSION_QUEUE_SIZE", 16),

		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AuthSecret:   getEnv("AUTH_SECRET", ""),
		AuthPassword: getEnv("AUTH_PASSWORD", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getInt and getDuration keep the fallback on unparsable or non-positive values.
func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
