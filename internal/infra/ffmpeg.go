package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Vovarama1992/companion/internal/ports"
)

const maxStderrPreview = 280

// commandRunner runs a binary and returns its combined output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type FFmpegEncoder struct {
	ffmpeg  string
	ffprobe string
	run     commandRunner
}

func NewFFmpegEncoder(ffmpegPath, ffprobePath string) *FFmpegEncoder {
	return &FFmpegEncoder{
		ffmpeg:  ffmpegPath,
		ffprobe: ffprobePath,
		run:     execRunner,
	}
}

func (e *FFmpegEncoder) StillToVideo(
	ctx context.Context,
	imagePath string,
	outPath string,
	duration time.Duration,
	fps int,
) error {
	if fps <= 0 || duration <= 0 {
		return fmt.Errorf("%w: bad clip params duration=%s fps=%d", ports.ErrVideoEncode, duration, fps)
	}

	rate := strconv.Itoa(fps)
	args := []string{
		"-y",
		"-loglevel", "error",
		"-loop", "1",
		"-framerate", rate,
		"-i", imagePath,
		"-t", formatSeconds(duration),
		"-r", rate,
		// libx264 + yuv420p needs even dimensions
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2,format=yuv420p",
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-movflags", "+faststart",
		"-f", "mp4",
		outPath,
	}

	out, err := e.run(ctx, e.ffmpeg, args...)
	if err != nil {
		return fmt.Errorf("%w: ffmpeg: %v: %s", ports.ErrVideoEncode, err, trim(strings.TrimSpace(string(out)), maxStderrPreview))
	}
	return nil
}

type probeOutput struct {
	Streams []struct {
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (e *FFmpegEncoder) Probe(ctx context.Context, videoPath string) (ports.VideoInfo, error) {
	out, err := e.run(ctx, e.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate,avg_frame_rate:format=duration",
		"-of", "json",
		videoPath,
	)
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("ffprobe: %v: %s", err, trim(strings.TrimSpace(string(out)), maxStderrPreview))
	}

	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return ports.VideoInfo{}, fmt.Errorf("ffprobe output: %w", err)
	}
	if len(parsed.Streams) == 0 {
		return ports.VideoInfo{}, fmt.Errorf("ffprobe: no video stream in %s", videoPath)
	}

	secs, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("ffprobe duration %q: %w", parsed.Format.Duration, err)
	}

	rate := parsed.Streams[0].AvgFrameRate
	if rate == "" || rate == "0/0" {
		rate = parsed.Streams[0].RFrameRate
	}
	fps, err := parseRate(rate)
	if err != nil {
		return ports.VideoInfo{}, err
	}

	return ports.VideoInfo{
		Duration: time.Duration(secs * float64(time.Second)),
		FPS:      fps,
	}, nil
}

// parseRate reads ffprobe's "num/den" notation.
func parseRate(s string) (float64, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return strconv.ParseFloat(s, 64)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("frame rate %q: %w", s, err)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("frame rate %q: bad denominator", s)
	}
	return n / d, nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// trim caps s at max bytes without splitting a rune.
func trim(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
