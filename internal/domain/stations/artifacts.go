package stations

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/Vovarama1992/companion/internal/models"
	"github.com/google/uuid"
)

const maxSlugRunes = 40

// ArtifactStore hands out collision-free file names for generated media and
// publishes files only once they are completely written.
type ArtifactStore struct {
	imageDir string
	videoDir string
}

func NewArtifactStore(imageDir, videoDir string) (*ArtifactStore, error) {
	for _, dir := range []string{imageDir, videoDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &ArtifactStore{imageDir: imageDir, videoDir: videoDir}, nil
}

func (s *ArtifactStore) ImageDir() string { return s.imageDir }
func (s *ArtifactStore) VideoDir() string { return s.videoDir }

// Name returns a fresh id and the final path for an artifact of kind made for query.
// The query only contributes a readable prefix; the id keeps names unique.
func (s *ArtifactStore) Name(kind models.MediaKind, query string) (string, string) {
	id := uuid.NewString()

	dir, ext := s.imageDir, ".png"
	if kind == models.MediaVideo {
		dir, ext = s.videoDir, ".mp4"
	}
	return id, filepath.Join(dir, slug(query)+"-"+id+ext)
}

// TempPath is where a writer should produce finalPath before Publish.
func (s *ArtifactStore) TempPath(finalPath string) string {
	dir, base := filepath.Split(finalPath)
	return filepath.Join(dir, ".tmp-"+base)
}

// Publish moves a finished temp file into place.
func (s *ArtifactStore) Publish(tmpPath, finalPath string) error {
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("publish %s: %w", finalPath, err)
	}
	return nil
}

// WriteFile streams into a temp file next to path and renames it on success.
func (s *ArtifactStore) WriteFile(path string, write func(w io.Writer) error) error {
	tmp := s.TempPath(path)

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	if err := write(f); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	return s.Publish(tmp, path)
}

func slug(query string) string {
	var sb strings.Builder
	n := 0
	dash := false
	for _, r := range strings.ToLower(query) {
		if n >= maxSlugRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			n++
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			n++
			dash = true
		}
	}
	out := strings.Trim(sb.String(), "-")
	if out == "" {
		return "query"
	}
	return out
}
