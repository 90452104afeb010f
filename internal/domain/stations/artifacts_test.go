package stations

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Vovarama1992/companion/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Eiffel Tower":         "eiffel-tower",
		"  ../../etc/passwd  ": "etc-passwd",
		"what is a cat?":       "what-is-a-cat",
		"Москва":               "москва",
		"???":                  "query",
		"":                     "query",
	}
	for in, want := range cases {
		assert.Equal(t, want, slug(in), "slug(%q)", in)
	}

	long := slug(strings.Repeat("a", 100))
	assert.Len(t, long, maxSlugRunes)
}

func TestArtifactStore_NameIsUniquePerCall(t *testing.T) {
	store := newStore(t)

	id1, p1 := store.Name(models.MediaImage, "cat")
	id2, p2 := store.Name(models.MediaImage, "cat")

	assert.NotEqual(t, id1, id2)
	assert.NotEqual(t, p1, p2)
	assert.Equal(t, store.ImageDir(), filepath.Dir(p1))
	assert.True(t, strings.HasPrefix(filepath.Base(p1), "cat-"))
	assert.Equal(t, ".png", filepath.Ext(p1))

	_, v := store.Name(models.MediaVideo, "cat")
	assert.Equal(t, store.VideoDir(), filepath.Dir(v))
	assert.Equal(t, ".mp4", filepath.Ext(v))
}

func TestArtifactStore_ConcurrentSameQuery(t *testing.T) {
	store := newStore(t)

	const writers = 8
	paths := make([]string, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, path := store.Name(models.MediaImage, "same query")
			paths[i] = path
			err := store.WriteFile(path, func(w io.Writer) error {
				_, err := io.WriteString(w, fmt.Sprintf("payload-%d", i))
				return err
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i, p := range paths {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true

		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("payload-%d", i), string(data))
	}

	entries, err := os.ReadDir(store.ImageDir())
	require.NoError(t, err)
	assert.Len(t, entries, writers, "no temp files left behind")
}

func TestArtifactStore_WriteFileFailureLeavesNothing(t *testing.T) {
	store := newStore(t)
	_, path := store.Name(models.MediaImage, "broken")

	err := store.WriteFile(path, func(w io.Writer) error {
		return fmt.Errorf("boom")
	})
	assert.Error(t, err)

	entries, err := os.ReadDir(store.ImageDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
