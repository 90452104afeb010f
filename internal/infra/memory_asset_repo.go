package infra

import (
	"context"
	"sync"

	"github.com/Vovarama1992/companion/internal/models"
	"github.com/Vovarama1992/companion/internal/ports"
)

// MemoryAssetRepo is the ledger used when no DATABASE_URL is configured.
// Entries live until the process exits.
type MemoryAssetRepo struct {
	mu     sync.RWMutex
	assets []models.MediaAsset
}

func NewMemoryAssetRepo() *MemoryAssetRepo {
	return &MemoryAssetRepo{}
}

func (r *MemoryAssetRepo) InsertAsset(_ context.Context, a *models.MediaAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets = append(r.assets, *a)
	return nil
}

func (r *MemoryAssetRepo) ListAssets(_ context.Context, f ports.AssetFilter) ([]models.MediaAsset, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultAssetLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.MediaAsset{}
	for i := len(r.assets) - 1; i >= 0 && len(out) < limit; i-- {
		a := r.assets[i]
		if f.SessionID != "" && a.SessionID != f.SessionID {
			continue
		}
		if f.Query != "" && a.SourceQuery != f.Query {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *MemoryAssetRepo) GetAssetByID(_ context.Context, id string) (*models.MediaAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.assets {
		if r.assets[i].ID == id {
			a := r.assets[i]
			return &a, nil
		}
	}
	return nil, nil
}
