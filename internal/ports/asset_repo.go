package ports

import (
	"context"

	"github.com/Vovarama1992/companion/internal/models"
)

type AssetFilter struct {
	SessionID string
	Query     string
	Limit     int
}

type AssetRepository interface {
	InsertAsset(ctx context.Context, asset *models.MediaAsset) error
	// ListAssets returns newest first.
	ListAssets(ctx context.Context, f AssetFilter) ([]models.MediaAsset, error)
	GetAssetByID(ctx context.Context, id string) (*models.MediaAsset, error)
}
