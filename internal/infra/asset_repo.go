package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vovarama1992/companion/internal/models"
	"github.com/Vovarama1992/companion/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultAssetLimit = 50

type PostgresAssetRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAssetRepo(pool *pgxpool.Pool) ports.AssetRepository {
	return &PostgresAssetRepo{pool: pool}
}

func (r *PostgresAssetRepo) InsertAsset(ctx context.Context, a *models.MediaAsset) error {
	query := `
		INSERT INTO media_asset (id, session_id, kind, path, source_query, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, a.ID, a.SessionID, string(a.Kind), a.Path, a.SourceQuery, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (r *PostgresAssetRepo) ListAssets(ctx context.Context, f ports.AssetFilter) ([]models.MediaAsset, error) {
	query, args := listAssetsQuery(f)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	out := []models.MediaAsset{}
	for rows.Next() {
		var (
			a    models.MediaAsset
			kind string
		)
		if err := rows.Scan(&a.ID, &a.SessionID, &kind, &a.Path, &a.SourceQuery, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		a.Kind = models.MediaKind(kind)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresAssetRepo) GetAssetByID(ctx context.Context, id string) (*models.MediaAsset, error) {
	query := `
		SELECT id, session_id, kind, path, source_query, created_at
		FROM media_asset
		WHERE id = $1
	`

	var (
		a    models.MediaAsset
		kind string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.SessionID, &kind, &a.Path, &a.SourceQuery, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset by id: %w", err)
	}
	a.Kind = models.MediaKind(kind)
	return &a, nil
}

// listAssetsQuery numbers placeholders in the order filters are set; the limit is always last.
func listAssetsQuery(f ports.AssetFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.SessionID != "" {
		args = append(args, f.SessionID)
		where = append(where, fmt.Sprintf("session_id = $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, f.Query)
		where = append(where, fmt.Sprintf("source_query = $%d", len(args)))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultAssetLimit
	}
	args = append(args, limit)

	var sb strings.Builder
	sb.WriteString(`SELECT id, session_id, kind, path, source_query, created_at FROM media_asset`)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)))
	return sb.String(), args
}
