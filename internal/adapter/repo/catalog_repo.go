package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// CatalogRepositoryPG implements domain.ArtifactCatalog.
type CatalogRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a generated-artifact catalog backed by PostgreSQL.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepositoryPG {
	return &CatalogRepositoryPG{pool: pool}
}

// Append records one artifact for display purposes.
func (r *CatalogRepositoryPG) Append(ctx context.Context, artifact domain.GeneratedArtifact) error {
	query := `
INSERT INTO generated_assets (id, user_id, task_id, kind, url, created_at)
VALUES ($1, $2, $3, $4, $5, now());
`
	_, err := r.pool.Exec(ctx, query,
		uuid.NewString(),
		artifact.UserID,
		artifact.TaskID,
		artifact.Kind,
		artifact.URL,
	)
	if err != nil {
		return fmt.Errorf("append artifact: %w", err)
	}
	return nil
}

var _ domain.ArtifactCatalog = (*CatalogRepositoryPG)(nil)
