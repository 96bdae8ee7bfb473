// Package registry keeps a queryable index of worlds and characters in
// PostgreSQL. The file store stays the source of truth; the index exists so
// deployments with many worlds can answer listing queries without walking
// the tree.
package registry

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/feifeixp/neocore-go/internal/domain"
	"github.com/feifeixp/neocore-go/internal/service/database"
)

type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepository(postgres *database.PostgresService, logger *zap.Logger) *Repository {
	return &Repository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// EnsureSchema creates the index tables when they do not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS worlds (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			checksum   TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS characters (
			soul_id    TEXT PRIMARY KEY,
			world_id   TEXT NOT NULL REFERENCES worlds(id) ON DELETE CASCADE,
			name       TEXT NOT NULL,
			gender     TEXT NOT NULL,
			era        TEXT NOT NULL,
			birth_time TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS characters_world_idx ON characters(world_id)`,
	}

	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure registry schema: %w", err)
		}
	}
	return nil
}

func (r *Repository) UpsertWorld(ctx context.Context, world domain.World) error {
	query := `
		INSERT INTO worlds (id, name, checksum, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, checksum = EXCLUDED.checksum
	`
	if _, err := r.db.ExecContext(ctx, query, world.ID, world.Name, world.Checksum, world.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert world %s: %w", world.ID, err)
	}
	return nil
}

func (r *Repository) UpsertCharacter(ctx context.Context, meta domain.CharacterMeta) error {
	query := `
		INSERT INTO characters (soul_id, world_id, name, gender, era, birth_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (soul_id) DO UPDATE SET name = EXCLUDED.name
	`
	_, err := r.db.ExecContext(ctx, query,
		meta.SoulID, meta.WorldID, meta.Name, string(meta.Gender), string(meta.Era),
		meta.BirthTime, meta.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert character %s: %w", meta.SoulID, err)
	}
	return nil
}

// ListWorlds returns summaries ordered by creation time, newest first.
func (r *Repository) ListWorlds(ctx context.Context) ([]domain.WorldSummary, error) {
	query := `SELECT id, name FROM worlds ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query worlds: %w", err)
	}
	defer rows.Close()

	var worlds []domain.WorldSummary
	for rows.Next() {
		var w domain.WorldSummary
		if err := rows.Scan(&w.ID, &w.Name); err != nil {
			return nil, fmt.Errorf("failed to scan world row: %w", err)
		}
		worlds = append(worlds, w)
	}
	return worlds, rows.Err()
}

func (r *Repository) ListCharacters(ctx context.Context, worldID string) ([]domain.CharacterSummary, error) {
	query := `
		SELECT soul_id, name, era
		FROM characters
		WHERE world_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, worldID)
	if err != nil {
		return nil, fmt.Errorf("failed to query characters for %s: %w", worldID, err)
	}
	defer rows.Close()

	var characters []domain.CharacterSummary
	for rows.Next() {
		var (
			c   domain.CharacterSummary
			era string
		)
		if err := rows.Scan(&c.ID, &c.Name, &era); err != nil {
			return nil, fmt.Errorf("failed to scan character row: %w", err)
		}
		c.Era = domain.Era(era)
		characters = append(characters, c)
	}
	return characters, rows.Err()
}
