package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/feifeixp/neocore-go/internal/domain"
	"github.com/feifeixp/neocore-go/internal/service/generator"
)

// IndexedStore wraps a character store and mirrors every write into the
// registry index. Index failures are logged, never surfaced; the files on
// disk remain authoritative.
type IndexedStore struct {
	inner  generator.CharacterStore
	repo   *Repository
	logger *zap.Logger
}

func NewIndexedStore(inner generator.CharacterStore, repo *Repository, logger *zap.Logger) *IndexedStore {
	return &IndexedStore{inner: inner, repo: repo, logger: logger}
}

func (s *IndexedStore) CreateWorld(ctx context.Context, world domain.World, description string) error {
	if err := s.inner.CreateWorld(ctx, world, description); err != nil {
		return err
	}
	if err := s.repo.UpsertWorld(ctx, world); err != nil {
		s.logger.Warn("Registry index write failed", zap.String("world_id", world.ID), zap.Error(err))
	}
	return nil
}

func (s *IndexedStore) GetWorld(ctx context.Context, worldID string) (domain.World, error) {
	return s.inner.GetWorld(ctx, worldID)
}

func (s *IndexedStore) SaveCharacter(ctx context.Context, rec domain.CharacterRecord, description string) error {
	if err := s.inner.SaveCharacter(ctx, rec, description); err != nil {
		return err
	}
	if err := s.repo.UpsertCharacter(ctx, rec.Metadata); err != nil {
		s.logger.Warn("Registry index write failed", zap.String("soul_id", rec.Metadata.SoulID), zap.Error(err))
	}
	return nil
}
