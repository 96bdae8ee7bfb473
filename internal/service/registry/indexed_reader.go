package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/feifeixp/neocore-go/internal/domain"
)

// WorldSource is the file-backed read surface the reader falls back to.
type WorldSource interface {
	ListWorlds(ctx context.Context) ([]domain.WorldSummary, error)
	GetWorld(ctx context.Context, worldID string) (domain.World, error)
	GetWorldDescription(ctx context.Context, worldID string) (string, error)
	ListCharacters(ctx context.Context, worldID string) ([]domain.CharacterSummary, error)
	GetCharacter(ctx context.Context, worldID, soulID string) (domain.CharacterRecord, error)
	GetCharacterDescription(ctx context.Context, worldID, soulID string) (string, error)
}

// WorldIndex is the query side of the registry.
type WorldIndex interface {
	ListWorlds(ctx context.Context) ([]domain.WorldSummary, error)
	ListCharacters(ctx context.Context, worldID string) ([]domain.CharacterSummary, error)
}

// IndexedReader answers listing queries from the registry index and falls
// back to the file tree when the index errors or lags behind the files.
// Single-record reads always come from disk.
type IndexedReader struct {
	files  WorldSource
	index  WorldIndex
	logger *zap.Logger
}

func NewIndexedReader(files WorldSource, index WorldIndex, logger *zap.Logger) *IndexedReader {
	return &IndexedReader{files: files, index: index, logger: logger}
}

func (r *IndexedReader) ListWorlds(ctx context.Context) ([]domain.WorldSummary, error) {
	worlds, err := r.index.ListWorlds(ctx)
	if err != nil {
		r.logger.Warn("Registry index read failed, walking the file tree", zap.Error(err))
		return r.files.ListWorlds(ctx)
	}
	if len(worlds) == 0 {
		// the index may lag worlds written before postgres was enabled
		return r.files.ListWorlds(ctx)
	}
	return worlds, nil
}

// ListCharacters loads the world metadata first so an unknown world keeps
// reporting not-found, then serves the listing from the index when it agrees
// with the metadata's character count.
func (r *IndexedReader) ListCharacters(ctx context.Context, worldID string) ([]domain.CharacterSummary, error) {
	world, err := r.files.GetWorld(ctx, worldID)
	if err != nil {
		return nil, err
	}

	characters, err := r.index.ListCharacters(ctx, worldID)
	if err != nil {
		r.logger.Warn("Registry index read failed, reading character files",
			zap.String("world_id", worldID),
			zap.Error(err),
		)
		return r.files.ListCharacters(ctx, worldID)
	}
	if len(characters) != len(world.Characters) {
		return r.files.ListCharacters(ctx, worldID)
	}
	return characters, nil
}

func (r *IndexedReader) GetWorld(ctx context.Context, worldID string) (domain.World, error) {
	return r.files.GetWorld(ctx, worldID)
}

func (r *IndexedReader) GetWorldDescription(ctx context.Context, worldID string) (string, error) {
	return r.files.GetWorldDescription(ctx, worldID)
}

func (r *IndexedReader) GetCharacter(ctx context.Context, worldID, soulID string) (domain.CharacterRecord, error) {
	return r.files.GetCharacter(ctx, worldID, soulID)
}

func (r *IndexedReader) GetCharacterDescription(ctx context.Context, worldID, soulID string) (string, error) {
	return r.files.GetCharacterDescription(ctx, worldID, soulID)
}
