// Package storage persists worlds and characters as JSON plus Markdown files
// on disk. The directory tree is the source of truth for the whole system.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/feifeixp/neocore-go/internal/constants"
	"github.com/feifeixp/neocore-go/internal/domain"
	"github.com/feifeixp/neocore-go/pkg/errors"
)

const (
	worldsDirName      = "worlds"
	charactersDirName  = "characters"
	worldMetadataFile  = "world_metadata.json"
	worldDescFile      = "world_description.md"
	descriptionSuffix  = "_description.md"
	characterExtension = ".json"
)

// Store reads and writes the on-disk world tree:
//
//	<base>/worlds/<worldID>/world_metadata.json
//	<base>/worlds/<worldID>/world_description.md
//	<base>/worlds/<worldID>/characters/<soulID>.json
//	<base>/worlds/<worldID>/characters/<soulID>_description.md
type Store struct {
	baseDir string
	logger  *zap.Logger

	// serializes metadata read-modify-write per process
	mu sync.Mutex
}

func NewStore(baseDir string, logger *zap.Logger) (*Store, error) {
	worldsDir := filepath.Join(baseDir, worldsDirName)
	if err := os.MkdirAll(worldsDir, 0o755); err != nil {
		return nil, errors.NewStorageError("failed to create base directory", "mkdir", worldsDir, err)
	}

	logger.Info("File store ready", zap.String("base_dir", baseDir))
	return &Store{baseDir: baseDir, logger: logger}, nil
}

// NewWorldID returns an identifier like TDP-1a2b3c4d-2026.
func NewWorldID(now time.Time) string {
	return fmt.Sprintf("TDP-%s-%d", randomHex(4), now.Year())
}

// NewSoulID returns an identifier like SOUL-0A1B2C.
func NewSoulID() string {
	return "SOUL-" + strings.ToUpper(randomHex(3))
}

// NewChecksum returns the short validation code stored in world metadata.
func NewChecksum() string {
	return strings.ToUpper(randomHex(2))
}

// IDs arrive from URL paths and are joined into filesystem paths, so
// anything outside the generated formats is rejected before touching disk.
var (
	worldIDPattern = regexp.MustCompile(`^TDP-[0-9a-f]{8}-\d{4}$`)
	soulIDPattern  = regexp.MustCompile(`^SOUL-[0-9A-F]{6}$`)
)

// ValidWorldID reports whether id matches the generated TDP format.
func ValidWorldID(id string) bool { return worldIDPattern.MatchString(id) }

// ValidSoulID reports whether id matches the generated SOUL format.
func ValidSoulID(id string) bool { return soulIDPattern.MatchString(id) }

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(buf)
}

func (s *Store) worldDir(worldID string) string {
	return filepath.Join(s.baseDir, worldsDirName, worldID)
}

func (s *Store) charactersDir(worldID string) string {
	return filepath.Join(s.worldDir(worldID), charactersDirName)
}

// CreateWorld writes a new world directory with metadata and description.
func (s *Store) CreateWorld(ctx context.Context, world domain.World, description string) error {
	dir := s.worldDir(world.ID)
	if err := os.MkdirAll(filepath.Join(dir, charactersDirName), 0o755); err != nil {
		return errors.NewStorageError("failed to create world directory", "mkdir", dir, err)
	}

	if err := s.writeWorldMetadata(world); err != nil {
		return err
	}

	descPath := filepath.Join(dir, worldDescFile)
	if err := os.WriteFile(descPath, []byte(description), 0o644); err != nil {
		return errors.NewStorageError("failed to write world description", "write", descPath, err)
	}

	s.logger.Info("World created",
		zap.String("world_id", world.ID),
		zap.String("name", world.Name),
	)
	return nil
}

func (s *Store) writeWorldMetadata(world domain.World) error {
	path := filepath.Join(s.worldDir(world.ID), worldMetadataFile)

	data, err := json.MarshalIndent(world, "", "  ")
	if err != nil {
		return errors.NewStorageError("failed to marshal world metadata", "marshal", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewStorageError("failed to write world metadata", "write", path, err)
	}
	return nil
}

// GetWorld loads a world's metadata.
func (s *Store) GetWorld(ctx context.Context, worldID string) (domain.World, error) {
	if !ValidWorldID(worldID) {
		return domain.World{}, errors.NewNotFoundError("world", worldID)
	}
	path := filepath.Join(s.worldDir(worldID), worldMetadataFile)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return domain.World{}, errors.NewNotFoundError("world", worldID)
	}
	if err != nil {
		return domain.World{}, errors.NewStorageError("failed to read world metadata", "read", path, err)
	}

	var world domain.World
	if err := json.Unmarshal(data, &world); err != nil {
		return domain.World{}, errors.NewStorageError("failed to parse world metadata", "unmarshal", path, err)
	}
	return world, nil
}

// GetWorldDescription loads a world's Markdown document.
func (s *Store) GetWorldDescription(ctx context.Context, worldID string) (string, error) {
	if _, err := s.GetWorld(ctx, worldID); err != nil {
		return "", err
	}

	path := filepath.Join(s.worldDir(worldID), worldDescFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.NewNotFoundError("world description", worldID)
	}
	if err != nil {
		return "", errors.NewStorageError("failed to read world description", "read", path, err)
	}
	return string(data), nil
}

// ListWorlds walks the worlds directory and loads every metadata file. Reads
// run concurrently; directories without readable metadata are skipped.
func (s *Store) ListWorlds(ctx context.Context) ([]domain.WorldSummary, error) {
	worldsDir := filepath.Join(s.baseDir, worldsDirName)

	entries, err := os.ReadDir(worldsDir)
	if err != nil {
		return nil, errors.NewStorageError("failed to list worlds", "readdir", worldsDir, err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}

	p := pool.New().WithMaxGoroutines(constants.StorageConfig.ListConcurrency)

	summaries := make([]*domain.WorldSummary, len(ids))
	var mu sync.Mutex

	for idx, id := range ids {
		idx, id := idx, id
		p.Go(func() {
			world, err := s.GetWorld(ctx, id)
			if err != nil {
				s.logger.Warn("Skipping unreadable world", zap.String("world_id", id), zap.Error(err))
				return
			}
			mu.Lock()
			summaries[idx] = &domain.WorldSummary{ID: world.ID, Name: world.Name}
			mu.Unlock()
		})
	}
	p.Wait()

	result := make([]domain.WorldSummary, 0, len(ids))
	for _, sum := range summaries {
		if sum != nil {
			result = append(result, *sum)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// SaveCharacter writes the record and its description, then appends the soul
// ID to the world's character list.
func (s *Store) SaveCharacter(ctx context.Context, rec domain.CharacterRecord, description string) error {
	worldID := rec.Metadata.WorldID
	soulID := rec.Metadata.SoulID

	s.mu.Lock()
	defer s.mu.Unlock()

	world, err := s.GetWorld(ctx, worldID)
	if err != nil {
		return err
	}

	dir := s.charactersDir(worldID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewStorageError("failed to create characters directory", "mkdir", dir, err)
	}

	recordPath := filepath.Join(dir, soulID+characterExtension)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.NewStorageError("failed to marshal character", "marshal", recordPath, err)
	}
	if err := os.WriteFile(recordPath, data, 0o644); err != nil {
		return errors.NewStorageError("failed to write character", "write", recordPath, err)
	}

	descPath := filepath.Join(dir, soulID+descriptionSuffix)
	if err := os.WriteFile(descPath, []byte(description), 0o644); err != nil {
		return errors.NewStorageError("failed to write character description", "write", descPath, err)
	}

	for _, existing := range world.Characters {
		if existing == soulID {
			return nil
		}
	}
	world.Characters = append(world.Characters, soulID)
	if err := s.writeWorldMetadata(world); err != nil {
		return err
	}

	s.logger.Info("Character saved",
		zap.String("world_id", worldID),
		zap.String("soul_id", soulID),
		zap.String("name", rec.Metadata.Name),
	)
	return nil
}

// GetCharacter loads a character record.
func (s *Store) GetCharacter(ctx context.Context, worldID, soulID string) (domain.CharacterRecord, error) {
	if !ValidWorldID(worldID) || !ValidSoulID(soulID) {
		return domain.CharacterRecord{}, errors.NewNotFoundError("character", soulID)
	}
	path := filepath.Join(s.charactersDir(worldID), soulID+characterExtension)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return domain.CharacterRecord{}, errors.NewNotFoundError("character", soulID)
	}
	if err != nil {
		return domain.CharacterRecord{}, errors.NewStorageError("failed to read character", "read", path, err)
	}

	var rec domain.CharacterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.CharacterRecord{}, errors.NewStorageError("failed to parse character", "unmarshal", path, err)
	}
	return rec, nil
}

// GetCharacterDescription loads a character's Markdown document.
func (s *Store) GetCharacterDescription(ctx context.Context, worldID, soulID string) (string, error) {
	if !ValidWorldID(worldID) || !ValidSoulID(soulID) {
		return "", errors.NewNotFoundError("character description", soulID)
	}
	path := filepath.Join(s.charactersDir(worldID), soulID+descriptionSuffix)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.NewNotFoundError("character description", soulID)
	}
	if err != nil {
		return "", errors.NewStorageError("failed to read character description", "read", path, err)
	}
	return string(data), nil
}

// ListCharacters returns summaries for every character in a world, in the
// order they were created.
func (s *Store) ListCharacters(ctx context.Context, worldID string) ([]domain.CharacterSummary, error) {
	world, err := s.GetWorld(ctx, worldID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.CharacterSummary, 0, len(world.Characters))
	for _, soulID := range world.Characters {
		rec, err := s.GetCharacter(ctx, worldID, soulID)
		if err != nil {
			s.logger.Warn("Skipping unreadable character",
				zap.String("world_id", worldID),
				zap.String("soul_id", soulID),
				zap.Error(err),
			)
			continue
		}
		summaries = append(summaries, domain.CharacterSummary{
			ID:   rec.Metadata.SoulID,
			Name: rec.Metadata.Name,
			Era:  rec.Metadata.Era,
		})
	}
	return summaries, nil
}
