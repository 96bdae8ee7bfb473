// Package generator runs the character creation pipeline: input validation,
// chart computation, element tally, text generation, optional AI polish, and
// persistence.
package generator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feifeixp/neocore-go/internal/bazi"
	"github.com/feifeixp/neocore-go/internal/config"
	"github.com/feifeixp/neocore-go/internal/domain"
	"github.com/feifeixp/neocore-go/internal/narrative"
	"github.com/feifeixp/neocore-go/internal/service/storage"
	"github.com/feifeixp/neocore-go/pkg/errors"
)

// CharacterStore is the persistence surface the pipeline needs.
type CharacterStore interface {
	CreateWorld(ctx context.Context, world domain.World, description string) error
	GetWorld(ctx context.Context, worldID string) (domain.World, error)
	SaveCharacter(ctx context.Context, rec domain.CharacterRecord, description string) error
}

// DescriptionEnhancer polishes a rendered document. Implementations may fail
// freely; the pipeline falls back to the unpolished document.
type DescriptionEnhancer interface {
	EnhanceDescription(ctx context.Context, doc string, meta domain.CharacterMeta) (string, error)
}

// EventPublisher pushes feed notifications to connected clients.
type EventPublisher interface {
	Publish(event domain.Event)
}

type Generator struct {
	store    CharacterStore
	enhancer DescriptionEnhancer
	events   EventPublisher
	selector narrative.Selector
	logger   *zap.Logger
	now      func() time.Time
}

// New builds a generator. enhancer and events may be nil.
func New(store CharacterStore, enhancer DescriptionEnhancer, events EventPublisher, cfg config.GeneratorConfig, logger *zap.Logger) *Generator {
	var selector narrative.Selector
	if cfg.Strategy == "indexed" {
		selector = narrative.NewIndexedSelector(int(cfg.Seed))
	} else {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		selector = narrative.NewRandomSelector(seed)
	}

	return &Generator{
		store:    store,
		enhancer: enhancer,
		events:   events,
		selector: selector,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateCharacterInput carries the raw form values.
type CreateCharacterInput struct {
	WorldID   string `json:"worldId"`
	Name      string `json:"characterName"`
	Gender    string `json:"gender"`
	Era       string `json:"era"`
	BirthDate string `json:"birthDate"`
}

// CreateCharacterResult is the pipeline output handed to the responder.
type CreateCharacterResult struct {
	Record      domain.CharacterRecord
	Description string
	World       domain.World
}

// CreateWorld writes a fresh world and announces it on the event feed.
func (g *Generator) CreateWorld(ctx context.Context, name string) (domain.World, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.World{}, errors.NewValidationError("world name is required", "name", name)
	}

	now := g.now().UTC()
	world := domain.World{
		ID:        storage.NewWorldID(now),
		Name:      name,
		CreatedAt: now,
		Checksum:  storage.NewChecksum(),
	}

	description := narrative.RenderWorldDescription(world)
	if err := g.store.CreateWorld(ctx, world, description); err != nil {
		return domain.World{}, err
	}

	g.publish(domain.Event{Type: domain.EventWorldCreated, WorldID: world.ID, Name: world.Name})
	return world, nil
}

// CreateCharacter validates the input, runs the full pipeline, and persists
// the result. When input.WorldID is empty a new world is created for the
// character.
func (g *Generator) CreateCharacter(ctx context.Context, input CreateCharacterInput) (*CreateCharacterResult, error) {
	era, err := domain.ParseEra(input.Era)
	if err != nil {
		return nil, err
	}
	gender, err := domain.ParseGender(input.Gender)
	if err != nil {
		return nil, err
	}
	birth, err := domain.ParseBirthTimestamp(input.BirthDate)
	if err != nil {
		return nil, err
	}

	world, err := g.resolveWorld(ctx, input.WorldID, era)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = narrative.GenerateName(era, gender, g.selector)
	}

	chart := bazi.Compute(birth)
	tally := bazi.CountElements(chart)

	rec := domain.CharacterRecord{
		Metadata: domain.CharacterMeta{
			SoulID:    storage.NewSoulID(),
			WorldID:   world.ID,
			Name:      name,
			Gender:    gender,
			Era:       era,
			BirthTime: birth,
			CreatedAt: g.now().UTC(),
		},
		Chart:      chart,
		Elements:   tally,
		Skills:     narrative.GenerateSkills(era, g.selector),
		Attributes: narrative.GenerateAttributes(g.selector),
	}

	description := narrative.RenderDescription(rec, world.Name)
	description = g.enhance(ctx, description, rec)

	if err := g.store.SaveCharacter(ctx, rec, description); err != nil {
		return nil, err
	}

	g.logger.Info("Character generated",
		zap.String("world_id", world.ID),
		zap.String("soul_id", rec.Metadata.SoulID),
		zap.String("name", name),
		zap.String("era", string(era)),
		zap.String("sizhu", chart.Sizhu()),
	)

	g.publish(domain.Event{
		Type:    domain.EventCharacterCreated,
		WorldID: world.ID,
		ID:      rec.Metadata.SoulID,
		Name:    name,
	})

	return &CreateCharacterResult{
		Record:      rec,
		Description: description,
		World:       world,
	}, nil
}

func (g *Generator) resolveWorld(ctx context.Context, worldID string, era domain.Era) (domain.World, error) {
	worldID = strings.TrimSpace(worldID)
	if worldID != "" {
		return g.store.GetWorld(ctx, worldID)
	}
	return g.CreateWorld(ctx, era.Title()+"世界")
}

// enhance returns the polished document, or the original on any failure. A
// polished document that no longer carries the correct chart tables is
// rejected the same way.
func (g *Generator) enhance(ctx context.Context, description string, rec domain.CharacterRecord) string {
	if g.enhancer == nil {
		return description
	}

	meta := rec.Metadata
	polished, err := g.enhancer.EnhanceDescription(ctx, description, meta)
	if err != nil {
		g.logger.Warn("Enhancement failed, keeping template output",
			zap.String("soul_id", meta.SoulID),
			zap.Error(err),
		)
		return description
	}

	if err := verifyDocument(polished, rec); err != nil {
		g.logger.Warn("Enhanced document corrupted the chart, keeping template output",
			zap.String("soul_id", meta.SoulID),
			zap.Error(err),
		)
		return description
	}
	return polished
}

// verifyDocument parses the chart data back out of the document (the sizhu
// line and both tables) and checks it against the record.
func verifyDocument(doc string, rec domain.CharacterRecord) error {
	parsed, err := narrative.ParseDescription(doc)
	if err != nil {
		return err
	}

	if parsed.Sizhu != rec.Chart.Sizhu() {
		return errors.NewValidationError("sizhu line was altered", "description", parsed.Sizhu)
	}

	pillars := rec.Chart.Pillars()
	for i := range pillars {
		if parsed.Pillars[i] != pillars[i].String() {
			return errors.NewValidationError("pillar table was altered", "description", parsed.Pillars[i])
		}
	}
	for el, count := range rec.Elements.Counts {
		if parsed.Counts[el] != count {
			return errors.NewValidationError("element table was altered", "description", string(el))
		}
	}
	return nil
}

func (g *Generator) publish(event domain.Event) {
	if g.events != nil {
		g.events.Publish(event)
	}
}
