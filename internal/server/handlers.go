package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/feifeixp/neocore-go/internal/constants"
	"github.com/feifeixp/neocore-go/internal/domain"
	"github.com/feifeixp/neocore-go/internal/service/cache"
	"github.com/feifeixp/neocore-go/internal/service/generator"
	"github.com/feifeixp/neocore-go/pkg/errors"
)

// WorldReader is the read-side store surface the handlers need.
type WorldReader interface {
	ListWorlds(ctx context.Context) ([]domain.WorldSummary, error)
	GetWorld(ctx context.Context, worldID string) (domain.World, error)
	GetWorldDescription(ctx context.Context, worldID string) (string, error)
	ListCharacters(ctx context.Context, worldID string) ([]domain.CharacterSummary, error)
	GetCharacter(ctx context.Context, worldID, soulID string) (domain.CharacterRecord, error)
	GetCharacterDescription(ctx context.Context, worldID, soulID string) (string, error)
}

// DocumentCache is the optional Redis layer in front of the reader.
type DocumentCache interface {
	GetWorldList(ctx context.Context) ([]domain.WorldSummary, bool)
	SetWorldList(ctx context.Context, worlds []domain.WorldSummary)
	GetDescription(ctx context.Context, key string) (string, bool)
	SetDescription(ctx context.Context, key, doc string)
	InvalidateWorld(ctx context.Context, worldID string)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Code: errors.CodeAppError, Message: "internal error"}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode
		body.Code = appErr.Code
		body.Message = appErr.Message
	}

	if status >= 500 {
		s.logger.Error("Request failed", zap.Error(err))
	} else {
		s.logger.Debug("Request rejected", zap.Error(err))
	}

	s.respondJSON(w, status, map[string]any{
		"success": false,
		"error":   body,
	})
}

// characterResponse is the creation result envelope.
type characterResponse struct {
	Success       bool   `json:"success"`
	WorldID       string `json:"worldId"`
	CharacterName string `json:"characterName"`
	CharacterID   string `json:"characterId"`
	Gender        string `json:"gender"`
	Era           string `json:"era"`
	BirthDate     string `json:"birthDate"`
	Description   string `json:"description"`
}

func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var input generator.CreateCharacterInput
	if err := decodeBody(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	result, err := s.generator.CreateCharacter(r.Context(), input)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if s.cache != nil {
		s.cache.InvalidateWorld(r.Context(), result.World.ID)
	}

	meta := result.Record.Metadata
	s.respondJSON(w, http.StatusCreated, characterResponse{
		Success:       true,
		WorldID:       meta.WorldID,
		CharacterName: meta.Name,
		CharacterID:   meta.SoulID,
		Gender:        string(meta.Gender),
		Era:           string(meta.Era),
		BirthDate:     meta.BirthTime.Format(domain.BirthTimeLayout),
		Description:   result.Description,
	})
}

func (s *Server) handleListWorlds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.cache != nil {
		if worlds, ok := s.cache.GetWorldList(ctx); ok {
			s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "worlds": worlds})
			return
		}
	}

	worlds, err := s.reader.ListWorlds(ctx)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if worlds == nil {
		worlds = []domain.WorldSummary{}
	}

	if s.cache != nil {
		s.cache.SetWorldList(ctx, worlds)
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "worlds": worlds})
}

func (s *Server) handleCreateWorld(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &input); err != nil {
		s.respondError(w, err)
		return
	}

	world, err := s.generator.CreateWorld(r.Context(), input.Name)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if s.cache != nil {
		s.cache.InvalidateWorld(r.Context(), world.ID)
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"world":   domain.WorldSummary{ID: world.ID, Name: world.Name},
	})
}

func (s *Server) handleGetWorld(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	worldID := r.PathValue("worldId")

	world, err := s.reader.GetWorld(ctx, worldID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	description := s.cachedDescription(ctx, cache.WorldDescKey(worldID), func() (string, error) {
		return s.reader.GetWorldDescription(ctx, worldID)
	})

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"world":       world,
		"description": description,
	})
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := s.reader.ListCharacters(r.Context(), r.PathValue("worldId"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	if characters == nil {
		characters = []domain.CharacterSummary{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "characters": characters})
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	worldID := r.PathValue("worldId")
	soulID := r.PathValue("soulId")

	rec, err := s.reader.GetCharacter(ctx, worldID, soulID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	description := s.cachedDescription(ctx, cache.CharacterDescKey(worldID, soulID), func() (string, error) {
		return s.reader.GetCharacterDescription(ctx, worldID, soulID)
	})

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"character":   rec,
		"description": description,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"status":     "ok",
		"ws_clients": s.hub.ClientCount(),
	}

	if len(s.checks) > 0 {
		backends := make(map[string]any, len(s.checks))
		for name, check := range s.checks {
			backends[name] = check(r.Context())
		}
		payload["backends"] = backends
	}

	s.respondJSON(w, http.StatusOK, payload)
}

// cachedDescription looks the document up in Redis first and falls back to
// the store. A missing document is reported as empty, not as an error.
func (s *Server) cachedDescription(ctx context.Context, key string, load func() (string, error)) string {
	if s.cache != nil {
		if doc, ok := s.cache.GetDescription(ctx, key); ok {
			return doc
		}
	}

	doc, err := load()
	if err != nil {
		s.logger.Debug("Description unavailable", zap.String("key", key), zap.Error(err))
		return ""
	}

	if s.cache != nil {
		s.cache.SetDescription(ctx, key, doc)
	}
	return doc
}

func decodeBody(r *http.Request, dest any) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, constants.HTTPConfig.MaxRequestBody))
	if err := decoder.Decode(dest); err != nil {
		return errors.NewValidationError("request body is not valid JSON", "body", err.Error())
	}
	return nil
}
