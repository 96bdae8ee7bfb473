package domain

import (
	"strings"
	"time"

	"github.com/feifeixp/neocore-go/internal/bazi"
	"github.com/feifeixp/neocore-go/pkg/errors"
)

// BirthTimeLayout is the canonical layout for birth timestamps: local civil
// time, no zone.
const BirthTimeLayout = "2006-01-02T15:04:05"

var birthTimeLayouts = []string{
	BirthTimeLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// ParseBirthTimestamp parses a birth timestamp from form input. Impossible
// calendar dates (Feb 30) are rejected, never silently normalized.
func ParseBirthTimestamp(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, errors.NewValidationError("birth date is required", "birthDate", s)
	}
	for _, layout := range birthTimeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError("birth date is not a valid timestamp", "birthDate", s)
}

// CharacterMeta identifies a generated character. Records are immutable once
// written.
type CharacterMeta struct {
	SoulID    string    `json:"soul_id"`
	WorldID   string    `json:"world_id"`
	Name      string    `json:"name"`
	Gender    Gender    `json:"gender"`
	Era       Era       `json:"era"`
	BirthTime time.Time `json:"birth_datetime"`
	CreatedAt time.Time `json:"created_at"`
}

type Attributes struct {
	Strength     int `json:"strength"`
	Intelligence int `json:"intelligence"`
	Charisma     int `json:"charisma"`
}

type CharacterRecord struct {
	Metadata   CharacterMeta `json:"metadata"`
	Chart      bazi.Chart    `json:"chart"`
	Elements   bazi.Tally    `json:"elements"`
	Skills     []string      `json:"skills"`
	Attributes Attributes    `json:"attributes"`
}

type CharacterSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Era  Era    `json:"era"`
}

// Event types pushed on the websocket feed.
const (
	EventWorldCreated     = "world_created"
	EventCharacterCreated = "character_created"
)

// Event is a feed notification for connected pages.
type Event struct {
	Type    string `json:"type"`
	WorldID string `json:"worldId"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
}
