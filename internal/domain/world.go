package domain

import "time"

// World groups generated characters. No relational integrity is enforced
// beyond the character ID list kept in the metadata file.
type World struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	Characters []string  `json:"characters"`
	Checksum   string    `json:"checksum"`
}

type WorldSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
