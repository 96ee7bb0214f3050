package domain

import (
	"fmt"
	"time"
)

// Profile is a committed user profile. Owned by the store after commit.
type Profile struct {
	SequenceID  int64
	PublicID    string
	OwnerID     string
	DisplayName string
	GameID      string
	Level       int
	Region      string
	Handle      string
	CreatedAt   time.Time
}

// ProfileDraft accumulates profile fields while a conversation is in progress.
type ProfileDraft struct {
	OwnerID     string `json:"owner_id"`
	Handle      string `json:"handle,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	GameID      string `json:"game_id,omitempty"`
	Level       int    `json:"level,omitempty"`
	Region      string `json:"region,omitempty"`
}

// Complete reports whether every field required for a commit is present.
func (d ProfileDraft) Complete() bool {
	return d.OwnerID != "" && d.DisplayName != "" && d.GameID != "" && d.Level > 0 && d.Region != ""
}

const publicIDPrefix = "OTO"

// PublicID derives the human-readable profile id from the store sequence.
// The pad is a minimum width: 42 → OTO000042, 1000000 → OTO1000000.
func PublicID(seq int64) string {
	return fmt.Sprintf("%s%06d", publicIDPrefix, seq)
}
