// Package store persists committed profiles and tournaments.
//
// Implementations map driver failures onto domain.ErrAlreadyExists (a
// uniqueness constraint rejected the write) and domain.ErrStoreUnavailable
// (everything else). Callers branch with errors.Is.
package store

import (
	"context"

	"github.com/park285/oto-tournament-bot/internal/domain"
)

const defaultRecentLimit = 5

type Store interface {
	// InsertProfile assigns the next sequence and public id atomically with the row write.
	InsertProfile(ctx context.Context, draft domain.ProfileDraft) (*domain.Profile, error)
	// ProfileByOwner returns nil, nil when the owner has no profile.
	ProfileByOwner(ctx context.Context, owner string) (*domain.Profile, error)
	InsertTournament(ctx context.Context, draft domain.TournamentDraft) (*domain.Tournament, error)
	// RecentTournaments lists tournaments newest first.
	RecentTournaments(ctx context.Context, limit int) ([]*domain.Tournament, error)
	Ping(ctx context.Context) error
	Close() error
}
