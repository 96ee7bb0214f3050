package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/park285/oto-tournament-bot/internal/domain"
)

// Memory is a development-only store used when no database is configured.
type Memory struct {
	mu sync.RWMutex

	nextSeq        int64
	nextTournament int64

	profiles    map[string]*domain.Profile // owner -> profile
	tournaments []*domain.Tournament

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[string]*domain.Profile),
		now:      time.Now,
	}
}

func (m *Memory) InsertProfile(ctx context.Context, draft domain.ProfileDraft) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("insert profile: %w: %w", domain.ErrStoreUnavailable, err)
	}
	owner := strings.TrimSpace(draft.OwnerID)
	if owner == "" {
		return nil, fmt.Errorf("insert profile: %w: empty owner", domain.ErrStoreUnavailable)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[owner]; exists {
		return nil, domain.ErrAlreadyExists
	}
	m.nextSeq++
	p := &domain.Profile{
		SequenceID:  m.nextSeq,
		PublicID:    domain.PublicID(m.nextSeq),
		OwnerID:     owner,
		DisplayName: draft.DisplayName,
		GameID:      draft.GameID,
		Level:       draft.Level,
		Region:      draft.Region,
		Handle:      draft.Handle,
		CreatedAt:   m.now(),
	}
	m.profiles[owner] = p
	out := *p
	return &out, nil
}

func (m *Memory) ProfileByOwner(ctx context.Context, owner string) (*domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.profiles[strings.TrimSpace(owner)]; ok && p != nil {
		out := *p
		return &out, nil
	}
	return nil, nil
}

func (m *Memory) InsertTournament(ctx context.Context, draft domain.TournamentDraft) (*domain.Tournament, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("insert tournament: %w: %w", domain.ErrStoreUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextTournament++
	t := &domain.Tournament{
		ID:        m.nextTournament,
		Name:      draft.Name,
		GameType:  draft.GameType,
		Map:       draft.Map,
		Mode:      draft.Mode,
		Date:      draft.Date,
		Time:      draft.Time,
		EntryFee:  draft.EntryFee,
		PrizePool: draft.PrizePool,
		CreatedBy: draft.CreatedBy,
		CreatedAt: m.now(),
	}
	m.tournaments = append(m.tournaments, t)
	out := *t
	return &out, nil
}

func (m *Memory) RecentTournaments(ctx context.Context, limit int) ([]*domain.Tournament, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	m.mu.RLock()
	items := make([]*domain.Tournament, 0, len(m.tournaments))
	for _, t := range m.tournaments {
		out := *t
		items = append(items, &out)
	}
	m.mu.RUnlock()

	// CreatedAt desc, ID desc
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close() error { return nil }
