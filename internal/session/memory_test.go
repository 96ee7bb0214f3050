package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/park285/oto-tournament-bot/internal/domain"
)

const stepAskName Step = "ask_name"

func newTestMemory(ttl time.Duration) (*Memory, *time.Time) {
	m := NewMemory(ttl)
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMemoryBeginRejectsSecondSession(t *testing.T) {
	m, clock := newTestMemory(time.Minute)
	ctx := context.Background()
	key := NewKey("room", "u1")

	if err := m.Begin(ctx, New(key, KindProfile, stepAskName, *clock)); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := m.Begin(ctx, New(key, KindTournament, stepAskName, *clock)); !errors.Is(err, ErrActive) {
		t.Fatalf("expected ErrActive, got %v", err)
	}
	// a different chat is a different key
	if err := m.Begin(ctx, New(NewKey("other", "u1"), KindProfile, stepAskName, *clock)); err != nil {
		t.Fatalf("Begin other chat: %v", err)
	}
}

func TestMemoryLoadReturnsCopy(t *testing.T) {
	m, clock := newTestMemory(time.Minute)
	ctx := context.Background()
	key := NewKey("room", "u1")
	s := New(key, KindProfile, stepAskName, *clock)
	s.Profile = &domain.ProfileDraft{OwnerID: "u1"}
	if err := m.Begin(ctx, s); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	got, err := m.Load(ctx, key)
	if err != nil || got == nil {
		t.Fatalf("Load: %v %v", got, err)
	}
	got.Profile.DisplayName = "Mutated"

	again, _ := m.Load(ctx, key)
	if again.Profile.DisplayName != "" {
		t.Fatalf("stored draft was mutated through a loaded copy")
	}
}

func TestMemoryExpiry(t *testing.T) {
	m, clock := newTestMemory(time.Minute)
	ctx := context.Background()
	key := NewKey("room", "u1")
	s := New(key, KindProfile, stepAskName, *clock)
	if err := m.Begin(ctx, s); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	*clock = clock.Add(30 * time.Second)
	if err := m.Save(ctx, s); err != nil {
		t.Fatalf("Save refreshes ttl: %v", err)
	}
	*clock = clock.Add(45 * time.Second)
	if got, _ := m.Load(ctx, key); got == nil {
		t.Fatalf("session should still be live after refresh")
	}

	*clock = clock.Add(2 * time.Minute)
	if got, _ := m.Load(ctx, key); got != nil {
		t.Fatalf("expected expired session to be gone")
	}
	if err := m.Save(ctx, s); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Save after expiry: expected ErrNotFound, got %v", err)
	}
	if err := m.Begin(ctx, New(key, KindProfile, stepAskName, *clock)); err != nil {
		t.Fatalf("Begin after expiry: %v", err)
	}
}

func TestMemorySaveAfterEnd(t *testing.T) {
	m, clock := newTestMemory(time.Minute)
	ctx := context.Background()
	key := NewKey("room", "u1")
	s := New(key, KindProfile, stepAskName, *clock)
	_ = m.Begin(ctx, s)
	_ = m.End(ctx, key)
	if err := m.Save(ctx, s); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStaleSaveDoesNotClobberNewSession(t *testing.T) {
	m, clock := newTestMemory(time.Minute)
	ctx := context.Background()
	key := NewKey("room", "u1")
	old := New(key, KindProfile, stepAskName, *clock)
	_ = m.Begin(ctx, old)
	_ = m.End(ctx, key)
	fresh := New(key, KindTournament, stepAskName, *clock)
	_ = m.Begin(ctx, fresh)

	if err := m.Save(ctx, old); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, _ := m.Load(ctx, key)
	if got == nil || got.ID != fresh.ID {
		t.Fatalf("fresh session replaced: %+v", got)
	}
}

func TestMemorySweep(t *testing.T) {
	m, clock := newTestMemory(time.Minute)
	ctx := context.Background()
	_ = m.Begin(ctx, New(NewKey("r", "a"), KindProfile, stepAskName, *clock))
	*clock = clock.Add(40 * time.Second)
	_ = m.Begin(ctx, New(NewKey("r", "b"), KindProfile, stepAskName, *clock))
	*clock = clock.Add(30 * time.Second)

	n, err := m.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 || m.Len() != 1 {
		t.Fatalf("expected one swept and one left, got swept=%d left=%d", n, m.Len())
	}
}
