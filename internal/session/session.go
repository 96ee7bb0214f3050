// Package session keeps the in-progress conversation state per chat member.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/park285/oto-tournament-bot/internal/domain"
)

var (
	// ErrActive is returned by Begin when the key already has a live session.
	ErrActive = errors.New("session already active")
	// ErrNotFound is returned by Save when the session ended or expired.
	ErrNotFound = errors.New("session not found")
)

// DefaultTTL is the idle timeout applied when none is configured.
const DefaultTTL = 30 * time.Minute

type Kind string

const (
	KindProfile    Kind = "profile"
	KindTournament Kind = "tournament"
)

// Step names the prompt a session is waiting on. Values are owned by the conversation engine.
type Step string

// Key identifies one member in one chat.
type Key struct {
	Chat   string `json:"chat"`
	Sender string `json:"sender"`
}

func NewKey(chat, sender string) Key {
	return Key{Chat: strings.TrimSpace(chat), Sender: strings.TrimSpace(sender)}
}

func (k Key) String() string { return k.Chat + ":" + k.Sender }

type Session struct {
	ID         uuid.UUID               `json:"id"`
	Key        Key                     `json:"key"`
	Kind       Kind                    `json:"kind"`
	Step       Step                    `json:"step"`
	Profile    *domain.ProfileDraft    `json:"profile,omitempty"`
	Tournament *domain.TournamentDraft `json:"tournament,omitempty"`
	StartedAt  time.Time               `json:"started_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

func New(key Key, kind Kind, step Step, now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		Key:       key,
		Kind:      kind,
		Step:      step,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy that shares no draft memory with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Profile != nil {
		p := *s.Profile
		c.Profile = &p
	}
	if s.Tournament != nil {
		t := *s.Tournament
		c.Tournament = &t
	}
	return &c
}

type Registry interface {
	Begin(ctx context.Context, s *Session) error
	// Load returns nil, nil when the key has no live session.
	Load(ctx context.Context, key Key) (*Session, error)
	Save(ctx context.Context, s *Session) error
	End(ctx context.Context, key Key) error
}
