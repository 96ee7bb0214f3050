// Package conversation runs the profile and tournament registration dialogs.
//
// The engine is transport agnostic: it consumes chatdto.Event values and
// returns chatdto.Action values. Per-session ordering is the caller's job
// (see internal/dispatch); the engine itself holds no per-session locks.
package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/oto-tournament-bot/internal/metrics"
	"github.com/park285/oto-tournament-bot/internal/msgcat"
	"github.com/park285/oto-tournament-bot/internal/session"
	"github.com/park285/oto-tournament-bot/internal/store"
	"github.com/park285/oto-tournament-bot/pkg/chatdto"
)

const (
	defaultCommitTimeout = 5 * time.Second
	defaultRecentLimit   = 5
)

// Commands understood by the engine, without prefix.
const (
	CmdStart         = "start"
	CmdHelp          = "help"
	CmdProfile       = "profile"
	CmdMe            = "me"
	CmdNewTournament = "newtournament"
	CmdTournaments   = "tournaments"
	CmdCancel        = "cancel"
	CmdPick          = "pick"
)

// Notifier receives the operator copy of every commit. It must not block.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

type Config struct {
	Prefix        string
	Admins        []string
	CommitTimeout time.Duration
	RecentLimit   int
}

type Engine struct {
	store    store.Store
	sessions session.Registry
	notifier Notifier
	catalog  *msgcat.Catalog
	logger   *zap.Logger

	prefix        string
	admins        map[string]struct{}
	commitTimeout time.Duration
	recentLimit   int

	now func() time.Time
}

func New(st store.Store, sessions session.Registry, notifier Notifier, catalog *msgcat.Catalog, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = msgcat.MustDefault()
	}
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = defaultCommitTimeout
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = defaultRecentLimit
	}
	admins := make(map[string]struct{}, len(cfg.Admins))
	for _, a := range cfg.Admins {
		if a = strings.TrimSpace(a); a != "" {
			admins[a] = struct{}{}
		}
	}
	return &Engine{
		store:         st,
		sessions:      sessions,
		notifier:      notifier,
		catalog:       catalog,
		logger:        logger,
		prefix:        cfg.Prefix,
		admins:        admins,
		commitTimeout: cfg.CommitTimeout,
		recentLimit:   cfg.RecentLimit,
		now:           time.Now,
	}
}

// Handle processes one event and returns the replies to send, in order.
func (e *Engine) Handle(ctx context.Context, ev chatdto.Event) []chatdto.Action {
	metrics.EventsTotal.WithLabelValues(ev.Kind.String()).Inc()
	key := session.NewKey(ev.Chat, ev.Sender)
	if ev.Kind == chatdto.EventCommand {
		return e.handleCommand(ctx, key, ev)
	}
	return e.handleInput(ctx, key, ev)
}

func (e *Engine) handleCommand(ctx context.Context, key session.Key, ev chatdto.Event) []chatdto.Action {
	switch strings.ToLower(ev.Name) {
	case CmdStart:
		name := strings.TrimSpace(ev.Handle)
		if name == "" {
			name = "there"
		}
		return e.say(ev.Chat, "start.welcome", map[string]any{"Name": name, "Prefix": e.prefix})
	case CmdHelp:
		return e.help(ev)
	case CmdCancel:
		return e.cancel(ctx, key, ev)
	case CmdProfile:
		return e.startProfile(ctx, key, ev)
	case CmdMe:
		return e.showProfile(ctx, ev)
	case CmdNewTournament:
		return e.startTournament(ctx, key, ev)
	case CmdTournaments:
		return e.listTournaments(ctx, ev)
	case CmdPick:
		if len(ev.Args) == 0 {
			return e.say(ev.Chat, "reject.choice", nil)
		}
		choice := chatdto.NewChoice(ev.Chat, ev.Sender, ev.Args[0])
		choice.Handle = ev.Handle
		return e.handleInput(ctx, key, choice)
	default:
		return e.say(ev.Chat, "command.unknown", e.prefixData())
	}
}

func (e *Engine) help(ev chatdto.Event) []chatdto.Action {
	body := e.catalog.Text("help.text", e.prefixData())
	if e.isAdmin(ev.Sender) {
		body += "\n" + e.catalog.Text("help.admin", e.prefixData())
	}
	return []chatdto.Action{chatdto.SendText(ev.Chat, body)}
}

func (e *Engine) cancel(ctx context.Context, key session.Key, ev chatdto.Event) []chatdto.Action {
	s, err := e.sessions.Load(ctx, key)
	if err != nil {
		e.logger.Error("session_load_failed", zap.String("session_key", key.String()), zap.Error(err))
		return e.say(ev.Chat, "error.generic", nil)
	}
	if s == nil {
		return e.say(ev.Chat, "cancel.none", e.prefixData())
	}
	if err := e.sessions.End(ctx, key); err != nil {
		e.logger.Error("session_end_failed", sessionFields(s, zap.Error(err))...)
		return e.say(ev.Chat, "error.generic", nil)
	}
	e.logger.Info("session_cancelled", sessionFields(s)...)
	return e.say(ev.Chat, "cancel.done", nil)
}

func (e *Engine) startProfile(ctx context.Context, key session.Key, ev chatdto.Event) []chatdto.Action {
	existing, err := e.store.ProfileByOwner(ctx, ev.Sender)
	if err != nil {
		e.logger.Error("profile_lookup_failed", zap.String("session_key", key.String()), zap.Error(err))
		return e.say(ev.Chat, "error.generic", nil)
	}
	if existing != nil {
		return e.say(ev.Chat, "profile.exists", map[string]any{"Card": e.profileCard(existing)})
	}

	s := session.New(key, session.KindProfile, profileFlow.first().id, e.now())
	s.Profile = newProfileDraft(ev)
	return e.begin(ctx, s, ev)
}

func (e *Engine) startTournament(ctx context.Context, key session.Key, ev chatdto.Event) []chatdto.Action {
	if !e.isAdmin(ev.Sender) {
		metrics.UnauthorizedTotal.Inc()
		e.logger.Warn("unauthorized_command",
			zap.String("session_key", key.String()),
			zap.String("command", ev.Name),
		)
		return e.say(ev.Chat, "auth.denied", nil)
	}
	s := session.New(key, session.KindTournament, tournamentFlow.first().id, e.now())
	s.Tournament = newTournamentDraft(ev)
	return e.begin(ctx, s, ev)
}

func (e *Engine) begin(ctx context.Context, s *session.Session, ev chatdto.Event) []chatdto.Action {
	if err := e.sessions.Begin(ctx, s); err != nil {
		if errors.Is(err, session.ErrActive) {
			return e.say(ev.Chat, "session.busy", e.prefixData())
		}
		e.logger.Error("session_begin_failed", sessionFields(s, zap.Error(err))...)
		return e.say(ev.Chat, "error.generic", nil)
	}
	metrics.SessionsStartedTotal.WithLabelValues(string(s.Kind)).Inc()
	e.logger.Info("session_started", sessionFields(s)...)

	f, _ := flowFor(s.Kind)
	return []chatdto.Action{e.prompt(chatdto.ActionSendText, ev.Chat, f.first(), s, "")}
}

func (e *Engine) handleInput(ctx context.Context, key session.Key, ev chatdto.Event) []chatdto.Action {
	s, err := e.sessions.Load(ctx, key)
	if err != nil {
		e.logger.Error("session_load_failed", zap.String("session_key", key.String()), zap.Error(err))
		return e.say(ev.Chat, "error.generic", nil)
	}
	if s == nil {
		// free text outside a dialog is ordinary chat
		if ev.Kind == chatdto.EventChoice {
			return e.say(ev.Chat, "choice.stale", e.prefixData())
		}
		return nil
	}

	f, ok := flowFor(s.Kind)
	idx := f.index(s.Step)
	if !ok || idx < 0 {
		e.logger.Error("session_state_invalid", sessionFields(s)...)
		_ = e.sessions.End(ctx, key)
		return e.say(ev.Chat, "error.generic", nil)
	}
	cur := f.steps[idx]

	var input string
	switch {
	case cur.input == inputChoice && ev.Kind != chatdto.EventChoice:
		return e.reject(ev.Chat, cur, s, "reject.expect_choice")
	case cur.input == inputText && ev.Kind != chatdto.EventText:
		return e.reject(ev.Chat, cur, s, "reject.expect_text")
	case cur.input == inputChoice:
		input = ev.Token
	default:
		input = ev.Body
	}

	if reason := cur.apply(s, input, e.now()); reason != "" {
		metrics.RejectionsTotal.WithLabelValues(string(reason)).Inc()
		e.logger.Debug("input_rejected", sessionFields(s, zap.String("reason", string(reason)))...)
		return e.reject(ev.Chat, cur, s, string(reason))
	}

	if idx+1 == len(f.steps) {
		return e.commit(ctx, s, ev)
	}

	next := f.steps[idx+1]
	s.Step = next.id
	s.UpdatedAt = e.now()
	if err := e.sessions.Save(ctx, s); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return e.say(ev.Chat, "session.expired", nil)
		}
		e.logger.Error("session_save_failed", sessionFields(s, zap.Error(err))...)
		return e.say(ev.Chat, "error.generic", nil)
	}

	kind := chatdto.ActionSendText
	if ev.Kind == chatdto.EventChoice {
		kind = chatdto.ActionEditLast
	}
	return []chatdto.Action{e.prompt(kind, ev.Chat, next, s, "")}
}

func (e *Engine) reject(chat string, cur step, s *session.Session, reasonKey string) []chatdto.Action {
	return []chatdto.Action{e.prompt(chatdto.ActionSendText, chat, cur, s, reasonKey)}
}

// prompt renders the question for st, prefixed by a rejection message when reasonKey is set.
func (e *Engine) prompt(kind chatdto.ActionKind, chat string, st step, s *session.Session, reasonKey string) chatdto.Action {
	body := e.catalog.Text(string(st.id), nil)
	if reasonKey != "" {
		body = e.catalog.Text(reasonKey, nil) + "\n" + body
	}
	a := chatdto.Action{Kind: kind, Chat: chat, Body: body}
	if st.choices != nil {
		a.Choices = st.choices(s)
	}
	return a
}

func (e *Engine) say(chat, key string, data any) []chatdto.Action {
	return []chatdto.Action{chatdto.SendText(chat, e.catalog.Text(key, data))}
}

func (e *Engine) prefixData() map[string]any {
	return map[string]any{"Prefix": e.prefix}
}

func (e *Engine) isAdmin(sender string) bool {
	_, ok := e.admins[strings.TrimSpace(sender)]
	return ok
}

func sessionFields(s *session.Session, extra ...zap.Field) []zap.Field {
	fields := []zap.Field{
		zap.String("session_key", s.Key.String()),
		zap.String("session_id", s.ID.String()),
		zap.String("kind", string(s.Kind)),
		zap.String("step", string(s.Step)),
	}
	return append(fields, extra...)
}
