package conversation

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/oto-tournament-bot/internal/domain"
	"github.com/park285/oto-tournament-bot/internal/metrics"
	"github.com/park285/oto-tournament-bot/internal/session"
	"github.com/park285/oto-tournament-bot/pkg/chatdto"
)

func newProfileDraft(ev chatdto.Event) *domain.ProfileDraft {
	return &domain.ProfileDraft{OwnerID: strings.TrimSpace(ev.Sender), Handle: strings.TrimSpace(ev.Handle)}
}

func newTournamentDraft(ev chatdto.Event) *domain.TournamentDraft {
	return &domain.TournamentDraft{CreatedBy: strings.TrimSpace(ev.Sender)}
}

// commit persists the finished draft. The session ends whatever the outcome.
func (e *Engine) commit(ctx context.Context, s *session.Session, ev chatdto.Event) []chatdto.Action {
	cctx, cancel := context.WithTimeout(ctx, e.commitTimeout)
	defer cancel()

	var actions []chatdto.Action
	switch s.Kind {
	case session.KindProfile:
		actions = e.commitProfile(cctx, ctx, s, ev)
	case session.KindTournament:
		actions = e.commitTournament(cctx, ctx, s, ev)
	}

	if err := e.sessions.End(ctx, s.Key); err != nil {
		e.logger.Warn("session_end_failed", sessionFields(s, zap.Error(err))...)
	}
	return actions
}

func (e *Engine) commitProfile(cctx, ctx context.Context, s *session.Session, ev chatdto.Event) []chatdto.Action {
	start := time.Now()
	p, err := e.store.InsertProfile(cctx, *s.Profile)
	metrics.CommitLatency.WithLabelValues(string(s.Kind)).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.CommitsTotal.WithLabelValues(string(s.Kind), metrics.OutcomeOK).Inc()
		e.logger.Info("profile_created", sessionFields(s,
			zap.Int64("sequence_id", p.SequenceID),
			zap.String("public_id", p.PublicID),
		)...)
		e.notify(ctx, "ops.profile_created", p)
		return e.say(ev.Chat, "profile.created", p)
	case errors.Is(err, domain.ErrAlreadyExists):
		metrics.CommitsTotal.WithLabelValues(string(s.Kind), metrics.OutcomeDuplicate).Inc()
		e.logger.Info("profile_duplicate", sessionFields(s)...)
		return e.say(ev.Chat, "profile.duplicate", e.prefixData())
	default:
		metrics.CommitsTotal.WithLabelValues(string(s.Kind), metrics.OutcomeError).Inc()
		e.logger.Error("profile_commit_failed", sessionFields(s, zap.Error(err))...)
		return e.say(ev.Chat, "commit.failed", nil)
	}
}

func (e *Engine) commitTournament(cctx, ctx context.Context, s *session.Session, ev chatdto.Event) []chatdto.Action {
	start := time.Now()
	t, err := e.store.InsertTournament(cctx, *s.Tournament)
	metrics.CommitLatency.WithLabelValues(string(s.Kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CommitsTotal.WithLabelValues(string(s.Kind), metrics.OutcomeError).Inc()
		e.logger.Error("tournament_commit_failed", sessionFields(s, zap.Error(err))...)
		return e.say(ev.Chat, "commit.failed", nil)
	}
	metrics.CommitsTotal.WithLabelValues(string(s.Kind), metrics.OutcomeOK).Inc()
	e.logger.Info("tournament_created", sessionFields(s, zap.Int64("tournament_id", t.ID))...)

	view := e.tournamentView(t)
	e.notify(ctx, "ops.tournament_created", view)
	return e.say(ev.Chat, "tournament.created", view)
}

func (e *Engine) notify(ctx context.Context, key string, data any) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, e.catalog.Text(key, data))
}

func (e *Engine) showProfile(ctx context.Context, ev chatdto.Event) []chatdto.Action {
	p, err := e.store.ProfileByOwner(ctx, ev.Sender)
	if err != nil {
		e.logger.Error("profile_lookup_failed", zap.String("sender", ev.Sender), zap.Error(err))
		return e.say(ev.Chat, "error.generic", nil)
	}
	if p == nil {
		return e.say(ev.Chat, "profile.none", e.prefixData())
	}
	return []chatdto.Action{chatdto.SendText(ev.Chat, e.profileCard(p))}
}

func (e *Engine) listTournaments(ctx context.Context, ev chatdto.Event) []chatdto.Action {
	list, err := e.store.RecentTournaments(ctx, e.recentLimit)
	if err != nil {
		e.logger.Error("tournament_list_failed", zap.Error(err))
		return e.say(ev.Chat, "error.generic", nil)
	}
	if len(list) == 0 {
		return e.say(ev.Chat, "tournaments.none", nil)
	}
	parts := make([]string, 0, len(list)+1)
	parts = append(parts, e.catalog.Text("tournaments.header", nil))
	for _, t := range list {
		parts = append(parts, e.tournamentView(t).Card)
	}
	return []chatdto.Action{chatdto.SendText(ev.Chat, strings.Join(parts, "\n\n"))}
}

func (e *Engine) profileCard(p *domain.Profile) string {
	return e.catalog.Text("profile.card", p)
}

// tournamentView is the template data for tournament messages.
type tournamentView struct {
	ID        int64
	Name      string
	Game      string
	Map       string
	Mode      string
	Date      string
	Time      string
	EntryFee  string
	PrizePool string
	CreatedBy string
	Card      string
}

func (e *Engine) tournamentView(t *domain.Tournament) tournamentView {
	v := tournamentView{
		ID:        t.ID,
		Name:      t.Name,
		Game:      t.GameType.Label(),
		Map:       t.Map.Label(),
		Mode:      t.Mode.Label(),
		Date:      t.DateLabel(),
		Time:      t.Time,
		EntryFee:  formatAmount(t.EntryFee),
		PrizePool: formatAmount(t.PrizePool),
		CreatedBy: t.CreatedBy,
	}
	v.Card = e.catalog.Text("tournament.card", v)
	return v
}

func formatAmount(n int64) string {
	return "₹" + strconv.FormatInt(n, 10)
}
