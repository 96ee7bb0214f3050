package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/oto-tournament-bot/internal/domain"
	"github.com/park285/oto-tournament-bot/internal/msgcat"
	"github.com/park285/oto-tournament-bot/internal/session"
	"github.com/park285/oto-tournament-bot/internal/store"
	"github.com/park285/oto-tournament-bot/pkg/chatdto"
)

const (
	room  = "room-1"
	user  = "U1"
	admin = "ADMIN"
)

var testNow = time.Date(2026, time.October, 18, 14, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (r *recordingNotifier) Notify(_ context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

func (r *recordingNotifier) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

type harness struct {
	engine   *Engine
	store    store.Store
	sessions session.Registry
	notifier *recordingNotifier
	cat      *msgcat.Catalog
}

func newHarness(t *testing.T, st store.Store, reg session.Registry) *harness {
	t.Helper()
	if st == nil {
		st = store.NewMemory()
	}
	if reg == nil {
		reg = session.NewMemory(time.Hour)
	}
	cat := msgcat.MustDefault()
	n := &recordingNotifier{}
	e := New(st, reg, n, cat, Config{Prefix: "/", Admins: []string{admin}}, nil)
	e.now = func() time.Time { return testNow }
	return &harness{engine: e, store: st, sessions: reg, notifier: n, cat: cat}
}

func (h *harness) command(sender, name string, args ...string) []chatdto.Action {
	return h.engine.Handle(context.Background(), chatdto.NewCommand(room, sender, name, args...))
}

func (h *harness) text(sender, body string) []chatdto.Action {
	return h.engine.Handle(context.Background(), chatdto.NewText(room, sender, body))
}

func (h *harness) pick(sender, token string) []chatdto.Action {
	return h.engine.Handle(context.Background(), chatdto.NewChoice(room, sender, token))
}

func (h *harness) msg(key string) string { return h.cat.Text(key, nil) }

func (h *harness) live(t *testing.T, sender string) *session.Session {
	t.Helper()
	s, err := h.sessions.Load(context.Background(), session.NewKey(room, sender))
	require.NoError(t, err)
	return s
}

func single(t *testing.T, actions []chatdto.Action) chatdto.Action {
	t.Helper()
	require.Len(t, actions, 1)
	return actions[0]
}

// expectPrompt asserts the reply is the prompt for step, optionally preceded by a rejection.
func expectPrompt(t *testing.T, h *harness, actions []chatdto.Action, step session.Step, reasonKey string) {
	t.Helper()
	a := single(t, actions)
	assert.Equal(t, room, a.Chat)
	want := h.msg(string(step))
	if reasonKey != "" {
		want = h.msg(reasonKey) + "\n" + want
	}
	assert.Equal(t, want, a.Body)
}

func TestProfileEndToEnd(t *testing.T) {
	h := newHarness(t, nil, nil)

	expectPrompt(t, h, h.command(user, CmdProfile), StepProfileName, "")
	expectPrompt(t, h, h.text(user, "bob 7"), StepProfileName, "reject.name.charset")
	expectPrompt(t, h, h.text(user, "Bob"), StepProfileGameID, "")
	expectPrompt(t, h, h.text(user, "ab"), StepProfileGameID, "reject.game_id.length")
	expectPrompt(t, h, h.text(user, "Bob_Gamer123"), StepProfileLevel, "")
	expectPrompt(t, h, h.text(user, "abc"), StepProfileLevel, "reject.level.number")
	expectPrompt(t, h, h.text(user, "55"), StepProfileRegion, "")
	expectPrompt(t, h, h.text(user, "Narnia"), StepProfileRegion, "reject.region.unknown")

	done := single(t, h.text(user, "Maharashtra"))
	assert.Contains(t, done.Body, "OTO000001")

	p, err := h.store.ProfileByOwner(context.Background(), user)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(1), p.SequenceID)
	assert.Equal(t, "OTO000001", p.PublicID)
	assert.Equal(t, "Bob", p.DisplayName)
	assert.Equal(t, "Bob_Gamer123", p.GameID)
	assert.Equal(t, 55, p.Level)
	assert.Equal(t, "Maharashtra", p.Region)

	assert.Nil(t, h.live(t, user), "session ends after commit")
	notes := h.notifier.all()
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "OTO000001")
	assert.Contains(t, notes[0], user)
}

func TestRejectionLeavesDraftUntouched(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.command(user, CmdProfile)
	h.text(user, "Bob")
	before := h.live(t, user)

	h.text(user, "bad id!")
	after := h.live(t, user)
	assert.Equal(t, before.Step, after.Step)
	assert.Equal(t, *before.Profile, *after.Profile)
}

func TestRetriesAreUnbounded(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.command(user, CmdProfile)
	for i := 0; i < 25; i++ {
		expectPrompt(t, h, h.text(user, "1"), StepProfileName, "reject.name.charset")
	}
	expectPrompt(t, h, h.text(user, "Bob"), StepProfileGameID, "")
}

func TestCancelDiscardsDraft(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.command(user, CmdProfile)
	h.text(user, "Bob")

	a := single(t, h.command(user, CmdCancel))
	assert.Equal(t, h.msg("cancel.done"), a.Body)
	assert.Nil(t, h.live(t, user))

	p, err := h.store.ProfileByOwner(context.Background(), user)
	require.NoError(t, err)
	assert.Nil(t, p)

	a = single(t, h.command(user, CmdCancel))
	assert.Equal(t, h.cat.Text("cancel.none", map[string]any{"Prefix": "/"}), a.Body)

	// a new entry starts from an empty draft
	expectPrompt(t, h, h.command(user, CmdProfile), StepProfileName, "")
	s := h.live(t, user)
	require.NotNil(t, s)
	assert.Equal(t, StepProfileName, s.Step)
	require.NotNil(t, s.Profile)
	assert.Empty(t, s.Profile.DisplayName)
	assert.Empty(t, s.Profile.GameID)
	assert.Zero(t, s.Profile.Level)
}

func TestCancelTournamentFromChoiceStep(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.command(admin, CmdNewTournament)
	h.text(admin, "Sunday Scrims")
	h.pick(admin, "game:bgmi")
	require.Equal(t, StepTournamentMap, h.live(t, admin).Step)

	a := single(t, h.command(admin, CmdCancel))
	assert.Equal(t, h.msg("cancel.done"), a.Body)
	assert.Nil(t, h.live(t, admin))

	expectPrompt(t, h, h.command(admin, CmdNewTournament), StepTournamentName, "")
	s := h.live(t, admin)
	require.NotNil(t, s)
	assert.Equal(t, StepTournamentName, s.Step)
	require.NotNil(t, s.Tournament)
	assert.Empty(t, s.Tournament.Name)
	assert.Empty(t, s.Tournament.GameType)
	assert.Empty(t, s.Tournament.Map)

	// the old map menu no longer applies
	expectPrompt(t, h, h.pick(admin, "map:erangel"), StepTournamentName, "reject.expect_text")

	list, err := h.store.RecentTournaments(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExistingProfileShownWithoutSession(t *testing.T) {
	h := newHarness(t, nil, nil)
	_, err := h.store.InsertProfile(context.Background(), domain.ProfileDraft{
		OwnerID: user, DisplayName: "Bob", GameID: "bob_gamer", Level: 5, Region: "Goa",
	})
	require.NoError(t, err)

	a := single(t, h.command(user, CmdProfile))
	assert.Contains(t, a.Body, "OTO000001")
	assert.Nil(t, h.live(t, user))
}

func TestDuplicateRaceEndsSession(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.command(user, CmdProfile)
	h.text(user, "Bob")
	h.text(user, "Bob_Gamer123")
	h.text(user, "55")

	// the same owner finishes a form in another chat first
	_, err := h.store.InsertProfile(context.Background(), domain.ProfileDraft{
		OwnerID: user, DisplayName: "Bob", GameID: "bob_other", Level: 1, Region: "Goa",
	})
	require.NoError(t, err)

	a := single(t, h.text(user, "Maharashtra"))
	assert.Equal(t, h.cat.Text("profile.duplicate", map[string]any{"Prefix": "/"}), a.Body)
	assert.Nil(t, h.live(t, user))
	assert.Empty(t, h.notifier.all())
}

type failingStore struct {
	*store.Memory
}

func (failingStore) InsertProfile(context.Context, domain.ProfileDraft) (*domain.Profile, error) {
	return nil, fmt.Errorf("insert profile: %w: connection refused", domain.ErrStoreUnavailable)
}

func TestStoreFailureIsGeneric(t *testing.T) {
	h := newHarness(t, failingStore{store.NewMemory()}, nil)
	h.command(user, CmdProfile)
	h.text(user, "Bob")
	h.text(user, "Bob_Gamer123")
	h.text(user, "55")

	a := single(t, h.text(user, "Maharashtra"))
	assert.Equal(t, h.msg("commit.failed"), a.Body)
	assert.NotContains(t, a.Body, "connection refused")
	assert.Nil(t, h.live(t, user))
	assert.Empty(t, h.notifier.all())
}

func TestSecondEntryWhileActiveIsBusy(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.command(user, CmdProfile)
	a := single(t, h.command(user, CmdProfile))
	assert.Equal(t, h.cat.Text("session.busy", map[string]any{"Prefix": "/"}), a.Body)
}

func TestUnauthorizedTournament(t *testing.T) {
	h := newHarness(t, nil, nil)
	a := single(t, h.command(user, CmdNewTournament))
	assert.Equal(t, h.msg("auth.denied"), a.Body)
	assert.Nil(t, h.live(t, user))
}

func TestTournamentEndToEnd(t *testing.T) {
	h := newHarness(t, nil, nil)

	expectPrompt(t, h, h.command(admin, CmdNewTournament), StepTournamentName, "")
	expectPrompt(t, h, h.text(admin, "   "), StepTournamentName, "reject.title.empty")

	a := single(t, h.text(admin, "Sunday Scrims"))
	assert.Equal(t, h.msg(string(StepTournamentGameType)), a.Body)
	require.Len(t, a.Choices, 3)
	assert.Equal(t, "game:free_fire", a.Choices[0].Token)

	// typing at a choice step is rejected
	expectPrompt(t, h, h.text(admin, "bgmi"), StepTournamentGameType, "reject.expect_choice")
	// a token for another field is rejected
	expectPrompt(t, h, h.pick(admin, "mode:squad"), StepTournamentGameType, "reject.choice")

	a = single(t, h.pick(admin, "game:bgmi"))
	assert.Equal(t, chatdto.ActionEditLast, a.Kind)
	assert.Equal(t, h.msg(string(StepTournamentMap)), a.Body)
	labels := make([]string, 0, len(a.Choices))
	for _, c := range a.Choices {
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{"Erangel", "Miramar", "Sanhok", "Vikendi", "Livik"}, labels)

	// a Free Fire map is not valid for BGMI
	expectPrompt(t, h, h.pick(admin, "map:bermuda"), StepTournamentMap, "reject.choice")
	single(t, h.pick(admin, "map:erangel"))
	single(t, h.pick(admin, "mode:squad"))

	expectPrompt(t, h, h.pick(admin, "mode:duo"), StepTournamentDate, "reject.expect_text")
	expectPrompt(t, h, h.text(admin, "2026-10-18"), StepTournamentDate, "reject.date.not_future")
	expectPrompt(t, h, h.text(admin, "15-09-2025"), StepTournamentDate, "reject.date.format")
	expectPrompt(t, h, h.text(admin, "2026-10-19"), StepTournamentTime, "")
	expectPrompt(t, h, h.text(admin, "25:00"), StepTournamentTime, "reject.time.format")
	expectPrompt(t, h, h.text(admin, "18:30"), StepTournamentFee, "")
	expectPrompt(t, h, h.text(admin, "-5"), StepTournamentFee, "reject.amount.negative")
	expectPrompt(t, h, h.text(admin, "fifty"), StepTournamentFee, "reject.amount.number")
	expectPrompt(t, h, h.text(admin, "50"), StepTournamentPrize, "")

	done := single(t, h.text(admin, "5000"))
	assert.Contains(t, done.Body, "Sunday Scrims")
	assert.Contains(t, done.Body, "Erangel")
	assert.Nil(t, h.live(t, admin))

	list, err := h.store.RecentTournaments(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	tr := list[0]
	assert.Equal(t, domain.GameBGMI, tr.GameType)
	assert.Equal(t, domain.MapErangel, tr.Map)
	assert.Equal(t, domain.ModeSquad, tr.Mode)
	assert.Equal(t, "2026-10-19", tr.DateLabel())
	assert.Equal(t, "18:30", tr.Time)
	assert.Equal(t, int64(50), tr.EntryFee)
	assert.Equal(t, int64(5000), tr.PrizePool)
	assert.Equal(t, admin, tr.CreatedBy)

	require.Len(t, h.notifier.all(), 1)

	listing := single(t, h.command(user, CmdTournaments))
	assert.True(t, strings.HasPrefix(listing.Body, h.msg("tournaments.header")))
	assert.Contains(t, listing.Body, "Sunday Scrims")
}

func TestPickCommandActsAsChoice(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.command(admin, CmdNewTournament)
	h.text(admin, "Cup")
	a := single(t, h.command(admin, CmdPick, "game:cod_mobile"))
	assert.Equal(t, h.msg(string(StepTournamentMap)), a.Body)
	assert.Len(t, a.Choices, 3)
}

func TestInputOutsideSession(t *testing.T) {
	h := newHarness(t, nil, nil)
	assert.Empty(t, h.text(user, "hello everyone"))
	a := single(t, h.pick(user, "game:bgmi"))
	assert.Equal(t, h.cat.Text("choice.stale", map[string]any{"Prefix": "/"}), a.Body)
}

func TestSessionsAreScopedPerChat(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.command(user, CmdProfile)
	other := h.engine.Handle(context.Background(), chatdto.NewText("room-2", user, "Bob"))
	assert.Empty(t, other)
	s := h.live(t, user)
	require.NotNil(t, s)
	assert.Equal(t, StepProfileName, s.Step)
}

type expiringRegistry struct {
	session.Registry
}

func (expiringRegistry) Save(context.Context, *session.Session) error { return session.ErrNotFound }

func TestExpiredSessionMidStep(t *testing.T) {
	h := newHarness(t, nil, expiringRegistry{session.NewMemory(time.Hour)})
	h.command(user, CmdProfile)
	a := single(t, h.text(user, "Bob"))
	assert.Equal(t, h.msg("session.expired"), a.Body)
}

func TestMeAndStart(t *testing.T) {
	h := newHarness(t, nil, nil)
	a := single(t, h.command(user, CmdMe))
	assert.Equal(t, h.cat.Text("profile.none", map[string]any{"Prefix": "/"}), a.Body)

	ev := chatdto.NewCommand(room, user, CmdStart)
	ev.Handle = "Asha"
	a = single(t, h.engine.Handle(context.Background(), ev))
	assert.Contains(t, a.Body, "Hello Asha!")

	help := single(t, h.command(user, CmdHelp))
	assert.NotContains(t, help.Body, CmdNewTournament)
	adminHelp := single(t, h.command(admin, CmdHelp))
	assert.Contains(t, adminHelp.Body, CmdNewTournament)

	unknown := single(t, h.command(user, "dance"))
	assert.Equal(t, h.cat.Text("command.unknown", map[string]any{"Prefix": "/"}), unknown.Body)
}
