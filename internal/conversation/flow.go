package conversation

import (
	"time"

	"github.com/park285/oto-tournament-bot/internal/domain"
	"github.com/park285/oto-tournament-bot/internal/session"
	"github.com/park285/oto-tournament-bot/internal/validate"
	"github.com/park285/oto-tournament-bot/pkg/chatdto"
)

// Steps double as the catalog key of their prompt.
const (
	StepProfileName   session.Step = "profile.ask_name"
	StepProfileGameID session.Step = "profile.ask_game_id"
	StepProfileLevel  session.Step = "profile.ask_level"
	StepProfileRegion session.Step = "profile.ask_region"

	StepTournamentName     session.Step = "tournament.ask_name"
	StepTournamentGameType session.Step = "tournament.ask_game_type"
	StepTournamentMap      session.Step = "tournament.ask_map"
	StepTournamentMode     session.Step = "tournament.ask_mode"
	StepTournamentDate     session.Step = "tournament.ask_date"
	StepTournamentTime     session.Step = "tournament.ask_time"
	StepTournamentFee      session.Step = "tournament.ask_fee"
	StepTournamentPrize    session.Step = "tournament.ask_prize"
)

type inputKind int

const (
	inputText inputKind = iota
	inputChoice
)

// applyFunc validates one input and writes it into the draft on acceptance.
// A rejected input leaves the session untouched and returns the reason.
type applyFunc func(s *session.Session, input string, now time.Time) validate.Reason

type step struct {
	id      session.Step
	input   inputKind
	choices func(s *session.Session) []chatdto.Choice
	apply   applyFunc
}

type flow struct {
	kind  session.Kind
	steps []step
}

func (f flow) first() step { return f.steps[0] }

func (f flow) index(id session.Step) int {
	for i, st := range f.steps {
		if st.id == id {
			return i
		}
	}
	return -1
}

// field adapts a validator into an applyFunc.
func field[T any](check func(string) validate.Result[T], set func(*session.Session, T)) applyFunc {
	return func(s *session.Session, input string, _ time.Time) validate.Reason {
		r := check(input)
		if !r.OK() {
			return r.Reason
		}
		set(s, r.Value)
		return ""
	}
}

var profileFlow = flow{
	kind: session.KindProfile,
	steps: []step{
		{id: StepProfileName, input: inputText, apply: field(validate.Name, func(s *session.Session, v string) {
			s.Profile.DisplayName = v
		})},
		{id: StepProfileGameID, input: inputText, apply: field(validate.GameID, func(s *session.Session, v string) {
			s.Profile.GameID = v
		})},
		{id: StepProfileLevel, input: inputText, apply: field(validate.Level, func(s *session.Session, v int) {
			s.Profile.Level = v
		})},
		{id: StepProfileRegion, input: inputText, apply: field(validate.Region, func(s *session.Session, v string) {
			s.Profile.Region = v
		})},
	},
}

var tournamentFlow = flow{
	kind: session.KindTournament,
	steps: []step{
		{id: StepTournamentName, input: inputText, apply: field(validate.TournamentName, func(s *session.Session, v string) {
			s.Tournament.Name = v
		})},
		{id: StepTournamentGameType, input: inputChoice, choices: gameChoices, apply: field(validate.GameTypeChoice, func(s *session.Session, v domain.GameType) {
			s.Tournament.GameType = v
		})},
		{id: StepTournamentMap, input: inputChoice, choices: mapChoices, apply: applyMap},
		{id: StepTournamentMode, input: inputChoice, choices: modeChoices, apply: field(validate.ModeChoice, func(s *session.Session, v domain.Mode) {
			s.Tournament.Mode = v
		})},
		{id: StepTournamentDate, input: inputText, apply: applyDate},
		{id: StepTournamentTime, input: inputText, apply: field(validate.Time, func(s *session.Session, v string) {
			s.Tournament.Time = v
		})},
		{id: StepTournamentFee, input: inputText, apply: field(validate.Amount, func(s *session.Session, v int64) {
			s.Tournament.EntryFee = v
		})},
		{id: StepTournamentPrize, input: inputText, apply: field(validate.Amount, func(s *session.Session, v int64) {
			s.Tournament.PrizePool = v
		})},
	},
}

func flowFor(kind session.Kind) (flow, bool) {
	switch kind {
	case session.KindProfile:
		return profileFlow, true
	case session.KindTournament:
		return tournamentFlow, true
	default:
		return flow{}, false
	}
}

func applyMap(s *session.Session, input string, _ time.Time) validate.Reason {
	r := validate.MapChoice(input, *s.Tournament)
	if !r.OK() {
		return r.Reason
	}
	s.Tournament.Map = r.Value
	return ""
}

func applyDate(s *session.Session, input string, now time.Time) validate.Reason {
	r := validate.Date(input, now)
	if !r.OK() {
		return r.Reason
	}
	s.Tournament.Date = r.Value
	return ""
}

func gameChoices(*session.Session) []chatdto.Choice {
	games := domain.GameTypes()
	out := make([]chatdto.Choice, 0, len(games))
	for _, g := range games {
		out = append(out, chatdto.Choice{Token: g.Token(), Label: g.Label()})
	}
	return out
}

func mapChoices(s *session.Session) []chatdto.Choice {
	maps := s.Tournament.GameType.Maps()
	out := make([]chatdto.Choice, 0, len(maps))
	for _, m := range maps {
		out = append(out, chatdto.Choice{Token: m.Token(), Label: m.Label()})
	}
	return out
}

func modeChoices(*session.Session) []chatdto.Choice {
	modes := domain.Modes()
	out := make([]chatdto.Choice, 0, len(modes))
	for _, m := range modes {
		out = append(out, chatdto.Choice{Token: m.Token(), Label: m.Label()})
	}
	return out
}
