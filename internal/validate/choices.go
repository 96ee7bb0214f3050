package validate

import "github.com/park285/oto-tournament-bot/internal/domain"

// GameTypeChoice resolves a game selection token.
func GameTypeChoice(token string) Result[domain.GameType] {
	g, ok := domain.ParseGameToken(token)
	if !ok {
		return reject[domain.GameType](ReasonChoice)
	}
	return accept(g)
}

// MapChoice resolves a map token against the maps of the already chosen game.
func MapChoice(token string, draft domain.TournamentDraft) Result[domain.MapName] {
	m, ok := domain.ParseMapToken(token)
	if !ok || !draft.GameType.HasMap(m) {
		return reject[domain.MapName](ReasonChoice)
	}
	return accept(m)
}

// ModeChoice resolves a mode selection token.
func ModeChoice(token string) Result[domain.Mode] {
	m, ok := domain.ParseModeToken(token)
	if !ok {
		return reject[domain.Mode](ReasonChoice)
	}
	return accept(m)
}
