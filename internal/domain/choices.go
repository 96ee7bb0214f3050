package domain

import "strings"

// GameType is the closed set of games a tournament can be created for.
type GameType string

const (
	GameFreeFire  GameType = "free_fire"
	GameBGMI      GameType = "bgmi"
	GameCODMobile GameType = "cod_mobile"
)

// MapName is the closed set of maps across all supported games.
type MapName string

const (
	MapBermuda   MapName = "bermuda"
	MapPurgatory MapName = "purgatory"
	MapKalahari  MapName = "kalahari"
	MapAlpine    MapName = "alpine"
	MapNexterra  MapName = "nexterra"

	MapErangel MapName = "erangel"
	MapMiramar MapName = "miramar"
	MapSanhok  MapName = "sanhok"
	MapVikendi MapName = "vikendi"
	MapLivik   MapName = "livik"

	MapIsolated MapName = "isolated"
	MapBlackout MapName = "blackout"
	MapKrai     MapName = "krai"
)

// Mode is the closed set of team formats.
type Mode string

const (
	ModeSolo  Mode = "solo"
	ModeDuo   Mode = "duo"
	ModeSquad Mode = "squad"
)

// Token namespaces keep a selection for one field from being accepted by another.
const (
	gameTokenPrefix = "game:"
	mapTokenPrefix  = "map:"
	modeTokenPrefix = "mode:"
)

// GameTypes lists every game in display order.
func GameTypes() []GameType {
	return []GameType{GameFreeFire, GameBGMI, GameCODMobile}
}

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModeSolo, ModeDuo, ModeSquad}
}

func (g GameType) Label() string {
	switch g {
	case GameFreeFire:
		return "Free Fire"
	case GameBGMI:
		return "BGMI"
	case GameCODMobile:
		return "COD Mobile"
	default:
		return ""
	}
}

func (g GameType) Token() string { return gameTokenPrefix + string(g) }

// Valid reports whether g is one of the declared variants.
func (g GameType) Valid() bool { return g.Label() != "" }

// Maps returns the candidate maps for the game; nil for an unknown game.
func (g GameType) Maps() []MapName {
	switch g {
	case GameFreeFire:
		return []MapName{MapBermuda, MapPurgatory, MapKalahari, MapAlpine, MapNexterra}
	case GameBGMI:
		return []MapName{MapErangel, MapMiramar, MapSanhok, MapVikendi, MapLivik}
	case GameCODMobile:
		return []MapName{MapIsolated, MapBlackout, MapKrai}
	default:
		return nil
	}
}

// HasMap reports whether m is playable in g.
func (g GameType) HasMap(m MapName) bool {
	for _, candidate := range g.Maps() {
		if candidate == m {
			return true
		}
	}
	return false
}

func (m MapName) Label() string {
	switch m {
	case MapBermuda:
		return "Bermuda"
	case MapPurgatory:
		return "Purgatory"
	case MapKalahari:
		return "Kalahari"
	case MapAlpine:
		return "Alpine"
	case MapNexterra:
		return "NeXTerra"
	case MapErangel:
		return "Erangel"
	case MapMiramar:
		return "Miramar"
	case MapSanhok:
		return "Sanhok"
	case MapVikendi:
		return "Vikendi"
	case MapLivik:
		return "Livik"
	case MapIsolated:
		return "Isolated"
	case MapBlackout:
		return "Blackout"
	case MapKrai:
		return "Krai"
	default:
		return ""
	}
}

func (m MapName) Token() string { return mapTokenPrefix + string(m) }

func (m Mode) Label() string {
	switch m {
	case ModeSolo:
		return "Solo"
	case ModeDuo:
		return "Duo"
	case ModeSquad:
		return "Squad"
	default:
		return ""
	}
}

func (m Mode) Token() string { return modeTokenPrefix + string(m) }

// ParseGameToken maps a selection token to a game. Unknown tokens are rejected.
func ParseGameToken(token string) (GameType, bool) {
	raw, ok := strings.CutPrefix(normalizeToken(token), gameTokenPrefix)
	if !ok {
		return "", false
	}
	switch g := GameType(raw); g {
	case GameFreeFire, GameBGMI, GameCODMobile:
		return g, true
	default:
		return "", false
	}
}

// ParseMapToken maps a selection token to a map. Game membership is checked by the caller.
func ParseMapToken(token string) (MapName, bool) {
	raw, ok := strings.CutPrefix(normalizeToken(token), mapTokenPrefix)
	if !ok {
		return "", false
	}
	m := MapName(raw)
	if m.Label() == "" {
		return "", false
	}
	return m, true
}

// ParseModeToken maps a selection token to a mode.
func ParseModeToken(token string) (Mode, bool) {
	raw, ok := strings.CutPrefix(normalizeToken(token), modeTokenPrefix)
	if !ok {
		return "", false
	}
	switch m := Mode(raw); m {
	case ModeSolo, ModeDuo, ModeSquad:
		return m, true
	default:
		return "", false
	}
}

func normalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
