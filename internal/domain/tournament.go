package domain

import "time"

// Tournament is a committed tournament record.
type Tournament struct {
	ID        int64
	Name      string
	GameType  GameType
	Map       MapName
	Mode      Mode
	Date      time.Time
	Time      string // HH:MM
	EntryFee  int64
	PrizePool int64
	CreatedBy string
	CreatedAt time.Time
}

// TournamentDraft accumulates tournament fields during the operator dialog.
type TournamentDraft struct {
	CreatedBy string    `json:"created_by"`
	Name      string    `json:"name,omitempty"`
	GameType  GameType  `json:"game_type,omitempty"`
	Map       MapName   `json:"map,omitempty"`
	Mode      Mode      `json:"mode,omitempty"`
	Date      time.Time `json:"date,omitempty"`
	Time      string    `json:"time,omitempty"`
	EntryFee  int64     `json:"entry_fee"`
	PrizePool int64     `json:"prize_pool"`
}

// DateLabel renders the tournament date as YYYY-MM-DD.
func (t *Tournament) DateLabel() string {
	if t == nil || t.Date.IsZero() {
		return ""
	}
	return t.Date.Format(DateLayout)
}

// DateLayout is the wire and display format for tournament dates.
const DateLayout = "2006-01-02"

// TimeLayout is the 24-hour HH:MM format for tournament start times.
const TimeLayout = "15:04"
