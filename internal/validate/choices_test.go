package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/oto-tournament-bot/internal/domain"
)

func TestGameTypeChoice(t *testing.T) {
	r := GameTypeChoice("game:bgmi")
	require.True(t, r.OK())
	assert.Equal(t, domain.GameBGMI, r.Value)
	assert.Equal(t, ReasonChoice, GameTypeChoice("bgmi").Reason)
	assert.Equal(t, ReasonChoice, GameTypeChoice("mode:solo").Reason)
}

func TestMapChoiceDependsOnGame(t *testing.T) {
	draft := domain.TournamentDraft{GameType: domain.GameFreeFire}
	r := MapChoice("map:bermuda", draft)
	require.True(t, r.OK())
	assert.Equal(t, domain.MapBermuda, r.Value)

	assert.Equal(t, ReasonChoice, MapChoice("map:erangel", draft).Reason)
	assert.Equal(t, ReasonChoice, MapChoice("map:bermuda", domain.TournamentDraft{}).Reason)
}

func TestModeChoice(t *testing.T) {
	r := ModeChoice(" MODE:Squad ")
	require.True(t, r.OK())
	assert.Equal(t, domain.ModeSquad, r.Value)
	assert.Equal(t, ReasonChoice, ModeChoice("game:bgmi").Reason)
}
