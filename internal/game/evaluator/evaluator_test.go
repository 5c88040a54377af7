package evaluator

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PokerRooms/internal/game/table"
)

func TestWinnerHighestStrength(t *testing.T) {
	players := []*table.Player{
		{ID: "A", Hole: []table.Card{{Rank: 2}}},
		{ID: "B", Hole: []table.Card{{Rank: table.Ace}}},
		{ID: "C", Hole: []table.Card{{Rank: 9}}},
	}
	byHighCard := EvaluatorFunc(func(hole, _ []table.Card) Strength {
		return Strength(hole[0].Rank)
	})

	w, err := Winner(byHighCard, players, nil)
	require.NoError(t, err)
	assert.Equal(t, "B", w.ID)
}

func TestWinnerTieGoesToEarlierSeat(t *testing.T) {
	players := []*table.Player{{ID: "A"}, {ID: "B"}}
	flat := EvaluatorFunc(func(_, _ []table.Card) Strength { return 7 })

	w, err := Winner(flat, players, nil)
	require.NoError(t, err)
	assert.Equal(t, "A", w.ID)
}

func TestWinnerNoContenders(t *testing.T) {
	_, err := Winner(NewRandom(rand.New(rand.NewSource(1))), nil, nil)
	assert.True(t, errors.Is(err, ErrNoContenders))
}

func TestRandomPicksEveryContender(t *testing.T) {
	ev := NewRandom(rand.New(rand.NewSource(7)))
	players := []*table.Player{{ID: "A"}, {ID: "B"}, {ID: "C"}}

	wins := map[string]int{}
	for i := 0; i < 300; i++ {
		w, err := Winner(ev, players, nil)
		require.NoError(t, err)
		wins[w.ID]++
	}
	for _, p := range players {
		assert.Greater(t, wins[p.ID], 50, "player %s", p.ID)
	}
}
