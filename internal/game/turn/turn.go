// Package turn computes turn order and betting round completion over the
// seated players of a room. Seating order is the turn order.
package turn

import (
	"errors"

	"PokerRooms/internal/game/table"
)

var ErrNoEligiblePlayers = errors.New("no eligible players")

// NextActing returns the first non-folded player after currentID, wrapping
// around. currentID itself is considered last, so a lone active player is
// returned to themself. An unknown currentID starts the scan at seat 0.
func NextActing(players []*table.Player, currentID string) (string, error) {
	n := len(players)
	start := -1
	for i, p := range players {
		if p.ID == currentID {
			start = i
			break
		}
	}
	for step := 1; step <= n; step++ {
		p := players[(start+step+n)%n]
		if !p.Folded {
			return p.ID, nil
		}
	}
	return "", ErrNoEligiblePlayers
}

// FirstActive returns the first non-folded player in seating order.
func FirstActive(players []*table.Player) (string, error) {
	for _, p := range players {
		if !p.Folded {
			return p.ID, nil
		}
	}
	return "", ErrNoEligiblePlayers
}

// Active returns the non-folded players in seating order.
func Active(players []*table.Player) []*table.Player {
	out := make([]*table.Player, 0, len(players))
	for _, p := range players {
		if !p.Folded {
			out = append(out, p)
		}
	}
	return out
}

// RoundComplete reports whether at most one player remains or every
// non-folded player has acted this round.
func RoundComplete(players []*table.Player) bool {
	active := Active(players)
	if len(active) <= 1 {
		return true
	}
	for _, p := range active {
		if !p.Acted {
			return false
		}
	}
	return true
}
