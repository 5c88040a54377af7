package dealer

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"PokerRooms/internal/game/table"
)

// 工具：检查是否有重复牌
func hasDuplicates(cards []table.Card) bool {
	seen := make(map[table.Card]bool)
	for _, c := range cards {
		if seen[c] {
			return true
		}
		seen[c] = true
	}
	return false
}

func newTestDealer(seed int64) *Dealer {
	return NewDealer(rand.New(rand.NewSource(seed)))
}

func TestNewDeck(t *testing.T) {
	d := newTestDealer(time.Now().UnixNano()).NewDeck()

	if d.Remaining() != DeckSize {
		t.Fatalf("expected 52 cards, got %d", d.Remaining())
	}
	if hasDuplicates(d.cards) {
		t.Fatalf("deck should not contain duplicates")
	}

	suits := make(map[table.Suit]bool)
	ranks := make(map[table.Rank]bool)
	for _, c := range d.cards {
		suits[c.Suit] = true
		ranks[c.Rank] = true
	}
	if len(suits) != 4 {
		t.Fatalf("expected 4 suits, got %d", len(suits))
	}
	if len(ranks) != 13 {
		t.Fatalf("expected 13 ranks, got %d", len(ranks))
	}
}

func TestShuffleDependsOnSource(t *testing.T) {
	d1 := newTestDealer(42).NewDeck()
	d2 := newTestDealer(42).NewDeck()

	for i := range d1.cards {
		if d1.cards[i] != d2.cards[i] {
			t.Fatalf("expected identical decks for same seed")
		}
	}

	d3 := newTestDealer(99).NewDeck()
	diff := false
	for i := range d1.cards {
		if d1.cards[i] != d3.cards[i] {
			diff = true
			break
		}
	}
	if !diff {
		t.Fatalf("expected deck with different seed to differ")
	}
}

func TestDealHoleCards(t *testing.T) {
	d := newTestDealer(1).NewDeck()
	players := []*table.Player{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	if err := d.DealHoleCards(players); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := []table.Card{}
	for _, p := range players {
		if len(p.Hole) != 2 {
			t.Fatalf("player %s should have 2 cards, got %d", p.ID, len(p.Hole))
		}
		all = append(all, p.Hole...)
	}
	if hasDuplicates(all) {
		t.Fatalf("hole cards contain duplicates")
	}
	if d.Remaining() != DeckSize-6 {
		t.Fatalf("expected remaining deck 46, got %d", d.Remaining())
	}
}

func TestDrawCommunity(t *testing.T) {
	d := newTestDealer(2).NewDeck()

	flop, err := d.DrawThree()
	if err != nil {
		t.Fatalf("flop: %v", err)
	}
	turn, err := d.DrawOne()
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	river, err := d.DrawOne()
	if err != nil {
		t.Fatalf("river: %v", err)
	}

	all := append(flop[:], turn, river)
	if hasDuplicates(all) {
		t.Fatalf("community cards contain duplicates")
	}
	if d.Remaining() != DeckSize-5 {
		t.Fatalf("expected 47 remaining, got %d", d.Remaining())
	}
}

func TestDrawExhausted(t *testing.T) {
	d := newTestDealer(3).NewDeck()
	for i := 0; i < DeckSize-2; i++ {
		if _, err := d.DrawOne(); err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
	}

	if _, err := d.DrawThree(); !errors.Is(err, ErrDeckExhausted) {
		t.Fatalf("expected ErrDeckExhausted drawing 3 from 2, got %v", err)
	}
	if d.Remaining() != 2 {
		t.Fatalf("failed DrawThree must not consume cards")
	}

	_, _ = d.DrawOne()
	_, _ = d.DrawOne()
	if _, err := d.DrawOne(); !errors.Is(err, ErrDeckExhausted) {
		t.Fatalf("expected ErrDeckExhausted on empty deck, got %v", err)
	}
}
