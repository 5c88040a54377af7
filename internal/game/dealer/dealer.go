package dealer

import (
	"errors"
	"math/rand"

	"PokerRooms/internal/game/table"
)

const DeckSize = 52

var ErrDeckExhausted = errors.New("deck exhausted")

// Deck 一副洗好的牌，只从牌顶取牌
type Deck struct {
	cards []table.Card
}

// Dealer 只负责洗牌与发牌（无规则判断）
type Dealer struct {
	rnd *rand.Rand
}

func NewDealer(rnd *rand.Rand) *Dealer {
	return &Dealer{rnd: rnd}
}

// NewDeck 生成 52 张牌并用 Fisher–Yates 洗牌
func (d *Dealer) NewDeck() *Deck {
	cards := make([]table.Card, 0, DeckSize)
	for _, s := range table.Suits {
		for r := table.MinRank; r <= table.Ace; r++ {
			cards = append(cards, table.Card{Suit: s, Rank: r})
		}
	}
	for i := len(cards) - 1; i > 0; i-- {
		j := d.rnd.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
	return &Deck{cards: cards}
}

func (d *Deck) Remaining() int {
	return len(d.cards)
}

func (d *Deck) DrawOne() (table.Card, error) {
	if len(d.cards) == 0 {
		return table.Card{}, ErrDeckExhausted
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, nil
}

// DrawThree 翻牌圈一次取三张
func (d *Deck) DrawThree() ([3]table.Card, error) {
	var out [3]table.Card
	if len(d.cards) < 3 {
		return out, ErrDeckExhausted
	}
	copy(out[:], d.cards[:3])
	d.cards = d.cards[3:]
	return out, nil
}

// DealHoleCards 给每个玩家发 2 张底牌，先每人一张再每人第二张
func (d *Deck) DealHoleCards(players []*table.Player) error {
	for round := 0; round < 2; round++ {
		for _, p := range players {
			c, err := d.DrawOne()
			if err != nil {
				return err
			}
			p.Hole = append(p.Hole, c)
		}
	}
	return nil
}
