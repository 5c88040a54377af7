package table

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Card 一张牌 (suit + rank)，除相等外无大小语义
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

var suitSymbols = []string{"♥", "♦", "♣", "♠"}

func (s Suit) String() string {
	if s < 0 || int(s) >= len(suitSymbols) {
		return "?"
	}
	return suitSymbols[s]
}

func (s Suit) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Suit) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	for i, sym := range suitSymbols {
		if sym == str {
			*s = Suit(i)
			return nil
		}
	}
	return fmt.Errorf("unknown suit %q", str)
}

// Rank 2..14，其中 11-14 为 J Q K A
type Rank int

const (
	MinRank Rank = 2
	Jack    Rank = 11
	Queen   Rank = 12
	King    Rank = 13
	Ace     Rank = 14
)

var faceRanks = map[Rank]string{
	Jack:  "J",
	Queen: "Q",
	King:  "K",
	Ace:   "A",
}

func (r Rank) String() string {
	if s, ok := faceRanks[r]; ok {
		return s
	}
	return strconv.Itoa(int(r))
}

func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Rank) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	for rank, face := range faceRanks {
		if face == str {
			*r = rank
			return nil
		}
	}
	n, err := strconv.Atoi(str)
	if err != nil || Rank(n) < MinRank || Rank(n) >= Jack {
		return fmt.Errorf("unknown rank %q", str)
	}
	*r = Rank(n)
	return nil
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Player 座位上的玩家；座位顺序即行动顺序
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Chips  int64  `json:"chips"`
	Folded bool   `json:"folded"`
	Acted  bool   `json:"-"`

	// 本手牌已投入底池的筹码，用于异常中止时退还
	Committed int64  `json:"-"`
	Hole      []Card `json:"-"`
}

// Room 一张桌子及其当前这一手牌的运行时状态
type Room struct {
	ID            string
	Owner         string
	StartingChips int64
	Players       []*Player

	Pot           int64
	CurrentBet    int64
	Phase         Phase
	CurrentActing string
	Community     []Card
	HandsPlayed   int
}

func NewRoom(id, owner string, startingChips int64) *Room {
	return &Room{
		ID:            id,
		Owner:         owner,
		StartingChips: startingChips,
		Phase:         PhaseWaiting,
	}
}

// Player 按 id 查找座位上的玩家
func (r *Room) Player(id string) (*Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// PlayerIDs 广播用的收件人列表
func (r *Room) PlayerIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// SetPhase 只允许转移表中列出的阶段变化
func (r *Room) SetPhase(to Phase) error {
	if !r.Phase.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, r.Phase, to)
	}
	r.Phase = to
	return nil
}

// PublicPlayer 广播给所有人的玩家信息（不含底牌）
type PublicPlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Chips  int64  `json:"chips"`
	Folded bool   `json:"folded"`
}

func (r *Room) PublicPlayers() []PublicPlayer {
	out := make([]PublicPlayer, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, PublicPlayer{ID: p.ID, Name: p.Name, Chips: p.Chips, Folded: p.Folded})
	}
	return out
}

// View 房间的公开快照
type View struct {
	RoomID        string         `json:"roomId"`
	Owner         string         `json:"owner"`
	StartingChips int64          `json:"startingChips"`
	Phase         Phase          `json:"phase"`
	Pot           int64          `json:"pot"`
	CurrentBet    int64          `json:"currentBet"`
	CurrentActing string         `json:"currentActing,omitempty"`
	Community     []Card         `json:"community"`
	Players       []PublicPlayer `json:"players"`
	HandsPlayed   int            `json:"handsPlayed"`
}

func (r *Room) View() View {
	community := make([]Card, len(r.Community))
	copy(community, r.Community)
	return View{
		RoomID:        r.ID,
		Owner:         r.Owner,
		StartingChips: r.StartingChips,
		Phase:         r.Phase,
		Pot:           r.Pot,
		CurrentBet:    r.CurrentBet,
		CurrentActing: r.CurrentActing,
		Community:     community,
		Players:       r.PublicPlayers(),
		HandsPlayed:   r.HandsPlayed,
	}
}
