package ledger

import (
	"errors"
	"fmt"

	"PokerRooms/internal/game/table"
)

var ErrIllegalBetAmount = errors.New("illegal bet amount")

// Ledger 管理底池与玩家筹码的流动。除 AwardPot/Refund 外，
// 所有玩家筹码之和加上底池保持不变。
type Ledger struct {
	room *table.Room
}

func New(room *table.Room) *Ledger {
	return &Ledger{room: room}
}

// Reset 新一手牌开始：清空底池与当前注额
func (l *Ledger) Reset() {
	l.room.Pot = 0
	l.room.CurrentBet = 0
	for _, p := range l.room.Players {
		p.Committed = 0
	}
}

// ApplyBet 合法条件 0 < amount <= chips；非法时不改变任何状态。
// 下注不算本轮已行动，只有 check 才算
func (l *Ledger) ApplyBet(p *table.Player, amount int64) error {
	if amount <= 0 || amount > p.Chips {
		return fmt.Errorf("%w: %d (stack %d)", ErrIllegalBetAmount, amount, p.Chips)
	}
	p.Chips -= amount
	p.Committed += amount
	l.room.Pot += amount
	if amount > l.room.CurrentBet {
		l.room.CurrentBet = amount
	}
	return nil
}

func (l *Ledger) ApplyFold(p *table.Player) {
	p.Folded = true
}

// ApplyCheck 不校验是否需要跟注
func (l *Ledger) ApplyCheck(p *table.Player) {
	p.Acted = true
}

// AwardPot 底池全部给赢家，返回奖励数额
func (l *Ledger) AwardPot(winner *table.Player) int64 {
	amount := l.room.Pot
	winner.Chips += amount
	l.room.Pot = 0
	return amount
}

// Refund 手牌中止时把每个人投入的筹码从底池退回
func (l *Ledger) Refund() {
	for _, p := range l.room.Players {
		p.Chips += p.Committed
		l.room.Pot -= p.Committed
		p.Committed = 0
	}
	l.room.CurrentBet = 0
}

// Total 所有玩家筹码之和加底池
func (l *Ledger) Total() int64 {
	total := l.room.Pot
	for _, p := range l.room.Players {
		total += p.Chips
	}
	return total
}
