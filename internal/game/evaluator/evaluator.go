package evaluator

import (
	"errors"
	"math/rand"

	"PokerRooms/internal/game/table"
)

var ErrNoContenders = errors.New("no contenders")

// Strength 牌力，数值越大越强
type Strength int64

// Evaluator 从底牌 + 公共牌计算可比较的牌力
type Evaluator interface {
	Evaluate(hole, community []table.Card) Strength
}

// EvaluatorFunc 便于用函数实现 Evaluator
type EvaluatorFunc func(hole, community []table.Card) Strength

func (f EvaluatorFunc) Evaluate(hole, community []table.Card) Strength {
	return f(hole, community)
}

// Random 占位实现：不看牌，随机给出牌力，结果不具权威性。
// 不是并发安全的，每个房间持有自己的实例。
type Random struct {
	rnd *rand.Rand
}

func NewRandom(rnd *rand.Rand) *Random {
	return &Random{rnd: rnd}
}

func (r *Random) Evaluate(_, _ []table.Card) Strength {
	return Strength(r.rnd.Int63())
}

// Winner 取牌力最高者；平局时座位靠前者胜
func Winner(ev Evaluator, contenders []*table.Player, community []table.Card) (*table.Player, error) {
	if len(contenders) == 0 {
		return nil, ErrNoContenders
	}
	best := contenders[0]
	bestStrength := ev.Evaluate(best.Hole, community)
	for _, p := range contenders[1:] {
		if s := ev.Evaluate(p.Hole, community); s > bestStrength {
			best, bestStrength = p, s
		}
	}
	return best, nil
}
