package table

import (
	"errors"
	"fmt"
)

var ErrIllegalTransition = errors.New("illegal phase transition")

type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
)

var phaseNames = map[Phase]string{
	PhaseWaiting:  "waiting",
	PhasePreflop:  "preflop",
	PhaseFlop:     "flop",
	PhaseTurn:     "turn",
	PhaseRiver:    "river",
	PhaseShowdown: "showdown",
}

// transitions 阶段转移表。任何阶段都可以回到 waiting（中止当前手牌）
var transitions = map[Phase][]Phase{
	PhaseWaiting:  {PhasePreflop},
	PhasePreflop:  {PhaseFlop, PhaseShowdown, PhaseWaiting},
	PhaseFlop:     {PhaseTurn, PhaseShowdown, PhaseWaiting},
	PhaseTurn:     {PhaseRiver, PhaseShowdown, PhaseWaiting},
	PhaseRiver:    {PhaseShowdown, PhaseWaiting},
	PhaseShowdown: {PhasePreflop, PhaseWaiting},
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for k, v := range phaseNames {
		if v == string(b) {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(b))
}

// InHand 是否处于一手牌的下注阶段
func (p Phase) InHand() bool {
	return p >= PhasePreflop && p <= PhaseRiver
}

// Next 正常下注流程中的下一阶段；river 之后是 showdown
func (p Phase) Next() (Phase, bool) {
	switch p {
	case PhasePreflop:
		return PhaseFlop, true
	case PhaseFlop:
		return PhaseTurn, true
	case PhaseTurn:
		return PhaseRiver, true
	case PhaseRiver:
		return PhaseShowdown, true
	}
	return p, false
}

// CommunityToDeal 进入该阶段时需要翻开的公共牌数量
func (p Phase) CommunityToDeal() int {
	switch p {
	case PhaseFlop:
		return 3
	case PhaseTurn, PhaseRiver:
		return 1
	}
	return 0
}

func (p Phase) CanTransition(to Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == to {
			return true
		}
	}
	return false
}
