package engine

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"PokerRooms/internal/game/dealer"
	"PokerRooms/internal/game/evaluator"
	"PokerRooms/internal/game/ledger"
	"PokerRooms/internal/game/table"
	"PokerRooms/internal/game/turn"
	"PokerRooms/internal/websocket"
)

var (
	ErrPlayerNotSeated   = errors.New("player not seated")
	ErrOutOfTurn         = errors.New("out of turn")
	ErrNoActiveHand      = errors.New("no active hand")
	ErrUnknownAction     = errors.New("unknown action")
	ErrRoomFull          = errors.New("room full")
	ErrNoWinnerAvailable = errors.New("no winner available")
	ErrEngineStopped     = errors.New("engine stopped")
)

const (
	DefaultMaxPlayers   = 12
	DefaultRestartDelay = 6 * time.Second
)

type ActionKind string

const (
	Fold  ActionKind = "fold"
	Check ActionKind = "check"
	Bet   ActionKind = "bet"
)

type Action struct {
	UserID string
	Kind   ActionKind
	Amount int64
}

type Options struct {
	Clock        quartz.Clock
	Logger       *log.Logger
	Rand         *rand.Rand
	Evaluator    evaluator.Evaluator
	RestartDelay time.Duration
	MaxPlayers   int

	// OnHandResolved 在 engine 协程内调用，不要阻塞
	OnHandResolved func(HandResult)
}

// ---------------------
//       ENGINE
// ---------------------

// Engine 一个房间的状态机。所有状态只在 loop 协程内修改，
// 外部调用都通过 cmds 串行化。
type Engine struct {
	Room *table.Room

	dealer    *dealer.Dealer
	deck      *dealer.Deck
	ledger    *ledger.Ledger
	evaluator evaluator.Evaluator
	hub       websocket.HubInterface
	clock     quartz.Clock
	logger    *log.Logger

	restartDelay   time.Duration
	maxPlayers     int
	onHandResolved func(HandResult)

	restartTimer *quartz.Timer
	restartSeq   int

	cmds     chan command
	done     chan struct{}
	stopOnce sync.Once
}

type command struct {
	fn    func() error
	reply chan error
}

func NewEngine(room *table.Room, hub websocket.HubInterface, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Evaluator == nil {
		opts.Evaluator = evaluator.NewRandom(opts.Rand)
	}
	if opts.RestartDelay <= 0 {
		opts.RestartDelay = DefaultRestartDelay
	}
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = DefaultMaxPlayers
	}

	return &Engine{
		Room:           room,
		dealer:         dealer.NewDealer(opts.Rand),
		ledger:         ledger.New(room),
		evaluator:      opts.Evaluator,
		hub:            hub,
		clock:          opts.Clock,
		logger:         opts.Logger.WithPrefix("engine").With("room", room.ID),
		restartDelay:   opts.RestartDelay,
		maxPlayers:     opts.MaxPlayers,
		onHandResolved: opts.OnHandResolved,
		cmds:           make(chan command, 32), // 防止死锁
		done:           make(chan struct{}),
	}
}

// Start 启动命令处理循环
func (e *Engine) Start() {
	go e.loop()
}

// Stop 取消待执行的自动开局并结束循环
func (e *Engine) Stop() {
	_ = e.do(func() error {
		e.cancelRestart()
		return nil
	})
	e.stopOnce.Do(func() { close(e.done) })
}

func (e *Engine) loop() {
	for {
		select {
		case <-e.done:
			return
		case c := <-e.cmds:
			err := c.fn()
			if c.reply != nil {
				c.reply <- err
			}
		}
	}
}

// do 在 engine 协程内执行 fn 并等待结果
func (e *Engine) do(fn func() error) error {
	reply := make(chan error, 1)
	select {
	case e.cmds <- command{fn: fn, reply: reply}:
	case <-e.done:
		return ErrEngineStopped
	}
	select {
	case err := <-reply:
		return err
	case <-e.done:
		return ErrEngineStopped
	}
}

// post 不等待结果，供定时器回调使用
func (e *Engine) post(fn func() error) {
	select {
	case e.cmds <- command{fn: fn}:
	case <-e.done:
	}
}

// Seat 一名玩家
type Seat struct {
	UserID string
	Name   string
}

// Join 入座；已在座则只回发 roomJoined
func (e *Engine) Join(userID, name string) error {
	return e.Seat(Seat{UserID: userID, Name: name})
}

// Seat 在同一个命令里让一组玩家入座，然后最多开局一次。
// 座位不够时一个都不入座。
func (e *Engine) Seat(seats ...Seat) error {
	return e.do(func() error {
		r := e.Room
		var fresh, notify []Seat
		for _, s := range seats {
			if containsSeat(notify, s.UserID) {
				continue
			}
			notify = append(notify, s)
			if _, seated := r.Player(s.UserID); !seated {
				fresh = append(fresh, s)
			}
		}
		if len(r.Players)+len(fresh) > e.maxPlayers {
			return fmt.Errorf("%w: %d seats", ErrRoomFull, e.maxPlayers)
		}

		// 手牌进行中加入的玩家等下一手
		for _, s := range fresh {
			r.Players = append(r.Players, &table.Player{
				ID:     s.UserID,
				Name:   s.Name,
				Chips:  r.StartingChips,
				Folded: r.Phase != table.PhaseWaiting,
			})
			e.logger.Info("player seated", "player", s.UserID, "seats", len(r.Players))
		}

		for _, s := range notify {
			e.sendRoomJoined(s.UserID)
		}
		if len(fresh) == 0 {
			return nil
		}
		e.broadcastPlayers()

		if r.Phase == table.PhaseWaiting {
			e.startHand()
		}
		return nil
	})
}

func containsSeat(seats []Seat, userID string) bool {
	for _, s := range seats {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// ApplyAction 处理当前行动玩家的 fold / check / bet
func (e *Engine) ApplyAction(a Action) error {
	return e.do(func() error {
		return e.applyAction(a)
	})
}

// Snapshot 房间公开状态
func (e *Engine) Snapshot() (table.View, error) {
	var v table.View
	err := e.do(func() error {
		v = e.Room.View()
		return nil
	})
	return v, err
}

// Owner 房主，创建后不变
func (e *Engine) Owner() string {
	return e.Room.Owner
}

func (e *Engine) applyAction(a Action) error {
	r := e.Room
	if !r.Phase.InHand() {
		return ErrNoActiveHand
	}
	p, ok := r.Player(a.UserID)
	if !ok {
		return ErrPlayerNotSeated
	}
	if r.CurrentActing != p.ID {
		return fmt.Errorf("%w: waiting for %s", ErrOutOfTurn, r.CurrentActing)
	}

	switch a.Kind {
	case Fold:
		e.ledger.ApplyFold(p)
	case Check:
		e.ledger.ApplyCheck(p)
	case Bet:
		if err := e.ledger.ApplyBet(p, a.Amount); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	e.logger.Debug("action", "player", p.ID, "action", a.Kind, "amount", a.Amount, "pot", r.Pot)

	e.broadcastPlayers()
	e.advanceRound()
	return nil
}

// --------------------------
//        牌局流程
// --------------------------

func (e *Engine) eligibleCount() int {
	n := 0
	for _, p := range e.Room.Players {
		if p.Chips > 0 {
			n++
		}
	}
	return n
}

// startHand 至少两名有筹码的玩家才开局，否则回到 waiting
func (e *Engine) startHand() {
	r := e.Room
	if e.eligibleCount() < 2 {
		if r.Phase != table.PhaseWaiting {
			_ = r.SetPhase(table.PhaseWaiting)
			e.logger.Info("waiting for players", "seats", len(r.Players))
		}
		return
	}
	if err := r.SetPhase(table.PhasePreflop); err != nil {
		e.logger.Error("start hand", "err", err)
		return
	}

	e.ledger.Reset()
	for _, p := range r.Players {
		p.Folded = p.Chips == 0 // 没筹码的玩家本手旁观
		p.Acted = false
		p.Hole = nil
	}
	r.Community = nil
	r.HandsPlayed++

	e.deck = e.dealer.NewDeck()
	dealt := turn.Active(r.Players)
	if err := e.deck.DealHoleCards(dealt); err != nil {
		e.abort(err)
		return
	}
	first, err := turn.FirstActive(r.Players)
	if err != nil {
		e.abort(err)
		return
	}
	r.CurrentActing = first
	e.logger.Info("hand started", "hand", r.HandsPlayed, "players", len(dealt))

	for _, p := range dealt {
		e.hub.SendToPlayer(p.ID, message(EventHandStarted, HandStartedData{
			RoomID: r.ID,
			Hand:   r.HandsPlayed,
			Cards:  append([]table.Card(nil), p.Hole...),
		}))
	}
	e.broadcastTurn()
}

func (e *Engine) advanceRound() {
	r := e.Room
	active := turn.Active(r.Players)

	if len(active) <= 1 {
		e.showdown(active)
		return
	}

	if !turn.RoundComplete(r.Players) {
		next, err := turn.NextActing(r.Players, r.CurrentActing)
		if err != nil {
			e.abort(err)
			return
		}
		r.CurrentActing = next
		e.broadcastTurn()
		return
	}

	next, _ := r.Phase.Next()
	if next == table.PhaseShowdown {
		e.showdown(active)
		return
	}

	if err := e.revealCommunity(next.CommunityToDeal()); err != nil {
		e.abort(err)
		return
	}
	if err := r.SetPhase(next); err != nil {
		e.abort(err)
		return
	}
	for _, p := range active {
		p.Acted = false
	}
	r.CurrentBet = 0
	first, err := turn.FirstActive(r.Players)
	if err != nil {
		e.abort(err)
		return
	}
	r.CurrentActing = first

	e.broadcast(EventCommunityDealt, CommunityDealtData{
		RoomID:    r.ID,
		Phase:     r.Phase,
		Community: append([]table.Card(nil), r.Community...),
	})
	e.broadcastTurn()
}

func (e *Engine) revealCommunity(n int) error {
	switch n {
	case 3:
		flop, err := e.deck.DrawThree()
		if err != nil {
			return err
		}
		e.Room.Community = append(e.Room.Community, flop[:]...)
	case 1:
		c, err := e.deck.DrawOne()
		if err != nil {
			return err
		}
		e.Room.Community = append(e.Room.Community, c)
	}
	return nil
}

func (e *Engine) showdown(contenders []*table.Player) {
	r := e.Room
	if len(contenders) == 0 {
		e.abort(ErrNoWinnerAvailable)
		return
	}
	winner, err := evaluator.Winner(e.evaluator, contenders, r.Community)
	if err != nil {
		e.abort(fmt.Errorf("%w: %v", ErrNoWinnerAvailable, err))
		return
	}
	if err := r.SetPhase(table.PhaseShowdown); err != nil {
		e.abort(err)
		return
	}

	amount := e.ledger.AwardPot(winner)
	r.CurrentActing = ""
	e.logger.Info("hand resolved", "hand", r.HandsPlayed, "winner", winner.ID, "amount", amount)

	e.broadcast(EventHandResolved, HandResolvedData{
		RoomID:        r.ID,
		Winner:        winner.ID,
		AmountAwarded: amount,
	})
	e.broadcastPlayers()

	if e.onHandResolved != nil {
		ids := make([]string, 0, len(contenders))
		for _, p := range contenders {
			ids = append(ids, p.ID)
		}
		e.onHandResolved(HandResult{
			RoomID:     r.ID,
			Hand:       r.HandsPlayed,
			Winner:     winner.ID,
			Amount:     amount,
			Contenders: ids,
			Community:  append([]table.Card(nil), r.Community...),
			Players:    r.PublicPlayers(),
			ResolvedAt: e.clock.Now(),
		})
	}

	e.scheduleRestart()
}

// abort 状态机内部错误：退还本手投入，回到 waiting，稍后重试开局
func (e *Engine) abort(cause error) {
	r := e.Room
	e.logger.Error("hand aborted", "err", cause, "phase", r.Phase, "hand", r.HandsPlayed)

	e.ledger.Refund()
	for _, p := range r.Players {
		p.Acted = false
		p.Hole = nil
	}
	r.Community = nil
	r.CurrentActing = ""
	e.deck = nil
	if r.Phase != table.PhaseWaiting {
		_ = r.SetPhase(table.PhaseWaiting)
	}

	e.broadcast(EventHandAborted, HandAbortedData{RoomID: r.ID, Reason: "internal error"})
	e.broadcastPlayers()
	e.scheduleRestart()
}

// --------------------------
//        自动开局
// --------------------------

func (e *Engine) scheduleRestart() {
	e.cancelRestart()
	seq := e.restartSeq
	e.restartTimer = e.clock.AfterFunc(e.restartDelay, func() {
		e.post(func() error {
			if seq != e.restartSeq {
				return nil // 已被取消或重新安排
			}
			e.restartTimer = nil
			e.restartHand()
			return nil
		})
	}, "engine", "restart")
}

func (e *Engine) cancelRestart() {
	e.restartSeq++
	if e.restartTimer != nil {
		e.restartTimer.Stop()
		e.restartTimer = nil
	}
}

func (e *Engine) restartHand() {
	switch e.Room.Phase {
	case table.PhaseShowdown, table.PhaseWaiting:
		e.startHand()
	}
}

// --------------------------
//          广播
// --------------------------

func (e *Engine) broadcast(event string, data interface{}) {
	e.hub.BroadcastToPlayers(e.Room.PlayerIDs(), message(event, data))
}

func (e *Engine) broadcastPlayers() {
	e.broadcast(EventPlayersUpdated, PlayersUpdatedData{
		RoomID:  e.Room.ID,
		Players: e.Room.PublicPlayers(),
		Pot:     e.Room.Pot,
	})
}

func (e *Engine) broadcastTurn() {
	e.broadcast(EventTurnChanged, TurnChangedData{
		RoomID:        e.Room.ID,
		CurrentActing: e.Room.CurrentActing,
		Pot:           e.Room.Pot,
	})
}

func (e *Engine) sendRoomJoined(userID string) {
	r := e.Room
	e.hub.SendToPlayer(userID, message(EventRoomJoined, RoomJoinedData{
		RoomID:        r.ID,
		Owner:         r.Owner,
		StartingChips: r.StartingChips,
		Players:       r.PublicPlayers(),
	}))
}
