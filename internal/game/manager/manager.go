package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"PokerRooms/internal/game/engine"
	"PokerRooms/internal/game/table"
	"PokerRooms/internal/roomstore"
	"PokerRooms/internal/websocket"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrIdentityMismatch = errors.New("user id does not match connection")
	ErrNotOwner         = errors.New("only the room owner may do this")
	ErrMissingUser      = errors.New("missing user id")
	ErrClosed           = errors.New("manager closed")
)

const DefaultStartingChips = 1000

// Recorder 接收每手牌的结果（例如写入 Postgres）
type Recorder interface {
	Record(ctx context.Context, r engine.HandResult) error
}

type Options struct {
	StartingChips int64
	MaxPlayers    int
	RestartDelay  time.Duration
	Clock         quartz.Clock
	Logger        *log.Logger
	Store         roomstore.Repo
	Recorders     []Recorder
	NewID         func() string
}

// GameManager 管理所有房间；每个房间由自己的 engine 协程串行处理
type GameManager struct {
	mu      sync.RWMutex
	engines map[string]*engine.Engine // roomID → engine
	hub     websocket.HubInterface
	opts    Options
	logger  *log.Logger
	closed  bool // 受 mu 保护；关闭后不再接收后台写入
	wg      sync.WaitGroup
}

func NewGameManager(hub websocket.HubInterface, opts Options) *GameManager {
	if opts.StartingChips <= 0 {
		opts.StartingChips = DefaultStartingChips
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Store == nil {
		opts.Store = roomstore.NewMemoryRepo()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &GameManager{
		engines: make(map[string]*engine.Engine),
		hub:     hub,
		opts:    opts,
		logger:  opts.Logger.WithPrefix("manager"),
	}
}

type JoinRequest struct {
	RoomID        string `json:"roomId"`
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	StartingChips int64  `json:"startingChips"`
}

type ActionRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Action string `json:"action"`
	Amount int64  `json:"amount"`
}

func (m *GameManager) engine(roomID string) (*engine.Engine, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	eng, ok := m.engines[roomID]
	return eng, ok
}

// getOrCreate 第一次加入时创建房间，加入者为房主
func (m *GameManager) getOrCreate(req JoinRequest) (*engine.Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if eng, ok := m.engines[req.RoomID]; ok {
		return eng, nil
	}

	chips := req.StartingChips
	if chips <= 0 {
		chips = m.opts.StartingChips
	}
	roomID := req.RoomID
	room := table.NewRoom(roomID, req.UserID, chips)
	eng := engine.NewEngine(room, m.hub, engine.Options{
		Clock:        m.opts.Clock,
		Logger:       m.opts.Logger,
		RestartDelay: m.opts.RestartDelay,
		MaxPlayers:   m.opts.MaxPlayers,
		OnHandResolved: m.resolvedHook(roomID),
	})
	m.engines[roomID] = eng
	eng.Start()
	m.logger.Info("room created", "room", roomID, "owner", req.UserID, "startingChips", chips)
	return eng, nil
}

// resolvedHook 在 engine 协程里调用：IO 放到别的协程
func (m *GameManager) resolvedHook(roomID string) func(engine.HandResult) {
	return func(r engine.HandResult) {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return
		}
		m.wg.Add(1)
		m.mu.Unlock()

		go func() {
			defer m.wg.Done()
			m.persist(roomID, &r)
		}()
	}
}

// Join 创建或加入房间，返回房间 ID
func (m *GameManager) Join(ctx context.Context, req JoinRequest) (string, error) {
	if req.UserID == "" {
		return "", ErrMissingUser
	}
	if req.RoomID == "" {
		req.RoomID = m.opts.NewID()
	}
	if req.Username == "" {
		req.Username = req.UserID
	}

	if err := m.seat(req, engine.Seat{UserID: req.UserID, Name: req.Username}); err != nil {
		return "", err
	}
	return req.RoomID, nil
}

// SeatPlayers 用于匹配成功后把一组玩家一次性放进房间，第一个玩家为房主
func (m *GameManager) SeatPlayers(ctx context.Context, roomID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return ErrMissingUser
	}
	seats := make([]engine.Seat, 0, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			return ErrMissingUser
		}
		seats = append(seats, engine.Seat{UserID: id, Name: id})
	}
	if err := m.seat(JoinRequest{RoomID: roomID, UserID: userIDs[0]}, seats...); err != nil {
		return fmt.Errorf("seat players in %s: %w", roomID, err)
	}
	return nil
}

// seat req 决定房间和房主（新建时），seats 在同一个 engine 命令里入座
func (m *GameManager) seat(req JoinRequest, seats ...engine.Seat) error {
	eng, err := m.getOrCreate(req)
	if err != nil {
		return err
	}
	if err := eng.Seat(seats...); err != nil {
		if errors.Is(err, engine.ErrEngineStopped) {
			return fmt.Errorf("%w: %s", ErrRoomNotFound, req.RoomID)
		}
		return err
	}
	m.persist(req.RoomID, nil)
	return nil
}

// HandleAction 把动作交给对应房间的 engine
func (m *GameManager) HandleAction(ctx context.Context, req ActionRequest) error {
	eng, ok := m.engine(req.RoomID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, req.RoomID)
	}
	err := eng.ApplyAction(engine.Action{
		UserID: req.UserID,
		Kind:   engine.ActionKind(req.Action),
		Amount: req.Amount,
	})
	if errors.Is(err, engine.ErrEngineStopped) {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, req.RoomID)
	}
	return err
}

// Room 运行中的房间取实时状态，否则取最近一次保存的快照
func (m *GameManager) Room(ctx context.Context, roomID string) (table.View, error) {
	if eng, ok := m.engine(roomID); ok {
		if v, err := eng.Snapshot(); err == nil {
			return v, nil
		}
	}
	snap, err := m.opts.Store.Get(ctx, roomID)
	if errors.Is(err, roomstore.ErrNotFound) {
		return table.View{}, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	if err != nil {
		return table.View{}, err
	}
	return snap.View, nil
}

// RemoveRoom 销毁房间：取消待执行的自动开局并删除快照
func (m *GameManager) RemoveRoom(ctx context.Context, roomID, requester string) error {
	m.mu.Lock()
	eng, ok := m.engines[roomID]
	if ok && requester != "" && eng.Owner() != requester {
		m.mu.Unlock()
		return ErrNotOwner
	}
	delete(m.engines, roomID)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	eng.Stop()
	m.logger.Info("room removed", "room", roomID)
	return m.opts.Store.Delete(ctx, roomID)
}

// Rooms 当前运行中的房间数
func (m *GameManager) Rooms() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.engines)
}

// Close 停止所有房间并等待后台写入完成
func (m *GameManager) Close() {
	m.mu.Lock()
	m.closed = true
	engines := m.engines
	m.engines = make(map[string]*engine.Engine)
	m.mu.Unlock()

	for _, eng := range engines {
		eng.Stop()
	}
	m.wg.Wait()
}

// persist 保存房间快照；result 非空时同时交给 Recorders
func (m *GameManager) persist(roomID string, result *engine.HandResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if eng, ok := m.engine(roomID); ok {
		if v, err := eng.Snapshot(); err == nil {
			snap := &roomstore.Snapshot{View: v, UpdatedAt: m.opts.Clock.Now()}
			if err := m.opts.Store.Save(ctx, snap); err != nil {
				m.logger.Warn("save snapshot", "room", roomID, "err", err)
			}
		}
	}

	if result == nil {
		return
	}
	for _, rec := range m.opts.Recorders {
		if err := rec.Record(ctx, *result); err != nil {
			m.logger.Warn("record hand", "room", roomID, "hand", result.Hand, "err", err)
		}
	}
}
