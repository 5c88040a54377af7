package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"PokerRooms/internal/websocket"
)

var (
	ErrInvalidTableSize = errors.New("invalid tableSize")
	ErrAlreadyInRoom    = errors.New("player already in room")
)

const (
	EventMatched = "matched"

	DefaultPlayerTTL = 5 * time.Minute
)

type HubBroadcaster interface {
	BroadcastToPlayers(userIDs []string, msg websocket.OutgoingMessage)
}

// Seater 把成桌的玩家放进一个新房间
type Seater interface {
	SeatPlayers(ctx context.Context, roomID string, userIDs []string) error
}

type Options struct {
	PlayerTTL    time.Duration // 防止遗留队列
	MaxTableSize int
	Clock        quartz.Clock
	Logger       *log.Logger
	NewID        func() string
}

type Service struct {
	repo   Repo
	hub    HubBroadcaster
	seater Seater
	opts   Options
	logger *log.Logger
}

func NewService(repo Repo, hub HubBroadcaster, seater Seater, opts Options) *Service {
	if opts.PlayerTTL <= 0 {
		opts.PlayerTTL = DefaultPlayerTTL
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Service{
		repo:   repo,
		hub:    hub,
		seater: seater,
		opts:   opts,
		logger: opts.Logger.WithPrefix("matchmaker"),
	}
}

// Join 入队并尝试立即成桌（随机）。若可成桌，返回房间；否则返回排队中。
func (s *Service) Join(ctx context.Context, req JoinRequest) (*Room, bool, error) {
	if req.TableSize <= 1 || (s.opts.MaxTableSize > 0 && req.TableSize > s.opts.MaxTableSize) {
		return nil, false, fmt.Errorf("%w: %d", ErrInvalidTableSize, req.TableSize)
	}
	if req.Pool == "" {
		req.Pool = DefaultPool
	}

	// 防止重复匹配
	roomID, err := s.repo.GetPlayerRoom(ctx, req.UserID)
	if err != nil {
		return nil, false, err
	}
	if roomID != "" {
		return nil, false, fmt.Errorf("%w: %s in %s", ErrAlreadyInRoom, req.UserID, roomID)
	}

	if err := s.repo.Enqueue(ctx, req.Pool, req.TableSize, req.UserID, s.opts.PlayerTTL); err != nil {
		return nil, false, err
	}
	cnt, err := s.repo.Count(ctx, req.Pool, req.TableSize)
	if err != nil {
		return nil, false, err
	}
	if int(cnt) < req.TableSize {
		s.logger.Debug("queued", "player", req.UserID, "pool", req.Pool, "waiting", cnt)
		return nil, true, nil
	}

	ids, err := s.repo.PopNRandom(ctx, req.Pool, req.TableSize, req.TableSize)
	if err != nil {
		return nil, false, err
	}
	if len(ids) < req.TableSize {
		// 并发竞争导致人数不足：放回去继续排队
		for _, id := range ids {
			if err := s.repo.Enqueue(ctx, req.Pool, req.TableSize, id, s.opts.PlayerTTL); err != nil {
				return nil, false, err
			}
		}
		return nil, true, nil
	}

	room := &Room{
		ID:        s.opts.NewID(),
		Pool:      req.Pool,
		TableSize: req.TableSize,
		Players:   ids,
		CreatedAt: s.opts.Clock.Now(),
	}
	if err := s.repo.SaveRoom(ctx, room, s.opts.PlayerTTL); err != nil {
		s.logger.Warn("save room", "room", room.ID, "err", err)
	}
	if err := s.seater.SeatPlayers(ctx, room.ID, room.Players); err != nil {
		for _, id := range ids {
			_ = s.repo.ReleasePlayer(ctx, id)
		}
		return nil, false, fmt.Errorf("seat matched room: %w", err)
	}
	s.logger.Info("room ready", "room", room.ID, "pool", room.Pool, "players", room.Players)

	s.hub.BroadcastToPlayers(ids, websocket.OutgoingMessage{
		Event: EventMatched,
		Data: map[string]any{
			"roomId":    room.ID,
			"pool":      room.Pool,
			"tableSize": room.TableSize,
			"players":   room.Players,
		},
	})
	return room, false, nil
}

// Cancel 退出排队，并清除已匹配房间的记录，之后可以重新匹配
func (s *Service) Cancel(ctx context.Context, userID string) error {
	if err := s.repo.Remove(ctx, userID); err != nil {
		return err
	}
	return s.repo.ReleasePlayer(ctx, userID)
}
