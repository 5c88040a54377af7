package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"PokerRooms/internal/game/engine"
	"PokerRooms/internal/websocket"
)

// 客户端发来的事件
const (
	EventJoinRoom = "joinRoom"
	EventAction   = "action"
	EventChat     = "chat"

	EventError = "error"
)

var ErrUnknownEvent = errors.New("unknown event")

// ErrorData 只发给出错的那个连接
type ErrorData struct {
	RoomID string `json:"roomId,omitempty"`
	Event  string `json:"event"`
	Error  string `json:"error"`
}

type ChatRequest struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

// Consume 串行处理 Hub 转发过来的玩家消息
func (m *GameManager) Consume(ctx context.Context, in <-chan websocket.IncomingMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			m.HandlePlayerMessage(ctx, msg)
		}
	}
}

// HandlePlayerMessage 统一入口（来自 Hub.Incoming）
func (m *GameManager) HandlePlayerMessage(ctx context.Context, msg websocket.IncomingMessage) {
	roomID, err := m.dispatch(ctx, msg)
	if err == nil {
		return
	}
	m.logger.Debug("rejected", "from", msg.From, "event", msg.Event, "room", roomID, "err", err)
	m.hub.SendToPlayer(msg.From, websocket.OutgoingMessage{
		Event: EventError,
		Data:  ErrorData{RoomID: roomID, Event: msg.Event, Error: err.Error()},
	})
}

func (m *GameManager) dispatch(ctx context.Context, msg websocket.IncomingMessage) (string, error) {
	switch msg.Event {
	case EventJoinRoom:
		var req JoinRequest
		if err := decode(msg.Data, &req); err != nil {
			return "", err
		}
		if err := checkIdentity(&req.UserID, msg.From); err != nil {
			return req.RoomID, err
		}
		roomID, err := m.Join(ctx, req)
		if err != nil {
			return req.RoomID, err
		}
		return roomID, nil

	case EventAction:
		var req ActionRequest
		if err := decode(msg.Data, &req); err != nil {
			return "", err
		}
		if err := checkIdentity(&req.UserID, msg.From); err != nil {
			return req.RoomID, err
		}
		return req.RoomID, m.HandleAction(ctx, req)

	case EventChat:
		var req ChatRequest
		if err := decode(msg.Data, &req); err != nil {
			return "", err
		}
		return req.RoomID, m.chat(msg.From, req)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEvent, msg.Event)
}

// chat 桌内聊天广播，只有在座的玩家可以发
func (m *GameManager) chat(from string, req ChatRequest) error {
	eng, ok := m.engine(req.RoomID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, req.RoomID)
	}
	v, err := eng.Snapshot()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, req.RoomID)
	}
	ids := make([]string, 0, len(v.Players))
	seated := false
	for _, p := range v.Players {
		ids = append(ids, p.ID)
		seated = seated || p.ID == from
	}
	if !seated {
		return engine.ErrPlayerNotSeated
	}
	m.hub.BroadcastToPlayers(ids, websocket.OutgoingMessage{
		Event: EventChat,
		Data: map[string]any{
			"roomId": req.RoomID,
			"from":   from,
			"text":   req.Text,
		},
	})
	return nil
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errors.New("missing payload")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("bad payload: %w", err)
	}
	return nil
}

// checkIdentity 消息里的 userId 可以省略，省略时使用连接身份
func checkIdentity(userID *string, from string) error {
	if *userID == "" {
		*userID = from
		return nil
	}
	if *userID != from {
		return ErrIdentityMismatch
	}
	return nil
}
