package engine

import (
	"time"

	"PokerRooms/internal/game/table"
	"PokerRooms/internal/websocket"
)

// 发往客户端的事件名
const (
	EventRoomJoined     = "roomJoined"
	EventPlayersUpdated = "playersUpdated"
	EventHandStarted    = "handStarted"
	EventTurnChanged    = "turnChanged"
	EventCommunityDealt = "communityDealt"
	EventHandResolved   = "handResolved"
	EventHandAborted    = "handAborted"
)

type RoomJoinedData struct {
	RoomID        string               `json:"roomId"`
	Owner         string               `json:"owner"`
	StartingChips int64                `json:"startingChips"`
	Players       []table.PublicPlayer `json:"players"`
}

type PlayersUpdatedData struct {
	RoomID  string               `json:"roomId"`
	Players []table.PublicPlayer `json:"players"`
	Pot     int64                `json:"pot"`
}

// HandStartedData 只发给持牌人自己
type HandStartedData struct {
	RoomID string       `json:"roomId"`
	Hand   int          `json:"hand"`
	Cards  []table.Card `json:"cards"`
}

type TurnChangedData struct {
	RoomID        string `json:"roomId"`
	CurrentActing string `json:"currentActing"`
	Pot           int64  `json:"pot"`
}

type CommunityDealtData struct {
	RoomID    string       `json:"roomId"`
	Phase     table.Phase  `json:"phase"`
	Community []table.Card `json:"community"`
}

type HandResolvedData struct {
	RoomID        string `json:"roomId"`
	Winner        string `json:"winner"`
	AmountAwarded int64  `json:"amountAwarded"`
}

type HandAbortedData struct {
	RoomID string `json:"roomId"`
	Reason string `json:"reason"`
}

// HandResult 一手牌结束后交给外部（快照、历史记录）
type HandResult struct {
	RoomID     string
	Hand       int
	Winner     string
	Amount     int64
	Contenders []string
	Community  []table.Card
	Players    []table.PublicPlayer
	ResolvedAt time.Time
}

func message(event string, data interface{}) websocket.OutgoingMessage {
	return websocket.OutgoingMessage{Event: event, Data: data}
}
