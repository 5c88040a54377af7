package matchmaker

import "time"

const DefaultPool = "quick"

// JoinRequest 前端提交的匹配请求；UserID 由连接身份填充
type JoinRequest struct {
	UserID    string `json:"userId"`
	Pool      string `json:"pool"`                                 // 例如 "cash-1-2"，默认 quick
	TableSize int    `json:"tableSize" binding:"required,min=2"` // 2/6/9 等
}

// JoinResponse 返回是否已成桌；若已成桌则给出房间信息
type JoinResponse struct {
	Queued    bool     `json:"queued"`
	RoomID    string   `json:"roomId,omitempty"`
	Players   []string `json:"players,omitempty"`
	Pool      string   `json:"pool"`
	TableSize int      `json:"tableSize"`
}

// Room 组桌结果
type Room struct {
	ID        string    `json:"id"`
	Pool      string    `json:"pool"`
	TableSize int       `json:"tableSize"`
	Players   []string  `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}
