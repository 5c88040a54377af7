package roomstore

import (
	"context"
	"errors"
	"time"

	"PokerRooms/internal/game/table"
)

var ErrNotFound = errors.New("room snapshot not found")

// Snapshot 房间的公开状态，手牌结束或有人入座时保存
type Snapshot struct {
	View      table.View `json:"view"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Repo 定义房间快照的存取
type Repo interface {
	// Save 覆盖保存快照
	Save(ctx context.Context, snap *Snapshot) error
	// Get 不存在时返回 ErrNotFound
	Get(ctx context.Context, roomID string) (*Snapshot, error)
	// Delete 房间销毁时删除
	Delete(ctx context.Context, roomID string) error
}
