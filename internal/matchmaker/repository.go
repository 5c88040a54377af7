package matchmaker

import (
	"context"
	"time"
)

// Repo 定义对匹配池的抽象操作
type Repo interface {
	// Enqueue 将玩家加入指定池（pool+tableSize）
	Enqueue(ctx context.Context, pool string, tableSize int, userID string, ttl time.Duration) error
	// PopNRandom 当池内达到 N 人时，随机弹出 N 人
	PopNRandom(ctx context.Context, pool string, tableSize int, n int) ([]string, error)
	// Remove 将玩家从当前池移除（用于取消）
	Remove(ctx context.Context, userID string) error
	// Count 返回池内人数
	Count(ctx context.Context, pool string, tableSize int) (int64, error)

	// SaveRoom 记录成桌结果以及 玩家 → 房间 映射
	SaveRoom(ctx context.Context, room *Room, ttl time.Duration) error
	// GetPlayerRoom 玩家当前所在的匹配房间，没有时返回 ""
	GetPlayerRoom(ctx context.Context, userID string) (string, error)
	// ReleasePlayer 删除 玩家 → 房间 映射
	ReleasePlayer(ctx context.Context, userID string) error
}
