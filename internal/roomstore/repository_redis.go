package roomstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisRepo ttl 为 0 表示不过期
func NewRedisRepo(rdb *redis.Client, ttl time.Duration) Repo {
	return &redisRepo{rdb: rdb, ttl: ttl}
}

// key 约定：room:snapshot:{roomId} -> JSON(Snapshot)
func snapshotKey(roomID string) string {
	return fmt.Sprintf("room:snapshot:%s", roomID)
}

func (r *redisRepo) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, snapshotKey(snap.View.RoomID), data, r.ttl).Err()
}

func (r *redisRepo) Get(ctx context.Context, roomID string) (*Snapshot, error) {
	data, err := r.rdb.Get(ctx, snapshotKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", roomID, err)
	}
	return &snap, nil
}

func (r *redisRepo) Delete(ctx context.Context, roomID string) error {
	return r.rdb.Del(ctx, snapshotKey(roomID)).Err()
}
