package matchmaker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	rdb *redis.Client
}

func NewRedisRepo(rdb *redis.Client) Repo {
	return &redisRepo{rdb: rdb}
}

// key 约定：
//
//	set: mm:pool:{pool}:{tableSize}   -> Set(userID,...)
//	kv : mm:player:{userID}           -> "pool:tableSize"（取消时定位池）
//	kv : mm:room:{roomID}             -> Room JSON
//	kv : mm:playerRoom:{userID}       -> roomID
func poolKey(pool string, tableSize int) string {
	return fmt.Sprintf("mm:pool:%s:%d", pool, tableSize)
}

func playerKey(userID string) string {
	return fmt.Sprintf("mm:player:%s", userID)
}

func roomKey(roomID string) string {
	return fmt.Sprintf("mm:room:%s", roomID)
}

func playerRoomKey(userID string) string {
	return fmt.Sprintf("mm:playerRoom:%s", userID)
}

// KEYS[1] = playerKey, KEYS[2] = poolKey, ARGV[1] = userID
var removeScript = redis.NewScript(`
redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
if redis.call("SCARD", KEYS[2]) == 0 then
	redis.call("DEL", KEYS[2])
end
return 1
`)

func (r *redisRepo) Enqueue(ctx context.Context, pool string, tableSize int, userID string, ttl time.Duration) error {
	p := r.rdb.Pipeline()
	p.SAdd(ctx, poolKey(pool, tableSize), userID)
	p.Set(ctx, playerKey(userID), fmt.Sprintf("%s:%d", pool, tableSize), ttl)
	_, err := p.Exec(ctx)
	return err
}

// PopNRandom SPOP COUNT 原子地随机弹出 n 个
func (r *redisRepo) PopNRandom(ctx context.Context, pool string, tableSize int, n int) ([]string, error) {
	res, err := r.rdb.SPopN(ctx, poolKey(pool, tableSize), int64(n)).Result()
	if err != nil {
		return nil, err
	}
	if len(res) > 0 {
		p := r.rdb.Pipeline()
		for _, id := range res {
			p.Del(ctx, playerKey(id))
		}
		if _, err := p.Exec(ctx); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (r *redisRepo) Remove(ctx context.Context, userID string) error {
	kv, err := r.rdb.Get(ctx, playerKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	// "pool:tableSize"，pool 自身可能带冒号
	i := strings.LastIndex(kv, ":")
	size, convErr := strconv.Atoi(kv[i+1:])
	if i < 0 || convErr != nil {
		return r.rdb.Del(ctx, playerKey(userID)).Err()
	}
	keys := []string{playerKey(userID), poolKey(kv[:i], size)}
	return removeScript.Run(ctx, r.rdb, keys, userID).Err()
}

func (r *redisRepo) Count(ctx context.Context, pool string, tableSize int) (int64, error) {
	return r.rdb.SCard(ctx, poolKey(pool, tableSize)).Result()
}

func (r *redisRepo) SaveRoom(ctx context.Context, room *Room, ttl time.Duration) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	p := r.rdb.Pipeline()
	p.Set(ctx, roomKey(room.ID), data, ttl)
	for _, id := range room.Players {
		p.Set(ctx, playerRoomKey(id), room.ID, ttl)
	}
	_, err = p.Exec(ctx)
	return err
}

func (r *redisRepo) GetPlayerRoom(ctx context.Context, userID string) (string, error) {
	val, err := r.rdb.Get(ctx, playerRoomKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (r *redisRepo) ReleasePlayer(ctx context.Context, userID string) error {
	return r.rdb.Del(ctx, playerRoomKey(userID)).Err()
}
