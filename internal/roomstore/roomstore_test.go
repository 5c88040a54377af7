package roomstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PokerRooms/internal/game/table"
)

func sampleSnapshot(id string) *Snapshot {
	return &Snapshot{
		View: table.View{
			RoomID:        id,
			Owner:         "0xA",
			StartingChips: 1000,
			Phase:         table.PhaseFlop,
			Pot:           120,
			Community: []table.Card{
				{Suit: table.Hearts, Rank: table.Ace},
				{Suit: table.Spades, Rank: 10},
				{Suit: table.Clubs, Rank: 2},
			},
			Players: []table.PublicPlayer{
				{ID: "0xA", Name: "alice", Chips: 940},
				{ID: "0xB", Name: "bob", Chips: 940, Folded: true},
			},
			HandsPlayed: 3,
		},
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func exerciseRepo(t *testing.T, repo Repo) {
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	snap := sampleSnapshot("room-1")
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.Get(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, snap.View, got.View)
	assert.True(t, snap.UpdatedAt.Equal(got.UpdatedAt))

	// 覆盖保存
	snap.View.Pot = 0
	snap.View.Phase = table.PhaseShowdown
	require.NoError(t, repo.Save(ctx, snap))
	got, err = repo.Get(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.View.Pot)
	assert.Equal(t, table.PhaseShowdown, got.View.Phase)

	require.NoError(t, repo.Delete(ctx, "room-1"))
	_, err = repo.Get(ctx, "room-1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func Test_MemoryRepo(t *testing.T) {
	exerciseRepo(t, NewMemoryRepo())
}

func Test_RedisRepo(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	exerciseRepo(t, NewRedisRepo(rdb, 0))
}

func Test_RedisRepo_TTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRedisRepo(rdb, time.Minute)
	require.NoError(t, repo.Save(context.Background(), sampleSnapshot("room-ttl")))

	assert.True(t, mr.Exists(snapshotKey("room-ttl")))
	assert.Equal(t, time.Minute, mr.TTL(snapshotKey("room-ttl")))

	mr.FastForward(2 * time.Minute)
	_, err = repo.Get(context.Background(), "room-ttl")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func Test_RedisRepo_CorruptValue(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	require.NoError(t, mr.Set(snapshotKey("bad"), "{not json"))
	repo := NewRedisRepo(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)

	_, err = repo.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
