package matchmaker

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

type memRepo struct {
	mu         sync.Mutex
	pools      map[string]map[string]struct{} // key -> set(userID)
	players    map[string]string              // userID -> key
	rooms      map[string]*Room
	playerRoom map[string]string // userID -> roomID
	rnd        *rand.Rand
}

// NewMemoryRepo 单机版；忽略 TTL
func NewMemoryRepo() Repo {
	return &memRepo{
		pools:      make(map[string]map[string]struct{}),
		players:    make(map[string]string),
		rooms:      make(map[string]*Room),
		playerRoom: make(map[string]string),
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func memKey(pool string, tableSize int) string {
	return fmt.Sprintf("mm:pool:%s:%d", pool, tableSize)
}

func (m *memRepo) Enqueue(ctx context.Context, pool string, tableSize int, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memKey(pool, tableSize)
	if _, ok := m.pools[key]; !ok {
		m.pools[key] = make(map[string]struct{})
	}
	m.pools[key][userID] = struct{}{}
	m.players[userID] = key
	return nil
}

func (m *memRepo) PopNRandom(ctx context.Context, pool string, tableSize int, n int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memKey(pool, tableSize)
	s, ok := m.pools[key]
	if !ok || len(s) < n {
		return []string{}, nil
	}

	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	m.rnd.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	chosen := ids[:n]
	for _, id := range chosen {
		delete(s, id)
		delete(m.players, id)
	}
	if len(s) == 0 {
		delete(m.pools, key)
	}
	return chosen, nil
}

func (m *memRepo) Remove(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.players[userID]
	if !ok {
		return nil
	}
	if s, ok := m.pools[key]; ok {
		delete(s, userID)
		if len(s) == 0 {
			delete(m.pools, key)
		}
	}
	delete(m.players, userID)
	return nil
}

func (m *memRepo) Count(ctx context.Context, pool string, tableSize int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.pools[memKey(pool, tableSize)])), nil
}

func (m *memRepo) SaveRoom(ctx context.Context, room *Room, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room
	for _, id := range room.Players {
		m.playerRoom[id] = room.ID
	}
	return nil
}

func (m *memRepo) GetPlayerRoom(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playerRoom[userID], nil
}

func (m *memRepo) ReleasePlayer(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.playerRoom, userID)
	return nil
}
