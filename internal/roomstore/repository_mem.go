package roomstore

import (
	"context"
	"sync"
)

type memRepo struct {
	mu    sync.Mutex
	rooms map[string]Snapshot
}

func NewMemoryRepo() Repo {
	return &memRepo{rooms: make(map[string]Snapshot)}
}

func (m *memRepo) Save(_ context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[snap.View.RoomID] = *snap
	return nil
}

func (m *memRepo) Get(_ context.Context, roomID string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	return &snap, nil
}

func (m *memRepo) Delete(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
	return nil
}
