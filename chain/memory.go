package chain

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the mock backend used in development. It keeps blobs in a
// map and sleeps for a fixed duration per call to imitate a networked store
type MemoryStore struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	latency time.Duration
}

func NewMemory(latency time.Duration) *MemoryStore {
	return &MemoryStore{
		blobs:   make(map[string][]byte),
		latency: latency,
	}
}

func (m *MemoryStore) Put(ctx context.Context, data []byte) (string, error) {
	if err := m.sleep(ctx); err != nil {
		return "", err
	}

	cid := ComputeCid(data)

	cp := make([]byte, len(data))
	copy(cp, data)

	m.mu.Lock()
	m.blobs[cid] = cp
	m.mu.Unlock()

	return cid, nil
}

func (m *MemoryStore) Get(ctx context.Context, cid string) ([]byte, error) {
	if err := m.sleep(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	data, ok := m.blobs[cid]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	return cp, nil
}

func (m *MemoryStore) Status(ctx context.Context) (*Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var bytes int64
	for _, b := range m.blobs {
		bytes += int64(len(b))
	}

	return &Status{
		Backend:   "memory",
		Connected: true,
		Blobs:     int64(len(m.blobs)),
		Bytes:     bytes,
	}, nil
}

func (m *MemoryStore) sleep(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(m.latency)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
