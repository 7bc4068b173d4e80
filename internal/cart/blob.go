package cart

import (
	"context"
	"sync"
)

// BlobStore is the raw key-value persistence behind a cart. Load returns nil without
// error when nothing is stored under key.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryBlob keeps blobs in process memory.
type MemoryBlob struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlob builds an empty in-memory blob store.
func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{blobs: map[string][]byte{}}
}

func (m *MemoryBlob) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), blob...), nil
}

func (m *MemoryBlob) Save(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func (m *MemoryBlob) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *MemoryBlob) Close() error {
	return nil
}
