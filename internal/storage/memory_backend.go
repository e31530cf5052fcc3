package storage

import (
	"context"
	"sync"

	"github.com/rahulmohankumar24/finch-demo/internal/matter"
)

// MemoryBackend keeps everything in process memory. Nothing survives a
// restart.
type MemoryBackend struct {
	mu      sync.RWMutex
	matters map[string]matter.MatterData
	clients map[string]Client
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		matters: make(map[string]matter.MatterData),
		clients: make(map[string]Client),
	}
}

func (m *MemoryBackend) SaveMatter(_ context.Context, md matter.MatterData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matters[md.MatterID] = cloneMatter(md)
	return nil
}

func (m *MemoryBackend) LoadAllMatters(_ context.Context) (map[string]matter.MatterData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]matter.MatterData, len(m.matters))
	for id, md := range m.matters {
		out[id] = cloneMatter(md)
	}
	return out, nil
}

func (m *MemoryBackend) ReplaceAll(_ context.Context, matters map[string]matter.MatterData) error {
	next := make(map[string]matter.MatterData, len(matters))
	for _, md := range matters {
		next[md.MatterID] = cloneMatter(md)
	}
	m.mu.Lock()
	m.matters = next
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) SaveClient(_ context.Context, c Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.clients[c.ID]; ok {
		c.CreatedDate = old.CreatedDate
	}
	m.clients[c.ID] = c
	return nil
}

func (m *MemoryBackend) LoadClient(_ context.Context, id string) (*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *MemoryBackend) LoadAllClients(_ context.Context) ([]Client, error) {
	m.mu.RLock()
	out := make([]Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	m.mu.RUnlock()
	sortClients(out)
	return out, nil
}

func (m *MemoryBackend) Close() error { return nil }
