package devicehistory

import (
	"context"
	"sync"

	"github.com/SentinelMesh/AccessGate/pkg/domain/device"
)

// MemoryStore keeps a short rolling observation history per device.
type MemoryStore struct {
	mu      sync.RWMutex
	bound   int
	history map[string][]device.Observation
}

func NewMemoryStore(bound int) *MemoryStore {
	return &MemoryStore{
		bound:   bound,
		history: make(map[string][]device.Observation),
	}
}

func (s *MemoryStore) Load(_ context.Context, deviceID string) ([]device.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.history[deviceID]
	snapshot := make([]device.Observation, len(stored))
	copy(snapshot, stored)
	return snapshot, nil
}

func (s *MemoryStore) Append(_ context.Context, deviceID string, obs device.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.history[deviceID], obs)
	if s.bound > 0 && len(history) > s.bound {
		history = history[len(history)-s.bound:]
	}
	s.history[deviceID] = history
	return nil
}
