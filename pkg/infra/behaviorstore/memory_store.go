package behaviorstore

import (
	"context"
	"sync"

	"github.com/SentinelMesh/AccessGate/pkg/domain/behavior"
)

// MemoryStore is an in-memory baseline store for tests and standalone
// deployments without Redis.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*behavior.Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*behavior.Profile),
	}
}

func (s *MemoryStore) Load(_ context.Context, userID string) (*behavior.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.profiles[userID]
	if !ok {
		return &behavior.Profile{UserID: userID}, nil
	}

	snapshot := &behavior.Profile{
		UserID:  userID,
		Samples: make([]behavior.ActivitySample, len(stored.Samples)),
	}
	copy(snapshot.Samples, stored.Samples)
	return snapshot, nil
}

func (s *MemoryStore) Save(_ context.Context, userID string, profile *behavior.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := &behavior.Profile{
		UserID:  userID,
		Samples: make([]behavior.ActivitySample, len(profile.Samples)),
	}
	copy(stored.Samples, profile.Samples)
	s.profiles[userID] = stored
	return nil
}
