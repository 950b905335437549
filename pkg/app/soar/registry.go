package soar

import (
	"context"
	"fmt"
	"sync"

	"github.com/SentinelMesh/AccessGate/pkg/domain"
)

// Actuator is a side-effecting response operation registered under a
// string action name. Retries, if any, are the actuator's own concern.
type Actuator interface {
	Name() string
	Execute(ctx context.Context, params map[string]any) (bool, string)
}

// Registry maps action names to actuators.
type Registry struct {
	mu        sync.RWMutex
	actuators map[string]Actuator
}

func NewRegistry() *Registry {
	return &Registry{
		actuators: make(map[string]Actuator),
	}
}

func (r *Registry) Register(a Actuator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actuators[a.Name()]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateActuator, a.Name())
	}
	r.actuators[a.Name()] = a
	return nil
}

func (r *Registry) Get(name string) (Actuator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actuators[name]
	return a, ok
}
