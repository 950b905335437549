package device

import (
	"context"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
)

// Observation is one sighting of a device, kept in a short rolling history
// for behavioral consistency checks.
type Observation struct {
	Location access.Coordinates `json:"location"`
	Network  string             `json:"network"`
	SeenAt   time.Time          `json:"seen_at"`
}

//go:generate mockery --name=HistoryStore --dir=. --output=../../mocks --filename=device_history_store_mock.go --case=underscore --with-expecter
type HistoryStore interface {
	Load(ctx context.Context, deviceID string) ([]Observation, error)
	Append(ctx context.Context, deviceID string, obs Observation) error
}
