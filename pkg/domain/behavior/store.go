package behavior

import (
	"context"
)

// Store persists per-user baselines. Load returns an empty profile, not an
// error, for users with no recorded history.
//
//go:generate mockery --name=Store --dir=. --output=../../mocks --filename=behavior_store_mock.go --case=underscore --with-expecter
type Store interface {
	Load(ctx context.Context, userID string) (*Profile, error)
	Save(ctx context.Context, userID string, profile *Profile) error
}
