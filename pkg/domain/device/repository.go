package device

import (
	"context"
)

//go:generate mockery --name=Repository --dir=. --output=../../mocks --filename=device_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	GetByID(ctx context.Context, id string) (*Device, error)
	Create(ctx context.Context, device *Device) error
	SetQuarantined(ctx context.Context, id string, quarantined bool) error
	UpdateCompliance(ctx context.Context, device *Device) error
}
