package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain"
	"github.com/SentinelMesh/AccessGate/pkg/domain/device"
	"gorm.io/gorm"
)

type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) device.Repository {
	return &DeviceRepository{
		db: db,
	}
}

func (r *DeviceRepository) GetByID(ctx context.Context, id string) (*device.Device, error) {
	entity := new(device.Device)
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("device", id)
		}
		return nil, fmt.Errorf("failed to fetch device: %w", err)
	}
	return entity, nil
}

func (r *DeviceRepository) Create(ctx context.Context, entity *device.Device) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

func (r *DeviceRepository) SetQuarantined(ctx context.Context, id string, quarantined bool) error {
	result := r.db.WithContext(ctx).
		Model(&device.Device{}).
		Where("id = ?", id).
		Update("quarantined", quarantined)
	if result.Error != nil {
		return fmt.Errorf("failed to update device quarantine state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("device", id)
	}
	return nil
}

// UpdateCompliance persists refreshed compliance flags from a periodic
// compliance check.
func (r *DeviceRepository) UpdateCompliance(ctx context.Context, entity *device.Device) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&device.Device{}).
		Where("id = ?", entity.ID).
		Updates(map[string]interface{}{
			"antivirus_installed":   entity.AntivirusInstalled,
			"encryption_enabled":    entity.EncryptionEnabled,
			"os_patched":            entity.OSPatched,
			"screen_lock_enabled":   entity.ScreenLockEnabled,
			"last_compliance_check": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update device compliance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("device", entity.ID)
	}
	return nil
}
