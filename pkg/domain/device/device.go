package device

import (
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
)

// Device is an enrolled endpoint. Compliance flags are refreshed by
// periodic compliance checks, not by the decision path.
type Device struct {
	ID                  string               `json:"id" gorm:"primaryKey"`
	UserID              string               `json:"user_id" gorm:"index"`
	Type                string               `json:"type"`
	OS                  string               `json:"os"`
	AntivirusInstalled  bool                 `json:"antivirus_installed"`
	EncryptionEnabled   bool                 `json:"encryption_enabled"`
	OSPatched           bool                 `json:"os_patched"`
	ScreenLockEnabled   bool                 `json:"screen_lock_enabled"`
	Quarantined         bool                 `json:"quarantined"`
	ExpectedLocations   []access.Coordinates `json:"expected_locations" gorm:"serializer:json"`
	EnrolledAt          time.Time            `json:"enrolled_at"`
	LastComplianceCheck *time.Time           `json:"last_compliance_check"`
}

func (d Device) TableName() string {
	return "public.devices"
}

// ComplianceScore is the fraction of satisfied compliance flags, each
// contributing a quarter.
func (d Device) ComplianceScore() float64 {
	score := 0.0
	if d.AntivirusInstalled {
		score += 0.25
	}
	if d.EncryptionEnabled {
		score += 0.25
	}
	if d.OSPatched {
		score += 0.25
	}
	if d.ScreenLockEnabled {
		score += 0.25
	}
	return score
}
