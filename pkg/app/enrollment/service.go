package enrollment

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain"
	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
	"github.com/SentinelMesh/AccessGate/pkg/domain/device"
	"github.com/SentinelMesh/AccessGate/pkg/domain/identity"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const assertionTTL = 30 * 24 * time.Hour

// AssertionIssuer mints the device-bound token handed out at enrollment.
type AssertionIssuer interface {
	Issue(deviceID string, ttl time.Duration) (string, error)
}

// Service handles the admin lifecycle: user registration and device
// enrollment. Users are deactivated, never deleted.
type Service struct {
	users      identity.Repository
	devices    device.Repository
	assertions AssertionIssuer
	logger     *logrus.Logger
}

func NewService(
	users identity.Repository,
	devices device.Repository,
	assertions AssertionIssuer,
	logger *logrus.Logger,
) *Service {
	return &Service{
		users:      users,
		devices:    devices,
		assertions: assertions,
		logger:     logger,
	}
}

// RegisteredUser carries the one-time enrollment material. The TOTP
// secret is returned exactly once and never readable afterwards.
type RegisteredUser struct {
	User       *identity.User
	TOTPSecret string
}

func (s *Service) RegisterUser(ctx context.Context, email, role, password string, mfaEnabled bool) (*RegisteredUser, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash credential: %w", err)
	}

	var totpSecret string
	if mfaEnabled {
		totpSecret, err = generateTOTPSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate totp secret: %w", err)
		}
	}

	user := &identity.User{
		ID:             uuid.NewString(),
		Email:          email,
		Role:           role,
		MFAEnabled:     mfaEnabled,
		TOTPSecret:     totpSecret,
		CredentialHash: string(hash),
		Active:         true,
		CreatedAt:      time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    role,
	}).Info("user registered")

	return &RegisteredUser{User: user, TOTPSecret: totpSecret}, nil
}

// EnrolledDevice pairs the stored device with its signed assertion.
type EnrolledDevice struct {
	Device    *device.Device
	Assertion string
}

func (s *Service) EnrollDevice(ctx context.Context, userID, deviceType, os string, expected []access.Coordinates) (*EnrolledDevice, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up owner: %w", err)
	}
	if !user.IsActive() {
		return nil, fmt.Errorf("cannot enroll device: %w: %s", domain.ErrUserDeactivated, userID)
	}

	dev := &device.Device{
		ID:                uuid.NewString(),
		UserID:            userID,
		Type:              deviceType,
		OS:                os,
		ExpectedLocations: expected,
		EnrolledAt:        time.Now(),
	}
	if err := s.devices.Create(ctx, dev); err != nil {
		return nil, fmt.Errorf("failed to enroll device: %w", err)
	}

	assertion, err := s.assertions.Issue(dev.ID, assertionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue device assertion: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"device_id": dev.ID,
		"user_id":   userID,
	}).Info("device enrolled")

	return &EnrolledDevice{Device: dev, Assertion: assertion}, nil
}

// DeactivateUser retires a principal. The record stays for audit trails.
func (s *Service) DeactivateUser(ctx context.Context, userID string) error {
	if err := s.users.Deactivate(ctx, userID); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	s.logger.WithField("user_id", userID).Info("user deactivated")
	return nil
}

// QuarantineDevice takes an endpoint out of the trusted set. A
// quarantined device scores zero trust until released.
func (s *Service) QuarantineDevice(ctx context.Context, deviceID string, quarantined bool) error {
	if err := s.devices.SetQuarantined(ctx, deviceID, quarantined); err != nil {
		return fmt.Errorf("failed to update quarantine state: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"device_id":   deviceID,
		"quarantined": quarantined,
	}).Info("device quarantine state changed")
	return nil
}

func generateTOTPSecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}
