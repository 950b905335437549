package trust

import (
	"context"

	"github.com/SentinelMesh/AccessGate/pkg/domain"
	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
	"github.com/SentinelMesh/AccessGate/pkg/domain/identity"
	"github.com/sirupsen/logrus"
)

// Authentication factor names, referenced by policy required_factors
// conditions and the audit factor breakdown.
const (
	FactorPassword  = "password"
	FactorMFA       = "mfa"
	FactorAssertion = "device_assertion"
)

const (
	passwordWeight  = 0.4
	mfaWeight       = 0.4
	assertionWeight = 0.2

	verifiedThreshold = 0.6
)

// SecondFactorVerifier checks a user-supplied one-time code against the
// user's enrolled secret.
type SecondFactorVerifier interface {
	Verify(secret string, code string) bool
}

// AssertionVerifier validates a device-bound assertion for a device ID.
type AssertionVerifier interface {
	Verify(assertion string, deviceID string) bool
}

// Verification is the identity assessment for one access attempt.
type Verification struct {
	Verified   bool
	Confidence float64
	Factors    map[string]bool
}

//go:generate mockery --name=IdentityVerifier --dir=. --output=../../mocks --filename=identity_verifier_mock.go --case=underscore --with-expecter
type IdentityVerifier interface {
	Verify(ctx context.Context, userID string, uc access.UserContext) Verification
}

type identityVerifier struct {
	users      identity.Repository
	second     SecondFactorVerifier
	assertions AssertionVerifier
	logger     *logrus.Logger
}

func NewIdentityVerifier(
	users identity.Repository,
	second SecondFactorVerifier,
	assertions AssertionVerifier,
	logger *logrus.Logger,
) IdentityVerifier {
	return &identityVerifier{
		users:      users,
		second:     second,
		assertions: assertions,
		logger:     logger,
	}
}

// Verify weighs credential, second-factor and device-bound assertion
// checks additively. An unknown or deactivated user is a zero-confidence
// signal, not an error.
func (v *identityVerifier) Verify(ctx context.Context, userID string, uc access.UserContext) Verification {
	user, err := v.users.GetByID(ctx, userID)
	if err != nil {
		if !domain.IsNotFoundError(err) {
			v.logger.WithError(err).WithField("user_id", userID).Warn("identity store lookup failed")
		}
		return Verification{Factors: map[string]bool{}}
	}
	if !user.IsActive() {
		return Verification{Factors: map[string]bool{}}
	}

	factors := map[string]bool{
		FactorPassword:  v.checkCredential(ctx, userID, uc.Credential),
		FactorMFA:       v.checkSecondFactor(user, uc.SecondFactor),
		FactorAssertion: v.assertions.Verify(uc.DeviceAssertion, uc.DeviceID),
	}

	confidence := 0.0
	if factors[FactorPassword] {
		confidence += passwordWeight
	}
	if factors[FactorMFA] {
		confidence += mfaWeight
	}
	if factors[FactorAssertion] {
		confidence += assertionWeight
	}

	return Verification{
		Verified:   confidence > verifiedThreshold,
		Confidence: confidence,
		Factors:    factors,
	}
}

func (v *identityVerifier) checkCredential(ctx context.Context, userID, secret string) bool {
	if secret == "" {
		return false
	}
	ok, err := v.users.VerifyCredential(ctx, userID, secret)
	if err != nil {
		v.logger.WithError(err).WithField("user_id", userID).Warn("credential verification failed")
		return false
	}
	return ok
}

// checkSecondFactor follows enrollment: users without MFA enabled satisfy
// the factor, enrolled users must present a valid code.
func (v *identityVerifier) checkSecondFactor(user *identity.User, code string) bool {
	if !user.MFAEnabled {
		return true
	}
	if code == "" {
		return false
	}
	return v.second.Verify(user.TOTPSecret, code)
}
