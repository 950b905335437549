package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AssertionManager issues and validates signed device assertions. An
// assertion is a short-lived HS256 token whose subject is the device id,
// minted at enrollment and presented with each access request.
type AssertionManager struct {
	secretKey []byte
	issuer    string
}

func NewAssertionManager(secretKey, issuer string) *AssertionManager {
	return &AssertionManager{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}

func (m *AssertionManager) Issue(deviceID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   deviceID,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign device assertion: %w", err)
	}
	return signed, nil
}

// Verify reports whether the assertion is a valid token bound to deviceID.
func (m *AssertionManager) Verify(assertion, deviceID string) bool {
	if assertion == "" || deviceID == "" {
		return false
	}
	token, err := jwt.ParseWithClaims(
		assertion,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return false
	}
	return claims.Subject == deviceID
}
