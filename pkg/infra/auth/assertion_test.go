package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertionManager_IssueAndVerify(t *testing.T) {
	manager := NewAssertionManager("test-secret", "accessgate")

	token, err := manager.Issue("dev1", time.Hour)
	require.NoError(t, err)

	assert.True(t, manager.Verify(token, "dev1"))
}

func TestAssertionManager_Verify_WrongDevice(t *testing.T) {
	manager := NewAssertionManager("test-secret", "accessgate")

	token, err := manager.Issue("dev1", time.Hour)
	require.NoError(t, err)

	assert.False(t, manager.Verify(token, "dev2"))
}

func TestAssertionManager_Verify_Expired(t *testing.T) {
	manager := NewAssertionManager("test-secret", "accessgate")

	token, err := manager.Issue("dev1", -time.Minute)
	require.NoError(t, err)

	assert.False(t, manager.Verify(token, "dev1"))
}

func TestAssertionManager_Verify_WrongKey(t *testing.T) {
	issuer := NewAssertionManager("secret-a", "accessgate")
	verifier := NewAssertionManager("secret-b", "accessgate")

	token, err := issuer.Issue("dev1", time.Hour)
	require.NoError(t, err)

	assert.False(t, verifier.Verify(token, "dev1"))
}

func TestAssertionManager_Verify_WrongIssuer(t *testing.T) {
	issuer := NewAssertionManager("test-secret", "other-system")
	verifier := NewAssertionManager("test-secret", "accessgate")

	token, err := issuer.Issue("dev1", time.Hour)
	require.NoError(t, err)

	assert.False(t, verifier.Verify(token, "dev1"))
}

func TestAssertionManager_Verify_Garbage(t *testing.T) {
	manager := NewAssertionManager("test-secret", "accessgate")

	assert.False(t, manager.Verify("", "dev1"))
	assert.False(t, manager.Verify("not.a.jwt", "dev1"))
	assert.False(t, manager.Verify("header.payload", ""))
}
