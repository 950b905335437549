package actuators

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain"
	"github.com/SentinelMesh/AccessGate/pkg/domain/device"
	"github.com/SentinelMesh/AccessGate/pkg/domain/identity"
	"github.com/go-redis/redismock/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestSendAlert_Execute_DeliversWebhook(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	actuator := NewSendAlert(server.URL, quietLogger())

	ok, msg := actuator.Execute(context.Background(), map[string]any{"severity": "critical", "user_id": "alice"})

	assert.True(t, ok)
	assert.Equal(t, "alert delivered", msg)
	assert.Equal(t, "critical", received["severity"])
	assert.Equal(t, "alice", received["user_id"])
	assert.Equal(t, "alert", received["kind"])
}

func TestSendAlert_Execute_NoWebhookConfigured(t *testing.T) {
	actuator := NewSendAlert("", quietLogger())

	ok, msg := actuator.Execute(context.Background(), map[string]any{"severity": "medium"})

	assert.True(t, ok)
	assert.Contains(t, msg, "no webhook configured")
}

func TestSendAlert_Execute_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	actuator := NewSendAlert(server.URL, quietLogger())

	ok, _ := actuator.Execute(context.Background(), nil)

	assert.False(t, ok)
}

func TestEscalateIncident_Execute(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	}))
	defer server.Close()

	actuator := NewEscalateIncident(server.URL, quietLogger())

	ok, _ := actuator.Execute(context.Background(), map[string]any{"request_id": "req-1"})

	assert.True(t, ok)
	assert.Equal(t, "escalation", received["kind"])
	assert.Equal(t, "req-1", received["request_id"])
}

func TestBlockIP_Execute(t *testing.T) {
	client, mock := redismock.NewClientMock()
	actuator := NewBlockIP(client, quietLogger())

	mock.ExpectSet("blocklist:ip:203.0.113.7", "critical risk", 24*time.Hour).SetVal("OK")

	ok, msg := actuator.Execute(context.Background(), map[string]any{
		"source_ip": "203.0.113.7",
		"reason":    "critical risk",
	})

	assert.True(t, ok)
	assert.Contains(t, msg, "203.0.113.7")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockIP_Execute_CustomDuration(t *testing.T) {
	client, mock := redismock.NewClientMock()
	actuator := NewBlockIP(client, quietLogger())

	mock.ExpectSet("blocklist:ip:203.0.113.7", "", time.Hour).SetVal("OK")

	ok, _ := actuator.Execute(context.Background(), map[string]any{
		"source_ip": "203.0.113.7",
		"duration":  "1h",
	})

	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockIP_Execute_MissingIP(t *testing.T) {
	client, _ := redismock.NewClientMock()
	actuator := NewBlockIP(client, quietLogger())

	ok, msg := actuator.Execute(context.Background(), map[string]any{})

	assert.False(t, ok)
	assert.Contains(t, msg, "source_ip")
}

type stubUsers struct {
	deactivated []string
}

func (s *stubUsers) GetByID(context.Context, string) (*identity.User, error) {
	return nil, domain.NewNotFoundError("user", "x")
}
func (s *stubUsers) Create(context.Context, *identity.User) error { return nil }
func (s *stubUsers) Deactivate(_ context.Context, id string) error {
	s.deactivated = append(s.deactivated, id)
	return nil
}
func (s *stubUsers) VerifyCredential(context.Context, string, string) (bool, error) {
	return false, nil
}

func TestDisableUser_Execute(t *testing.T) {
	users := &stubUsers{}
	actuator := NewDisableUser(users, quietLogger())

	ok, _ := actuator.Execute(context.Background(), map[string]any{"user_id": "alice"})

	assert.True(t, ok)
	assert.Equal(t, []string{"alice"}, users.deactivated)
}

func TestDisableUser_Execute_MissingUserID(t *testing.T) {
	actuator := NewDisableUser(&stubUsers{}, quietLogger())

	ok, msg := actuator.Execute(context.Background(), map[string]any{})

	assert.False(t, ok)
	assert.Contains(t, msg, "user_id")
}

type stubDevices struct {
	quarantined []string
}

func (s *stubDevices) GetByID(context.Context, string) (*device.Device, error) {
	return nil, domain.NewNotFoundError("device", "x")
}
func (s *stubDevices) Create(context.Context, *device.Device) error { return nil }
func (s *stubDevices) SetQuarantined(_ context.Context, id string, quarantined bool) error {
	if quarantined {
		s.quarantined = append(s.quarantined, id)
	}
	return nil
}
func (s *stubDevices) UpdateCompliance(context.Context, *device.Device) error { return nil }

func TestQuarantineDevice_Execute(t *testing.T) {
	devices := &stubDevices{}
	actuator := NewQuarantineDevice(devices, quietLogger())

	ok, _ := actuator.Execute(context.Background(), map[string]any{"device_id": "dev1"})

	assert.True(t, ok)
	assert.Equal(t, []string{"dev1"}, devices.quarantined)
}

func TestCollectForensics_Execute(t *testing.T) {
	actuator := NewCollectForensics(quietLogger())

	ok, msg := actuator.Execute(context.Background(), map[string]any{"request_id": "req-1"})

	assert.True(t, ok)
	assert.Contains(t, msg, "forensic case")
}
