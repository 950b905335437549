package trust

import (
	"context"
	"testing"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/config"
	"github.com/SentinelMesh/AccessGate/pkg/domain"
	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
	"github.com/SentinelMesh/AccessGate/pkg/domain/device"
	"github.com/stretchr/testify/assert"
)

type fakeDeviceRepository struct {
	devices map[string]*device.Device
}

func (f *fakeDeviceRepository) GetByID(_ context.Context, id string) (*device.Device, error) {
	d, ok := f.devices[id]
	if !ok {
		return nil, domain.NewNotFoundError("device", id)
	}
	return d, nil
}

func (f *fakeDeviceRepository) Create(_ context.Context, d *device.Device) error {
	f.devices[d.ID] = d
	return nil
}

func (f *fakeDeviceRepository) SetQuarantined(_ context.Context, id string, quarantined bool) error {
	d, ok := f.devices[id]
	if !ok {
		return domain.NewNotFoundError("device", id)
	}
	d.Quarantined = quarantined
	return nil
}

func (f *fakeDeviceRepository) UpdateCompliance(_ context.Context, d *device.Device) error {
	f.devices[d.ID] = d
	return nil
}

type fakeHistoryStore struct {
	observations map[string][]device.Observation
}

func (f *fakeHistoryStore) Load(_ context.Context, deviceID string) ([]device.Observation, error) {
	return f.observations[deviceID], nil
}

func (f *fakeHistoryStore) Append(_ context.Context, deviceID string, obs device.Observation) error {
	f.observations[deviceID] = append(f.observations[deviceID], obs)
	return nil
}

func testDeviceConfig() config.DeviceTrustConfig {
	return config.DeviceTrustConfig{
		HistoryBound:  10,
		MaxHourDrift:  4,
		HistoryRadius: 1.0,
	}
}

func compliantDevice(id string) *device.Device {
	return &device.Device{
		ID:                 id,
		AntivirusInstalled: true,
		EncryptionEnabled:  true,
		OSPatched:          true,
		ScreenLockEnabled:  true,
		ExpectedLocations:  []access.Coordinates{{Lat: 40.7, Lon: -74.0}},
	}
}

func TestDeviceAssessor_Assess_UnregisteredDevice(t *testing.T) {
	assessor := NewDeviceAssessor(
		&fakeDeviceRepository{devices: map[string]*device.Device{}},
		&fakeHistoryStore{observations: map[string][]device.Observation{}},
		testDeviceConfig(),
		quietLogger(),
	)

	got := assessor.Assess(context.Background(), "ghost", access.UserContext{})

	assert.False(t, got.Trusted)
	assert.Equal(t, 0.0, got.Score)
}

func TestDeviceAssessor_Assess_QuarantinedDevice(t *testing.T) {
	dev := compliantDevice("dev1")
	dev.Quarantined = true
	assessor := NewDeviceAssessor(
		&fakeDeviceRepository{devices: map[string]*device.Device{"dev1": dev}},
		&fakeHistoryStore{observations: map[string][]device.Observation{}},
		testDeviceConfig(),
		quietLogger(),
	)

	got := assessor.Assess(context.Background(), "dev1", access.UserContext{})

	assert.False(t, got.Trusted)
	assert.Equal(t, 0.0, got.Score)
}

func TestDeviceAssessor_Assess_CompliantDeviceAtExpectedLocation(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	home := access.Coordinates{Lat: 40.7, Lon: -74.0}
	history := &fakeHistoryStore{observations: map[string][]device.Observation{
		"dev1": {
			{Location: home, Network: "corp-wifi", SeenAt: now.Add(-24 * time.Hour)},
			{Location: home, Network: "corp-wifi", SeenAt: now.Add(-48 * time.Hour)},
		},
	}}
	assessor := NewDeviceAssessor(
		&fakeDeviceRepository{devices: map[string]*device.Device{"dev1": compliantDevice("dev1")}},
		history,
		testDeviceConfig(),
		quietLogger(),
	)

	got := assessor.Assess(context.Background(), "dev1", access.UserContext{
		Location:  home,
		Network:   "corp-wifi",
		Timestamp: now,
	})

	// compliance 1.0*0.4 + location 1.0*0.3 + history 1.0*0.3
	assert.InDelta(t, 1.0, got.Score, 1e-9)
	assert.True(t, got.Trusted)
}

func TestDeviceAssessor_Assess_LocationBands(t *testing.T) {
	tests := []struct {
		name      string
		current   access.Coordinates
		wantScore float64
	}{
		{"exact location", access.Coordinates{Lat: 40.7, Lon: -74.0}, 1.0},
		{"near location", access.Coordinates{Lat: 40.75, Lon: -74.0}, 0.8},
		{"moderate distance", access.Coordinates{Lat: 41.2, Lon: -74.0}, 0.6},
		{"far location", access.Coordinates{Lat: 51.5, Lon: -0.1}, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessor := NewDeviceAssessor(
				&fakeDeviceRepository{devices: map[string]*device.Device{"dev1": compliantDevice("dev1")}},
				&fakeHistoryStore{observations: map[string][]device.Observation{}},
				testDeviceConfig(),
				quietLogger(),
			)

			got := assessor.Assess(context.Background(), "dev1", access.UserContext{Location: tt.current})

			assert.InDelta(t, tt.wantScore, got.Factors["location"], 1e-9)
		})
	}
}

func TestDeviceAssessor_Assess_NoHistoryScoresNeutral(t *testing.T) {
	assessor := NewDeviceAssessor(
		&fakeDeviceRepository{devices: map[string]*device.Device{"dev1": compliantDevice("dev1")}},
		&fakeHistoryStore{observations: map[string][]device.Observation{}},
		testDeviceConfig(),
		quietLogger(),
	)

	got := assessor.Assess(context.Background(), "dev1", access.UserContext{})

	assert.InDelta(t, 0.5, got.Factors["history"], 1e-9)
}

func TestDeviceAssessor_Assess_PartialCompliance(t *testing.T) {
	dev := compliantDevice("dev1")
	dev.OSPatched = false
	dev.ScreenLockEnabled = false
	assessor := NewDeviceAssessor(
		&fakeDeviceRepository{devices: map[string]*device.Device{"dev1": dev}},
		&fakeHistoryStore{observations: map[string][]device.Observation{}},
		testDeviceConfig(),
		quietLogger(),
	)

	got := assessor.Assess(context.Background(), "dev1", access.UserContext{})

	assert.InDelta(t, 0.5, got.Factors["compliance"], 1e-9)
}
