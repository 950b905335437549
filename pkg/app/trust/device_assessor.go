package trust

import (
	"context"
	"math"

	"github.com/SentinelMesh/AccessGate/pkg/config"
	"github.com/SentinelMesh/AccessGate/pkg/domain"
	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
	"github.com/SentinelMesh/AccessGate/pkg/domain/device"
	"github.com/sirupsen/logrus"
)

const (
	complianceWeight = 0.4
	locationWeight   = 0.3
	historyWeight    = 0.3

	trustedThreshold = 0.6
	neutralScore     = 0.5
)

// Assessment is the device trust result for one access attempt.
type Assessment struct {
	Trusted bool
	Score   float64
	Factors map[string]float64
}

//go:generate mockery --name=DeviceAssessor --dir=. --output=../../mocks --filename=device_assessor_mock.go --case=underscore --with-expecter
type DeviceAssessor interface {
	Assess(ctx context.Context, deviceID string, uc access.UserContext) Assessment
}

type deviceAssessor struct {
	devices device.Repository
	history device.HistoryStore
	cfg     config.DeviceTrustConfig
	logger  *logrus.Logger
}

func NewDeviceAssessor(
	devices device.Repository,
	history device.HistoryStore,
	cfg config.DeviceTrustConfig,
	logger *logrus.Logger,
) DeviceAssessor {
	return &deviceAssessor{
		devices: devices,
		history: history,
		cfg:     cfg,
		logger:  logger,
	}
}

// Assess combines compliance (40%), expected-location proximity (30%) and
// the device's own behavioral consistency (30%). An unregistered or
// quarantined device scores exactly zero.
func (a *deviceAssessor) Assess(ctx context.Context, deviceID string, uc access.UserContext) Assessment {
	dev, err := a.devices.GetByID(ctx, deviceID)
	if err != nil {
		if !domain.IsNotFoundError(err) {
			a.logger.WithError(err).WithField("device_id", deviceID).Warn("device store lookup failed")
		}
		return Assessment{Factors: map[string]float64{}}
	}
	if dev.Quarantined {
		return Assessment{Factors: map[string]float64{}}
	}

	factors := map[string]float64{
		"compliance": dev.ComplianceScore(),
		"location":   a.locationScore(dev, uc.Location),
		"history":    a.historyScore(ctx, deviceID, uc),
	}

	score := factors["compliance"]*complianceWeight +
		factors["location"]*locationWeight +
		factors["history"]*historyWeight

	return Assessment{
		Trusted: score > trustedThreshold,
		Score:   score,
		Factors: factors,
	}
}

// locationScore bands the distance to the nearest expected location:
// exact 1.0, near 0.8, moderate 0.6, far 0.2. Devices without expected
// locations score neutral.
func (a *deviceAssessor) locationScore(dev *device.Device, current access.Coordinates) float64 {
	if len(dev.ExpectedLocations) == 0 {
		return neutralScore
	}

	minDistance := math.Inf(1)
	for _, expected := range dev.ExpectedLocations {
		dist := math.Hypot(current.Lat-expected.Lat, current.Lon-expected.Lon)
		minDistance = math.Min(minDistance, dist)
	}

	switch {
	case minDistance < 0.01:
		return 1.0
	case minDistance < 0.1:
		return 0.8
	case minDistance < 1.0:
		return 0.6
	default:
		return 0.2
	}
}

// historyScore checks consistency of location, network and hour of access
// against the device's rolling history, capped at 1.0.
func (a *deviceAssessor) historyScore(ctx context.Context, deviceID string, uc access.UserContext) float64 {
	history, err := a.history.Load(ctx, deviceID)
	if err != nil {
		a.logger.WithError(err).WithField("device_id", deviceID).Warn("device history unavailable")
		return neutralScore
	}
	if len(history) == 0 {
		return neutralScore
	}

	score := 0.0

	sumLat, sumLon, sumHour := 0.0, 0.0, 0.0
	networkSeen := false
	for _, obs := range history {
		sumLat += obs.Location.Lat
		sumLon += obs.Location.Lon
		sumHour += float64(obs.SeenAt.Hour())
		if obs.Network == uc.Network {
			networkSeen = true
		}
	}
	n := float64(len(history))

	if math.Hypot(uc.Location.Lat-sumLat/n, uc.Location.Lon-sumLon/n) < a.cfg.HistoryRadius {
		score += 0.4
	}
	if networkSeen {
		score += 0.3
	}
	if math.Abs(float64(uc.Timestamp.Hour())-sumHour/n) < a.cfg.MaxHourDrift {
		score += 0.3
	}

	return math.Min(1.0, score)
}
