package actuators

import (
	"context"

	"github.com/SentinelMesh/AccessGate/pkg/domain/device"
	"github.com/sirupsen/logrus"
)

type QuarantineDevice struct {
	devices device.Repository
	logger  *logrus.Logger
}

func NewQuarantineDevice(devices device.Repository, logger *logrus.Logger) *QuarantineDevice {
	return &QuarantineDevice{
		devices: devices,
		logger:  logger,
	}
}

func (a *QuarantineDevice) Name() string {
	return "quarantine_device"
}

func (a *QuarantineDevice) Execute(ctx context.Context, params map[string]any) (bool, string) {
	deviceID := stringParam(params, "device_id")
	if deviceID == "" {
		return false, "missing device_id parameter"
	}

	if err := a.devices.SetQuarantined(ctx, deviceID, true); err != nil {
		a.logger.WithError(err).WithField("device_id", deviceID).Error("failed to quarantine device")
		return false, err.Error()
	}

	a.logger.WithField("device_id", deviceID).Info("device quarantined")
	return true, "device " + deviceID + " quarantined"
}
