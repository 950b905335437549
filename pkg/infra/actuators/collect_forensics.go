package actuators

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CollectForensics marks the incident for evidence preservation. The
// capture itself runs out of band; the actuator records an immutable
// collection marker with a case id.
type CollectForensics struct {
	logger *logrus.Logger
}

func NewCollectForensics(logger *logrus.Logger) *CollectForensics {
	return &CollectForensics{logger: logger}
}

func (a *CollectForensics) Name() string {
	return "collect_forensics"
}

func (a *CollectForensics) Execute(_ context.Context, params map[string]any) (bool, string) {
	caseID := uuid.NewString()
	a.logger.WithFields(logrus.Fields{
		"case_id":  caseID,
		"incident": params,
	}).Info("forensic collection requested")
	return true, "forensic case " + caseID + " opened"
}
