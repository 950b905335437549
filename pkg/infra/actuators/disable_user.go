package actuators

import (
	"context"

	"github.com/SentinelMesh/AccessGate/pkg/domain/identity"
	"github.com/sirupsen/logrus"
)

type DisableUser struct {
	users  identity.Repository
	logger *logrus.Logger
}

func NewDisableUser(users identity.Repository, logger *logrus.Logger) *DisableUser {
	return &DisableUser{
		users:  users,
		logger: logger,
	}
}

func (a *DisableUser) Name() string {
	return "disable_user"
}

func (a *DisableUser) Execute(ctx context.Context, params map[string]any) (bool, string) {
	userID := stringParam(params, "user_id")
	if userID == "" {
		return false, "missing user_id parameter"
	}

	if err := a.users.Deactivate(ctx, userID); err != nil {
		a.logger.WithError(err).WithField("user_id", userID).Error("failed to disable user")
		return false, err.Error()
	}

	a.logger.WithField("user_id", userID).Info("user disabled")
	return true, "user " + userID + " disabled"
}
