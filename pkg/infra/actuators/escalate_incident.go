package actuators

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type EscalateIncident struct {
	webhookURL string
	client     *http.Client
	logger     *logrus.Logger
}

func NewEscalateIncident(webhookURL string, logger *logrus.Logger) *EscalateIncident {
	return &EscalateIncident{
		webhookURL: webhookURL,
		client:     newWebhookClient(),
		logger:     logger,
	}
}

func (a *EscalateIncident) Name() string {
	return "escalate_incident"
}

func (a *EscalateIncident) Execute(ctx context.Context, params map[string]any) (bool, string) {
	payload := map[string]any{
		"kind":         "escalation",
		"escalated_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range params {
		payload[k] = v
	}

	if a.webhookURL == "" {
		a.logger.WithField("incident", payload).Warn("incident escalation")
		return true, "escalation logged (no webhook configured)"
	}

	if err := postJSON(ctx, a.client, a.webhookURL, payload); err != nil {
		a.logger.WithError(err).Error("failed to deliver escalation webhook")
		return false, err.Error()
	}
	return true, "incident escalated"
}
