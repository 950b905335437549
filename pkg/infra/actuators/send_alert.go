package actuators

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type SendAlert struct {
	webhookURL string
	client     *http.Client
	logger     *logrus.Logger
}

func NewSendAlert(webhookURL string, logger *logrus.Logger) *SendAlert {
	return &SendAlert{
		webhookURL: webhookURL,
		client:     newWebhookClient(),
		logger:     logger,
	}
}

func (a *SendAlert) Name() string {
	return "send_alert"
}

func (a *SendAlert) Execute(ctx context.Context, params map[string]any) (bool, string) {
	payload := map[string]any{
		"kind":    "alert",
		"sent_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range params {
		payload[k] = v
	}

	if a.webhookURL == "" {
		// No endpoint configured; the alert still lands in the log.
		a.logger.WithField("alert", payload).Warn("security alert")
		return true, "alert logged (no webhook configured)"
	}

	if err := postJSON(ctx, a.client, a.webhookURL, payload); err != nil {
		a.logger.WithError(err).Error("failed to deliver alert webhook")
		return false, err.Error()
	}
	return true, "alert delivered"
}
