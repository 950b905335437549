package actuators

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	blocklistKey    = "blocklist:ip:%s"
	defaultBlockTTL = 24 * time.Hour
)

// BlockIP writes the offending address into the shared Redis blocklist
// that enforcement points consult.
type BlockIP struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewBlockIP(client *redis.Client, logger *logrus.Logger) *BlockIP {
	return &BlockIP{
		client: client,
		logger: logger,
	}
}

func (a *BlockIP) Name() string {
	return "block_ip"
}

func (a *BlockIP) Execute(ctx context.Context, params map[string]any) (bool, string) {
	ip := stringParam(params, "source_ip")
	if ip == "" {
		ip = stringParam(params, "ip")
	}
	if ip == "" {
		return false, "missing source_ip parameter"
	}

	ttl := defaultBlockTTL
	if raw := stringParam(params, "duration"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return false, fmt.Sprintf("invalid duration %q", raw)
		}
		ttl = parsed
	}

	key := fmt.Sprintf(blocklistKey, ip)
	if err := a.client.Set(ctx, key, stringParam(params, "reason"), ttl).Err(); err != nil {
		a.logger.WithError(err).WithField("ip", ip).Error("failed to block ip")
		return false, err.Error()
	}

	a.logger.WithFields(logrus.Fields{
		"ip":  ip,
		"ttl": ttl.String(),
	}).Info("ip blocked")
	return true, fmt.Sprintf("ip %s blocked for %s", ip, ttl)
}
