package threat

import (
	"context"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain/threat"
	"github.com/sirupsen/logrus"
)

// Ingester pulls indicators from the configured feed sources on a fixed
// interval. It runs independently of the decision path; fetch failures
// are logged and correlation degrades to the last good snapshot.
type Ingester struct {
	feed       threat.Feed
	correlator Correlator
	sources    []string
	interval   time.Duration
	logger     *logrus.Logger
}

func NewIngester(
	feed threat.Feed,
	correlator Correlator,
	sources []string,
	interval time.Duration,
	logger *logrus.Logger,
) *Ingester {
	return &Ingester{
		feed:       feed,
		correlator: correlator,
		sources:    sources,
		interval:   interval,
		logger:     logger,
	}
}

// Run blocks until the context is cancelled. The first pull happens
// immediately so the engine does not start blind.
func (i *Ingester) Run(ctx context.Context) {
	i.pullAll(ctx)

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			i.logger.Info("threat feed ingester stopped")
			return
		case <-ticker.C:
			i.pullAll(ctx)
		}
	}
}

func (i *Ingester) pullAll(ctx context.Context) {
	for _, source := range i.sources {
		indicators, err := i.feed.FetchIndicators(ctx, source)
		if err != nil {
			i.logger.WithError(err).WithField("source", source).Warn("threat feed fetch failed")
			continue
		}
		i.correlator.Ingest(indicators...)
		i.logger.WithFields(logrus.Fields{
			"source": source,
			"count":  len(indicators),
		}).Debug("ingested threat indicators")
	}
}
