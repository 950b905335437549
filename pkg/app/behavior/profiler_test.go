package behavior

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/config"
	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
	"github.com/SentinelMesh/AccessGate/pkg/domain/behavior"
	"github.com/SentinelMesh/AccessGate/pkg/infra/behaviorstore"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBehaviorConfig() config.BehaviorConfig {
	return config.BehaviorConfig{
		HistoryBound:    1000,
		SignalThreshold: 0.6,
		GeoRadius:       5.0,
		Weights: config.BehaviorWeightsConfig{
			TimeOfDay: 0.3,
			Location:  0.3,
			Duration:  0.2,
			Novelty:   0.2,
		},
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func baselineSample(hour int) behavior.ActivitySample {
	return behavior.ActivitySample{
		Timestamp:       time.Date(2025, 6, 15, hour, 0, 0, 0, time.UTC),
		Location:        access.Coordinates{Lat: 40.7, Lon: -74.0},
		SessionDuration: 30 * time.Minute,
		Resource:        "financial_data",
	}
}

func TestProfiler_ScoreActivity_NoBaseline(t *testing.T) {
	profiler := NewProfiler(behaviorstore.NewMemoryStore(), testBehaviorConfig(), testLogger())

	score, signals := profiler.ScoreActivity(context.Background(), "unknown", baselineSample(10))

	assert.Equal(t, NeutralScore, score)
	assert.Empty(t, signals)
}

func TestProfiler_ScoreActivity_ConsistentBehavior(t *testing.T) {
	ctx := context.Background()
	profiler := NewProfiler(behaviorstore.NewMemoryStore(), testBehaviorConfig(), testLogger())

	for i := 0; i < 20; i++ {
		require.NoError(t, profiler.UpdateProfile(ctx, "user1", baselineSample(10)))
	}

	score, signals := profiler.ScoreActivity(ctx, "user1", baselineSample(10))

	assert.InDelta(t, 0.0, score, 1e-9)
	assert.Empty(t, signals)
}

func TestProfiler_ScoreActivity_AnomalousBehavior(t *testing.T) {
	ctx := context.Background()
	profiler := NewProfiler(behaviorstore.NewMemoryStore(), testBehaviorConfig(), testLogger())

	for i := 0; i < 20; i++ {
		require.NoError(t, profiler.UpdateProfile(ctx, "user1", baselineSample(10)))
	}

	anomalous := behavior.ActivitySample{
		Timestamp:       time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC),
		Location:        access.Coordinates{Lat: 51.5, Lon: -0.1},
		SessionDuration: 6 * time.Hour,
		Resource:        "hr_records",
	}

	score, signals := profiler.ScoreActivity(ctx, "user1", anomalous)

	baseline, baselineSignals := profiler.ScoreActivity(ctx, "user1", baselineSample(10))
	assert.Greater(t, score, baseline)
	assert.Empty(t, baselineSignals)
	assert.Contains(t, signals, "location")
	assert.Contains(t, signals, "resource_novelty")
}

func TestProfiler_ScoreActivity_Deterministic(t *testing.T) {
	ctx := context.Background()
	profiler := NewProfiler(behaviorstore.NewMemoryStore(), testBehaviorConfig(), testLogger())

	for i := 0; i < 5; i++ {
		require.NoError(t, profiler.UpdateProfile(ctx, "user1", baselineSample(9+i)))
	}

	sample := baselineSample(14)
	firstScore, firstSignals := profiler.ScoreActivity(ctx, "user1", sample)
	for i := 0; i < 10; i++ {
		score, signals := profiler.ScoreActivity(ctx, "user1", sample)
		assert.Equal(t, firstScore, score)
		assert.Equal(t, firstSignals, signals)
	}
}

func TestProfiler_UpdateProfile_BoundedHistory(t *testing.T) {
	ctx := context.Background()
	cfg := testBehaviorConfig()
	cfg.HistoryBound = 5
	store := behaviorstore.NewMemoryStore()
	profiler := NewProfiler(store, cfg, testLogger())

	for i := 0; i < 6; i++ {
		sample := baselineSample(10)
		sample.Resource = fmt.Sprintf("resource-%d", i)
		require.NoError(t, profiler.UpdateProfile(ctx, "user1", sample))
	}

	profile, err := store.Load(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 5, profile.Len())

	// The oldest sample (resource-0) was evicted, the newest leads.
	assert.Equal(t, "resource-5", profile.Samples[0].Resource)
	assert.Equal(t, "resource-1", profile.Samples[4].Resource)
}

func TestProfiler_UpdateProfile_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	store := behaviorstore.NewMemoryStore()
	profiler := NewProfiler(store, testBehaviorConfig(), testLogger())

	const writers = 8
	const perWriter = 25

	done := make(chan struct{})
	for w := 0; w < writers; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < perWriter; i++ {
				_ = profiler.UpdateProfile(ctx, "user1", baselineSample(10))
			}
		}()
	}
	for w := 0; w < writers; w++ {
		<-done
	}

	profile, err := store.Load(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, writers*perWriter, profile.Len())
}
