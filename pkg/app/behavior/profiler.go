package behavior

import (
	"context"
	"math"
	"sync"

	"github.com/SentinelMesh/AccessGate/pkg/config"
	"github.com/SentinelMesh/AccessGate/pkg/domain/behavior"
	"github.com/sirupsen/logrus"
)

// NeutralScore is returned when no baseline exists for a user: the
// profiler cannot assess, which is not the same as "safe".
const NeutralScore = 0.5

//go:generate mockery --name=Profiler --dir=. --output=../../mocks --filename=behavior_profiler_mock.go --case=underscore --with-expecter
type Profiler interface {
	UpdateProfile(ctx context.Context, userID string, sample behavior.ActivitySample) error
	ScoreActivity(ctx context.Context, userID string, sample behavior.ActivitySample) (float64, []string)
}

type profiler struct {
	store  behavior.Store
	cfg    config.BehaviorConfig
	logger *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewProfiler(store behavior.Store, cfg config.BehaviorConfig, logger *logrus.Logger) Profiler {
	return &profiler{
		store:  store,
		cfg:    cfg,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// userLock returns the per-user mutex, creating it on first use. Updates
// for the same user serialize on it so the bounded history never loses
// appends.
func (p *profiler) userLock(userID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[userID] = lock
	}
	return lock
}

func (p *profiler) UpdateProfile(ctx context.Context, userID string, sample behavior.ActivitySample) error {
	lock := p.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	profile, err := p.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = &behavior.Profile{UserID: userID}
	}

	profile.Append(sample, p.cfg.HistoryBound)
	return p.store.Save(ctx, userID, profile)
}

// ScoreActivity scores the sample against the user's baseline snapshot.
// Store failures degrade to the neutral score rather than failing the
// evaluation.
func (p *profiler) ScoreActivity(ctx context.Context, userID string, sample behavior.ActivitySample) (float64, []string) {
	profile, err := p.store.Load(ctx, userID)
	if err != nil {
		p.logger.WithError(err).WithField("user_id", userID).Warn("behavior store unavailable, scoring neutral")
		return NeutralScore, nil
	}
	if profile.Len() == 0 {
		return NeutralScore, nil
	}

	deviations := map[string]float64{
		"time_of_day":      p.timeOfDayDeviation(profile, sample),
		"location":         p.locationDeviation(profile, sample),
		"session_duration": p.durationDeviation(profile, sample),
		"resource_novelty": p.resourceNovelty(profile, sample),
	}

	weights := p.cfg.Weights
	score := deviations["time_of_day"]*weights.TimeOfDay +
		deviations["location"]*weights.Location +
		deviations["session_duration"]*weights.Duration +
		deviations["resource_novelty"]*weights.Novelty

	signals := make([]string, 0)
	for _, name := range []string{"time_of_day", "location", "session_duration", "resource_novelty"} {
		if deviations[name] > p.cfg.SignalThreshold {
			signals = append(signals, name)
		}
	}

	return clamp(score), signals
}

// timeOfDayDeviation is the wraparound-aware distance of the sample's hour
// from the historical mean hour, normalized to [0,1] over half a day.
func (p *profiler) timeOfDayDeviation(profile *behavior.Profile, sample behavior.ActivitySample) float64 {
	sum := 0.0
	for _, s := range profile.Samples {
		sum += hourOfDay(s)
	}
	mean := sum / float64(profile.Len())
	diff := math.Abs(hourOfDay(sample) - mean)
	if diff > 12 {
		diff = 24 - diff
	}
	return diff / 12
}

// locationDeviation is the distance from the centroid of past locations,
// normalized by the configured radius.
func (p *profiler) locationDeviation(profile *behavior.Profile, sample behavior.ActivitySample) float64 {
	sumLat, sumLon := 0.0, 0.0
	for _, s := range profile.Samples {
		sumLat += s.Location.Lat
		sumLon += s.Location.Lon
	}
	n := float64(profile.Len())
	dist := math.Hypot(sample.Location.Lat-sumLat/n, sample.Location.Lon-sumLon/n)
	return math.Min(dist/p.cfg.GeoRadius, 1.0)
}

func (p *profiler) durationDeviation(profile *behavior.Profile, sample behavior.ActivitySample) float64 {
	sum := 0.0
	for _, s := range profile.Samples {
		sum += s.SessionDuration.Minutes()
	}
	mean := sum / float64(profile.Len())
	denom := math.Max(mean, 1.0)
	return math.Min(math.Abs(sample.SessionDuration.Minutes()-mean)/denom, 1.0)
}

// resourceNovelty is 1 when the resource has never been accessed before.
func (p *profiler) resourceNovelty(profile *behavior.Profile, sample behavior.ActivitySample) float64 {
	for _, s := range profile.Samples {
		if s.Resource == sample.Resource {
			return 0.0
		}
	}
	return 1.0
}

func hourOfDay(s behavior.ActivitySample) float64 {
	return float64(s.Timestamp.Hour()) + float64(s.Timestamp.Minute())/60
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
