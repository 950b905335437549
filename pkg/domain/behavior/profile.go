package behavior

import (
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
)

// ActivitySample is one observed user activity used to build the baseline.
type ActivitySample struct {
	Timestamp       time.Time          `json:"timestamp"`
	Location        access.Coordinates `json:"location"`
	SessionDuration time.Duration      `json:"session_duration"`
	Resource        string             `json:"resource"`
}

// Profile is the rolling per-user baseline. Samples are ordered newest
// first; the history is bounded and evicts the oldest entries.
type Profile struct {
	UserID  string           `json:"user_id"`
	Samples []ActivitySample `json:"samples"`
}

// Append inserts the sample at the front and evicts past the bound.
func (p *Profile) Append(sample ActivitySample, bound int) {
	p.Samples = append([]ActivitySample{sample}, p.Samples...)
	if bound > 0 && len(p.Samples) > bound {
		p.Samples = p.Samples[:bound]
	}
}

func (p *Profile) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Samples)
}
