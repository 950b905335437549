package risk

import (
	"math"

	"github.com/SentinelMesh/AccessGate/pkg/app/trust"
	"github.com/SentinelMesh/AccessGate/pkg/config"
	"github.com/SentinelMesh/AccessGate/pkg/domain/threat"
)

// Tier labels for risk scores, used for playbook selection and audit
// severity.
const (
	TierCritical = "critical"
	TierHigh     = "high"
	TierMedium   = "medium"
	TierLow      = "low"
)

// Engine combines the factor scores into one normalized risk score.
// Score is pure: same inputs, same output, no side effects.
type Engine struct {
	weights config.RiskWeightsConfig
}

func NewEngine(weights config.RiskWeightsConfig) *Engine {
	return &Engine{weights: weights}
}

// Score computes the weighted risk from identity verification, device
// trust, behavioral anomaly and threat intelligence, plus the
// request-intrinsic base risk. The result is clamped to [0,1].
func (e *Engine) Score(
	identity trust.Verification,
	device trust.Assessment,
	behaviorAnomaly float64,
	threatMatches []threat.Match,
	baseRisk float64,
) float64 {
	identityRisk := 1.0 - identity.Confidence
	deviceRisk := 1.0 - device.Score
	threatRisk := ThreatSeverity(threatMatches)

	score := identityRisk*e.weights.Identity +
		deviceRisk*e.weights.Device +
		behaviorAnomaly*e.weights.Behavior +
		threatRisk*e.weights.Threat +
		baseRisk

	return math.Max(0.0, math.Min(1.0, score))
}

// ThreatSeverity maps the strongest match to a fixed severity factor:
// 0.9 high or critical, 0.6 medium, 0.3 low, 0 with no matches. It is
// the single owner of the severity table; audit sub-scores reuse it.
func ThreatSeverity(matches []threat.Match) float64 {
	factor := 0.0
	for _, m := range matches {
		var f float64
		switch m.Indicator.Classification {
		case threat.ClassificationCritical, threat.ClassificationHigh:
			f = 0.9
		case threat.ClassificationMedium:
			f = 0.6
		case threat.ClassificationLow:
			f = 0.3
		}
		factor = math.Max(factor, f)
	}
	return factor
}

// Tier maps a risk score to its severity tier.
func Tier(score float64) string {
	switch {
	case score >= 0.8:
		return TierCritical
	case score >= 0.6:
		return TierHigh
	case score >= 0.4:
		return TierMedium
	default:
		return TierLow
	}
}
