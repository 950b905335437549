package policy

import (
	"sort"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
	"github.com/SentinelMesh/AccessGate/pkg/domain/policy"
)

// DefaultPolicyID is reported when no explicit policy matched.
const DefaultPolicyID = "default"

// Outcome is the result of one policy evaluation.
type Outcome struct {
	Action   access.Decision
	PolicyID string
	Reason   string
}

// Request is the policy-relevant slice of an access evaluation.
type Request struct {
	Resource         string
	UserID           string
	Role             string
	RiskScore        float64
	SatisfiedFactors map[string]bool
	Now              time.Time
}

//go:generate mockery --name=DecisionPoint --dir=. --output=../../mocks --filename=decision_point_mock.go --case=underscore --with-expecter
type DecisionPoint interface {
	Decide(req Request) Outcome
}

// decisionPoint evaluates policies in ascending priority order and stops
// at the first full match. Evaluation is deterministic.
type decisionPoint struct {
	policies      []policy.Policy
	defaultAction access.Decision
}

func NewDecisionPoint(policies []policy.Policy, defaultAction access.Decision) DecisionPoint {
	sorted := make([]policy.Policy, len(policies))
	copy(sorted, policies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return &decisionPoint{
		policies:      sorted,
		defaultAction: defaultAction,
	}
}

// Decide returns the first matching policy's action, or the configured
// default. Any failed predicate short-circuits the policy and falls
// through to the next in priority order.
func (d *decisionPoint) Decide(req Request) Outcome {
	in := policy.Input{
		RiskScore:        req.RiskScore,
		SatisfiedFactors: req.SatisfiedFactors,
		Now:              req.Now,
	}

	for _, p := range d.policies {
		if !p.MatchesTarget(req.Resource, req.UserID, req.Role) {
			continue
		}
		if !p.Matches(in) {
			continue
		}
		return Outcome{
			Action:   p.Action,
			PolicyID: p.ID,
			Reason:   "matched policy: " + p.Name,
		}
	}

	return Outcome{
		Action:   d.defaultAction,
		PolicyID: DefaultPolicyID,
		Reason:   "no explicit policy matched",
	}
}
