package policy

import (
	"strings"

	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
)

// Policy is a prioritized access rule. Lower priority numbers are
// evaluated first. Exactly one policy, possibly the implicit default,
// is selected per evaluation.
type Policy struct {
	ID         string
	Name       string
	Priority   int
	Resources  []string
	Users      []string
	Roles      []string
	Conditions []Condition
	Action     access.Decision
}

// MatchesTarget reports whether the policy applies to the request's
// resource, user and role. Empty pattern lists match everything.
func (p Policy) MatchesTarget(resource, userID, role string) bool {
	if !matchesAny(p.Resources, resource) {
		return false
	}
	if !matchesAny(p.Users, userID) {
		return false
	}
	return matchesAny(p.Roles, role)
}

// Matches reports whether every condition holds for the evaluation input.
// Conditions are independent predicates ANDed together.
func (p Policy) Matches(in Input) bool {
	for _, cond := range p.Conditions {
		if !cond.Evaluate(in) {
			return false
		}
	}
	return true
}

func matchesAny(patterns []string, value string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if matchPattern(pattern, value) {
			return true
		}
	}
	return false
}

// matchPattern supports exact matches and a trailing-* wildcard.
func matchPattern(pattern, value string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(value, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == value
}
