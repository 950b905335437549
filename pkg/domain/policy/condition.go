package policy

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

const (
	ConditionRiskThreshold   = "risk_threshold"
	ConditionRiskAbove       = "risk_above"
	ConditionRequiredFactors = "required_factors"
	ConditionTimeWindow      = "time_window"
)

// Input is the evaluation context a condition is interpreted against.
type Input struct {
	RiskScore        float64
	SatisfiedFactors map[string]bool
	Now              time.Time
}

// Condition is one typed policy predicate. The decision point ANDs all
// of a policy's conditions together.
type Condition interface {
	Evaluate(in Input) bool
}

// RiskThreshold matches while the computed risk stays at or below Max.
type RiskThreshold struct {
	Max float64 `mapstructure:"max"`
}

func (c RiskThreshold) Evaluate(in Input) bool {
	return in.RiskScore <= c.Max
}

// RiskAbove matches once the computed risk exceeds Min. Deny policies
// targeting risky requests are built on it.
type RiskAbove struct {
	Min float64 `mapstructure:"min"`
}

func (c RiskAbove) Evaluate(in Input) bool {
	return in.RiskScore > c.Min
}

// RequiredFactors matches when every named authentication factor was
// satisfied during identity verification.
type RequiredFactors struct {
	Factors []string `mapstructure:"factors"`
}

func (c RequiredFactors) Evaluate(in Input) bool {
	for _, factor := range c.Factors {
		if !in.SatisfiedFactors[factor] {
			return false
		}
	}
	return true
}

// TimeWindow matches when the evaluation time falls inside the daily
// window. Windows spanning midnight (start > end) are supported.
type TimeWindow struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

func (c TimeWindow) Evaluate(in Input) bool {
	start, err := time.Parse("15:04", c.Start)
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", c.End)
	if err != nil {
		return false
	}
	now := in.Now.Hour()*60 + in.Now.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()
	if startMin <= endMin {
		return now >= startMin && now <= endMin
	}
	return now >= startMin || now <= endMin
}

// DecodeCondition builds a typed condition from its configuration form.
// Unknown types and malformed settings are load-time failures.
func DecodeCondition(condType string, settings map[string]interface{}) (Condition, error) {
	switch condType {
	case ConditionRiskThreshold:
		var cond RiskThreshold
		if err := mapstructure.Decode(settings, &cond); err != nil {
			return nil, fmt.Errorf("invalid %s condition: %w", condType, err)
		}
		if cond.Max < 0 || cond.Max > 1 {
			return nil, fmt.Errorf("risk_threshold max must be between 0 and 1, got %f", cond.Max)
		}
		return cond, nil
	case ConditionRiskAbove:
		var cond RiskAbove
		if err := mapstructure.Decode(settings, &cond); err != nil {
			return nil, fmt.Errorf("invalid %s condition: %w", condType, err)
		}
		if cond.Min < 0 || cond.Min > 1 {
			return nil, fmt.Errorf("risk_above min must be between 0 and 1, got %f", cond.Min)
		}
		return cond, nil
	case ConditionRequiredFactors:
		var cond RequiredFactors
		if err := mapstructure.Decode(settings, &cond); err != nil {
			return nil, fmt.Errorf("invalid %s condition: %w", condType, err)
		}
		if len(cond.Factors) == 0 {
			return nil, fmt.Errorf("required_factors needs at least one factor")
		}
		return cond, nil
	case ConditionTimeWindow:
		var cond TimeWindow
		if err := mapstructure.Decode(settings, &cond); err != nil {
			return nil, fmt.Errorf("invalid %s condition: %w", condType, err)
		}
		if _, err := time.Parse("15:04", cond.Start); err != nil {
			return nil, fmt.Errorf("time_window start %q: %w", cond.Start, err)
		}
		if _, err := time.Parse("15:04", cond.End); err != nil {
			return nil, fmt.Errorf("time_window end %q: %w", cond.End, err)
		}
		return cond, nil
	default:
		return nil, fmt.Errorf("unknown condition type: %s", condType)
	}
}
