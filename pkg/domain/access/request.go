package access

import (
	"time"
)

// Decision is the terminal outcome of a policy evaluation.
type Decision string

const (
	DecisionAllow     Decision = "allow"
	DecisionDeny      Decision = "deny"
	DecisionChallenge Decision = "challenge"
	DecisionReview    Decision = "review"
)

func (d Decision) IsValid() bool {
	switch d {
	case DecisionAllow, DecisionDeny, DecisionChallenge, DecisionReview:
		return true
	}
	return false
}

type Coordinates struct {
	Lat float64 `json:"lat" mapstructure:"lat"`
	Lon float64 `json:"lon" mapstructure:"lon"`
}

// UserContext carries the ephemeral signals of a single access attempt.
// It is discarded after evaluation; only the summarized decision record
// is retained.
type UserContext struct {
	UserID          string      `json:"user_id"`
	DeviceID        string      `json:"device_id"`
	SourceIP        string      `json:"source_ip"`
	UserAgent       string      `json:"user_agent"`
	Location        Coordinates `json:"location"`
	Network         string      `json:"network"`
	Timestamp time.Time `json:"timestamp"`
	// Credential material supplied with the attempt. Consumed during
	// verification; decision results and audit records carry only the
	// summarized scores, never these values.
	Credential      string `json:"credential,omitempty"`
	SecondFactor    string `json:"second_factor,omitempty"`
	DeviceAssertion string `json:"device_assertion,omitempty"`
}

// Request is one access attempt against a resource.
type Request struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Resource  string      `json:"resource"`
	Action    string      `json:"action"`
	SessionID string      `json:"session_id"`
	Context   UserContext `json:"context"`
	Timestamp time.Time   `json:"timestamp"`
	// BaseRisk is the request-intrinsic risk supplied by the caller,
	// e.g. elevated for privileged resources. Zero for ordinary requests.
	BaseRisk float64 `json:"base_risk"`
}

// SubScores holds the constituent factor scores that fed the risk engine.
type SubScores struct {
	IdentityConfidence float64 `json:"identity_confidence"`
	DeviceTrust        float64 `json:"device_trust"`
	BehaviorAnomaly    float64 `json:"behavior_anomaly"`
	ThreatSeverity     float64 `json:"threat_severity"`
}

type DecisionResult struct {
	RequestID   string    `json:"request_id"`
	Decision    Decision  `json:"decision"`
	PolicyID    string    `json:"policy_id"`
	RiskScore   float64   `json:"risk_score"`
	Tier        string    `json:"tier"`
	SubScores   SubScores `json:"sub_scores"`
	Signals     []string  `json:"signals,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}
