package audit

import (
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
)

// DecisionRecord is the immutable, append-only audit form of an access
// evaluation. The full request context is summarized, never stored.
type DecisionRecord struct {
	ID            string           `json:"id"`
	RequestID     string           `json:"request_id"`
	UserID        string           `json:"user_id"`
	DeviceID      string           `json:"device_id"`
	SourceIP      string           `json:"source_ip"`
	Resource      string           `json:"resource"`
	Action        string           `json:"action"`
	Decision      access.Decision  `json:"decision"`
	PolicyID      string           `json:"policy_id"`
	RiskScore     float64          `json:"risk_score"`
	Severity      string           `json:"severity"`
	SubScores     access.SubScores `json:"sub_scores"`
	Signals       []string         `json:"signals,omitempty"`
	ThreatMatches int              `json:"threat_matches"`
	CreatedAt     time.Time        `json:"created_at"`
}
