package threat

import (
	"time"
)

type IndicatorType string

const (
	IndicatorIP        IndicatorType = "ip"
	IndicatorUserAgent IndicatorType = "user_agent"
	IndicatorURL       IndicatorType = "url"
)

type Classification string

const (
	ClassificationLow      Classification = "low"
	ClassificationMedium   Classification = "medium"
	ClassificationHigh     Classification = "high"
	ClassificationCritical Classification = "critical"
)

// Indicator is one indicator of compromise. Indicators are upserted by
// feed ingestion and read-only on the decision path.
type Indicator struct {
	Value          string         `json:"value"`
	Type           IndicatorType  `json:"type"`
	Confidence     float64        `json:"confidence"`
	Classification Classification `json:"classification"`
	Description    string         `json:"description"`
	Source         string         `json:"source"`
	FirstSeen      time.Time      `json:"first_seen"`
	LastSeen       time.Time      `json:"last_seen"`
	ValidUntil     time.Time      `json:"valid_until"`
}

// Key identifies an indicator for upsert purposes.
func (i Indicator) Key() string {
	return string(i.Type) + ":" + i.Value
}

// ActiveAt reports whether the indicator is inside its validity window.
// A zero ValidUntil means the indicator never expires.
func (i Indicator) ActiveAt(t time.Time) bool {
	if i.ValidUntil.IsZero() {
		return true
	}
	return t.Before(i.ValidUntil)
}

// Match is one correlation hit against the indicator store.
type Match struct {
	Indicator  Indicator `json:"indicator"`
	Confidence float64   `json:"confidence"`
	Exact      bool      `json:"exact"`
	Reason     string    `json:"reason"`
}

// Attributes are the request-derived values matched against indicators.
type Attributes struct {
	SourceIP  string `json:"source_ip"`
	UserAgent string `json:"user_agent"`
	URL       string `json:"url"`
}
