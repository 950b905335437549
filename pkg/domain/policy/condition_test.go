package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCondition(t *testing.T) {
	tests := []struct {
		name     string
		condType string
		settings map[string]interface{}
		wantErr  bool
	}{
		{
			name:     "valid risk threshold",
			condType: ConditionRiskThreshold,
			settings: map[string]interface{}{"max": 0.5},
		},
		{
			name:     "risk threshold out of range",
			condType: ConditionRiskThreshold,
			settings: map[string]interface{}{"max": 1.5},
			wantErr:  true,
		},
		{
			name:     "valid risk above",
			condType: ConditionRiskAbove,
			settings: map[string]interface{}{"min": 0.7},
		},
		{
			name:     "risk above out of range",
			condType: ConditionRiskAbove,
			settings: map[string]interface{}{"min": -0.1},
			wantErr:  true,
		},
		{
			name:     "valid required factors",
			condType: ConditionRequiredFactors,
			settings: map[string]interface{}{"factors": []string{"password", "mfa"}},
		},
		{
			name:     "required factors empty",
			condType: ConditionRequiredFactors,
			settings: map[string]interface{}{"factors": []string{}},
			wantErr:  true,
		},
		{
			name:     "valid time window",
			condType: ConditionTimeWindow,
			settings: map[string]interface{}{"start": "08:00", "end": "18:00"},
		},
		{
			name:     "time window malformed start",
			condType: ConditionTimeWindow,
			settings: map[string]interface{}{"start": "8am", "end": "18:00"},
			wantErr:  true,
		},
		{
			name:     "unknown condition type",
			condType: "device_posture",
			settings: map[string]interface{}{},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, err := DecodeCondition(tt.condType, tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, cond)
		})
	}
}

func TestRiskThreshold_Evaluate(t *testing.T) {
	cond := RiskThreshold{Max: 0.5}

	assert.True(t, cond.Evaluate(Input{RiskScore: 0.3}))
	assert.True(t, cond.Evaluate(Input{RiskScore: 0.5}))
	assert.False(t, cond.Evaluate(Input{RiskScore: 0.51}))
}

func TestRiskAbove_Evaluate(t *testing.T) {
	cond := RiskAbove{Min: 0.7}

	assert.False(t, cond.Evaluate(Input{RiskScore: 0.7}))
	assert.True(t, cond.Evaluate(Input{RiskScore: 0.71}))
}

func TestRequiredFactors_Evaluate(t *testing.T) {
	cond := RequiredFactors{Factors: []string{"password", "mfa"}}

	tests := []struct {
		name      string
		satisfied map[string]bool
		want      bool
	}{
		{
			name:      "all factors satisfied",
			satisfied: map[string]bool{"password": true, "mfa": true},
			want:      true,
		},
		{
			name:      "one factor missing",
			satisfied: map[string]bool{"password": true, "mfa": false},
			want:      false,
		},
		{
			name:      "nil factor map",
			satisfied: nil,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cond.Evaluate(Input{SatisfiedFactors: tt.satisfied}))
		})
	}
}

func TestTimeWindow_Evaluate(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2025, 6, 15, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		cond TimeWindow
		now  time.Time
		want bool
	}{
		{
			name: "inside business hours",
			cond: TimeWindow{Start: "08:00", End: "18:00"},
			now:  at(12, 30),
			want: true,
		},
		{
			name: "outside business hours",
			cond: TimeWindow{Start: "08:00", End: "18:00"},
			now:  at(20, 0),
			want: false,
		},
		{
			name: "boundary start inclusive",
			cond: TimeWindow{Start: "08:00", End: "18:00"},
			now:  at(8, 0),
			want: true,
		},
		{
			name: "midnight spanning window late night",
			cond: TimeWindow{Start: "22:00", End: "06:00"},
			now:  at(23, 30),
			want: true,
		},
		{
			name: "midnight spanning window early morning",
			cond: TimeWindow{Start: "22:00", End: "06:00"},
			now:  at(5, 0),
			want: true,
		},
		{
			name: "midnight spanning window daytime",
			cond: TimeWindow{Start: "22:00", End: "06:00"},
			now:  at(12, 0),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Evaluate(Input{Now: tt.now}))
		})
	}
}

func TestPolicy_MatchesTarget(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		resource string
		userID   string
		role     string
		want     bool
	}{
		{
			name:     "empty lists match everything",
			policy:   Policy{},
			resource: "financial_data",
			userID:   "user1",
			role:     "analyst",
			want:     true,
		},
		{
			name:     "exact resource match",
			policy:   Policy{Resources: []string{"financial_data"}},
			resource: "financial_data",
			want:     true,
		},
		{
			name:     "trailing wildcard resource",
			policy:   Policy{Resources: []string{"reports/*"}},
			resource: "reports/q3",
			want:     true,
		},
		{
			name:     "star matches all",
			policy:   Policy{Resources: []string{"*"}},
			resource: "anything",
			want:     true,
		},
		{
			name:     "resource mismatch",
			policy:   Policy{Resources: []string{"financial_data"}},
			resource: "hr_data",
			want:     false,
		},
		{
			name:   "role mismatch",
			policy: Policy{Roles: []string{"admin"}},
			role:   "analyst",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.MatchesTarget(tt.resource, tt.userID, tt.role))
		})
	}
}
