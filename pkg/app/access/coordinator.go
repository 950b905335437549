package access

import (
	"context"
	"time"

	appbehavior "github.com/SentinelMesh/AccessGate/pkg/app/behavior"
	apppolicy "github.com/SentinelMesh/AccessGate/pkg/app/policy"
	"github.com/SentinelMesh/AccessGate/pkg/app/risk"
	"github.com/SentinelMesh/AccessGate/pkg/app/soar"
	appthreat "github.com/SentinelMesh/AccessGate/pkg/app/threat"
	"github.com/SentinelMesh/AccessGate/pkg/app/trust"
	"github.com/SentinelMesh/AccessGate/pkg/domain"
	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
	"github.com/SentinelMesh/AccessGate/pkg/domain/audit"
	"github.com/SentinelMesh/AccessGate/pkg/domain/behavior"
	"github.com/SentinelMesh/AccessGate/pkg/domain/device"
	"github.com/SentinelMesh/AccessGate/pkg/domain/identity"
	"github.com/SentinelMesh/AccessGate/pkg/domain/threat"
	"github.com/SentinelMesh/AccessGate/pkg/infra/prometheus"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	playbookHighRiskIncident   = "high_risk_incident"
	playbookSuspiciousActivity = "suspicious_activity"
)

//go:generate mockery --name=Coordinator --dir=. --output=../../mocks --filename=access_coordinator_mock.go --case=underscore --with-expecter
type Coordinator interface {
	Evaluate(ctx context.Context, req access.Request) (*access.DecisionResult, error)
}

// Coordinator wiring. The audit sink must be a non-blocking
// implementation; the SOAR enqueuer never blocks by contract.
type coordinator struct {
	profiler       appbehavior.Profiler
	correlator     appthreat.Correlator
	identity       trust.IdentityVerifier
	devices        trust.DeviceAssessor
	engine         *risk.Engine
	pdp            apppolicy.DecisionPoint
	sink           audit.Sink
	responder      soar.Enqueuer
	users          identity.Repository
	deviceHistory  device.HistoryStore
	alertThreshold float64
	logger         *logrus.Logger
}

func NewCoordinator(
	profiler appbehavior.Profiler,
	correlator appthreat.Correlator,
	identityVerifier trust.IdentityVerifier,
	deviceAssessor trust.DeviceAssessor,
	engine *risk.Engine,
	pdp apppolicy.DecisionPoint,
	sink audit.Sink,
	responder soar.Enqueuer,
	users identity.Repository,
	deviceHistory device.HistoryStore,
	alertThreshold float64,
	logger *logrus.Logger,
) Coordinator {
	return &coordinator{
		profiler:       profiler,
		correlator:     correlator,
		identity:       identityVerifier,
		devices:        deviceAssessor,
		engine:         engine,
		pdp:            pdp,
		sink:           sink,
		responder:      responder,
		users:          users,
		deviceHistory:  deviceHistory,
		alertThreshold: alertThreshold,
		logger:         logger,
	}
}

// Evaluate runs the full decision pipeline for one access request. The
// caller always receives a decision; internal collaborator failures
// degrade scores instead of surfacing as errors.
func (c *coordinator) Evaluate(ctx context.Context, req access.Request) (*access.DecisionResult, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	sample := behavior.ActivitySample{
		Timestamp: req.Context.Timestamp,
		Location:  req.Context.Location,
		Resource:  req.Resource,
	}
	attrs := threat.Attributes{
		SourceIP:  req.Context.SourceIP,
		UserAgent: req.Context.UserAgent,
		URL:       req.Resource,
	}

	// The four signals are independent reads against shared stores and
	// can be collected concurrently.
	var (
		verification    trust.Verification
		assessment      trust.Assessment
		behaviorAnomaly float64
		signals         []string
		matches         []threat.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		verification = c.identity.Verify(gctx, req.UserID, req.Context)
		return nil
	})
	g.Go(func() error {
		assessment = c.devices.Assess(gctx, req.Context.DeviceID, req.Context)
		return nil
	})
	g.Go(func() error {
		behaviorAnomaly, signals = c.profiler.ScoreActivity(gctx, req.UserID, sample)
		return nil
	})
	g.Go(func() error {
		matches = c.correlator.Correlate(attrs)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	riskScore := c.engine.Score(verification, assessment, behaviorAnomaly, matches, req.BaseRisk)
	tier := risk.Tier(riskScore)

	role := c.lookupRole(ctx, req.UserID)
	outcome := c.pdp.Decide(apppolicy.Request{
		Resource:         req.Resource,
		UserID:           req.UserID,
		Role:             role,
		RiskScore:        riskScore,
		SatisfiedFactors: verification.Factors,
		Now:              req.Context.Timestamp,
	})

	result := &access.DecisionResult{
		RequestID: req.ID,
		Decision:  outcome.Action,
		PolicyID:  outcome.PolicyID,
		RiskScore: riskScore,
		Tier:      tier,
		SubScores: access.SubScores{
			IdentityConfidence: verification.Confidence,
			DeviceTrust:        assessment.Score,
			BehaviorAnomaly:    behaviorAnomaly,
			ThreatSeverity:     risk.ThreatSeverity(matches),
		},
		Signals:     signals,
		Reason:      outcome.Reason,
		EvaluatedAt: time.Now(),
	}

	prometheus.DecisionTotal.WithLabelValues(string(outcome.Action), outcome.PolicyID).Inc()
	prometheus.RiskScore.Observe(riskScore)

	c.appendAuditRecord(ctx, req, result, len(matches))
	c.recordActivity(ctx, req, sample)

	if riskScore > c.alertThreshold {
		c.triggerResponse(req, result)
	}

	return result, nil
}

func (c *coordinator) lookupRole(ctx context.Context, userID string) string {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		if !domain.IsNotFoundError(err) {
			c.logger.WithError(err).WithField("user_id", userID).Warn("role lookup failed")
		}
		return ""
	}
	return user.Role
}

// appendAuditRecord emits the summarized decision. Sink failures are
// logged, never propagated.
func (c *coordinator) appendAuditRecord(ctx context.Context, req access.Request, result *access.DecisionResult, threatMatches int) {
	record := audit.DecisionRecord{
		ID:            uuid.NewString(),
		RequestID:     req.ID,
		UserID:        req.UserID,
		DeviceID:      req.Context.DeviceID,
		SourceIP:      req.Context.SourceIP,
		Resource:      req.Resource,
		Action:        req.Action,
		Decision:      result.Decision,
		PolicyID:      result.PolicyID,
		RiskScore:     result.RiskScore,
		Severity:      result.Tier,
		SubScores:     result.SubScores,
		Signals:       result.Signals,
		ThreatMatches: threatMatches,
		CreatedAt:     time.Now(),
	}

	if err := c.sink.AppendDecision(ctx, record); err != nil {
		c.logger.WithError(err).WithField("request_id", req.ID).Warn("failed to append decision record")
	}
}

// recordActivity appends to the behavior profile and the device history
// after scoring has completed, never interleaved mid-append.
func (c *coordinator) recordActivity(ctx context.Context, req access.Request, sample behavior.ActivitySample) {
	if err := c.profiler.UpdateProfile(ctx, req.UserID, sample); err != nil {
		c.logger.WithError(err).WithField("user_id", req.UserID).Warn("failed to update behavior profile")
	}

	obs := device.Observation{
		Location: req.Context.Location,
		Network:  req.Context.Network,
		SeenAt:   req.Context.Timestamp,
	}
	if err := c.deviceHistory.Append(ctx, req.Context.DeviceID, obs); err != nil {
		c.logger.WithError(err).WithField("device_id", req.Context.DeviceID).Warn("failed to update device history")
	}
}

// triggerResponse enqueues the tier playbook without blocking on its
// completion. Medium and low tiers take no action beyond the audit log.
func (c *coordinator) triggerResponse(req access.Request, result *access.DecisionResult) {
	var playbookName string
	switch result.Tier {
	case risk.TierCritical:
		playbookName = playbookHighRiskIncident
	case risk.TierHigh:
		playbookName = playbookSuspiciousActivity
	default:
		return
	}

	incident := map[string]any{
		"request_id": req.ID,
		"user_id":    req.UserID,
		"device_id":  req.Context.DeviceID,
		"source_ip":  req.Context.SourceIP,
		"resource":   req.Resource,
		"risk_score": result.RiskScore,
		"severity":   result.Tier,
	}

	c.responder.Enqueue(playbookName, incident)
	c.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"playbook":   playbookName,
		"risk_score": result.RiskScore,
	}).Info("automated response triggered")
}
