package auditsink

import (
	"context"

	"github.com/SentinelMesh/AccessGate/pkg/domain/audit"
	"github.com/SentinelMesh/AccessGate/pkg/domain/playbook"
	"github.com/sirupsen/logrus"
)

// LogSink writes audit records as structured log entries. It is the
// default sink when Kafka export is disabled.
type LogSink struct {
	logger *logrus.Logger
}

func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) AppendDecision(_ context.Context, record audit.DecisionRecord) error {
	s.logger.WithFields(logrus.Fields{
		"audit_type": "decision",
		"record":     record,
	}).Info("access decision")
	return nil
}

func (s *LogSink) AppendExecution(_ context.Context, result playbook.ExecutionResult) error {
	s.logger.WithFields(logrus.Fields{
		"audit_type": "execution",
		"record":     result,
	}).Info("playbook execution")
	return nil
}
