package audit

import (
	"context"

	"github.com/SentinelMesh/AccessGate/pkg/domain/playbook"
)

// Sink is the append-only event log. Implementations must not block the
// decision path; append failures are logged by the caller, never
// propagated as evaluation failures.
//
//go:generate mockery --name=Sink --dir=. --output=../../mocks --filename=audit_sink_mock.go --case=underscore --with-expecter
type Sink interface {
	AppendDecision(ctx context.Context, record DecisionRecord) error
	AppendExecution(ctx context.Context, result playbook.ExecutionResult) error
}
