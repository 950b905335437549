package auditsink

import (
	"context"
	"sync"

	"github.com/SentinelMesh/AccessGate/pkg/domain/audit"
	"github.com/SentinelMesh/AccessGate/pkg/domain/playbook"
	"github.com/SentinelMesh/AccessGate/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

type auditEvent struct {
	decision  *audit.DecisionRecord
	execution *playbook.ExecutionResult
}

// AsyncSink decouples the decision path from sink latency. Appends never
// block: when the buffer is full the event is dropped and counted.
type AsyncSink struct {
	next   audit.Sink
	events chan auditEvent
	logger *logrus.Logger
	wg     sync.WaitGroup
	once   sync.Once
}

func NewAsyncSink(next audit.Sink, bufferSize int, logger *logrus.Logger) *AsyncSink {
	s := &AsyncSink{
		next:   next,
		events: make(chan auditEvent, bufferSize),
		logger: logger,
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *AsyncSink) AppendDecision(_ context.Context, record audit.DecisionRecord) error {
	s.enqueue(auditEvent{decision: &record})
	return nil
}

func (s *AsyncSink) AppendExecution(_ context.Context, result playbook.ExecutionResult) error {
	s.enqueue(auditEvent{execution: &result})
	return nil
}

func (s *AsyncSink) enqueue(evt auditEvent) {
	select {
	case s.events <- evt:
	default:
		prometheus.AuditDropped.Inc()
		s.logger.Warn("audit buffer full, dropping event")
	}
}

func (s *AsyncSink) run() {
	defer s.wg.Done()
	ctx := context.Background()
	for evt := range s.events {
		var err error
		switch {
		case evt.decision != nil:
			err = s.next.AppendDecision(ctx, *evt.decision)
		case evt.execution != nil:
			err = s.next.AppendExecution(ctx, *evt.execution)
		}
		if err != nil {
			s.logger.WithError(err).Error("failed to append audit event")
		}
	}
}

// Close drains buffered events and waits for the writer to finish.
func (s *AsyncSink) Close() {
	s.once.Do(func() {
		close(s.events)
	})
	s.wg.Wait()
}
