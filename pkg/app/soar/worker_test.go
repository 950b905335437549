package soar

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain/audit"
	"github.com/SentinelMesh/AccessGate/pkg/domain/playbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu         sync.Mutex
	executions []playbook.ExecutionResult
}

func (s *captureSink) AppendDecision(context.Context, audit.DecisionRecord) error { return nil }

func (s *captureSink) AppendExecution(_ context.Context, result playbook.ExecutionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions = append(s.executions, result)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.executions)
}

func TestWorker_Enqueue_DropsWhenFull(t *testing.T) {
	orchestrator := NewOrchestrator(map[string]playbook.Playbook{}, NewRegistry(), quietLogger())
	worker := NewWorker(orchestrator, &captureSink{}, 1, quietLogger())

	// The worker is not running, so the single-slot queue fills up.
	assert.True(t, worker.Enqueue("suspicious_activity", nil))
	assert.False(t, worker.Enqueue("suspicious_activity", nil))
}

func TestWorker_ExecutesEnqueuedPlaybooks(t *testing.T) {
	alert := &recordingActuator{name: "send_alert", succeed: true}
	registry := NewRegistry()
	require.NoError(t, registry.Register(alert))
	pb := playbook.Playbook{
		Name:  "suspicious_activity",
		Steps: []playbook.Step{{Name: "Alert", Action: "send_alert"}},
	}
	sink := &captureSink{}
	orchestrator := NewOrchestrator(map[string]playbook.Playbook{pb.Name: pb}, registry, quietLogger())
	worker := NewWorker(orchestrator, sink, 10, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	require.True(t, worker.Enqueue("suspicious_activity", map[string]any{"user_id": "alice"}))

	assert.Eventually(t, func() bool {
		return sink.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	worker.Wait()

	require.Len(t, alert.calls, 1)
	assert.Equal(t, "alice", alert.calls[0]["user_id"])
}

func TestWorker_DrainsQueueOnShutdown(t *testing.T) {
	alert := &recordingActuator{name: "send_alert", succeed: true}
	registry := NewRegistry()
	require.NoError(t, registry.Register(alert))
	pb := playbook.Playbook{
		Name:  "suspicious_activity",
		Steps: []playbook.Step{{Name: "Alert", Action: "send_alert"}},
	}
	sink := &captureSink{}
	orchestrator := NewOrchestrator(map[string]playbook.Playbook{pb.Name: pb}, registry, quietLogger())
	worker := NewWorker(orchestrator, sink, 10, quietLogger())

	for i := 0; i < 5; i++ {
		require.True(t, worker.Enqueue("suspicious_activity", nil))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go worker.Run(ctx)
	worker.Wait()

	assert.Equal(t, 5, sink.count())
}
