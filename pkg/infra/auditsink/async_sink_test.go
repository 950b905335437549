package auditsink

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain/audit"
	"github.com/SentinelMesh/AccessGate/pkg/domain/playbook"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu         sync.Mutex
	decisions  []audit.DecisionRecord
	executions []playbook.ExecutionResult
}

func (s *recordingSink) AppendDecision(_ context.Context, record audit.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, record)
	return nil
}

func (s *recordingSink) AppendExecution(_ context.Context, result playbook.ExecutionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions = append(s.executions, result)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestAsyncSink_ForwardsEvents(t *testing.T) {
	next := &recordingSink{}
	sink := NewAsyncSink(next, 10, quietLogger())

	require.NoError(t, sink.AppendDecision(context.Background(), audit.DecisionRecord{ID: "d1"}))
	require.NoError(t, sink.AppendExecution(context.Background(), playbook.ExecutionResult{ID: "e1"}))

	sink.Close()

	require.Len(t, next.decisions, 1)
	assert.Equal(t, "d1", next.decisions[0].ID)
	require.Len(t, next.executions, 1)
	assert.Equal(t, "e1", next.executions[0].ID)
}

func TestAsyncSink_AppendNeverBlocks(t *testing.T) {
	next := &recordingSink{}
	sink := NewAsyncSink(next, 1, quietLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			_ = sink.AppendDecision(context.Background(), audit.DecisionRecord{})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("append blocked on a full buffer")
	}
	sink.Close()
}

func TestAsyncSink_CloseIsIdempotent(t *testing.T) {
	sink := NewAsyncSink(&recordingSink{}, 10, quietLogger())

	sink.Close()
	sink.Close()
}
