package soar

import (
	"context"
	"sync"

	"github.com/SentinelMesh/AccessGate/pkg/domain/audit"
	"github.com/SentinelMesh/AccessGate/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

// Enqueuer decouples the decision path from playbook execution: the
// coordinator enqueues and returns immediately.
//
//go:generate mockery --name=Enqueuer --dir=. --output=../../mocks --filename=soar_enqueuer_mock.go --case=underscore --with-expecter
type Enqueuer interface {
	Enqueue(playbookName string, incident map[string]any) bool
}

type job struct {
	playbook string
	incident map[string]any
}

// Worker runs playbook executions on its own goroutine, off the decision
// path. A full queue drops the job with a warning rather than blocking.
type Worker struct {
	orchestrator Orchestrator
	sink         audit.Sink
	queue        chan job
	logger       *logrus.Logger
	wg           sync.WaitGroup
}

func NewWorker(
	orchestrator Orchestrator,
	sink audit.Sink,
	queueSize int,
	logger *logrus.Logger,
) *Worker {
	w := &Worker{
		orchestrator: orchestrator,
		sink:         sink,
		queue:        make(chan job, queueSize),
		logger:       logger,
	}
	w.wg.Add(1)
	return w
}

func (w *Worker) Enqueue(playbookName string, incident map[string]any) bool {
	select {
	case w.queue <- job{playbook: playbookName, incident: incident}:
		return true
	default:
		w.logger.WithField("playbook", playbookName).Warn("response queue full, dropping playbook execution")
		prometheus.PlaybookDropped.Inc()
		return false
	}
}

// Run consumes the queue until the context is cancelled, then drains
// what is already enqueued. It must be called exactly once.
func (w *Worker) Run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case j := <-w.queue:
					w.execute(context.Background(), j)
				default:
					w.logger.Info("response worker stopped")
					return
				}
			}
		case j := <-w.queue:
			w.execute(ctx, j)
		}
	}
}

// Wait blocks until the run loop has exited.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) execute(ctx context.Context, j job) {
	result, err := w.orchestrator.ExecutePlaybook(ctx, j.playbook, j.incident)
	if err != nil {
		w.logger.WithError(err).WithField("playbook", j.playbook).Error("playbook execution failed")
		prometheus.PlaybookRunsTotal.WithLabelValues(j.playbook, "error").Inc()
		return
	}

	outcome := "failure"
	if result.OverallSuccess {
		outcome = "success"
	}
	prometheus.PlaybookRunsTotal.WithLabelValues(j.playbook, outcome).Inc()

	if err := w.sink.AppendExecution(ctx, *result); err != nil {
		w.logger.WithError(err).Warn("failed to append playbook execution to audit sink")
	}

	w.logger.WithFields(logrus.Fields{
		"playbook":        j.playbook,
		"execution_id":    result.ID,
		"status":          result.Status,
		"steps":           len(result.Steps),
		"overall_success": result.OverallSuccess,
	}).Info("playbook execution finished")
}
