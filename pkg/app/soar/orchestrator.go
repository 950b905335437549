package soar

import (
	"context"
	"fmt"
	"time"

	"github.com/SentinelMesh/AccessGate/pkg/domain"
	"github.com/SentinelMesh/AccessGate/pkg/domain/playbook"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Orchestrator --dir=. --output=../../mocks --filename=soar_orchestrator_mock.go --case=underscore --with-expecter
type Orchestrator interface {
	ExecutePlaybook(ctx context.Context, name string, incident map[string]any) (*playbook.ExecutionResult, error)
}

// orchestrator runs playbooks step by step. Unknown actions are recorded
// step failures, never panics. Cancellation is honored between steps;
// a started actuator call runs to completion.
type orchestrator struct {
	playbooks map[string]playbook.Playbook
	registry  *Registry
	logger    *logrus.Logger
}

func NewOrchestrator(
	playbooks map[string]playbook.Playbook,
	registry *Registry,
	logger *logrus.Logger,
) Orchestrator {
	return &orchestrator{
		playbooks: playbooks,
		registry:  registry,
		logger:    logger,
	}
}

func (o *orchestrator) ExecutePlaybook(
	ctx context.Context,
	name string,
	incident map[string]any,
) (*playbook.ExecutionResult, error) {
	pb, ok := o.playbooks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlaybookNotFound, name)
	}

	result := &playbook.ExecutionResult{
		ID:        uuid.NewString(),
		Playbook:  name,
		Status:    playbook.StatusPending,
		StartedAt: time.Now(),
	}

	o.logger.WithFields(logrus.Fields{
		"playbook":     name,
		"execution_id": result.ID,
	}).Info("executing playbook")

	result.Status = playbook.StatusRunning

	for _, step := range pb.Steps {
		if err := ctx.Err(); err != nil {
			o.logger.WithField("playbook", name).Warn("playbook execution cancelled between steps")
			result.Status = playbook.StatusAborted
			break
		}

		stepResult := o.executeStep(ctx, step, incident)
		result.Steps = append(result.Steps, stepResult)

		if !stepResult.Success {
			o.logger.WithFields(logrus.Fields{
				"playbook": name,
				"step":     step.Name,
				"message":  stepResult.Message,
			}).Warn("playbook step failed")

			if step.StopOnFailure {
				result.Status = playbook.StatusAborted
				break
			}
		}
	}

	if result.Status == playbook.StatusRunning {
		result.Status = playbook.StatusCompleted
	}
	result.CompletedAt = time.Now()

	result.OverallSuccess = result.Status == playbook.StatusCompleted
	for _, sr := range result.Steps {
		if !sr.Success {
			result.OverallSuccess = false
		}
	}

	return result, nil
}

// executeStep resolves the step's actuator and invokes it with the step
// parameters merged over the incident context. Step parameters take
// precedence on key collision.
func (o *orchestrator) executeStep(
	ctx context.Context,
	step playbook.Step,
	incident map[string]any,
) playbook.StepResult {
	actuator, ok := o.registry.Get(step.Action)
	if !ok {
		return playbook.StepResult{
			Step:    step.Name,
			Action:  step.Action,
			Success: false,
			Message: fmt.Sprintf("%s: %s", domain.ErrActuatorNotFound, step.Action),
		}
	}

	params := make(map[string]any, len(incident)+len(step.Parameters))
	for k, v := range incident {
		params[k] = v
	}
	for k, v := range step.Parameters {
		params[k] = v
	}

	success, message := actuator.Execute(ctx, params)
	return playbook.StepResult{
		Step:    step.Name,
		Action:  step.Action,
		Success: success,
		Message: message,
	}
}
