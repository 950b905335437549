package playbook

import (
	"time"
)

// Step is one action of a response playbook. StopOnFailure aborts the
// remainder of the run when the step fails; it defaults to true.
type Step struct {
	Name          string         `json:"name"`
	Action        string         `json:"action"`
	Parameters    map[string]any `json:"parameters"`
	StopOnFailure bool           `json:"stop_on_failure"`
}

// Playbook is a named ordered response sequence. Playbooks are
// configuration: loaded once and immutable during execution.
type Playbook struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

type StepResult struct {
	Step    string `json:"step"`
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ExecutionResult is the per-run outcome, retained for audit.
type ExecutionResult struct {
	ID             string       `json:"id"`
	Playbook       string       `json:"playbook"`
	Status         Status       `json:"status"`
	Steps          []StepResult `json:"steps"`
	OverallSuccess bool         `json:"overall_success"`
	StartedAt      time.Time    `json:"started_at"`
	CompletedAt    time.Time    `json:"completed_at"`
}
