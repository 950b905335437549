package config

import (
	"fmt"
	"sort"

	"github.com/SentinelMesh/AccessGate/pkg/domain"
	"github.com/SentinelMesh/AccessGate/pkg/domain/access"
	"github.com/SentinelMesh/AccessGate/pkg/domain/playbook"
	"github.com/SentinelMesh/AccessGate/pkg/domain/policy"
)

// ZeroTrustConfig holds the declarative policy and playbook definitions.
// Malformed entries are fatal at load time.
type ZeroTrustConfig struct {
	Policies  []PolicyConfig   `mapstructure:"policies"`
	Playbooks []PlaybookConfig `mapstructure:"playbooks"`
}

type PolicyConfig struct {
	ID         string            `mapstructure:"id"`
	Name       string            `mapstructure:"name"`
	Priority   int               `mapstructure:"priority"`
	Resources  []string          `mapstructure:"resources"`
	Users      []string          `mapstructure:"users"`
	Roles      []string          `mapstructure:"roles"`
	Action     string            `mapstructure:"action"`
	Conditions []ConditionConfig `mapstructure:"conditions"`
}

type ConditionConfig struct {
	Type     string                 `mapstructure:"type"`
	Settings map[string]interface{} `mapstructure:"settings"`
}

type PlaybookConfig struct {
	Name  string       `mapstructure:"name"`
	Steps []StepConfig `mapstructure:"steps"`
}

type StepConfig struct {
	Name          string                 `mapstructure:"name"`
	Action        string                 `mapstructure:"action"`
	Parameters    map[string]interface{} `mapstructure:"parameters"`
	StopOnFailure *bool                  `mapstructure:"stop_on_failure"`
}

// BuildPolicies converts the declarative policy list into typed policies,
// sorted ascending by priority.
func (c *ZeroTrustConfig) BuildPolicies() ([]policy.Policy, error) {
	policies := make([]policy.Policy, 0, len(c.Policies))
	seen := make(map[string]bool, len(c.Policies))
	for _, pc := range c.Policies {
		if pc.ID == "" {
			return nil, fmt.Errorf("%w: policy %q: id is required", domain.ErrInvalidConfiguration, pc.Name)
		}
		if seen[pc.ID] {
			return nil, fmt.Errorf("%w: duplicate policy id: %s", domain.ErrInvalidConfiguration, pc.ID)
		}
		seen[pc.ID] = true

		action := access.Decision(pc.Action)
		if !action.IsValid() {
			return nil, fmt.Errorf("%w: policy %s: invalid action %q", domain.ErrInvalidConfiguration, pc.ID, pc.Action)
		}

		conditions := make([]policy.Condition, 0, len(pc.Conditions))
		for _, cc := range pc.Conditions {
			cond, err := policy.DecodeCondition(cc.Type, cc.Settings)
			if err != nil {
				return nil, fmt.Errorf("%w: policy %s: %w", domain.ErrInvalidConfiguration, pc.ID, err)
			}
			conditions = append(conditions, cond)
		}

		policies = append(policies, policy.Policy{
			ID:         pc.ID,
			Name:       pc.Name,
			Priority:   pc.Priority,
			Resources:  pc.Resources,
			Users:      pc.Users,
			Roles:      pc.Roles,
			Conditions: conditions,
			Action:     action,
		})
	}

	sort.SliceStable(policies, func(i, j int) bool {
		return policies[i].Priority < policies[j].Priority
	})

	return policies, nil
}

// BuildPlaybooks converts the declarative playbook list, applying the
// stop_on_failure default of true.
func (c *ZeroTrustConfig) BuildPlaybooks() (map[string]playbook.Playbook, error) {
	playbooks := make(map[string]playbook.Playbook, len(c.Playbooks))
	for _, pc := range c.Playbooks {
		if pc.Name == "" {
			return nil, fmt.Errorf("%w: playbook name is required", domain.ErrInvalidConfiguration)
		}
		if _, exists := playbooks[pc.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate playbook: %s", domain.ErrInvalidConfiguration, pc.Name)
		}
		if len(pc.Steps) == 0 {
			return nil, fmt.Errorf("%w: playbook %s has no steps", domain.ErrInvalidConfiguration, pc.Name)
		}

		steps := make([]playbook.Step, 0, len(pc.Steps))
		for _, sc := range pc.Steps {
			if sc.Action == "" {
				return nil, fmt.Errorf("%w: playbook %s: step %q has no action", domain.ErrInvalidConfiguration, pc.Name, sc.Name)
			}
			stopOnFailure := true
			if sc.StopOnFailure != nil {
				stopOnFailure = *sc.StopOnFailure
			}
			steps = append(steps, playbook.Step{
				Name:          sc.Name,
				Action:        sc.Action,
				Parameters:    sc.Parameters,
				StopOnFailure: stopOnFailure,
			})
		}

		playbooks[pc.Name] = playbook.Playbook{Name: pc.Name, Steps: steps}
	}
	return playbooks, nil
}
