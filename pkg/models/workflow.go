package models

import (
	"time"
)

// WorkflowStep is one position within a template. Order values are positive,
// unique and contiguous starting at 1; the highest order is the terminal step.
type WorkflowStep struct {
	Order         int      `json:"order"`
	Name          string   `json:"name"`
	Type          StepType `json:"type"`
	ApproverRoles []string `json:"approverRoles,omitempty"`
}

// WorkflowTemplate is a reusable definition of an ordered step sequence.
// Templates are immutable-by-replacement: updates write a whole new step list.
type WorkflowTemplate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Steps       []WorkflowStep `json:"steps"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// MaxStepOrder returns the highest step order in the template, the order at
// which the progression engine completes an instance.
func (t *WorkflowTemplate) MaxStepOrder() int {
	max := 0
	for _, s := range t.Steps {
		if s.Order > max {
			max = s.Order
		}
	}
	return max
}

// StepAt returns the step with the given order, or nil if none exists.
func (t *WorkflowTemplate) StepAt(order int) *WorkflowStep {
	for i := range t.Steps {
		if t.Steps[i].Order == order {
			return &t.Steps[i]
		}
	}
	return nil
}

// TaskPattern is a per-step task blueprint owned by a template. Patterns are
// consumed only at instance creation, to seed the instance's tasks; they have
// no further lifecycle interaction with a running instance.
type TaskPattern struct {
	ID                  string       `json:"id"`
	TemplateID          string       `json:"templateId"`
	Name                string       `json:"name"`
	Description         string       `json:"description"`
	StepOrder           int          `json:"stepOrder"`
	DefaultAssigneeRole *string      `json:"defaultAssigneeRole,omitempty"`
	Priority            TaskPriority `json:"priority"`
}

// WorkflowInstance is one running execution of a template. TemplateName is a
// snapshot taken at creation time; later template edits do not change it.
// Version is an optimistic concurrency stamp incremented on every status
// write; the engine advances through compare-and-swap on it.
type WorkflowInstance struct {
	ID               string         `json:"id"`
	TemplateID       string         `json:"templateId"`
	TemplateName     string         `json:"templateName"`
	Name             string         `json:"name"`
	Status           WorkflowStatus `json:"status"`
	CurrentStepOrder int            `json:"currentStepOrder"`
	CreatedBy        string         `json:"createdBy"`
	DueDate          *time.Time     `json:"dueDate,omitempty"`
	Version          int            `json:"version"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}
