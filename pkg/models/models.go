// Package models defines the domain models for the workflow service
package models

import (
	"time"
)

// StepType represents the kind of a template step
type StepType string

const (
	StepTypeTask     StepType = "task"
	StepTypeApproval StepType = "approval"
	StepTypeAuto     StepType = "auto"
)

// IsValid reports whether the value is one of the defined step types.
func (t StepType) IsValid() bool {
	switch t {
	case StepTypeTask, StepTypeApproval, StepTypeAuto:
		return true
	}
	return false
}

// WorkflowStatus represents the lifecycle state of a workflow instance
type WorkflowStatus string

const (
	WorkflowStatusDraft           WorkflowStatus = "draft"
	WorkflowStatusInProgress      WorkflowStatus = "in_progress"
	WorkflowStatusPendingApproval WorkflowStatus = "pending_approval"
	WorkflowStatusCompleted       WorkflowStatus = "completed"
	WorkflowStatusCancelled       WorkflowStatus = "cancelled"
)

// IsValid reports whether the value is one of the defined workflow statuses.
func (s WorkflowStatus) IsValid() bool {
	switch s {
	case WorkflowStatusDraft, WorkflowStatusInProgress, WorkflowStatusPendingApproval,
		WorkflowStatusCompleted, WorkflowStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further progression is possible.
func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowStatusCompleted || s == WorkflowStatusCancelled
}

// TaskStatus represents the kanban state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

// IsValid reports whether the value is one of the defined task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority represents the urgency of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// IsValid reports whether the value is one of the defined priorities.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// ApprovalStatus represents the decision state of an approval step
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// IsValid reports whether the value is one of the defined approval statuses.
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

// Task is a unit of work scoped to one workflow instance and one step order.
// It is created either from a TaskPattern at instance creation or ad hoc
// against a running instance.
type Task struct {
	ID          string       `json:"id" db:"id"`
	WorkflowID  string       `json:"workflowId" db:"workflow_id"`
	PatternID   *string      `json:"patternId,omitempty" db:"pattern_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	Status      TaskStatus   `json:"status" db:"status"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	Assignee    *string      `json:"assignee,omitempty" db:"assignee"`
	StepOrder   int          `json:"stepOrder" db:"step_order"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}

// ApprovalStep is a single approval gate scoped to one workflow instance and
// one step order. Approver and Comment are set when the step is decided.
type ApprovalStep struct {
	ID          string         `json:"id" db:"id"`
	WorkflowID  string         `json:"workflowId" db:"workflow_id"`
	StepOrder   int            `json:"stepOrder" db:"step_order"`
	StepName    string         `json:"stepName" db:"step_name"`
	Status      ApprovalStatus `json:"status" db:"status"`
	RequestedBy string         `json:"requestedBy" db:"requested_by"`
	Approver    *string        `json:"approver,omitempty" db:"approver"`
	Comment     *string        `json:"comment,omitempty" db:"comment"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}
