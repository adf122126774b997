// Package services implements the workflow progression engine.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"workflow-app/backend/internal/repository"
	"workflow-app/backend/pkg/models"
)

// ErrTemplateNotFound is returned by CreateFromTemplate when the referenced
// template does not exist.
var ErrTemplateNotFound = errors.New("template not found")

// advanceRetries bounds how often an advancement re-evaluates after losing a
// compare-and-swap race to a concurrent writer.
const advanceRetries = 3

// WorkflowService drives workflow instances through their template's steps:
// it materializes instances from templates and re-evaluates step completion
// after task and approval mutations.
type WorkflowService struct {
	templates repository.TemplateStore
	workflows repository.WorkflowStore
	tasks     repository.TaskStore
	approvals repository.ApprovalStore

	createdCounter   metric.Int64Counter
	advancedCounter  metric.Int64Counter
	completedCounter metric.Int64Counter
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(templates repository.TemplateStore, workflows repository.WorkflowStore, tasks repository.TaskStore, approvals repository.ApprovalStore) *WorkflowService {
	meter := otel.Meter("workflow-app/backend/internal/services")
	created, err := meter.Int64Counter("workflows.created")
	if err != nil {
		otel.Handle(err)
	}
	advanced, err := meter.Int64Counter("workflows.steps_advanced")
	if err != nil {
		otel.Handle(err)
	}
	completed, err := meter.Int64Counter("workflows.completed")
	if err != nil {
		otel.Handle(err)
	}
	return &WorkflowService{
		templates:        templates,
		workflows:        workflows,
		tasks:            tasks,
		approvals:        approvals,
		createdCounter:   created,
		advancedCounter:  advanced,
		completedCounter: completed,
	}
}

// CreateWorkflowInput carries the request to instantiate a template.
type CreateWorkflowInput struct {
	TemplateID string
	Name       string
	CreatedBy  string
	DueDate    *time.Time
}

// CreateFromTemplateResult bundles the instance with the records materialized
// from the template.
type CreateFromTemplateResult struct {
	Workflow  *models.WorkflowInstance `json:"workflow"`
	Tasks     []*models.Task           `json:"tasks"`
	Approvals []*models.ApprovalStep   `json:"approvals"`
}

// CreateFromTemplate instantiates a template: it creates the workflow
// instance at step 1 in in_progress, one task per task pattern, and one
// pending approval step per approval-type template step. The fan-out is not
// transactional; a failure partway through leaves the records written so far.
func (s *WorkflowService) CreateFromTemplate(ctx context.Context, input CreateWorkflowInput) (*CreateFromTemplateResult, error) {
	template, err := s.templates.GetTemplate(ctx, input.TemplateID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}

	workflow, err := s.workflows.CreateWorkflow(ctx, repository.CreateWorkflowData{
		TemplateID:       input.TemplateID,
		TemplateName:     template.Name,
		Name:             input.Name,
		Status:           models.WorkflowStatusInProgress,
		CurrentStepOrder: 1,
		CreatedBy:        input.CreatedBy,
		DueDate:          input.DueDate,
	})
	if err != nil {
		return nil, err
	}

	patterns, err := s.templates.ListTaskPatterns(ctx, input.TemplateID)
	if err != nil {
		return nil, err
	}
	tasks := make([]*models.Task, 0, len(patterns))
	for _, pattern := range patterns {
		patternID := pattern.ID
		task, err := s.tasks.CreateTask(ctx, repository.CreateTaskData{
			WorkflowID:  workflow.ID,
			PatternID:   &patternID,
			Title:       pattern.Name,
			Description: pattern.Description,
			Priority:    pattern.Priority,
			Assignee:    pattern.DefaultAssigneeRole,
			StepOrder:   pattern.StepOrder,
		})
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	approvals := make([]*models.ApprovalStep, 0)
	for _, step := range template.Steps {
		if step.Type != models.StepTypeApproval {
			continue
		}
		approval, err := s.approvals.CreateApproval(ctx, repository.CreateApprovalData{
			WorkflowID:  workflow.ID,
			StepOrder:   step.Order,
			StepName:    step.Name,
			RequestedBy: input.CreatedBy,
		})
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, approval)
	}

	s.createdCounter.Add(ctx, 1)
	return &CreateFromTemplateResult{Workflow: workflow, Tasks: tasks, Approvals: approvals}, nil
}

// AdvanceWorkflow re-evaluates whether the instance's current step is
// satisfied and moves it forward. It returns (nil, nil) when the workflow or
// its template no longer exists: advancement is a best-effort re-check
// triggered after unrelated mutations, so a lookup miss is not an error.
//
// A step is satisfied when every task at the current step order is done (or
// none exist) and every approval at it is approved (or none exist). A
// satisfied terminal step completes the instance; otherwise the step pointer
// moves forward by one and the status becomes pending_approval when the next
// step is an approval step, in_progress otherwise.
//
// The status write is a compare-and-swap on the instance version; losing the
// race to a concurrent writer triggers a bounded re-evaluation, so repeated
// calls with no new task/approval progress never move the instance.
func (s *WorkflowService) AdvanceWorkflow(ctx context.Context, workflowID string) (*models.WorkflowInstance, error) {
	for attempt := 0; attempt < advanceRetries; attempt++ {
		workflow, err := s.workflows.GetWorkflow(ctx, workflowID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if workflow.Status.IsTerminal() {
			return workflow, nil
		}

		template, err := s.templates.GetTemplate(ctx, workflow.TemplateID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		current := workflow.CurrentStepOrder
		satisfied, err := s.stepSatisfied(ctx, workflowID, current)
		if err != nil {
			return nil, err
		}
		if !satisfied {
			return workflow, nil
		}

		if current >= template.MaxStepOrder() {
			updated, err := s.workflows.CompareAndSwapWorkflowStatus(ctx, workflowID,
				models.WorkflowStatusCompleted, current, workflow.Version)
			if errors.Is(err, repository.ErrVersionConflict) {
				continue
			}
			if err != nil {
				return nil, err
			}
			s.completedCounter.Add(ctx, 1)
			return updated, nil
		}

		next := current + 1
		status := models.WorkflowStatusInProgress
		if step := template.StepAt(next); step != nil && step.Type == models.StepTypeApproval {
			status = models.WorkflowStatusPendingApproval
		}
		updated, err := s.workflows.CompareAndSwapWorkflowStatus(ctx, workflowID, status, next, workflow.Version)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.advancedCounter.Add(ctx, 1)
		return updated, nil
	}

	// Persistent contention: surface whatever state the last writer left.
	workflow, err := s.workflows.GetWorkflow(ctx, workflowID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return workflow, err
}

// stepSatisfied reports whether every task and approval at the given step
// order is done/approved. Steps with no tasks and no approvals are satisfied.
func (s *WorkflowService) stepSatisfied(ctx context.Context, workflowID string, stepOrder int) (bool, error) {
	tasks, err := s.tasks.ListTasksByWorkflow(ctx, workflowID)
	if err != nil {
		return false, err
	}
	for _, task := range tasks {
		if task.StepOrder == stepOrder && task.Status != models.TaskStatusDone {
			return false, nil
		}
	}

	approvals, err := s.approvals.ListApprovalsByWorkflow(ctx, workflowID)
	if err != nil {
		return false, err
	}
	for _, approval := range approvals {
		if approval.StepOrder == stepOrder && approval.Status != models.ApprovalStatusApproved {
			return false, nil
		}
	}
	return true, nil
}

// UpdateTaskStatus moves a task to a new status, located by id alone, and
// re-evaluates the owning workflow when the task lands in done.
func (s *WorkflowService) UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) (*models.Task, error) {
	task, err := s.tasks.FindTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	updated, err := s.tasks.UpdateTaskStatus(ctx, task.WorkflowID, taskID, status)
	if err != nil {
		return nil, err
	}
	if status == models.TaskStatusDone {
		if _, err := s.AdvanceWorkflow(ctx, task.WorkflowID); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// ApproveApproval records an approval decision and re-evaluates the owning
// workflow.
func (s *WorkflowService) ApproveApproval(ctx context.Context, approvalID, approver string, comment *string) (*models.ApprovalStep, error) {
	approval, err := s.approvals.FindApproval(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	updated, err := s.approvals.DecideApproval(ctx, approval.WorkflowID, approvalID,
		models.ApprovalStatusApproved, approver, comment)
	if err != nil {
		return nil, err
	}
	if _, err := s.AdvanceWorkflow(ctx, approval.WorkflowID); err != nil {
		return nil, err
	}
	return updated, nil
}

// RejectApproval records a rejection. Rejection does not trigger advancement:
// the instance stays blocked at the step until the approval is re-decided or
// the workflow is cancelled.
func (s *WorkflowService) RejectApproval(ctx context.Context, approvalID, approver string, comment *string) (*models.ApprovalStep, error) {
	approval, err := s.approvals.FindApproval(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	return s.approvals.DecideApproval(ctx, approval.WorkflowID, approvalID,
		models.ApprovalStatusRejected, approver, comment)
}
