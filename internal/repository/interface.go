package repository

import (
	"context"
	"errors"
	"time"

	"workflow-app/backend/pkg/models"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrVersionConflict is returned by compare-and-swap writes when the stored
// version no longer matches the expected one.
var ErrVersionConflict = errors.New("version conflict")

// CreateTemplateInput carries the fields for a new workflow template.
type CreateTemplateInput struct {
	Name        string
	Description string
	Steps       []models.WorkflowStep
}

// UpdateTemplateInput carries a partial template update; nil fields are left
// unchanged. Steps replace the whole list when present.
type UpdateTemplateInput struct {
	Name        *string
	Description *string
	Steps       []models.WorkflowStep
}

// CreateTaskPatternInput carries the fields for a new task pattern.
type CreateTaskPatternInput struct {
	Name                string
	Description         string
	StepOrder           int
	DefaultAssigneeRole *string
	Priority            models.TaskPriority
}

// TemplateStore holds workflow templates and their task patterns. The
// progression engine treats templates as a read-only source of step topology.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, input CreateTemplateInput) (*models.WorkflowTemplate, error)
	GetTemplate(ctx context.Context, id string) (*models.WorkflowTemplate, error)
	ListTemplates(ctx context.Context) ([]*models.WorkflowTemplate, error)
	UpdateTemplate(ctx context.Context, id string, input UpdateTemplateInput) (*models.WorkflowTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error

	CreateTaskPattern(ctx context.Context, templateID string, input CreateTaskPatternInput) (*models.TaskPattern, error)
	ListTaskPatterns(ctx context.Context, templateID string) ([]*models.TaskPattern, error)
	DeleteTaskPattern(ctx context.Context, templateID, patternID string) error
}

// CreateWorkflowData carries the fields for a new workflow instance.
// TemplateName is the denormalized snapshot of the template's name.
type CreateWorkflowData struct {
	TemplateID       string
	TemplateName     string
	Name             string
	Status           models.WorkflowStatus
	CurrentStepOrder int
	CreatedBy        string
	DueDate          *time.Time
}

// WorkflowStore holds workflow instances.
type WorkflowStore interface {
	CreateWorkflow(ctx context.Context, data CreateWorkflowData) (*models.WorkflowInstance, error)
	GetWorkflow(ctx context.Context, id string) (*models.WorkflowInstance, error)
	ListWorkflows(ctx context.Context, status *models.WorkflowStatus) ([]*models.WorkflowInstance, error)
	// UpdateWorkflowStatus writes a new status (and optionally a new step
	// order) unconditionally. Last writer wins; the version stamp is still
	// incremented.
	UpdateWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus, stepOrder *int) (*models.WorkflowInstance, error)
	// CompareAndSwapWorkflowStatus writes status and step order only if the
	// stored version equals fromVersion, returning ErrVersionConflict
	// otherwise.
	CompareAndSwapWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus, stepOrder, fromVersion int) (*models.WorkflowInstance, error)
	DeleteWorkflow(ctx context.Context, id string) error
}

// CreateTaskData carries the fields for a new task.
type CreateTaskData struct {
	WorkflowID  string
	PatternID   *string
	Title       string
	Description string
	Priority    models.TaskPriority
	Assignee    *string
	StepOrder   int
}

// UpdateTaskInput carries a partial task update; nil fields are left
// unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *models.TaskPriority
	Assignee    *string
	Status      *models.TaskStatus
}

// TaskStore holds per-instance tasks, filterable by workflow, status and
// assignee.
type TaskStore interface {
	CreateTask(ctx context.Context, data CreateTaskData) (*models.Task, error)
	GetTask(ctx context.Context, workflowID, taskID string) (*models.Task, error)
	// FindTask locates a task by id alone, without knowing its workflow.
	FindTask(ctx context.Context, taskID string) (*models.Task, error)
	ListTasksByWorkflow(ctx context.Context, workflowID string) ([]*models.Task, error)
	ListTasksByStatus(ctx context.Context, status models.TaskStatus) ([]*models.Task, error)
	ListTasksByAssignee(ctx context.Context, assignee string) ([]*models.Task, error)
	ListAllTasks(ctx context.Context) ([]*models.Task, error)
	UpdateTask(ctx context.Context, workflowID, taskID string, input UpdateTaskInput) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, workflowID, taskID string, status models.TaskStatus) (*models.Task, error)
}

// CreateApprovalData carries the fields for a new approval step.
type CreateApprovalData struct {
	WorkflowID  string
	StepOrder   int
	StepName    string
	RequestedBy string
}

// ApprovalStore holds per-instance approval steps.
type ApprovalStore interface {
	CreateApproval(ctx context.Context, data CreateApprovalData) (*models.ApprovalStep, error)
	// FindApproval locates an approval by id alone, without knowing its
	// workflow.
	FindApproval(ctx context.Context, approvalID string) (*models.ApprovalStep, error)
	ListApprovalsByWorkflow(ctx context.Context, workflowID string) ([]*models.ApprovalStep, error)
	ListPendingApprovals(ctx context.Context) ([]*models.ApprovalStep, error)
	// DecideApproval writes a decision. Re-deciding an already decided step is
	// not rejected here; the last decision wins.
	DecideApproval(ctx context.Context, workflowID, approvalID string, status models.ApprovalStatus, approver string, comment *string) (*models.ApprovalStep, error)
}

// CreateMemberInput carries the fields for a new member.
type CreateMemberInput struct {
	Name   string
	Email  string
	Role   string
	Status models.MemberStatus
}

// UpdateMemberInput carries a partial member update.
type UpdateMemberInput struct {
	Name   *string
	Email  *string
	Role   *string
	Status *models.MemberStatus
}

// MemberStore holds organization members.
type MemberStore interface {
	CreateMember(ctx context.Context, input CreateMemberInput) (*models.Member, error)
	GetMember(ctx context.Context, id string) (*models.Member, error)
	ListMembers(ctx context.Context) ([]*models.Member, error)
	UpdateMember(ctx context.Context, id string, input UpdateMemberInput) (*models.Member, error)
	DeleteMember(ctx context.Context, id string) error
}

// UpdateRoleInput carries a partial role update.
type UpdateRoleInput struct {
	Name        *string
	Permissions *models.RolePermissions
}

// RoleStore holds roles.
type RoleStore interface {
	CreateRole(ctx context.Context, name string, permissions models.RolePermissions) (*models.Role, error)
	GetRole(ctx context.Context, id string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]*models.Role, error)
	UpdateRole(ctx context.Context, id string, input UpdateRoleInput) (*models.Role, error)
	DeleteRole(ctx context.Context, id string) error
}

// Store combines every repository contract the service exposes.
type Store interface {
	TemplateStore
	WorkflowStore
	TaskStore
	ApprovalStore
	MemberStore
	RoleStore
}
