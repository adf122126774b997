package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"workflow-app/backend/pkg/models"
)

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	store := NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	steps := []models.WorkflowStep{
		{Order: 1, Name: "Request", Type: models.StepTypeTask},
		{Order: 2, Name: "Manager Approval", Type: models.StepTypeApproval, ApproverRoles: []string{"manager"}},
		{Order: 3, Name: "Done", Type: models.StepTypeAuto},
	}

	t.Run("Template CRUD", func(t *testing.T) {
		template, err := store.CreateTemplate(ctx, CreateTemplateInput{
			Name:        "Leave Request",
			Description: "Workflow for leave requests",
			Steps:       steps,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, template.ID)

		retrieved, err := store.GetTemplate(ctx, template.ID)
		require.NoError(t, err)
		assert.Equal(t, template.Name, retrieved.Name)
		assert.Equal(t, steps, retrieved.Steps)

		newName := "Leave Request v2"
		updated, err := store.UpdateTemplate(ctx, template.ID, UpdateTemplateInput{Name: &newName})
		require.NoError(t, err)
		assert.Equal(t, newName, updated.Name)
		assert.Equal(t, steps, updated.Steps)

		list, err := store.ListTemplates(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, list)

		require.NoError(t, store.DeleteTemplate(ctx, template.ID))
		_, err = store.GetTemplate(ctx, template.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Get missing template", func(t *testing.T) {
		_, err := store.GetTemplate(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Task patterns cascade with template", func(t *testing.T) {
		template, err := store.CreateTemplate(ctx, CreateTemplateInput{
			Name:  "Purchase Request",
			Steps: steps,
		})
		require.NoError(t, err)

		role := "requester"
		pattern, err := store.CreateTaskPattern(ctx, template.ID, CreateTaskPatternInput{
			Name:                "Collect vendor quote",
			Description:         "Obtain a quote from the vendor",
			StepOrder:           1,
			DefaultAssigneeRole: &role,
			Priority:            models.TaskPriorityHigh,
		})
		require.NoError(t, err)
		assert.Equal(t, template.ID, pattern.TemplateID)

		patterns, err := store.ListTaskPatterns(ctx, template.ID)
		require.NoError(t, err)
		require.Len(t, patterns, 1)

		require.NoError(t, store.DeleteTemplate(ctx, template.ID))
		patterns, err = store.ListTaskPatterns(ctx, template.ID)
		require.NoError(t, err)
		assert.Empty(t, patterns)
	})

	t.Run("Workflow create and status filter", func(t *testing.T) {
		template, err := store.CreateTemplate(ctx, CreateTemplateInput{Name: "Bug Fix", Steps: steps})
		require.NoError(t, err)

		workflow, err := store.CreateWorkflow(ctx, CreateWorkflowData{
			TemplateID:       template.ID,
			TemplateName:     template.Name,
			Name:             "Crash on login",
			Status:           models.WorkflowStatusInProgress,
			CurrentStepOrder: 1,
			CreatedBy:        "user-001",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, workflow.Version)

		inProgress := models.WorkflowStatusInProgress
		list, err := store.ListWorkflows(ctx, &inProgress)
		require.NoError(t, err)
		require.NotEmpty(t, list)

		completed := models.WorkflowStatusCompleted
		list, err = store.ListWorkflows(ctx, &completed)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Workflow compare-and-swap", func(t *testing.T) {
		template, err := store.CreateTemplate(ctx, CreateTemplateInput{Name: "CAS", Steps: steps})
		require.NoError(t, err)

		workflow, err := store.CreateWorkflow(ctx, CreateWorkflowData{
			TemplateID:       template.ID,
			TemplateName:     template.Name,
			Name:             "concurrent",
			Status:           models.WorkflowStatusInProgress,
			CurrentStepOrder: 1,
			CreatedBy:        "user-001",
		})
		require.NoError(t, err)

		updated, err := store.CompareAndSwapWorkflowStatus(ctx, workflow.ID,
			models.WorkflowStatusPendingApproval, 2, workflow.Version)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.CurrentStepOrder)
		assert.Equal(t, workflow.Version+1, updated.Version)

		// Swapping from the stale version fails.
		_, err = store.CompareAndSwapWorkflowStatus(ctx, workflow.ID,
			models.WorkflowStatusCompleted, 3, workflow.Version)
		assert.ErrorIs(t, err, ErrVersionConflict)

		// Swapping a missing workflow reports the lookup miss.
		_, err = store.CompareAndSwapWorkflowStatus(ctx, "nope",
			models.WorkflowStatusCompleted, 3, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Task lifecycle", func(t *testing.T) {
		template, err := store.CreateTemplate(ctx, CreateTemplateInput{Name: "Tasks", Steps: steps})
		require.NoError(t, err)
		workflow, err := store.CreateWorkflow(ctx, CreateWorkflowData{
			TemplateID:       template.ID,
			TemplateName:     template.Name,
			Name:             "with tasks",
			Status:           models.WorkflowStatusInProgress,
			CurrentStepOrder: 1,
			CreatedBy:        "user-001",
		})
		require.NoError(t, err)

		assignee := "user-002"
		task, err := store.CreateTask(ctx, CreateTaskData{
			WorkflowID:  workflow.ID,
			Title:       "Write report",
			Description: "Summarize the incident",
			Priority:    models.TaskPriorityHigh,
			Assignee:    &assignee,
			StepOrder:   1,
		})
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusTodo, task.Status)

		found, err := store.FindTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, workflow.ID, found.WorkflowID)

		byAssignee, err := store.ListTasksByAssignee(ctx, assignee)
		require.NoError(t, err)
		require.Len(t, byAssignee, 1)

		updated, err := store.UpdateTaskStatus(ctx, workflow.ID, task.ID, models.TaskStatusDone)
		require.NoError(t, err)
		assert.Equal(t, models.TaskStatusDone, updated.Status)

		byStatus, err := store.ListTasksByStatus(ctx, models.TaskStatusDone)
		require.NoError(t, err)
		require.Len(t, byStatus, 1)

		// Clearing the assignee with an empty string.
		empty := ""
		updated, err = store.UpdateTask(ctx, workflow.ID, task.ID, UpdateTaskInput{Assignee: &empty})
		require.NoError(t, err)
		assert.Nil(t, updated.Assignee)
	})

	t.Run("Approval lifecycle", func(t *testing.T) {
		template, err := store.CreateTemplate(ctx, CreateTemplateInput{Name: "Approvals", Steps: steps})
		require.NoError(t, err)
		workflow, err := store.CreateWorkflow(ctx, CreateWorkflowData{
			TemplateID:       template.ID,
			TemplateName:     template.Name,
			Name:             "with approvals",
			Status:           models.WorkflowStatusInProgress,
			CurrentStepOrder: 1,
			CreatedBy:        "user-001",
		})
		require.NoError(t, err)

		approval, err := store.CreateApproval(ctx, CreateApprovalData{
			WorkflowID:  workflow.ID,
			StepOrder:   2,
			StepName:    "Manager Approval",
			RequestedBy: "user-001",
		})
		require.NoError(t, err)
		assert.Equal(t, models.ApprovalStatusPending, approval.Status)

		pending, err := store.ListPendingApprovals(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, pending)

		comment := "approved with pleasure"
		decided, err := store.DecideApproval(ctx, workflow.ID, approval.ID,
			models.ApprovalStatusApproved, "user-002", &comment)
		require.NoError(t, err)
		assert.Equal(t, models.ApprovalStatusApproved, decided.Status)
		require.NotNil(t, decided.Approver)
		assert.Equal(t, "user-002", *decided.Approver)
		require.NotNil(t, decided.Comment)
		assert.Equal(t, comment, *decided.Comment)

		byWorkflow, err := store.ListApprovalsByWorkflow(ctx, workflow.ID)
		require.NoError(t, err)
		require.Len(t, byWorkflow, 1)
	})

	t.Run("Members and roles", func(t *testing.T) {
		member, err := store.CreateMember(ctx, CreateMemberInput{
			Name:   "Taro Tanaka",
			Email:  "tanaka@example.com",
			Role:   "manager",
			Status: models.MemberStatusActive,
		})
		require.NoError(t, err)

		inactive := models.MemberStatusInactive
		updated, err := store.UpdateMember(ctx, member.ID, UpdateMemberInput{Status: &inactive})
		require.NoError(t, err)
		assert.Equal(t, models.MemberStatusInactive, updated.Status)

		require.NoError(t, store.DeleteMember(ctx, member.ID))
		_, err = store.GetMember(ctx, member.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		role, err := store.CreateRole(ctx, "manager", models.RolePermissions{
			Member: true, Lead: true, Approver: true,
		})
		require.NoError(t, err)

		retrieved, err := store.GetRole(ctx, role.ID)
		require.NoError(t, err)
		assert.True(t, retrieved.Permissions.Approver)
		assert.False(t, retrieved.Permissions.Admin)

		require.NoError(t, store.DeleteRole(ctx, role.ID))
	})
}
