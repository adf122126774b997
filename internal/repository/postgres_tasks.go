package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"workflow-app/backend/pkg/models"
)

const taskColumns = "id, workflow_id, pattern_id, title, description, status, priority, assignee, step_order, created_at, updated_at"

// CreateTask stores a new task. New tasks always start in the todo column.
func (s *PostgresStore) CreateTask(ctx context.Context, data CreateTaskData) (*models.Task, error) {
	now := time.Now().UTC()
	task := &models.Task{
		ID:          uuid.New().String(),
		WorkflowID:  data.WorkflowID,
		PatternID:   data.PatternID,
		Title:       data.Title,
		Description: data.Description,
		Status:      models.TaskStatusTodo,
		Priority:    data.Priority,
		Assignee:    data.Assignee,
		StepOrder:   data.StepOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	_, err := s.db.Exec(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)",
		task.ID, task.WorkflowID, task.PatternID, task.Title, task.Description,
		task.Status, task.Priority, task.Assignee, task.StepOrder, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask retrieves a task scoped to its workflow.
func (s *PostgresStore) GetTask(ctx context.Context, workflowID, taskID string) (*models.Task, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE workflow_id = $1 AND id = $2", workflowID, taskID)
	return scanTask(row)
}

// FindTask locates a task by id alone. The physical fan-out across status
// partitions from the original key layout collapses into a point lookup here.
func (s *PostgresStore) FindTask(ctx context.Context, taskID string) (*models.Task, error) {
	row := s.db.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", taskID)
	return scanTask(row)
}

// ListTasksByWorkflow returns all tasks under a workflow instance.
func (s *PostgresStore) ListTasksByWorkflow(ctx context.Context, workflowID string) ([]*models.Task, error) {
	return s.queryTasks(ctx, "SELECT "+taskColumns+" FROM tasks WHERE workflow_id = $1 ORDER BY step_order, created_at", workflowID)
}

// ListTasksByStatus returns all tasks in one kanban column, newest first.
func (s *PostgresStore) ListTasksByStatus(ctx context.Context, status models.TaskStatus) ([]*models.Task, error) {
	return s.queryTasks(ctx, "SELECT "+taskColumns+" FROM tasks WHERE status = $1 ORDER BY updated_at DESC", status)
}

// ListTasksByAssignee returns all tasks assigned to one member, newest first.
func (s *PostgresStore) ListTasksByAssignee(ctx context.Context, assignee string) ([]*models.Task, error) {
	return s.queryTasks(ctx, "SELECT "+taskColumns+" FROM tasks WHERE assignee = $1 ORDER BY updated_at DESC", assignee)
}

// ListAllTasks returns every task, newest first.
func (s *PostgresStore) ListAllTasks(ctx context.Context) ([]*models.Task, error) {
	return s.queryTasks(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY updated_at DESC")
}

// UpdateTask applies a partial update to a task.
func (s *PostgresStore) UpdateTask(ctx context.Context, workflowID, taskID string, input UpdateTaskInput) (*models.Task, error) {
	existing, err := s.GetTask(ctx, workflowID, taskID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		existing.Title = *input.Title
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.Priority != nil {
		existing.Priority = *input.Priority
	}
	if input.Assignee != nil {
		if *input.Assignee == "" {
			existing.Assignee = nil
		} else {
			existing.Assignee = input.Assignee
		}
	}
	if input.Status != nil {
		existing.Status = *input.Status
	}
	existing.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(ctx,
		"UPDATE tasks SET title = $1, description = $2, status = $3, priority = $4, assignee = $5, updated_at = $6 WHERE workflow_id = $7 AND id = $8",
		existing.Title, existing.Description, existing.Status, existing.Priority, existing.Assignee,
		existing.UpdatedAt, workflowID, taskID)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// UpdateTaskStatus moves a task to a new kanban column.
func (s *PostgresStore) UpdateTaskStatus(ctx context.Context, workflowID, taskID string, status models.TaskStatus) (*models.Task, error) {
	return s.UpdateTask(ctx, workflowID, taskID, UpdateTaskInput{Status: &status})
}

func (s *PostgresStore) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	err := row.Scan(&task.ID, &task.WorkflowID, &task.PatternID, &task.Title, &task.Description,
		&task.Status, &task.Priority, &task.Assignee, &task.StepOrder, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &task, nil
}
