package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"workflow-app/backend/pkg/models"
)

const workflowColumns = "id, template_id, template_name, name, status, current_step_order, created_by, due_date, version, created_at, updated_at"

// CreateWorkflow stores a new workflow instance.
func (s *PostgresStore) CreateWorkflow(ctx context.Context, data CreateWorkflowData) (*models.WorkflowInstance, error) {
	now := time.Now().UTC()
	wf := &models.WorkflowInstance{
		ID:               uuid.New().String(),
		TemplateID:       data.TemplateID,
		TemplateName:     data.TemplateName,
		Name:             data.Name,
		Status:           data.Status,
		CurrentStepOrder: data.CurrentStepOrder,
		CreatedBy:        data.CreatedBy,
		DueDate:          data.DueDate,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	_, err := s.db.Exec(ctx,
		"INSERT INTO workflows ("+workflowColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)",
		wf.ID, wf.TemplateID, wf.TemplateName, wf.Name, wf.Status, wf.CurrentStepOrder,
		wf.CreatedBy, wf.DueDate, wf.Version, wf.CreatedAt, wf.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return wf, nil
}

// GetWorkflow retrieves a workflow instance by its ID.
func (s *PostgresStore) GetWorkflow(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	row := s.db.QueryRow(ctx, "SELECT "+workflowColumns+" FROM workflows WHERE id = $1", id)
	return scanWorkflow(row)
}

// ListWorkflows returns workflow instances, optionally filtered by status,
// most recently updated first.
func (s *PostgresStore) ListWorkflows(ctx context.Context, status *models.WorkflowStatus) ([]*models.WorkflowInstance, error) {
	query := "SELECT " + workflowColumns + " FROM workflows ORDER BY updated_at DESC"
	args := []any{}
	if status != nil {
		query = "SELECT " + workflowColumns + " FROM workflows WHERE status = $1 ORDER BY updated_at DESC"
		args = append(args, *status)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []*models.WorkflowInstance
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

// UpdateWorkflowStatus writes a new status and, when stepOrder is non-nil, a
// new current step order. The write is unconditional; concurrent writers race
// with last-writer-wins semantics. The version stamp is still incremented so
// in-flight compare-and-swap evaluations notice the interleaving.
func (s *PostgresStore) UpdateWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus, stepOrder *int) (*models.WorkflowInstance, error) {
	now := time.Now().UTC()
	row := s.db.QueryRow(ctx,
		`UPDATE workflows
		 SET status = $1, current_step_order = COALESCE($2, current_step_order), version = version + 1, updated_at = $3
		 WHERE id = $4
		 RETURNING `+workflowColumns,
		status, stepOrder, now, id)
	return scanWorkflow(row)
}

// CompareAndSwapWorkflowStatus writes status and step order only if the
// stored version still equals fromVersion. A failed swap returns
// ErrVersionConflict when the workflow exists, ErrNotFound when it does not.
func (s *PostgresStore) CompareAndSwapWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus, stepOrder, fromVersion int) (*models.WorkflowInstance, error) {
	now := time.Now().UTC()
	row := s.db.QueryRow(ctx,
		`UPDATE workflows
		 SET status = $1, current_step_order = $2, version = version + 1, updated_at = $3
		 WHERE id = $4 AND version = $5
		 RETURNING `+workflowColumns,
		status, stepOrder, now, id, fromVersion)
	wf, err := scanWorkflow(row)
	if errors.Is(err, ErrNotFound) {
		if _, getErr := s.GetWorkflow(ctx, id); getErr == nil {
			return nil, ErrVersionConflict
		}
		return nil, ErrNotFound
	}
	return wf, err
}

// DeleteWorkflow removes a workflow instance. Its tasks and approvals are
// intentionally left behind.
func (s *PostgresStore) DeleteWorkflow(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM workflows WHERE id = $1", id)
	return err
}

func scanWorkflow(row rowScanner) (*models.WorkflowInstance, error) {
	var wf models.WorkflowInstance
	err := row.Scan(&wf.ID, &wf.TemplateID, &wf.TemplateName, &wf.Name, &wf.Status, &wf.CurrentStepOrder,
		&wf.CreatedBy, &wf.DueDate, &wf.Version, &wf.CreatedAt, &wf.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &wf, nil
}
