package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"workflow-app/backend/pkg/models"
)

const approvalColumns = "id, workflow_id, step_order, step_name, status, requested_by, approver, comment, created_at, updated_at"

// CreateApproval stores a new approval step in the pending state.
func (s *PostgresStore) CreateApproval(ctx context.Context, data CreateApprovalData) (*models.ApprovalStep, error) {
	now := time.Now().UTC()
	approval := &models.ApprovalStep{
		ID:          uuid.New().String(),
		WorkflowID:  data.WorkflowID,
		StepOrder:   data.StepOrder,
		StepName:    data.StepName,
		Status:      models.ApprovalStatusPending,
		RequestedBy: data.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.db.Exec(ctx,
		"INSERT INTO approvals ("+approvalColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
		approval.ID, approval.WorkflowID, approval.StepOrder, approval.StepName, approval.Status,
		approval.RequestedBy, approval.Approver, approval.Comment, approval.CreatedAt, approval.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return approval, nil
}

// FindApproval locates an approval by id alone.
func (s *PostgresStore) FindApproval(ctx context.Context, approvalID string) (*models.ApprovalStep, error) {
	row := s.db.QueryRow(ctx, "SELECT "+approvalColumns+" FROM approvals WHERE id = $1", approvalID)
	return scanApproval(row)
}

// ListApprovalsByWorkflow returns all approval steps under a workflow
// instance, in step order.
func (s *PostgresStore) ListApprovalsByWorkflow(ctx context.Context, workflowID string) ([]*models.ApprovalStep, error) {
	return s.queryApprovals(ctx,
		"SELECT "+approvalColumns+" FROM approvals WHERE workflow_id = $1 ORDER BY step_order", workflowID)
}

// ListPendingApprovals returns all undecided approval steps, newest first.
func (s *PostgresStore) ListPendingApprovals(ctx context.Context) ([]*models.ApprovalStep, error) {
	return s.queryApprovals(ctx,
		"SELECT "+approvalColumns+" FROM approvals WHERE status = $1 ORDER BY updated_at DESC",
		models.ApprovalStatusPending)
}

// DecideApproval writes a decision onto an approval step. The last decision
// wins; an already decided step can be re-decided.
func (s *PostgresStore) DecideApproval(ctx context.Context, workflowID, approvalID string, status models.ApprovalStatus, approver string, comment *string) (*models.ApprovalStep, error) {
	now := time.Now().UTC()
	row := s.db.QueryRow(ctx,
		`UPDATE approvals
		 SET status = $1, approver = $2, comment = $3, updated_at = $4
		 WHERE workflow_id = $5 AND id = $6
		 RETURNING `+approvalColumns,
		status, approver, comment, now, workflowID, approvalID)
	return scanApproval(row)
}

func (s *PostgresStore) queryApprovals(ctx context.Context, query string, args ...any) ([]*models.ApprovalStep, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []*models.ApprovalStep
	for rows.Next() {
		approval, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, approval)
	}
	return approvals, rows.Err()
}

func scanApproval(row rowScanner) (*models.ApprovalStep, error) {
	var approval models.ApprovalStep
	err := row.Scan(&approval.ID, &approval.WorkflowID, &approval.StepOrder, &approval.StepName,
		&approval.Status, &approval.RequestedBy, &approval.Approver, &approval.Comment,
		&approval.CreatedAt, &approval.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &approval, nil
}
