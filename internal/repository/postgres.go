package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of the Store interface.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Ping verifies the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Migrate creates the schema if it does not exist. Template deletion cascades
// to its task patterns. Workflow deletion deliberately does NOT cascade to
// tasks and approvals; that matches the documented behavior of the service.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS templates (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			steps JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS task_patterns (
			id UUID PRIMARY KEY,
			template_id UUID NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			step_order INT NOT NULL,
			default_assignee_role TEXT,
			priority TEXT NOT NULL DEFAULT 'medium'
		);
		CREATE INDEX IF NOT EXISTS idx_task_patterns_template ON task_patterns (template_id);
		CREATE TABLE IF NOT EXISTS workflows (
			id UUID PRIMARY KEY,
			template_id UUID NOT NULL,
			template_name TEXT NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			current_step_order INT NOT NULL,
			created_by TEXT NOT NULL,
			due_date TIMESTAMPTZ,
			version INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_workflows_status ON workflows (status);
		CREATE TABLE IF NOT EXISTS tasks (
			id UUID PRIMARY KEY,
			workflow_id UUID NOT NULL,
			pattern_id UUID,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			assignee TEXT,
			step_order INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_workflow ON tasks (workflow_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks (status);
		CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks (assignee);
		CREATE TABLE IF NOT EXISTS approvals (
			id UUID PRIMARY KEY,
			workflow_id UUID NOT NULL,
			step_order INT NOT NULL,
			step_name TEXT NOT NULL,
			status TEXT NOT NULL,
			requested_by TEXT NOT NULL,
			approver TEXT,
			comment TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_approvals_workflow ON approvals (workflow_id);
		CREATE INDEX IF NOT EXISTS idx_approvals_status ON approvals (status);
		CREATE TABLE IF NOT EXISTS members (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS roles (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			permissions JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// mapErr converts pgx sentinel errors into repository errors.
func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
