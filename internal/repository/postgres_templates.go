package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"workflow-app/backend/pkg/models"
)

// CreateTemplate stores a new workflow template.
func (s *PostgresStore) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*models.WorkflowTemplate, error) {
	now := time.Now().UTC()
	tmpl := &models.WorkflowTemplate{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Steps:       input.Steps,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	steps, err := json.Marshal(tmpl.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode steps: %w", err)
	}
	_, err = s.db.Exec(ctx,
		"INSERT INTO templates (id, name, description, steps, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		tmpl.ID, tmpl.Name, tmpl.Description, steps, tmpl.CreatedAt, tmpl.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

// GetTemplate retrieves a template by its ID.
func (s *PostgresStore) GetTemplate(ctx context.Context, id string) (*models.WorkflowTemplate, error) {
	row := s.db.QueryRow(ctx,
		"SELECT id, name, description, steps, created_at, updated_at FROM templates WHERE id = $1", id)
	return scanTemplate(row)
}

// ListTemplates returns all templates, newest first.
func (s *PostgresStore) ListTemplates(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, name, description, steps, created_at, updated_at FROM templates ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.WorkflowTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

// UpdateTemplate applies a partial update, replacing the step list wholesale
// when one is provided. Running instances keep their snapshot of the old name.
func (s *PostgresStore) UpdateTemplate(ctx context.Context, id string, input UpdateTemplateInput) (*models.WorkflowTemplate, error) {
	existing, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		existing.Name = *input.Name
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.Steps != nil {
		existing.Steps = input.Steps
	}
	existing.UpdatedAt = time.Now().UTC()

	steps, err := json.Marshal(existing.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode steps: %w", err)
	}
	_, err = s.db.Exec(ctx,
		"UPDATE templates SET name = $1, description = $2, steps = $3, updated_at = $4 WHERE id = $5",
		existing.Name, existing.Description, steps, existing.UpdatedAt, id)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteTemplate removes a template. Its task patterns are removed by the
// schema's cascade.
func (s *PostgresStore) DeleteTemplate(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM templates WHERE id = $1", id)
	return err
}

// CreateTaskPattern stores a new task pattern under a template. StepOrder is
// not checked against the template's step set.
func (s *PostgresStore) CreateTaskPattern(ctx context.Context, templateID string, input CreateTaskPatternInput) (*models.TaskPattern, error) {
	pattern := &models.TaskPattern{
		ID:                  uuid.New().String(),
		TemplateID:          templateID,
		Name:                input.Name,
		Description:         input.Description,
		StepOrder:           input.StepOrder,
		DefaultAssigneeRole: input.DefaultAssigneeRole,
		Priority:            input.Priority,
	}
	if pattern.Priority == "" {
		pattern.Priority = models.TaskPriorityMedium
	}
	_, err := s.db.Exec(ctx,
		"INSERT INTO task_patterns (id, template_id, name, description, step_order, default_assignee_role, priority) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		pattern.ID, pattern.TemplateID, pattern.Name, pattern.Description, pattern.StepOrder, pattern.DefaultAssigneeRole, pattern.Priority)
	if err != nil {
		return nil, err
	}
	return pattern, nil
}

// ListTaskPatterns returns all task patterns owned by a template.
func (s *PostgresStore) ListTaskPatterns(ctx context.Context, templateID string) ([]*models.TaskPattern, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, template_id, name, description, step_order, default_assignee_role, priority FROM task_patterns WHERE template_id = $1 ORDER BY step_order, name",
		templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patterns []*models.TaskPattern
	for rows.Next() {
		var p models.TaskPattern
		if err := rows.Scan(&p.ID, &p.TemplateID, &p.Name, &p.Description, &p.StepOrder, &p.DefaultAssigneeRole, &p.Priority); err != nil {
			return nil, err
		}
		patterns = append(patterns, &p)
	}
	return patterns, rows.Err()
}

// DeleteTaskPattern removes a single task pattern.
func (s *PostgresStore) DeleteTaskPattern(ctx context.Context, templateID, patternID string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM task_patterns WHERE template_id = $1 AND id = $2", templateID, patternID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*models.WorkflowTemplate, error) {
	var tmpl models.WorkflowTemplate
	var steps []byte
	if err := row.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Description, &steps, &tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal(steps, &tmpl.Steps); err != nil {
		return nil, fmt.Errorf("failed to decode steps: %w", err)
	}
	return &tmpl, nil
}
