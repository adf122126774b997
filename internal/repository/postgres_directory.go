package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"workflow-app/backend/pkg/models"
)

// CreateMember stores a new member.
func (s *PostgresStore) CreateMember(ctx context.Context, input CreateMemberInput) (*models.Member, error) {
	now := time.Now().UTC()
	member := &models.Member{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Email:     input.Email,
		Role:      input.Role,
		Status:    input.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if member.Status == "" {
		member.Status = models.MemberStatusActive
	}
	_, err := s.db.Exec(ctx,
		"INSERT INTO members (id, name, email, role, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		member.ID, member.Name, member.Email, member.Role, member.Status, member.CreatedAt, member.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return member, nil
}

// GetMember retrieves a member by ID.
func (s *PostgresStore) GetMember(ctx context.Context, id string) (*models.Member, error) {
	var m models.Member
	err := s.db.QueryRow(ctx,
		"SELECT id, name, email, role, status, created_at, updated_at FROM members WHERE id = $1", id).
		Scan(&m.ID, &m.Name, &m.Email, &m.Role, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

// ListMembers returns all members ordered by name.
func (s *PostgresStore) ListMembers(ctx context.Context) ([]*models.Member, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, name, email, role, status, created_at, updated_at FROM members ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Role, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// UpdateMember applies a partial update to a member.
func (s *PostgresStore) UpdateMember(ctx context.Context, id string, input UpdateMemberInput) (*models.Member, error) {
	existing, err := s.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		existing.Name = *input.Name
	}
	if input.Email != nil {
		existing.Email = *input.Email
	}
	if input.Role != nil {
		existing.Role = *input.Role
	}
	if input.Status != nil {
		existing.Status = *input.Status
	}
	existing.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(ctx,
		"UPDATE members SET name = $1, email = $2, role = $3, status = $4, updated_at = $5 WHERE id = $6",
		existing.Name, existing.Email, existing.Role, existing.Status, existing.UpdatedAt, id)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteMember removes a member.
func (s *PostgresStore) DeleteMember(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM members WHERE id = $1", id)
	return err
}

// CreateRole stores a new role.
func (s *PostgresStore) CreateRole(ctx context.Context, name string, permissions models.RolePermissions) (*models.Role, error) {
	now := time.Now().UTC()
	role := &models.Role{
		ID:          uuid.New().String(),
		Name:        name,
		Permissions: permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode permissions: %w", err)
	}
	_, err = s.db.Exec(ctx,
		"INSERT INTO roles (id, name, permissions, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)",
		role.ID, role.Name, perms, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return role, nil
}

// GetRole retrieves a role by ID.
func (s *PostgresStore) GetRole(ctx context.Context, id string) (*models.Role, error) {
	row := s.db.QueryRow(ctx,
		"SELECT id, name, permissions, created_at, updated_at FROM roles WHERE id = $1", id)
	return scanRole(row)
}

// ListRoles returns all roles ordered by name.
func (s *PostgresStore) ListRoles(ctx context.Context) ([]*models.Role, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, name, permissions, created_at, updated_at FROM roles ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// UpdateRole applies a partial update to a role.
func (s *PostgresStore) UpdateRole(ctx context.Context, id string, input UpdateRoleInput) (*models.Role, error) {
	existing, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		existing.Name = *input.Name
	}
	if input.Permissions != nil {
		existing.Permissions = *input.Permissions
	}
	existing.UpdatedAt = time.Now().UTC()

	perms, err := json.Marshal(existing.Permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode permissions: %w", err)
	}
	_, err = s.db.Exec(ctx,
		"UPDATE roles SET name = $1, permissions = $2, updated_at = $3 WHERE id = $4",
		existing.Name, perms, existing.UpdatedAt, id)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteRole removes a role.
func (s *PostgresStore) DeleteRole(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM roles WHERE id = $1", id)
	return err
}

func scanRole(row rowScanner) (*models.Role, error) {
	var role models.Role
	var perms []byte
	if err := row.Scan(&role.ID, &role.Name, &perms, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if err := json.Unmarshal(perms, &role.Permissions); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}
	return &role, nil
}
