package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"workflow-app/backend/internal/repository"
	"workflow-app/backend/pkg/models"
)

type createMemberRequest struct {
	Name   string              `json:"name"`
	Email  string              `json:"email"`
	Role   string              `json:"role"`
	Status models.MemberStatus `json:"status"`
}

type updateMemberRequest struct {
	Name   *string              `json:"name"`
	Email  *string              `json:"email"`
	Role   *string              `json:"role"`
	Status *models.MemberStatus `json:"status"`
}

type createRoleRequest struct {
	Name        string                 `json:"name"`
	Permissions models.RolePermissions `json:"permissions"`
}

type updateRoleRequest struct {
	Name        *string                 `json:"name"`
	Permissions *models.RolePermissions `json:"permissions"`
}

func (s *Server) listMembers(c echo.Context) error {
	members, err := s.store.ListMembers(c.Request().Context())
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, members)
}

func (s *Server) createMember(c echo.Context) error {
	var req createMemberRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || len(req.Name) > maxNameLen {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("name must be 1-%d characters", maxNameLen))
	}
	if !strings.Contains(req.Email, "@") {
		return respondError(c, http.StatusBadRequest, "invalid email address")
	}
	if req.Status == "" {
		req.Status = models.MemberStatusActive
	}
	if !req.Status.IsValid() {
		return respondError(c, http.StatusBadRequest, "invalid status")
	}

	member, err := s.store.CreateMember(c.Request().Context(), repository.CreateMemberInput{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusCreated, member)
}

func (s *Server) getMember(c echo.Context) error {
	member, err := s.store.GetMember(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(c, err, "member not found")
	}
	return respond(c, http.StatusOK, member)
}

func (s *Server) updateMember(c echo.Context) error {
	var req updateMemberRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name != nil && (*req.Name == "" || len(*req.Name) > maxNameLen) {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("name must be 1-%d characters", maxNameLen))
	}
	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		return respondError(c, http.StatusBadRequest, "invalid email address")
	}
	if req.Status != nil && !req.Status.IsValid() {
		return respondError(c, http.StatusBadRequest, "invalid status")
	}

	member, err := s.store.UpdateMember(c.Request().Context(), c.Param("id"), repository.UpdateMemberInput{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		return storeError(c, err, "member not found")
	}
	return respond(c, http.StatusOK, member)
}

func (s *Server) deleteMember(c echo.Context) error {
	if err := s.store.DeleteMember(c.Request().Context(), c.Param("id")); err != nil {
		return storeError(c, err, "member not found")
	}
	return respond(c, http.StatusOK, map[string]string{"message": "member deleted"})
}

func (s *Server) listRoles(c echo.Context) error {
	roles, err := s.store.ListRoles(c.Request().Context())
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, roles)
}

func (s *Server) createRole(c echo.Context) error {
	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || len(req.Name) > maxNameLen {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("name must be 1-%d characters", maxNameLen))
	}

	role, err := s.store.CreateRole(c.Request().Context(), req.Name, req.Permissions)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusCreated, role)
}

func (s *Server) getRole(c echo.Context) error {
	role, err := s.store.GetRole(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(c, err, "role not found")
	}
	return respond(c, http.StatusOK, role)
}

func (s *Server) updateRole(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name != nil && (*req.Name == "" || len(*req.Name) > maxNameLen) {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("name must be 1-%d characters", maxNameLen))
	}

	role, err := s.store.UpdateRole(c.Request().Context(), c.Param("id"), repository.UpdateRoleInput{
		Name:        req.Name,
		Permissions: req.Permissions,
	})
	if err != nil {
		return storeError(c, err, "role not found")
	}
	return respond(c, http.StatusOK, role)
}

func (s *Server) deleteRole(c echo.Context) error {
	if err := s.store.DeleteRole(c.Request().Context(), c.Param("id")); err != nil {
		return storeError(c, err, "role not found")
	}
	return respond(c, http.StatusOK, map[string]string{"message": "role deleted"})
}
