package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"workflow-app/backend/internal/repository"
	"workflow-app/backend/pkg/models"
)

type createTemplateRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Steps       []models.WorkflowStep `json:"steps"`
}

type updateTemplateRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Steps       []models.WorkflowStep `json:"steps"`
}

type createTaskPatternRequest struct {
	Name                string              `json:"name"`
	Description         string              `json:"description"`
	StepOrder           int                 `json:"stepOrder"`
	DefaultAssigneeRole *string             `json:"defaultAssigneeRole"`
	Priority            models.TaskPriority `json:"priority"`
}

func validateSteps(steps []models.WorkflowStep) error {
	for _, step := range steps {
		if step.Order < 1 {
			return fmt.Errorf("step order must be at least 1")
		}
		if step.Name == "" || len(step.Name) > maxStepNameLen {
			return fmt.Errorf("step name must be 1-%d characters", maxStepNameLen)
		}
		if !step.Type.IsValid() {
			return fmt.Errorf("invalid step type: %s", step.Type)
		}
	}
	return nil
}

func (s *Server) listTemplates(c echo.Context) error {
	templates, err := s.store.ListTemplates(c.Request().Context())
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, templates)
}

func (s *Server) createTemplate(c echo.Context) error {
	var req createTemplateRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || len(req.Name) > maxNameLen {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("name must be 1-%d characters", maxNameLen))
	}
	if len(req.Description) > maxDescriptionLen {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}
	if len(req.Steps) == 0 {
		return respondError(c, http.StatusBadRequest, "at least one step is required")
	}
	if err := validateSteps(req.Steps); err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	template, err := s.store.CreateTemplate(c.Request().Context(), repository.CreateTemplateInput{
		Name:        req.Name,
		Description: req.Description,
		Steps:       req.Steps,
	})
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusCreated, template)
}

func (s *Server) getTemplate(c echo.Context) error {
	template, err := s.store.GetTemplate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(c, err, "template not found")
	}
	return respond(c, http.StatusOK, template)
}

func (s *Server) updateTemplate(c echo.Context) error {
	var req updateTemplateRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name != nil && (*req.Name == "" || len(*req.Name) > maxNameLen) {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("name must be 1-%d characters", maxNameLen))
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLen {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}
	if req.Steps != nil {
		if err := validateSteps(req.Steps); err != nil {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
	}

	template, err := s.store.UpdateTemplate(c.Request().Context(), c.Param("id"), repository.UpdateTemplateInput{
		Name:        req.Name,
		Description: req.Description,
		Steps:       req.Steps,
	})
	if err != nil {
		return storeError(c, err, "template not found")
	}
	return respond(c, http.StatusOK, template)
}

func (s *Server) deleteTemplate(c echo.Context) error {
	if err := s.store.DeleteTemplate(c.Request().Context(), c.Param("id")); err != nil {
		return storeError(c, err, "template not found")
	}
	return respond(c, http.StatusOK, map[string]string{"message": "template deleted"})
}

func (s *Server) listTaskPatterns(c echo.Context) error {
	patterns, err := s.store.ListTaskPatterns(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, patterns)
}

func (s *Server) createTaskPattern(c echo.Context) error {
	var req createTaskPatternRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || len(req.Name) > maxNameLen {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("name must be 1-%d characters", maxNameLen))
	}
	if len(req.Description) > maxDescriptionLen {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}
	if req.StepOrder < 1 {
		return respondError(c, http.StatusBadRequest, "stepOrder must be at least 1")
	}
	if req.Priority == "" {
		req.Priority = models.TaskPriorityMedium
	}
	if !req.Priority.IsValid() {
		return respondError(c, http.StatusBadRequest, "invalid priority")
	}

	pattern, err := s.store.CreateTaskPattern(c.Request().Context(), c.Param("id"), repository.CreateTaskPatternInput{
		Name:                req.Name,
		Description:         req.Description,
		StepOrder:           req.StepOrder,
		DefaultAssigneeRole: req.DefaultAssigneeRole,
		Priority:            req.Priority,
	})
	if err != nil {
		return storeError(c, err, "template not found")
	}
	return respond(c, http.StatusCreated, pattern)
}

func (s *Server) deleteTaskPattern(c echo.Context) error {
	err := s.store.DeleteTaskPattern(c.Request().Context(), c.Param("templateId"), c.Param("patternId"))
	if err != nil {
		return storeError(c, err, "task pattern not found")
	}
	return respond(c, http.StatusOK, map[string]string{"message": "task pattern deleted"})
}
