package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"workflow-app/backend/internal/auth"
	"workflow-app/backend/internal/repository"
	"workflow-app/backend/internal/services"
	"workflow-app/backend/pkg/models"
)

type createWorkflowRequest struct {
	TemplateID string     `json:"templateId"`
	Name       string     `json:"name"`
	DueDate    *time.Time `json:"dueDate"`
}

type updateWorkflowStatusRequest struct {
	Status models.WorkflowStatus `json:"status"`
}

type createWorkflowTaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Assignee    *string             `json:"assignee"`
	StepOrder   int                 `json:"stepOrder"`
}

// workflowDetail embeds the instance together with its tasks and approvals.
type workflowDetail struct {
	*models.WorkflowInstance
	Tasks     []*models.Task         `json:"tasks"`
	Approvals []*models.ApprovalStep `json:"approvals"`
}

func (s *Server) listWorkflows(c echo.Context) error {
	var status *models.WorkflowStatus
	if raw := c.QueryParam("status"); raw != "" {
		parsed := models.WorkflowStatus(raw)
		if !parsed.IsValid() {
			return respondError(c, http.StatusBadRequest, "invalid status: "+raw)
		}
		status = &parsed
	}
	workflows, err := s.store.ListWorkflows(c.Request().Context(), status)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, workflows)
}

func (s *Server) createWorkflow(c echo.Context) error {
	var req createWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.TemplateID == "" {
		return respondError(c, http.StatusBadRequest, "templateId is required")
	}
	if req.Name == "" || len(req.Name) > maxNameLen {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("name must be 1-%d characters", maxNameLen))
	}

	user := auth.UserFromContext(c.Request().Context())
	result, err := s.workflows.CreateFromTemplate(c.Request().Context(), services.CreateWorkflowInput{
		TemplateID: req.TemplateID,
		Name:       req.Name,
		CreatedBy:  user.ID,
		DueDate:    req.DueDate,
	})
	if errors.Is(err, services.ErrTemplateNotFound) {
		return respondError(c, http.StatusBadRequest, "template not found")
	}
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusCreated, result)
}

func (s *Server) getWorkflow(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	workflow, err := s.store.GetWorkflow(ctx, id)
	if err != nil {
		return storeError(c, err, "workflow not found")
	}
	tasks, err := s.store.ListTasksByWorkflow(ctx, id)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	approvals, err := s.store.ListApprovalsByWorkflow(ctx, id)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, workflowDetail{
		WorkflowInstance: workflow,
		Tasks:            tasks,
		Approvals:        approvals,
	})
}

func (s *Server) deleteWorkflow(c echo.Context) error {
	if err := s.store.DeleteWorkflow(c.Request().Context(), c.Param("id")); err != nil {
		return storeError(c, err, "workflow not found")
	}
	return respond(c, http.StatusOK, map[string]string{"message": "workflow deleted"})
}

// updateWorkflowStatus writes the status directly, without consulting the
// progression engine. Step gates are not checked here.
func (s *Server) updateWorkflowStatus(c echo.Context) error {
	var req updateWorkflowStatusRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if !req.Status.IsValid() {
		return respondError(c, http.StatusBadRequest, "invalid status: "+string(req.Status))
	}

	workflow, err := s.store.UpdateWorkflowStatus(c.Request().Context(), c.Param("id"), req.Status, nil)
	if err != nil {
		return storeError(c, err, "workflow not found")
	}
	return respond(c, http.StatusOK, workflow)
}

func (s *Server) createWorkflowTask(c echo.Context) error {
	var req createWorkflowTaskRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" || len(req.Title) > maxNameLen {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("title must be 1-%d characters", maxNameLen))
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

	ctx := c.Request().Context()
	workflowID := c.Param("wfId")
	if _, err := s.store.GetWorkflow(ctx, workflowID); err != nil {
		return storeError(c, err, "workflow not found")
	}

	task, err := s.store.CreateTask(ctx, repository.CreateTaskData{
		WorkflowID:  workflowID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Assignee:    req.Assignee,
		StepOrder:   req.StepOrder,
	})
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusCreated, task)
}
