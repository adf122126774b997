package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"workflow-app/backend/internal/repository"
	"workflow-app/backend/pkg/models"
)

type updateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Priority    *models.TaskPriority `json:"priority"`
	Assignee    *string              `json:"assignee"`
	Status      *models.TaskStatus   `json:"status"`
}

type updateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status"`
}

// listTasks filters by workflowId, assignee or status, in that precedence.
// Without a filter it returns every task.
func (s *Server) listTasks(c echo.Context) error {
	ctx := c.Request().Context()

	if workflowID := c.QueryParam("workflowId"); workflowID != "" {
		tasks, err := s.store.ListTasksByWorkflow(ctx, workflowID)
		if err != nil {
			return respondError(c, http.StatusInternalServerError, err.Error())
		}
		return respond(c, http.StatusOK, tasks)
	}
	if assignee := c.QueryParam("assignee"); assignee != "" {
		tasks, err := s.store.ListTasksByAssignee(ctx, assignee)
		if err != nil {
			return respondError(c, http.StatusInternalServerError, err.Error())
		}
		return respond(c, http.StatusOK, tasks)
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := models.TaskStatus(raw)
		if !status.IsValid() {
			return respondError(c, http.StatusBadRequest, "invalid status: "+raw)
		}
		tasks, err := s.store.ListTasksByStatus(ctx, status)
		if err != nil {
			return respondError(c, http.StatusInternalServerError, err.Error())
		}
		return respond(c, http.StatusOK, tasks)
	}

	tasks, err := s.store.ListAllTasks(ctx)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, tasks)
}

func (s *Server) updateTask(c echo.Context) error {
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Title != nil && (*req.Title == "" || len(*req.Title) > maxNameLen) {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("title must be 1-%d characters", maxNameLen))
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLen {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}
	if req.Priority != nil && !req.Priority.IsValid() {
		return respondError(c, http.StatusBadRequest, "invalid priority")
	}
	if req.Status != nil && !req.Status.IsValid() {
		return respondError(c, http.StatusBadRequest, "invalid status")
	}

	ctx := c.Request().Context()
	taskID := c.Param("id")
	task, err := s.store.FindTask(ctx, taskID)
	if err != nil {
		return storeError(c, err, "task not found")
	}

	// Status changes go through the progression engine so a completed task can
	// move its workflow forward.
	if req.Status != nil {
		if _, err := s.workflows.UpdateTaskStatus(ctx, taskID, *req.Status); err != nil {
			return storeError(c, err, "task not found")
		}
	}

	updated, err := s.store.UpdateTask(ctx, task.WorkflowID, taskID, repository.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Assignee:    req.Assignee,
	})
	if err != nil {
		return storeError(c, err, "task not found")
	}
	return respond(c, http.StatusOK, updated)
}

func (s *Server) updateTaskStatus(c echo.Context) error {
	var req updateTaskStatusRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if !req.Status.IsValid() {
		return respondError(c, http.StatusBadRequest, "invalid status: "+string(req.Status))
	}

	task, err := s.workflows.UpdateTaskStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return storeError(c, err, "task not found")
	}
	return respond(c, http.StatusOK, task)
}
