// Package api contains the HTTP handlers for the workflow service
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"workflow-app/backend/internal/repository"
	"workflow-app/backend/internal/services"
)

// Input length limits shared across the handlers.
const (
	maxNameLen        = 200
	maxDescriptionLen = 1000
	maxCommentLen     = 1000
	maxStepNameLen    = 100
)

// Server holds the dependencies for the API handlers.
type Server struct {
	store     repository.Store
	workflows *services.WorkflowService
}

// NewServer creates a new Server.
func NewServer(store repository.Store, workflows *services.WorkflowService) *Server {
	return &Server{store: store, workflows: workflows}
}

// RegisterRoutes mounts every handler under the given group.
func (s *Server) RegisterRoutes(g *echo.Group) {
	g.GET("/templates", s.listTemplates)
	g.POST("/templates", s.createTemplate)
	g.GET("/templates/:id", s.getTemplate)
	g.PUT("/templates/:id", s.updateTemplate)
	g.DELETE("/templates/:id", s.deleteTemplate)
	g.GET("/templates/:id/patterns", s.listTaskPatterns)
	g.POST("/templates/:id/patterns", s.createTaskPattern)
	g.DELETE("/templates/:templateId/patterns/:patternId", s.deleteTaskPattern)

	g.GET("/workflows", s.listWorkflows)
	g.POST("/workflows", s.createWorkflow)
	g.GET("/workflows/:id", s.getWorkflow)
	g.DELETE("/workflows/:id", s.deleteWorkflow)
	g.PATCH("/workflows/:id/status", s.updateWorkflowStatus)
	g.POST("/workflows/:wfId/tasks", s.createWorkflowTask)

	g.GET("/tasks", s.listTasks)
	g.PATCH("/tasks/:id", s.updateTask)
	g.PATCH("/tasks/:id/status", s.updateTaskStatus)

	g.GET("/approvals", s.listPendingApprovals)
	g.POST("/approvals/:id/approve", s.approveApproval)
	g.POST("/approvals/:id/reject", s.rejectApproval)

	g.GET("/members", s.listMembers)
	g.POST("/members", s.createMember)
	g.GET("/members/:id", s.getMember)
	g.PATCH("/members/:id", s.updateMember)
	g.DELETE("/members/:id", s.deleteMember)

	g.GET("/roles", s.listRoles)
	g.POST("/roles", s.createRole)
	g.GET("/roles/:id", s.getRole)
	g.PATCH("/roles/:id", s.updateRole)
	g.DELETE("/roles/:id", s.deleteRole)
}

// response is the envelope every endpoint answers with.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, response{Success: true, Data: data})
}

func respondError(c echo.Context, status int, msg string) error {
	return c.JSON(status, response{Success: false, Error: msg})
}

// storeError maps repository errors onto the envelope: lookup misses become a
// 404 with the given message, everything else is a 500.
func storeError(c echo.Context, err error, notFoundMsg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return respondError(c, http.StatusNotFound, notFoundMsg)
	}
	return respondError(c, http.StatusInternalServerError, err.Error())
}
