package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"workflow-app/backend/internal/auth"
)

type decideApprovalRequest struct {
	Comment *string `json:"comment"`
}

func (s *Server) listPendingApprovals(c echo.Context) error {
	approvals, err := s.store.ListPendingApprovals(c.Request().Context())
	if err != nil {
		return respondError(c, http.StatusInternalServerError, err.Error())
	}
	return respond(c, http.StatusOK, approvals)
}

func (s *Server) approveApproval(c echo.Context) error {
	var req decideApprovalRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Comment != nil && len(*req.Comment) > maxCommentLen {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("comment must be at most %d characters", maxCommentLen))
	}

	user := auth.UserFromContext(c.Request().Context())
	approval, err := s.workflows.ApproveApproval(c.Request().Context(), c.Param("id"), user.ID, req.Comment)
	if err != nil {
		return storeError(c, err, "approval not found")
	}
	return respond(c, http.StatusOK, approval)
}

func (s *Server) rejectApproval(c echo.Context) error {
	var req decideApprovalRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Comment != nil && len(*req.Comment) > maxCommentLen {
		return respondError(c, http.StatusBadRequest, fmt.Sprintf("comment must be at most %d characters", maxCommentLen))
	}

	user := auth.UserFromContext(c.Request().Context())
	approval, err := s.workflows.RejectApproval(c.Request().Context(), c.Param("id"), user.ID, req.Comment)
	if err != nil {
		return storeError(c, err, "approval not found")
	}
	return respond(c, http.StatusOK, approval)
}
