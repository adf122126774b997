package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"workflow-app/backend/internal/repository"
	"workflow-app/backend/internal/services"
)

type Server struct {
	mcpServer       *server.MCPServer
	workflowService *services.WorkflowService
	approvals       repository.ApprovalStore
}

func NewServer(workflowService *services.WorkflowService, approvals repository.ApprovalStore) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Workflow App",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		workflowService: workflowService,
		approvals:       approvals,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"create_workflow",
			mcp.WithDescription("Create a new workflow instance from a template"),
			mcp.WithString("templateId", mcp.Required(), mcp.Description("The ID of the workflow template")),
			mcp.WithString("name", mcp.Required(), mcp.Description("The name of the new workflow")),
			mcp.WithString("createdBy", mcp.Description("The ID of the user creating the workflow")),
		),
		s.handleCreateWorkflow,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_pending_approvals",
			mcp.WithDescription("List every approval step that is still waiting for a decision"),
		),
		s.handleListPendingApprovals,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"approve_step",
			mcp.WithDescription("Approve a pending approval step"),
			mcp.WithString("approvalId", mcp.Required(), mcp.Description("The ID of the approval step")),
			mcp.WithString("approver", mcp.Required(), mcp.Description("The ID of the approving user")),
			mcp.WithString("comment", mcp.Description("An optional comment on the decision")),
		),
		s.handleApproveStep,
	)
}

func (s *Server) handleCreateWorkflow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	templateID, ok := args["templateId"].(string)
	if !ok || templateID == "" {
		return mcp.NewToolResultError("Missing required parameter: templateId"), nil
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("Missing required parameter: name"), nil
	}

	createdBy, _ := args["createdBy"].(string)
	if createdBy == "" {
		createdBy = "mcp-client"
	}

	result, err := s.workflowService.CreateFromTemplate(ctx, services.CreateWorkflowInput{
		TemplateID: templateID,
		Name:       name,
		CreatedBy:  createdBy,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create workflow: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListPendingApprovals(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	approvals, err := s.approvals.ListPendingApprovals(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list approvals: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(approvals)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleApproveStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	approvalID, ok := args["approvalId"].(string)
	if !ok || approvalID == "" {
		return mcp.NewToolResultError("Missing required parameter: approvalId"), nil
	}

	approver, ok := args["approver"].(string)
	if !ok || approver == "" {
		return mcp.NewToolResultError("Missing required parameter: approver"), nil
	}

	var comment *string
	if raw, ok := args["comment"].(string); ok && raw != "" {
		comment = &raw
	}

	approval, err := s.workflowService.ApproveApproval(ctx, approvalID, approver, comment)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to approve step: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(approval)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
