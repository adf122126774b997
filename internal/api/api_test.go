package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-app/backend/internal/repository"
	"workflow-app/backend/internal/services"
	"workflow-app/backend/pkg/models"
)

// stubStore implements the handful of repository methods the handler tests
// exercise. The embedded interface panics on anything unimplemented, which
// doubles as a guard against handlers touching unexpected methods.
type stubStore struct {
	repository.Store
	templates map[string]*models.WorkflowTemplate
	workflows map[string]*models.WorkflowInstance
	tasks     []*models.Task
	approvals []*models.ApprovalStep
}

func newStubStore() *stubStore {
	return &stubStore{
		templates: make(map[string]*models.WorkflowTemplate),
		workflows: make(map[string]*models.WorkflowInstance),
	}
}

func (s *stubStore) CreateTemplate(ctx context.Context, input repository.CreateTemplateInput) (*models.WorkflowTemplate, error) {
	t := &models.WorkflowTemplate{
		ID:          "tmpl-001",
		Name:        input.Name,
		Description: input.Description,
		Steps:       input.Steps,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	s.templates[t.ID] = t
	return t, nil
}

func (s *stubStore) GetTemplate(ctx context.Context, id string) (*models.WorkflowTemplate, error) {
	t, ok := s.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (s *stubStore) ListTemplates(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	out := make([]*models.WorkflowTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubStore) GetWorkflow(ctx context.Context, id string) (*models.WorkflowInstance, error) {
	w, ok := s.workflows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return w, nil
}

func (s *stubStore) ListTasksByWorkflow(ctx context.Context, workflowID string) ([]*models.Task, error) {
	out := make([]*models.Task, 0)
	for _, t := range s.tasks {
		if t.WorkflowID == workflowID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubStore) ListTasksByAssignee(ctx context.Context, assignee string) ([]*models.Task, error) {
	out := make([]*models.Task, 0)
	for _, t := range s.tasks {
		if t.Assignee != nil && *t.Assignee == assignee {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubStore) ListAllTasks(ctx context.Context) ([]*models.Task, error) {
	return s.tasks, nil
}

func (s *stubStore) ListApprovalsByWorkflow(ctx context.Context, workflowID string) ([]*models.ApprovalStep, error) {
	out := make([]*models.ApprovalStep, 0)
	for _, a := range s.approvals {
		if a.WorkflowID == workflowID {
			out = append(out, a)
		}
	}
	return out, nil
}

func newTestServer(store *stubStore) (*Server, *echo.Echo) {
	e := echo.New()
	svc := services.NewWorkflowService(store, store, store, store)
	return NewServer(store, svc), e
}

func doRequest(e *echo.Echo, s *Server, method, path, body string) *httptest.ResponseRecorder {
	s.RegisterRoutes(e.Group("/api"))
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateTemplate(t *testing.T) {
	store := newStubStore()
	s, e := newTestServer(store)

	body := `{
		"name": "Leave Request",
		"description": "Workflow for leave requests",
		"steps": [
			{"order": 1, "name": "Request", "type": "task"},
			{"order": 2, "name": "Manager Approval", "type": "approval", "approverRoles": ["manager"]}
		]
	}`
	rec := doRequest(e, s, http.MethodPost, "/api/templates", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
}

func TestCreateTemplate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty name", `{"name": "", "steps": [{"order": 1, "name": "A", "type": "task"}]}`},
		{"no steps", `{"name": "X", "steps": []}`},
		{"bad step type", `{"name": "X", "steps": [{"order": 1, "name": "A", "type": "robot"}]}`},
		{"zero step order", `{"name": "X", "steps": [{"order": 0, "name": "A", "type": "task"}]}`},
		{"name too long", `{"name": "` + strings.Repeat("x", 201) + `", "steps": [{"order": 1, "name": "A", "type": "task"}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newStubStore()
			s, e := newTestServer(store)
			rec := doRequest(e, s, http.MethodPost, "/api/templates", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestGetTemplate_NotFound(t *testing.T) {
	store := newStubStore()
	s, e := newTestServer(store)

	rec := doRequest(e, s, http.MethodGet, "/api/templates/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "template not found", resp.Error)
}

func TestCreateWorkflow_TemplateNotFound(t *testing.T) {
	store := newStubStore()
	s, e := newTestServer(store)

	rec := doRequest(e, s, http.MethodPost, "/api/workflows", `{"templateId": "missing", "name": "X"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "template not found", resp.Error)
}

func TestGetWorkflow_EmbedsTasksAndApprovals(t *testing.T) {
	store := newStubStore()
	store.workflows["wf-001"] = &models.WorkflowInstance{
		ID:               "wf-001",
		TemplateID:       "tmpl-001",
		TemplateName:     "Leave Request",
		Name:             "Summer vacation",
		Status:           models.WorkflowStatusInProgress,
		CurrentStepOrder: 1,
		CreatedBy:        "user-001",
		Version:          1,
	}
	store.tasks = []*models.Task{
		{ID: "task-001", WorkflowID: "wf-001", Title: "Prepare request form", Status: models.TaskStatusTodo, StepOrder: 1},
		{ID: "task-002", WorkflowID: "wf-other", Title: "unrelated", Status: models.TaskStatusTodo, StepOrder: 1},
	}
	store.approvals = []*models.ApprovalStep{
		{ID: "appr-001", WorkflowID: "wf-001", StepOrder: 2, StepName: "Manager Approval", Status: models.ApprovalStatusPending},
	}
	s, e := newTestServer(store)

	rec := doRequest(e, s, http.MethodGet, "/api/workflows/wf-001", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var detail struct {
		ID        string                 `json:"id"`
		Tasks     []models.Task          `json:"tasks"`
		Approvals []*models.ApprovalStep `json:"approvals"`
	}
	require.NoError(t, json.Unmarshal(raw, &detail))
	assert.Equal(t, "wf-001", detail.ID)
	require.Len(t, detail.Tasks, 1)
	assert.Equal(t, "task-001", detail.Tasks[0].ID)
	require.Len(t, detail.Approvals, 1)
	assert.Equal(t, "appr-001", detail.Approvals[0].ID)
}

func TestUpdateWorkflowStatus_InvalidStatus(t *testing.T) {
	store := newStubStore()
	s, e := newTestServer(store)

	rec := doRequest(e, s, http.MethodPatch, "/api/workflows/wf-001/status", `{"status": "paused"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "invalid status")
}

func TestListTasks_FilterPrecedence(t *testing.T) {
	assignee := "user-002"
	store := newStubStore()
	store.tasks = []*models.Task{
		{ID: "task-001", WorkflowID: "wf-001", Title: "A", Status: models.TaskStatusTodo, Assignee: &assignee},
		{ID: "task-002", WorkflowID: "wf-002", Title: "B", Status: models.TaskStatusDone},
	}
	s, e := newTestServer(store)

	// workflowId wins over assignee when both are present.
	rec := doRequest(e, s, http.MethodGet, "/api/tasks?workflowId=wf-002&assignee=user-002", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var tasks []models.Task
	require.NoError(t, json.Unmarshal(raw, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "task-002", tasks[0].ID)
}

func TestListTasks_InvalidStatus(t *testing.T) {
	store := newStubStore()
	s, e := newTestServer(store)

	rec := doRequest(e, s, http.MethodGet, "/api/tasks?status=blocked", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
}
