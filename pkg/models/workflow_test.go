package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxStepOrder(t *testing.T) {
	tmpl := &WorkflowTemplate{Steps: []WorkflowStep{
		{Order: 2, Name: "Approve", Type: StepTypeApproval},
		{Order: 1, Name: "Request", Type: StepTypeTask},
		{Order: 3, Name: "Done", Type: StepTypeAuto},
	}}
	assert.Equal(t, 3, tmpl.MaxStepOrder())

	empty := &WorkflowTemplate{}
	assert.Equal(t, 0, empty.MaxStepOrder())
}

func TestStepAt(t *testing.T) {
	tmpl := &WorkflowTemplate{Steps: []WorkflowStep{
		{Order: 1, Name: "Request", Type: StepTypeTask},
		{Order: 2, Name: "Approve", Type: StepTypeApproval},
	}}

	step := tmpl.StepAt(2)
	assert.NotNil(t, step)
	assert.Equal(t, StepTypeApproval, step.Type)

	assert.Nil(t, tmpl.StepAt(5))
}

func TestWorkflowStatusIsTerminal(t *testing.T) {
	assert.True(t, WorkflowStatusCompleted.IsTerminal())
	assert.True(t, WorkflowStatusCancelled.IsTerminal())
	assert.False(t, WorkflowStatusDraft.IsTerminal())
	assert.False(t, WorkflowStatusInProgress.IsTerminal())
	assert.False(t, WorkflowStatusPendingApproval.IsTerminal())
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, StepTypeAuto.IsValid())
	assert.False(t, StepType("robot").IsValid())

	assert.True(t, TaskStatusReview.IsValid())
	assert.False(t, TaskStatus("blocked").IsValid())

	assert.True(t, TaskPriorityUrgent.IsValid())
	assert.False(t, TaskPriority("critical").IsValid())

	assert.True(t, ApprovalStatusRejected.IsValid())
	assert.False(t, ApprovalStatus("maybe").IsValid())
}
