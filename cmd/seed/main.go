package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"workflow-app/backend/internal/config"
	"workflow-app/backend/internal/logging"
	"workflow-app/backend/internal/repository"
	"workflow-app/backend/pkg/models"
)

func strPtr(s string) *string { return &s }

func main() {
	ctx := context.Background()
	logger := logging.NewLogger()

	// Load config
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to DB
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	store := repository.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Check for existing templates to prevent duplicates
	existing, err := store.ListTemplates(ctx)
	if err != nil {
		log.Fatalf("Failed to list existing templates: %v", err)
	}
	existingMap := make(map[string]bool)
	for _, t := range existing {
		existingMap[t.Name] = true
	}

	templates := []struct {
		Name        string
		Description string
		Steps       []models.WorkflowStep
		Patterns    []repository.CreateTaskPatternInput
	}{
		{
			Name:        "Leave Request",
			Description: "Workflow for paid and special leave requests",
			Steps: []models.WorkflowStep{
				{Order: 1, Name: "Request", Type: models.StepTypeTask},
				{Order: 2, Name: "Manager Approval", Type: models.StepTypeApproval, ApproverRoles: []string{"manager"}},
				{Order: 3, Name: "HR Review", Type: models.StepTypeApproval, ApproverRoles: []string{"hr"}},
				{Order: 4, Name: "Done", Type: models.StepTypeAuto},
			},
			Patterns: []repository.CreateTaskPatternInput{
				{
					Name:                "Prepare request form",
					Description:         "Fill in the leave request form",
					StepOrder:           1,
					DefaultAssigneeRole: strPtr("applicant"),
					Priority:            models.TaskPriorityMedium,
				},
				{
					Name:                "Prepare handover notes",
					Description:         "Document handover items for the absence",
					StepOrder:           1,
					DefaultAssigneeRole: strPtr("applicant"),
					Priority:            models.TaskPriorityHigh,
				},
			},
		},
		{
			Name:        "Purchase Request",
			Description: "Workflow for purchasing equipment and services",
			Steps: []models.WorkflowStep{
				{Order: 1, Name: "Prepare Quote", Type: models.StepTypeTask},
				{Order: 2, Name: "Manager Approval", Type: models.StepTypeApproval, ApproverRoles: []string{"manager"}},
				{Order: 3, Name: "Accounting Approval", Type: models.StepTypeApproval, ApproverRoles: []string{"accounting"}},
				{Order: 4, Name: "Place Order", Type: models.StepTypeTask},
				{Order: 5, Name: "Done", Type: models.StepTypeAuto},
			},
			Patterns: []repository.CreateTaskPatternInput{
				{
					Name:                "Collect vendor quote",
					Description:         "Obtain a quote from the vendor",
					StepOrder:           1,
					DefaultAssigneeRole: strPtr("requester"),
					Priority:            models.TaskPriorityHigh,
				},
				{
					Name:                "Build comparison sheet",
					Description:         "Compare quotes from multiple vendors",
					StepOrder:           1,
					DefaultAssigneeRole: strPtr("requester"),
					Priority:            models.TaskPriorityMedium,
				},
				{
					Name:                "Process the order",
					Description:         "Place the order once approved",
					StepOrder:           4,
					DefaultAssigneeRole: strPtr("purchaser"),
					Priority:            models.TaskPriorityHigh,
				},
			},
		},
		{
			Name:        "Bug Fix",
			Description: "Workflow from bug report to verified fix",
			Steps: []models.WorkflowStep{
				{Order: 1, Name: "Report", Type: models.StepTypeTask},
				{Order: 2, Name: "Triage", Type: models.StepTypeTask},
				{Order: 3, Name: "Fix", Type: models.StepTypeTask},
				{Order: 4, Name: "Review", Type: models.StepTypeApproval, ApproverRoles: []string{"tech_lead"}},
				{Order: 5, Name: "Test", Type: models.StepTypeTask},
				{Order: 6, Name: "Done", Type: models.StepTypeAuto},
			},
			Patterns: []repository.CreateTaskPatternInput{
				{
					Name:                "Write bug report",
					Description:         "Record reproduction steps, expected and actual behavior",
					StepOrder:           1,
					DefaultAssigneeRole: strPtr("reporter"),
					Priority:            models.TaskPriorityHigh,
				},
				{
					Name:                "Assess priority",
					Description:         "Investigate the impact and assign a priority",
					StepOrder:           2,
					DefaultAssigneeRole: strPtr("tech_lead"),
					Priority:            models.TaskPriorityHigh,
				},
				{
					Name:                "Implement fix",
					Description:         "Implement the bug fix",
					StepOrder:           3,
					DefaultAssigneeRole: strPtr("developer"),
					Priority:            models.TaskPriorityHigh,
				},
				{
					Name:                "Run tests",
					Description:         "Verify the fix with tests",
					StepOrder:           5,
					DefaultAssigneeRole: strPtr("qa"),
					Priority:            models.TaskPriorityHigh,
				},
			},
		},
	}

	for _, t := range templates {
		if existingMap[t.Name] {
			logger.Info("Skipping existing template: %s", t.Name)
			continue
		}

		template, err := store.CreateTemplate(ctx, repository.CreateTemplateInput{
			Name:        t.Name,
			Description: t.Description,
			Steps:       t.Steps,
		})
		if err != nil {
			log.Printf("Failed to create template %s: %v", t.Name, err)
			continue
		}
		logger.Info("Seeded template: name=%s id=%s", template.Name, template.ID)

		for _, p := range t.Patterns {
			if _, err := store.CreateTaskPattern(ctx, template.ID, p); err != nil {
				log.Printf("Failed to create task pattern %s: %v", p.Name, err)
			}
		}
	}

	seedDirectory(ctx, store, logger)

	logger.Info("Seeding complete!")
}

func seedDirectory(ctx context.Context, store *repository.PostgresStore, logger *logging.Logger) {
	existingMembers, err := store.ListMembers(ctx)
	if err != nil {
		log.Printf("Failed to list existing members: %v", err)
		return
	}
	memberMap := make(map[string]bool)
	for _, m := range existingMembers {
		memberMap[m.Email] = true
	}

	members := []repository.CreateMemberInput{
		{Name: "Taro Tanaka", Email: "tanaka@example.com", Role: "manager", Status: models.MemberStatusActive},
		{Name: "Hanako Suzuki", Email: "suzuki@example.com", Role: "member", Status: models.MemberStatusActive},
		{Name: "Ichiro Sato", Email: "sato@example.com", Role: "tech_lead", Status: models.MemberStatusActive},
	}
	for _, m := range members {
		if memberMap[m.Email] {
			continue
		}
		if _, err := store.CreateMember(ctx, m); err != nil {
			log.Printf("Failed to create member %s: %v", m.Name, err)
		} else {
			logger.Info("Seeded member: %s", m.Name)
		}
	}

	existingRoles, err := store.ListRoles(ctx)
	if err != nil {
		log.Printf("Failed to list existing roles: %v", err)
		return
	}
	roleMap := make(map[string]bool)
	for _, r := range existingRoles {
		roleMap[r.Name] = true
	}

	roles := []struct {
		Name        string
		Permissions models.RolePermissions
	}{
		{"member", models.RolePermissions{Member: true, Requester: true}},
		{"manager", models.RolePermissions{Member: true, Lead: true, Requester: true, Approver: true}},
		{"admin", models.RolePermissions{Member: true, Lead: true, Requester: true, Approver: true, Admin: true}},
	}
	for _, r := range roles {
		if roleMap[r.Name] {
			continue
		}
		if _, err := store.CreateRole(ctx, r.Name, r.Permissions); err != nil {
			log.Printf("Failed to create role %s: %v", r.Name, err)
		} else {
			logger.Info("Seeded role: %s", r.Name)
		}
	}
}
