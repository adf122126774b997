// workflowctl is a small command line client for the workflow service API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"workflow-app/backend/pkg/models"
)

const version = "1.0.0"

var (
	serverURL  string
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "workflowctl",
	Short: "Command line client for the workflow service",
	Long: `workflowctl talks to a running workflow service over its REST API.

Examples:
  # List templates
  workflowctl template list

  # Create a workflow from a template
  workflowctl workflow create <template-id> "Summer vacation"

  # Show a workflow with its tasks and approvals
  workflowctl workflow show <workflow-id>

  # List pending approvals
  workflowctl approval list`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("workflowctl " + version)
	},
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage workflow templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		var templates []models.WorkflowTemplate
		if err := apiGet("/api/templates", &templates); err != nil {
			return err
		}
		if outputJSON {
			return printJSON(templates)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tSTEPS\tUPDATED")
		for _, t := range templates {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.ID, t.Name, len(t.Steps), t.UpdatedAt.Format(time.DateTime))
		}
		return w.Flush()
	},
}

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Manage workflow instances",
}

var workflowStatus string

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflow instances",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/api/workflows"
		if workflowStatus != "" {
			path += "?status=" + workflowStatus
		}
		var workflows []models.WorkflowInstance
		if err := apiGet(path, &workflows); err != nil {
			return err
		}
		if outputJSON {
			return printJSON(workflows)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tTEMPLATE\tSTATUS\tSTEP")
		for _, wf := range workflows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", wf.ID, wf.Name, wf.TemplateName, wf.Status, wf.CurrentStepOrder)
		}
		return w.Flush()
	},
}

var workflowCreateCmd = &cobra.Command{
	Use:   "create <template-id> <name>",
	Short: "Create a workflow instance from a template",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"templateId": args[0], "name": args[1]}
		var result struct {
			Workflow  models.WorkflowInstance `json:"workflow"`
			Tasks     []models.Task           `json:"tasks"`
			Approvals []models.ApprovalStep   `json:"approvals"`
		}
		if err := apiPost("/api/workflows", body, &result); err != nil {
			return err
		}
		if outputJSON {
			return printJSON(result)
		}
		fmt.Printf("Created workflow %s (%s) with %d tasks and %d approvals\n",
			result.Workflow.Name, result.Workflow.ID, len(result.Tasks), len(result.Approvals))
		return nil
	},
}

var workflowShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a workflow with its tasks and approvals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var detail struct {
			models.WorkflowInstance
			Tasks     []models.Task         `json:"tasks"`
			Approvals []models.ApprovalStep `json:"approvals"`
		}
		if err := apiGet("/api/workflows/"+args[0], &detail); err != nil {
			return err
		}
		if outputJSON {
			return printJSON(detail)
		}
		fmt.Printf("Workflow: %s (%s)\n", detail.Name, detail.ID)
		fmt.Printf("Template: %s\n", detail.TemplateName)
		fmt.Printf("Status:   %s\n", detail.Status)
		fmt.Printf("Step:     %d\n", detail.CurrentStepOrder)
		if detail.DueDate != nil {
			fmt.Printf("Due:      %s\n", detail.DueDate.Format(time.DateOnly))
		}

		fmt.Println("\nTasks:")
		for _, t := range detail.Tasks {
			assignee := "-"
			if t.Assignee != nil {
				assignee = *t.Assignee
			}
			fmt.Printf("  [%s] step %d  %s (%s)\n", t.Status, t.StepOrder, t.Title, assignee)
		}

		fmt.Println("\nApprovals:")
		for _, a := range detail.Approvals {
			fmt.Printf("  [%s] step %d  %s\n", a.Status, a.StepOrder, a.StepName)
		}
		return nil
	},
}

var approvalCmd = &cobra.Command{
	Use:   "approval",
	Short: "Manage approval steps",
}

var approvalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending approvals",
	RunE: func(cmd *cobra.Command, args []string) error {
		var approvals []models.ApprovalStep
		if err := apiGet("/api/approvals", &approvals); err != nil {
			return err
		}
		if outputJSON {
			return printJSON(approvals)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tWORKFLOW\tSTEP\tNAME\tREQUESTED_BY")
		for _, a := range approvals {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", a.ID, a.WorkflowID, a.StepOrder, a.StepName, a.RequestedBy)
		}
		return w.Flush()
	},
}

var approvalComment string

var approvalApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending approval step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{}
		if approvalComment != "" {
			body["comment"] = approvalComment
		}
		var approval models.ApprovalStep
		if err := apiPost("/api/approvals/"+args[0]+"/approve", body, &approval); err != nil {
			return err
		}
		if outputJSON {
			return printJSON(approval)
		}
		fmt.Printf("Approved step %q on workflow %s\n", approval.StepName, approval.WorkflowID)
		return nil
	},
}

var approvalRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending approval step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{}
		if approvalComment != "" {
			body["comment"] = approvalComment
		}
		var approval models.ApprovalStep
		if err := apiPost("/api/approvals/"+args[0]+"/reject", body, &approval); err != nil {
			return err
		}
		if outputJSON {
			return printJSON(approval)
		}
		fmt.Printf("Rejected step %q on workflow %s\n", approval.StepName, approval.WorkflowID)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "Workflow service address")
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "Print raw JSON output")

	workflowListCmd.Flags().StringVar(&workflowStatus, "status", "", "Filter by status (draft/in_progress/pending_approval/completed/cancelled)")
	approvalApproveCmd.Flags().StringVar(&approvalComment, "comment", "", "Comment on the decision")
	approvalRejectCmd.Flags().StringVar(&approvalComment, "comment", "", "Comment on the decision")

	templateCmd.AddCommand(templateListCmd)
	workflowCmd.AddCommand(workflowListCmd)
	workflowCmd.AddCommand(workflowCreateCmd)
	workflowCmd.AddCommand(workflowShowCmd)
	approvalCmd.AddCommand(approvalListCmd)
	approvalCmd.AddCommand(approvalApproveCmd)
	approvalCmd.AddCommand(approvalRejectCmd)

	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(workflowCmd)
	rootCmd.AddCommand(approvalCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// envelope mirrors the API response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func apiGet(path string, out any) error {
	resp, err := http.Get(serverURL + path)
	if err != nil {
		return err
	}
	return decodeEnvelope(resp, out)
}

func apiPost(path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(serverURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	return decodeEnvelope(resp, out)
}

func decodeEnvelope(resp *http.Response, out any) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, raw)
	}
	if !env.Success {
		return fmt.Errorf("request failed (%d): %s", resp.StatusCode, env.Error)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
