package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tobyfield/glint/internal/dates"
	"github.com/tobyfield/glint/internal/debug"
	"github.com/tobyfield/glint/internal/resolve"
	"github.com/tobyfield/glint/internal/snapshot"
	"github.com/tobyfield/glint/internal/tracker"
	"github.com/tobyfield/glint/internal/types"
	"github.com/tobyfield/glint/internal/ui"
	"github.com/tobyfield/glint/internal/validate"
)

var newCmd = &cobra.Command{
	Use:   "new [text]",
	Short: "Create an issue from natural-language text",
	Long: `Create an issue from free-form text. The text can come from the
arguments or from stdin:

  glint new "the login page crashes on iOS 18, pretty urgent"
  pbpaste | glint new`,
	Args: cobra.ArbitraryArgs,
	RunE: runNew,
}

var (
	newTeam         string
	newProject      string
	newPriority     int
	newLabels       []string
	newDue          string
	newAssignMe     bool
	newDryRun       bool
	newCreateLabels bool
)

func init() {
	newCmd.Flags().StringVarP(&newTeam, "team", "t", "", "team key (overrides extraction)")
	newCmd.Flags().StringVarP(&newProject, "project", "p", "", "project name")
	newCmd.Flags().IntVar(&newPriority, "priority", -1, "priority 0-4 (overrides extraction)")
	newCmd.Flags().StringArrayVarP(&newLabels, "label", "l", nil, "label to attach (repeatable)")
	newCmd.Flags().StringVar(&newDue, "due", "", `due date ("2025-09-01", "+2w", "next friday")`)
	newCmd.Flags().BoolVar(&newAssignMe, "assign-me", false, "assign the issue to the current user")
	newCmd.Flags().BoolVar(&newDryRun, "dry-run", false, "resolve and validate but do not create")
	newCmd.Flags().BoolVar(&newCreateLabels, "create-labels", false, "create labels that do not exist yet")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	text, err := inputText(args)
	if err != nil {
		return err
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}

	snap, err := a.cache.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching workspace snapshot: %w", err)
	}

	record, err := a.model.Issue(ctx, text, a.promptSnapshot(snap))
	if err != nil {
		return wrapExtraction(err)
	}

	record, err = applyNewFlags(record, snap.User.ID)
	if err != nil {
		return err
	}
	record = resolve.ApplyDefaults(record, a.resolveOptions())

	verdict := validate.Validate(record, snap)
	printWarnings(verdict.Warnings)
	if !verdict.Valid {
		for _, e := range verdict.Errors {
			fmt.Fprintf(os.Stderr, "%s %s\n", ui.Fail(ui.IconFail), e)
		}
		return &validationError{errs: verdict.Errors}
	}
	if !verdict.Enriched.Empty() {
		enriched := verdict.Enriched
		if newCreateLabels {
			// Keep the unknown label names so they can be created below.
			enriched.LabelsSet = false
		}
		record = enriched.Apply(record)
	}

	result := resolve.Resolve(record, snap, a.resolveOptions())
	printWarnings(result.Warnings)
	if result.Input.TeamID == "" {
		return &validationError{errs: []string{"no team could be resolved; specify one with --team"}}
	}

	issue, err := createNew(ctx, a.client, a.cache, result, newDryRun, newCreateLabels)
	if err != nil {
		return err
	}
	if issue != nil {
		printCreated(issue)
	}
	return nil
}

// createNew is the write phase: label creation and the issue create. In
// dry-run mode nothing is written, label creation included; the record
// and the labels that would be created are printed instead.
func createNew(ctx context.Context, client tracker.Client, cache *snapshot.Cache, result *resolve.Result, dryRun, createLabels bool) (*types.CreatedIssue, error) {
	if dryRun {
		if createLabels && len(result.Unresolved) > 0 {
			fmt.Printf("%s %s\n", ui.Accent("would create labels:"), strings.Join(result.Unresolved, ", "))
		}
		printRecord(result.Input, teamKeyOf(result), result.Labels)
		return nil, nil
	}

	if createLabels && len(result.Unresolved) > 0 {
		created, err := createMissingLabels(ctx, client, result.Unresolved)
		if err != nil {
			return nil, err
		}
		result.Labels = append(result.Labels, created...)
		for _, l := range created {
			result.Input.LabelIDs = append(result.Input.LabelIDs, l.ID)
		}
		// The snapshot no longer reflects the workspace.
		cache.Invalidate()
	}

	issue, err := client.CreateIssue(ctx, result.Input)
	if err != nil {
		return nil, fmt.Errorf("creating issue: %w", err)
	}
	return issue, nil
}

// inputText joins the args, falling back to stdin when none are given.
func inputText(args []string) (string, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text != "" {
		return text, nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		return "", &validationError{errs: []string{"no input text; pass it as an argument or on stdin"}}
	}
	return text, nil
}

// applyNewFlags overrides extracted fields with explicit flags. Flags
// always win over the model.
func applyNewFlags(record *types.ExtractedIssue, currentUserID string) (*types.ExtractedIssue, error) {
	out := record.Clone()

	if newTeam != "" {
		out.TeamKey = strings.ToUpper(newTeam)
		out.TeamID = ""
	}
	if newProject != "" {
		out.ProjectName = newProject
		out.ProjectID = ""
	}
	if newPriority >= 0 {
		p := newPriority
		out.Priority = &p
	}
	if len(newLabels) > 0 {
		for _, l := range newLabels {
			out.Labels = append(out.Labels, strings.ToLower(strings.TrimSpace(l)))
		}
	}
	if newDue != "" {
		due, err := dates.Parse(newDue, time.Now())
		if err != nil {
			return nil, &validationError{errs: []string{fmt.Sprintf("cannot parse due date %q", newDue)}}
		}
		out.DueDate = dates.FormatISO(due)
	}
	if newAssignMe {
		out.AssigneeID = currentUserID
	}
	return out, nil
}

func createMissingLabels(ctx context.Context, client tracker.Client, names []string) ([]types.Label, error) {
	var created []types.Label
	for _, name := range names {
		label, err := client.CreateLabel(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("creating label %q: %w", name, err)
		}
		debug.PrintNormal("created label %s\n", label.Name)
		created = append(created, *label)
	}
	return created, nil
}

func teamKeyOf(result *resolve.Result) string {
	if result.Team != nil {
		return result.Team.Key
	}
	return ""
}
