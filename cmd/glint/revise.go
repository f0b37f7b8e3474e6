package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tobyfield/glint/internal/dates"
	"github.com/tobyfield/glint/internal/snapshot"
	"github.com/tobyfield/glint/internal/types"
	"github.com/tobyfield/glint/internal/ui"
)

var reviseCmd = &cobra.Command{
	Use:   "revise <issue-id> [text]",
	Short: "Update an existing issue from natural-language text",
	Long: `Apply a free-form change description to an existing issue:

  glint revise ENG-42 "mark it done, fixed in v2.1"
  glint revise ENG-42 "bump to urgent and add the regression label"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRevise,
}

var reviseDryRun bool

func init() {
	reviseCmd.Flags().BoolVar(&reviseDryRun, "dry-run", false, "show the planned update but do not apply it")
	rootCmd.AddCommand(reviseCmd)
}

func runRevise(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	issueID := args[0]

	text, err := inputText(args[1:])
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

	update, err := a.model.Update(ctx, text, issueID, a.promptSnapshot(snap))
	if err != nil {
		return wrapExtraction(err)
	}

	payload, warnings, err := buildUpdatePayload(update, snap)
	printWarnings(warnings)
	if err != nil {
		return err
	}

	if reviseDryRun {
		printUpdate(issueID, update, payload)
		return nil
	}

	if err := a.client.UpdateIssue(ctx, issueID, payload); err != nil {
		return fmt.Errorf("updating %s: %w", issueID, err)
	}
	fmt.Printf("%s %s updated\n", ui.Pass(ui.IconPass), ui.Bold(issueID))
	return nil
}

// buildUpdatePayload maps the extracted delta onto concrete tracker IDs.
// Unknown state or label names degrade to warnings; the rest of the
// update still applies.
func buildUpdatePayload(update *types.ExtractedUpdate, snap *snapshot.Snapshot) (*types.IssueUpdate, []string, error) {
	payload := &types.IssueUpdate{Comment: update.Comment}
	var warnings []string

	if update.Title != "" {
		t := update.Title
		payload.Title = &t
	}
	if update.Description != "" {
		d := update.Description
		payload.Description = &d
	}
	if update.Priority != nil {
		if p := *update.Priority; p < 0 || p > 4 {
			return nil, warnings, &validationError{errs: []string{fmt.Sprintf("priority %d is out of range (0-4)", p)}}
		}
		payload.Priority = update.Priority
	}
	if update.Estimate != nil {
		if *update.Estimate <= 0 {
			return nil, warnings, &validationError{errs: []string{"estimate must be a positive number"}}
		}
		payload.Estimate = update.Estimate
	}
	if update.AssigneeID != "" {
		payload.AssigneeID = update.AssigneeID
	}

	if update.StateName != "" {
		state := stateByName(snap, update.StateName)
		if state == nil {
			warnings = append(warnings, fmt.Sprintf("workflow state %q not found; state left unchanged", update.StateName))
		} else {
			payload.StateID = state.ID
		}
	}

	addIDs, missing := labelIDs(snap, update.AddLabels)
	payload.AddLabelIDs = addIDs
	removeIDs, alsoMissing := labelIDs(snap, update.RemoveLabels)
	payload.RemoveLabelIDs = removeIDs
	missing = append(missing, alsoMissing...)
	if len(missing) > 0 {
		warnings = append(warnings, fmt.Sprintf("labels not found in workspace: %s", strings.Join(missing, ", ")))
	}

	if update.DueDate != "" {
		due, err := dates.Parse(update.DueDate, time.Now())
		if err != nil {
			return nil, warnings, &validationError{errs: []string{fmt.Sprintf("cannot parse due date %q", update.DueDate)}}
		}
		payload.DueDate = dates.FormatISO(due)
	}

	return payload, warnings, nil
}

func stateByName(snap *snapshot.Snapshot, name string) *types.WorkflowState {
	for i := range snap.States {
		if strings.EqualFold(snap.States[i].Name, name) {
			return &snap.States[i]
		}
	}
	return nil
}

func labelIDs(snap *snapshot.Snapshot, names []string) (ids []string, missing []string) {
	for _, name := range names {
		if label := snap.LabelByName(name); label != nil {
			ids = append(ids, label.ID)
		} else {
			missing = append(missing, name)
		}
	}
	return ids, missing
}

func printUpdate(issueID string, update *types.ExtractedUpdate, payload *types.IssueUpdate) {
	fmt.Printf("%s %s\n", ui.Accent("dry-run:"), ui.Bold(issueID))
	if payload.Title != nil {
		fmt.Printf("  title:    %s\n", *payload.Title)
	}
	if payload.StateID != "" {
		fmt.Printf("  state:    %s\n", update.StateName)
	}
	if payload.Priority != nil {
		fmt.Printf("  priority: %s\n", priorityName(*payload.Priority))
	}
	if payload.Estimate != nil {
		fmt.Printf("  estimate: %v\n", *payload.Estimate)
	}
	if len(update.AddLabels) > 0 {
		fmt.Printf("  +labels:  %s\n", strings.Join(update.AddLabels, ", "))
	}
	if len(update.RemoveLabels) > 0 {
		fmt.Printf("  -labels:  %s\n", strings.Join(update.RemoveLabels, ", "))
	}
	if payload.DueDate != "" {
		fmt.Printf("  due:      %s\n", payload.DueDate)
	}
	if payload.Comment != "" {
		fmt.Printf("  comment:  %s\n", payload.Comment)
	}
}
