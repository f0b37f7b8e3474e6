package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/tobyfield/glint/internal/debug"
	"github.com/tobyfield/glint/internal/types"
	"github.com/tobyfield/glint/internal/ui"
)

func printWarnings(warnings []string) {
	if debug.IsQuiet() {
		return
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "%s %s\n", ui.Warn(ui.IconWarn), w)
	}
}

func printCreated(created *types.CreatedIssue) {
	fmt.Printf("%s %s %s\n", ui.Pass(ui.IconPass), ui.Bold(created.Identifier), created.Title)
	if created.URL != "" && !debug.IsQuiet() {
		fmt.Println(ui.Muted("  " + created.URL))
	}
}

// printRecord renders the resolved payload for dry runs.
func printRecord(payload *types.IssueCreate, teamKey string, labels []types.Label) {
	fmt.Printf("%s %s\n", ui.Accent("dry-run:"), ui.Bold(payload.Title))
	if teamKey != "" {
		fmt.Printf("  team:     %s\n", teamKey)
	}
	if payload.ProjectID != "" {
		fmt.Printf("  project:  %s\n", payload.ProjectID)
	}
	if payload.Priority != nil {
		fmt.Printf("  priority: %s\n", priorityName(*payload.Priority))
	}
	if payload.Estimate != nil {
		fmt.Printf("  estimate: %v\n", *payload.Estimate)
	}
	if len(labels) > 0 {
		names := make([]string, len(labels))
		for i, l := range labels {
			names[i] = l.Name
		}
		fmt.Printf("  labels:   %s\n", strings.Join(names, ", "))
	}
	if payload.DueDate != "" {
		fmt.Printf("  due:      %s\n", payload.DueDate)
	}
	if payload.Description != "" {
		fmt.Printf("  %s\n", ui.Muted(payload.Description))
	}
}

func priorityName(p int) string {
	switch p {
	case 1:
		return "urgent"
	case 2:
		return "high"
	case 3:
		return "medium"
	case 4:
		return "low"
	}
	return "none"
}
