// Package tracker defines the interface glint uses to talk to the issue
// tracker. The snapshot cache and the write paths depend only on this
// interface; the concrete HTTP client lives in tracker/rest.
package tracker

import (
	"context"

	"github.com/tobyfield/glint/internal/types"
)

// Client is the tracker API surface consumed by the pipeline.
type Client interface {
	ListTeams(ctx context.Context) ([]types.Team, error)
	ListProjects(ctx context.Context) ([]types.Project, error)
	ListLabels(ctx context.Context) ([]types.Label, error)
	ListWorkflowStates(ctx context.Context, teamID string) ([]types.WorkflowState, error)
	ListRecentIssues(ctx context.Context, n int) ([]types.IssueSummary, error)
	GetCurrentUser(ctx context.Context) (*types.User, error)

	CreateIssue(ctx context.Context, payload *types.IssueCreate) (*types.CreatedIssue, error)
	UpdateIssue(ctx context.Context, id string, payload *types.IssueUpdate) error
	CreateLabel(ctx context.Context, name string) (*types.Label, error)
}
