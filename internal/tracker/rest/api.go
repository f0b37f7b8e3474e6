package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tobyfield/glint/internal/types"
)

// ListTeams fetches all teams in the workspace.
func (c *Client) ListTeams(ctx context.Context) ([]types.Team, error) {
	var result struct {
		Teams []types.Team `json:"teams"`
	}
	if err := c.getJSON(ctx, "/teams", &result); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return result.Teams, nil
}

// ListProjects fetches all projects, each joined to its team associations.
func (c *Client) ListProjects(ctx context.Context) ([]types.Project, error) {
	var result struct {
		Projects []types.Project `json:"projects"`
	}
	if err := c.getJSON(ctx, "/projects?expand=teams", &result); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return result.Projects, nil
}

// ListLabels fetches all workspace labels.
func (c *Client) ListLabels(ctx context.Context) ([]types.Label, error) {
	var result struct {
		Labels []types.Label `json:"labels"`
	}
	if err := c.getJSON(ctx, "/labels", &result); err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return result.Labels, nil
}

// ListWorkflowStates fetches the workflow states of a team.
func (c *Client) ListWorkflowStates(ctx context.Context, teamID string) ([]types.WorkflowState, error) {
	var result struct {
		States []types.WorkflowState `json:"states"`
	}
	path := fmt.Sprintf("/teams/%s/states", escapePath(teamID))
	if err := c.getJSON(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("list workflow states for team %s: %w", teamID, err)
	}
	return result.States, nil
}

// ListRecentIssues fetches the n most recently updated issues.
func (c *Client) ListRecentIssues(ctx context.Context, n int) ([]types.IssueSummary, error) {
	var result struct {
		Issues []types.IssueSummary `json:"issues"`
	}
	path := fmt.Sprintf("/issues?order=updated&limit=%d", n)
	if err := c.getJSON(ctx, path, &result); err != nil {
		return nil, fmt.Errorf("list recent issues: %w", err)
	}
	return result.Issues, nil
}

// GetCurrentUser fetches the authenticated user.
func (c *Client) GetCurrentUser(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.getJSON(ctx, "/me", &user); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return &user, nil
}

// CreateIssue creates an issue from a fully resolved payload.
func (c *Client) CreateIssue(ctx context.Context, payload *types.IssueCreate) (*types.CreatedIssue, error) {
	var created types.CreatedIssue
	if err := c.postJSON(ctx, "/issues", payload, &created); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return &created, nil
}

// UpdateIssue applies an update payload to an existing issue.
func (c *Client) UpdateIssue(ctx context.Context, id string, payload *types.IssueUpdate) error {
	path := fmt.Sprintf("/issues/%s", escapePath(id))
	if err := c.patchJSON(ctx, path, payload); err != nil {
		return fmt.Errorf("update issue %s: %w", id, err)
	}
	return nil
}

// CreateLabel creates a workspace label by name.
func (c *Client) CreateLabel(ctx context.Context, name string) (*types.Label, error) {
	var label types.Label
	in := map[string]string{"name": name}
	if err := c.postJSON(ctx, "/labels", in, &label); err != nil {
		return nil, fmt.Errorf("create label %q: %w", name, err)
	}
	return &label, nil
}

func (c *Client) patchJSON(ctx context.Context, path string, in any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	_, err = c.doRequest(ctx, http.MethodPatch, path, payload)
	return err
}
