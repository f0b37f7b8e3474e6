// Package testutil provides shared test fakes.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/tobyfield/glint/internal/types"
)

// FakeTracker is an in-memory tracker.Client with per-method call counts
// and error injection. Safe for concurrent use (the snapshot cache issues
// parallel sub-fetches).
type FakeTracker struct {
	mu sync.Mutex

	Teams        []types.Team
	Projects     []types.Project
	Labels       []types.Label
	States       map[string][]types.WorkflowState // keyed by team ID
	RecentIssues []types.IssueSummary
	User         types.User

	// Errs maps a method name ("ListTeams", ...) to an error to return.
	Errs map[string]error

	// Calls counts invocations per method name.
	Calls map[string]int

	// Created collects payloads passed to CreateIssue.
	Created []*types.IssueCreate
	// Updated collects IDs passed to UpdateIssue.
	Updated []string

	// CreateIssueFn, when set, overrides the default CreateIssue behavior.
	CreateIssueFn func(payload *types.IssueCreate) (*types.CreatedIssue, error)

	nextID int
}

// NewFakeTracker returns a fake with empty collections and a default user.
func NewFakeTracker() *FakeTracker {
	return &FakeTracker{
		States: make(map[string][]types.WorkflowState),
		Errs:   make(map[string]error),
		Calls:  make(map[string]int),
		User:   types.User{ID: "user-1", Email: "dev@example.com", Name: "Dev"},
	}
}

func (f *FakeTracker) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[method]++
	return f.Errs[method]
}

// CallCount returns how many times the named method was invoked.
func (f *FakeTracker) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

func (f *FakeTracker) ListTeams(ctx context.Context) ([]types.Team, error) {
	if err := f.record("ListTeams"); err != nil {
		return nil, err
	}
	return f.Teams, nil
}

func (f *FakeTracker) ListProjects(ctx context.Context) ([]types.Project, error) {
	if err := f.record("ListProjects"); err != nil {
		return nil, err
	}
	return f.Projects, nil
}

func (f *FakeTracker) ListLabels(ctx context.Context) ([]types.Label, error) {
	if err := f.record("ListLabels"); err != nil {
		return nil, err
	}
	return f.Labels, nil
}

func (f *FakeTracker) ListWorkflowStates(ctx context.Context, teamID string) ([]types.WorkflowState, error) {
	if err := f.record("ListWorkflowStates"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.States[teamID], nil
}

func (f *FakeTracker) ListRecentIssues(ctx context.Context, n int) ([]types.IssueSummary, error) {
	if err := f.record("ListRecentIssues"); err != nil {
		return nil, err
	}
	if len(f.RecentIssues) > n {
		return f.RecentIssues[:n], nil
	}
	return f.RecentIssues, nil
}

func (f *FakeTracker) GetCurrentUser(ctx context.Context) (*types.User, error) {
	if err := f.record("GetCurrentUser"); err != nil {
		return nil, err
	}
	u := f.User
	return &u, nil
}

func (f *FakeTracker) CreateIssue(ctx context.Context, payload *types.IssueCreate) (*types.CreatedIssue, error) {
	if err := f.record("CreateIssue"); err != nil {
		return nil, err
	}
	if f.CreateIssueFn != nil {
		return f.CreateIssueFn(payload)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.Created = append(f.Created, payload)
	id := fmt.Sprintf("issue-%d", f.nextID)
	identifier := fmt.Sprintf("ENG-%d", f.nextID)
	return &types.CreatedIssue{
		ID:         id,
		Identifier: identifier,
		URL:        "https://tracker.example.com/issue/" + identifier,
		Title:      payload.Title,
	}, nil
}

func (f *FakeTracker) UpdateIssue(ctx context.Context, id string, payload *types.IssueUpdate) error {
	if err := f.record("UpdateIssue"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Updated = append(f.Updated, id)
	return nil
}

func (f *FakeTracker) CreateLabel(ctx context.Context, name string) (*types.Label, error) {
	if err := f.record("CreateLabel"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	label := types.Label{ID: fmt.Sprintf("label-%d", f.nextID), Name: name}
	f.Labels = append(f.Labels, label)
	return &label, nil
}
