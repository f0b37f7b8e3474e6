// Package types defines the core data types shared across the glint pipeline.
package types

// IssueType categorizes an issue.
type IssueType string

const (
	TypeBug         IssueType = "bug"
	TypeFeature     IssueType = "feature"
	TypeImprovement IssueType = "improvement"
	TypeTask        IssueType = "task"
)

// ValidIssueType returns true if t is one of the recognized issue types.
func ValidIssueType(t IssueType) bool {
	switch t {
	case TypeBug, TypeFeature, TypeImprovement, TypeTask:
		return true
	}
	return false
}

// Team is a tracker team.
type Team struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Project is a tracker project with its team associations.
type Project struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	TeamIDs []string `json:"teamIds"`
}

// Label is a tracker label.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WorkflowState is a tracker workflow state (e.g. "In Progress").
// Type is the tracker's state category: triage, backlog, unstarted,
// started, completed, canceled.
type WorkflowState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// IssueSummary is a compact view of a recently updated issue, used for
// snapshot context and team-frequency inference.
type IssueSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	TeamKey  string `json:"teamKey"`
	Priority int    `json:"priority"`
}

// User is the authenticated tracker user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ExtractedIssue is the structured record derived from free-form text by
// the extraction client. All fields except Title are optional; pointer
// fields distinguish "absent" from zero values. It is never persisted.
type ExtractedIssue struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	TeamKey     string    `json:"teamKey,omitempty"`
	TeamID      string    `json:"teamId,omitempty"`
	ProjectID   string    `json:"projectId,omitempty"`
	ProjectName string    `json:"projectName,omitempty"`
	Priority    *int      `json:"priority,omitempty"` // 0 (none) .. 4 (urgent)
	Estimate    *float64  `json:"estimate,omitempty"` // points, > 0
	Labels      []string  `json:"labels,omitempty"`
	IssueType   IssueType `json:"issueType,omitempty"`
	DueDate     string    `json:"dueDate,omitempty"` // ISO date (YYYY-MM-DD)
	AssigneeID  string    `json:"assigneeId,omitempty"`
}

// Clone returns a deep copy of the record.
func (e *ExtractedIssue) Clone() *ExtractedIssue {
	c := *e
	if e.Priority != nil {
		p := *e.Priority
		c.Priority = &p
	}
	if e.Estimate != nil {
		est := *e.Estimate
		c.Estimate = &est
	}
	if e.Labels != nil {
		c.Labels = append([]string(nil), e.Labels...)
	}
	return &c
}

// ExtractedUpdate is the structured delta derived from free-form text
// describing a change to an existing issue.
type ExtractedUpdate struct {
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	StateName    string   `json:"stateName,omitempty"` // target workflow state
	Comment      string   `json:"comment,omitempty"`
	Priority     *int     `json:"priority,omitempty"`
	Estimate     *float64 `json:"estimate,omitempty"`
	AddLabels    []string `json:"addLabels,omitempty"`
	RemoveLabels []string `json:"removeLabels,omitempty"`
	AssigneeID   string   `json:"assigneeId,omitempty"`
	DueDate      string   `json:"dueDate,omitempty"`
}

// Empty returns true if the update carries no changes at all.
func (u *ExtractedUpdate) Empty() bool {
	return u.Title == "" && u.Description == "" && u.StateName == "" &&
		u.Comment == "" && u.Priority == nil && u.Estimate == nil &&
		len(u.AddLabels) == 0 && len(u.RemoveLabels) == 0 &&
		u.AssigneeID == "" && u.DueDate == ""
}

// IssueCreate is the tracker-ready payload for creating an issue. All
// references are concrete tracker IDs; resolution has already happened.
type IssueCreate struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	TeamID      string   `json:"teamId"`
	ProjectID   string   `json:"projectId,omitempty"`
	Priority    *int     `json:"priority,omitempty"`
	Estimate    *float64 `json:"estimate,omitempty"`
	LabelIDs    []string `json:"labelIds,omitempty"`
	StateID     string   `json:"stateId,omitempty"`
	AssigneeID  string   `json:"assigneeId,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
}

// IssueUpdate is the tracker-ready payload for updating an issue.
// Pointer and slice fields that are nil are left unchanged.
type IssueUpdate struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Priority       *int     `json:"priority,omitempty"`
	Estimate       *float64 `json:"estimate,omitempty"`
	StateID        string   `json:"stateId,omitempty"`
	LabelIDs       []string `json:"labelIds,omitempty"` // replaces the full label set
	AddLabelIDs    []string `json:"addLabelIds,omitempty"`
	RemoveLabelIDs []string `json:"removeLabelIds,omitempty"`
	AssigneeID     string   `json:"assigneeId,omitempty"`
	DueDate        string   `json:"dueDate,omitempty"`
	Comment        string   `json:"comment,omitempty"`
}

// CreatedIssue is the tracker's answer to a successful create.
type CreatedIssue struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"` // e.g. "ENG-142"
	URL        string `json:"url"`
	Title      string `json:"title"`
}
