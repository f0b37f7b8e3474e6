package extract

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `{"title":"x"}`, `{"title":"x"}`},
		{"json fence", "```json\n{\"title\":\"x\"}\n```", `{"title":"x"}`},
		{"bare fence", "```\n{\"title\":\"x\"}\n```", `{"title":"x"}`},
		{"surrounding whitespace", "  {\"title\":\"x\"}  ", `{"title":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.input); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseIssueFull(t *testing.T) {
	raw := `{
		"title": "Fix login crash",
		"description": "Crashes on iOS 18",
		"teamKey": "eng",
		"priority": 1,
		"estimate": 3,
		"labels": ["Bug", "MOBILE"],
		"issueType": "bug",
		"dueDate": "2025-09-01",
		"assigneeId": "user-7"
	}`

	record, warnings, err := parseIssue(raw, refTime)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "Fix login crash", record.Title)
	assert.Equal(t, "Crashes on iOS 18", record.Description)
	assert.Equal(t, "ENG", record.TeamKey, "team key is upper-cased")
	require.NotNil(t, record.Priority)
	assert.Equal(t, 1, *record.Priority)
	require.NotNil(t, record.Estimate)
	assert.Equal(t, 3.0, *record.Estimate)
	assert.Equal(t, []string{"bug", "mobile"}, record.Labels, "labels are lower-cased")
	assert.Equal(t, "bug", string(record.IssueType))
	assert.Equal(t, "2025-09-01", record.DueDate)
	assert.Equal(t, "user-7", record.AssigneeID)
}

func TestParseIssueMissingTitle(t *testing.T) {
	_, _, err := parseIssue(`{"description": "no title here"}`, refTime)
	require.Error(t, err)

	var extractErr *Error
	require.True(t, errors.As(err, &extractErr))
	assert.Contains(t, extractErr.Reason, "title")
}

func TestParseIssueInvalidJSON(t *testing.T) {
	_, _, err := parseIssue("I could not produce JSON, sorry!", refTime)
	require.Error(t, err)

	var extractErr *Error
	require.True(t, errors.As(err, &extractErr))
	assert.Contains(t, extractErr.Reason, "JSON")
}

func TestParseIssueDropsBadFields(t *testing.T) {
	// Out-of-range or mistyped optional fields are dropped, never fatal.
	raw := `{
		"title": "Valid title",
		"priority": 9,
		"estimate": -2,
		"issueType": "epic",
		"dueDate": "whenever you feel like it maybe"
	}`

	record, warnings, err := parseIssue(raw, refTime)
	require.NoError(t, err)

	assert.Nil(t, record.Priority)
	assert.Nil(t, record.Estimate)
	assert.Empty(t, string(record.IssueType))
	assert.Empty(t, record.DueDate)

	joined := strings.Join(warnings, "; ")
	for _, field := range []string{"priority", "estimate", "issueType", "dueDate"} {
		assert.Contains(t, joined, field)
	}
}

func TestParseIssueFractionalPriorityDropped(t *testing.T) {
	record, warnings, err := parseIssue(`{"title": "x", "priority": 2.5}`, refTime)
	require.NoError(t, err)
	assert.Nil(t, record.Priority)
	assert.NotEmpty(t, warnings)
}

func TestParseIssueNaturalDueDateNormalized(t *testing.T) {
	record, _, err := parseIssue(`{"title": "x", "dueDate": "+2w"}`, refTime)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-29", record.DueDate)
}

func TestParseIssueFencedReply(t *testing.T) {
	raw := "```json\n{\"title\": \"Fenced title\"}\n```"
	record, _, err := parseIssue(raw, refTime)
	require.NoError(t, err)
	assert.Equal(t, "Fenced title", record.Title)
}

func TestParseUpdate(t *testing.T) {
	raw := `{
		"stateName": "In Progress",
		"comment": "Started on this",
		"priority": 2,
		"addLabels": ["Urgent"],
		"removeLabels": ["triage"]
	}`

	update, warnings, err := parseUpdate(raw, refTime)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "In Progress", update.StateName)
	assert.Equal(t, "Started on this", update.Comment)
	require.NotNil(t, update.Priority)
	assert.Equal(t, 2, *update.Priority)
	assert.Equal(t, []string{"urgent"}, update.AddLabels)
	assert.Equal(t, []string{"triage"}, update.RemoveLabels)
}

func TestParseUpdateEmpty(t *testing.T) {
	_, _, err := parseUpdate(`{}`, refTime)
	require.Error(t, err)

	var extractErr *Error
	require.True(t, errors.As(err, &extractErr))
}
