// Package validate cross-checks an extracted record against the workspace
// snapshot. Errors block a tracker write; warnings never do. Proposed
// corrections are returned as an enrichment the caller applies explicitly.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/tobyfield/glint/internal/dates"
	"github.com/tobyfield/glint/internal/snapshot"
	"github.com/tobyfield/glint/internal/types"
)

// maxTitleLength is where a title becomes a warning (not an error; the
// tracker truncates gracefully).
const maxTitleLength = 200

// estimatePoints is the canonical estimate scale. Values off the scale
// are accepted with a warning.
var estimatePoints = map[float64]bool{
	0.5: true, 1: true, 2: true, 3: true, 5: true, 8: true, 13: true, 21: true,
}

// Enrichment is the set of corrections the validator proposes. The input
// record is never mutated; call Apply to get an enriched copy.
type Enrichment struct {
	TeamID string
	// Labels is the subset of the record's labels that exist in the
	// workspace. LabelsSet distinguishes "filtered to empty" from
	// "untouched".
	Labels    []string
	LabelsSet bool
}

// Empty reports whether the enrichment proposes no changes.
func (e *Enrichment) Empty() bool {
	return e.TeamID == "" && !e.LabelsSet
}

// Apply returns a copy of record with the enrichment applied.
func (e *Enrichment) Apply(record *types.ExtractedIssue) *types.ExtractedIssue {
	out := record.Clone()
	if e.TeamID != "" {
		out.TeamID = e.TeamID
	}
	if e.LabelsSet {
		out.Labels = append([]string(nil), e.Labels...)
	}
	return out
}

// Result is the validator's verdict. Valid is false iff Errors is
// non-empty; Warnings never block.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
	Enriched Enrichment
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks a record against the snapshot. Every rule is evaluated
// independently; nothing short-circuits.
func Validate(record *types.ExtractedIssue, snap *snapshot.Snapshot) *Result {
	return validateAt(record, snap, time.Now())
}

func validateAt(record *types.ExtractedIssue, snap *snapshot.Snapshot, now time.Time) *Result {
	r := &Result{}

	checkTitle(r, record)
	checkTeam(r, record, snap)
	checkPriority(r, record)
	checkEstimate(r, record)
	checkProject(r, record, snap)
	checkLabels(r, record, snap)
	checkDueDate(r, record, now)

	r.Valid = len(r.Errors) == 0
	return r
}

func checkTitle(r *Result, record *types.ExtractedIssue) {
	title := strings.TrimSpace(record.Title)
	if title == "" {
		r.errorf("title is required")
		return
	}
	if len(title) > maxTitleLength {
		r.warnf("title is %d characters; consider shortening below %d", len(title), maxTitleLength)
	}
}

func checkTeam(r *Result, record *types.ExtractedIssue, snap *snapshot.Snapshot) {
	if len(snap.Teams) == 0 {
		r.errorf("workspace has no teams; cannot create issues")
		return
	}

	// An explicit ID is trusted but verified: a stale or invented ID is a
	// hard error, unlike free-text keys which stay best-effort.
	if record.TeamID != "" {
		if snap.TeamByID(record.TeamID) == nil {
			r.errorf("team id %q does not exist in the workspace", record.TeamID)
		}
		return
	}

	if record.TeamKey != "" {
		if team := teamLookup(snap, record.TeamKey); team == nil {
			r.warnf("team %q not found in workspace", record.TeamKey)
		}
		return
	}

	// No team reference at all.
	if len(snap.Teams) == 1 {
		r.Enriched.TeamID = snap.Teams[0].ID
		r.warnf("no team specified; using the only team %q", snap.Teams[0].Key)
		return
	}
	r.warnf("no team specified and workspace has %d teams", len(snap.Teams))
}

// teamLookup is the validator's lighter team resolution: exact key match,
// then substring match on team names.
func teamLookup(snap *snapshot.Snapshot, key string) *types.Team {
	if team := snap.TeamByKey(key); team != nil {
		return team
	}
	needle := strings.ToLower(key)
	for i := range snap.Teams {
		if strings.Contains(strings.ToLower(snap.Teams[i].Name), needle) {
			return &snap.Teams[i]
		}
	}
	return nil
}

func checkPriority(r *Result, record *types.ExtractedIssue) {
	if record.Priority == nil {
		return
	}
	if p := *record.Priority; p < 0 || p > 4 {
		r.errorf("priority %d is out of range (0-4)", p)
	}
}

func checkEstimate(r *Result, record *types.ExtractedIssue) {
	if record.Estimate == nil {
		return
	}
	e := *record.Estimate
	if e <= 0 {
		r.errorf("estimate must be a positive number, got %v", e)
		return
	}
	if !estimatePoints[e] {
		r.warnf("estimate %v is not on the usual scale (0.5, 1, 2, 3, 5, 8, 13, 21)", e)
	}
}

func checkProject(r *Result, record *types.ExtractedIssue, snap *snapshot.Snapshot) {
	if record.ProjectID == "" {
		return
	}
	if snap.ProjectByID(record.ProjectID) == nil {
		r.warnf("project %q not found in workspace", record.ProjectID)
	}
}

func checkLabels(r *Result, record *types.ExtractedIssue, snap *snapshot.Snapshot) {
	if len(record.Labels) == 0 {
		return
	}

	var found, missing []string
	for _, name := range record.Labels {
		if snap.LabelByName(name) != nil {
			found = append(found, name)
		} else {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		r.warnf("labels not found in workspace: %s", strings.Join(missing, ", "))
		r.Enriched.Labels = found
		r.Enriched.LabelsSet = true
	}
}

func checkDueDate(r *Result, record *types.ExtractedIssue, now time.Time) {
	if record.DueDate == "" {
		return
	}
	due, err := dates.Parse(record.DueDate, now)
	if err != nil {
		r.errorf("due date %q is not a valid date", record.DueDate)
		return
	}
	if due.Before(now.Truncate(24 * time.Hour)) {
		r.warnf("due date %s is in the past", record.DueDate)
	}
}
