// Package resolve maps loosely-specified references in an extracted
// record (team key, label names) to concrete tracker identifiers, and
// fills gaps with configured defaults.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tobyfield/glint/internal/debug"
	"github.com/tobyfield/glint/internal/snapshot"
	"github.com/tobyfield/glint/internal/types"
)

// Options carry the caller's configured defaults.
type Options struct {
	DefaultTeamKey  string
	DefaultPriority *int
}

// Result is the outcome of one resolution pass. Resolution never fails:
// anything unresolved is surfaced as a warning and left to the caller.
type Result struct {
	Input      *types.IssueCreate
	Team       *types.Team
	Labels     []types.Label // labels matched in the workspace
	Unresolved []string      // label names with no workspace match
	Warnings   []string
}

// teamAliases maps canonical team words to the shorthand people actually
// type. Matching is done on the record's stated key, then the canonical
// word is substring-matched against team names.
var teamAliases = map[string][]string{
	"backend":  {"backend", "be", "server", "api"},
	"frontend": {"frontend", "fe", "client", "ui", "web"},
	"devops":   {"devops", "ops", "infra", "infrastructure", "platform"},
	"mobile":   {"mobile", "ios", "android", "app"},
	"design":   {"design", "ux"},
	"qa":       {"qa", "test", "testing", "quality"},
}

// Keyword sets for issue-type inference, checked in fixed precedence
// order. First matching category wins; there is no scoring.
var (
	bugKeywords         = []string{"fix", "bug", "error", "crash", "broken", "failing", "issue", "problem", "wrong", "incorrect"}
	featureKeywords     = []string{"add", "new", "implement", "create", "build", "support", "enable"}
	improvementKeywords = []string{"improve", "enhance", "refactor", "optimize", "update", "upgrade", "better"}
)

// ApplyDefaults fills unset fields from config defaults and infers the
// issue type from the text. Fields already set are never overwritten.
func ApplyDefaults(record *types.ExtractedIssue, opts Options) *types.ExtractedIssue {
	out := record.Clone()

	if out.TeamKey == "" && out.TeamID == "" && opts.DefaultTeamKey != "" {
		out.TeamKey = strings.ToUpper(opts.DefaultTeamKey)
	}
	if out.Priority == nil && opts.DefaultPriority != nil {
		p := *opts.DefaultPriority
		out.Priority = &p
	}
	if out.IssueType == "" {
		out.IssueType = InferIssueType(out.Title, out.Description)
	}
	return out
}

// InferIssueType scans title+description for type keywords. Bug keywords
// take precedence over feature keywords, which take precedence over
// improvement keywords; anything else is a task.
func InferIssueType(title, description string) types.IssueType {
	text := strings.ToLower(title + " " + description)

	for _, kw := range bugKeywords {
		if strings.Contains(text, kw) {
			return types.TypeBug
		}
	}
	for _, kw := range featureKeywords {
		if strings.Contains(text, kw) {
			return types.TypeFeature
		}
	}
	for _, kw := range improvementKeywords {
		if strings.Contains(text, kw) {
			return types.TypeImprovement
		}
	}
	return types.TypeTask
}

// Resolve produces a tracker-ready create payload from an extracted
// record, attaching warnings for anything it could not resolve.
func Resolve(record *types.ExtractedIssue, snap *snapshot.Snapshot, opts Options) *Result {
	result := &Result{
		Input: &types.IssueCreate{
			Title:       record.Title,
			Description: record.Description,
			Priority:    record.Priority,
			Estimate:    record.Estimate,
			DueDate:     record.DueDate,
			AssigneeID:  record.AssigneeID,
		},
	}

	result.Team = ResolveTeam(record, snap, opts)
	if result.Team != nil {
		result.Input.TeamID = result.Team.ID
	} else {
		result.Warnings = append(result.Warnings, "could not resolve a team; specify one with --team or set a default")
	}

	if record.ProjectID != "" {
		if snap.ProjectByID(record.ProjectID) != nil {
			result.Input.ProjectID = record.ProjectID
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf("project %q not found in workspace", record.ProjectID))
		}
	} else if record.ProjectName != "" {
		if p := projectByName(snap, record.ProjectName); p != nil {
			result.Input.ProjectID = p.ID
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf("project %q not found in workspace", record.ProjectName))
		}
	}

	result.Labels, result.Unresolved = ResolveLabels(record.Labels, snap)
	for _, l := range result.Labels {
		result.Input.LabelIDs = append(result.Input.LabelIDs, l.ID)
	}
	if len(result.Unresolved) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("labels not found in workspace: %s", strings.Join(result.Unresolved, ", ")))
	}

	return result
}

// ResolveTeam runs the layered team lookup: exact key match, alias and
// name-substring match, explicit ID, configured default, recent-issue
// frequency, and finally the lone team if the workspace has only one.
func ResolveTeam(record *types.ExtractedIssue, snap *snapshot.Snapshot, opts Options) *types.Team {
	// 1. Exact case-insensitive key match.
	if record.TeamKey != "" {
		if team := snap.TeamByKey(record.TeamKey); team != nil {
			return team
		}
		// 2. Alias match, then substring match on team names.
		if team := teamByAlias(snap, record.TeamKey); team != nil {
			debug.Logf("resolve: team %q matched %q via alias\n", record.TeamKey, team.Key)
			return team
		}
	}

	// 3. Explicit team ID, if one was already set.
	if record.TeamID != "" {
		if team := snap.TeamByID(record.TeamID); team != nil {
			return team
		}
	}

	// 4. Configured default team.
	if opts.DefaultTeamKey != "" {
		if team := snap.TeamByKey(opts.DefaultTeamKey); team != nil {
			return team
		}
	}

	// 5. Most frequent team among recent issues.
	if team := mostFrequentTeam(snap); team != nil {
		return team
	}

	// A single-team workspace leaves no room for ambiguity.
	if len(snap.Teams) == 1 {
		return &snap.Teams[0]
	}

	return nil
}

func teamByAlias(snap *snapshot.Snapshot, stated string) *types.Team {
	needle := strings.ToLower(stated)

	canonical := needle
	for word, aliases := range teamAliases {
		for _, alias := range aliases {
			if alias == needle {
				canonical = word
				break
			}
		}
	}

	for i := range snap.Teams {
		if strings.Contains(strings.ToLower(snap.Teams[i].Name), canonical) {
			return &snap.Teams[i]
		}
	}
	return nil
}

// mostFrequentTeam picks the team whose key appears most often in the
// recent-issue history. Ties break alphabetically on key so the result
// is deterministic.
func mostFrequentTeam(snap *snapshot.Snapshot) *types.Team {
	if len(snap.RecentIssues) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, issue := range snap.RecentIssues {
		if issue.TeamKey != "" {
			counts[strings.ToUpper(issue.TeamKey)]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return snap.TeamByKey(best)
}

// ResolveLabels partitions label names into workspace matches and
// unresolved names. Matching is exact and case-insensitive; there is no
// fuzzy or alias matching for labels.
func ResolveLabels(names []string, snap *snapshot.Snapshot) (found []types.Label, missing []string) {
	for _, name := range names {
		if label := snap.LabelByName(name); label != nil {
			found = append(found, *label)
		} else {
			missing = append(missing, name)
		}
	}
	return found, missing
}

func projectByName(snap *snapshot.Snapshot, name string) *types.Project {
	for i := range snap.Projects {
		if strings.EqualFold(snap.Projects[i].Name, name) {
			return &snap.Projects[i]
		}
	}
	return nil
}
