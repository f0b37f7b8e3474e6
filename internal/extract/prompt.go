package extract

import (
	"strings"
	"text/template"

	"github.com/tobyfield/glint/internal/snapshot"
	"github.com/tobyfield/glint/internal/types"
)

// Context bounds keep the prompt small: the model sees every team but
// only a slice of projects, labels and recent issues.
const (
	maxPromptProjects = 10
	maxPromptLabels   = 30
	maxPromptIssues   = 5
)

const issueSystemPrompt = `You convert free-form text into a structured issue record for an issue tracker. Reply with a single JSON object and nothing else. Fields:

- "title" (required): a concise imperative summary, max 80 characters
- "description" (optional): remaining detail as markdown
- "teamKey" (optional): the team key, ONLY if the text names one or the workspace context makes it obvious
- "priority" (optional): 0=none 1=urgent 2=high 3=medium 4=low, ONLY if the text implies urgency
- "estimate" (optional): story points if the text states effort
- "labels" (optional): array of label names, preferring labels that exist in the workspace context
- "issueType" (optional): one of "bug", "feature", "improvement", "task"
- "dueDate" (optional): ISO date (YYYY-MM-DD) if the text states a deadline
- "assigneeId" (optional): a user id from the workspace context if the text assigns someone

Prefer identifiers that exist in the workspace context over inventing new ones. Omit any field you are not confident about.`

const updateSystemPrompt = `You convert free-form text into a structured update for an existing tracker issue. Reply with a single JSON object and nothing else. Fields (all optional, include only what the text asks to change):

- "title": replacement title
- "description": replacement description
- "stateName": target workflow state name (e.g. "In Progress", "Done"), preferring states in the workspace context
- "comment": a comment to add verbatim
- "priority": 0=none 1=urgent 2=high 3=medium 4=low
- "estimate": story points
- "addLabels" / "removeLabels": arrays of label names
- "assigneeId": a user id from the workspace context
- "dueDate": ISO date (YYYY-MM-DD)

Never invent changes the text does not request.`

const contextTemplate = `Workspace context:

Teams:
{{range .Teams}}- {{.Key}}: {{.Name}} (id {{.ID}})
{{end}}{{if .Projects}}
Projects:
{{range .Projects}}- {{.Name}} (id {{.ID}})
{{end}}{{end}}{{if .Labels}}
Labels: {{.LabelNames}}
{{end}}{{if .States}}
Workflow states: {{.StateNames}}
{{end}}{{if .Issues}}
Recent issues:
{{range .Issues}}- [{{.TeamKey}}] {{.Title}}
{{end}}{{end}}
Current user: {{.User.Name}} (id {{.User.ID}})

`

var contextTmpl = template.Must(template.New("context").Parse(contextTemplate))

type contextData struct {
	Teams      []types.Team
	Projects   []types.Project
	Labels     []types.Label
	States     []types.WorkflowState
	Issues     []types.IssueSummary
	User       types.User
	LabelNames string
	StateNames string
}

// renderContext renders a bounded slice of the snapshot for embedding in
// the user prompt. Returns the empty string when snap is nil.
func renderContext(snap *snapshot.Snapshot) string {
	if snap == nil {
		return ""
	}

	data := contextData{
		Teams:    snap.Teams,
		Projects: snap.Projects,
		Labels:   snap.Labels,
		States:   snap.States,
		Issues:   snap.RecentIssues,
		User:     snap.User,
	}
	if len(data.Projects) > maxPromptProjects {
		data.Projects = data.Projects[:maxPromptProjects]
	}
	if len(data.Labels) > maxPromptLabels {
		data.Labels = data.Labels[:maxPromptLabels]
	}
	if len(data.Issues) > maxPromptIssues {
		data.Issues = data.Issues[:maxPromptIssues]
	}

	names := make([]string, len(data.Labels))
	for i, l := range data.Labels {
		names[i] = l.Name
	}
	data.LabelNames = strings.Join(names, ", ")

	stateNames := make([]string, len(data.States))
	for i, s := range data.States {
		stateNames[i] = s.Name
	}
	data.StateNames = strings.Join(stateNames, ", ")

	var b strings.Builder
	if err := contextTmpl.Execute(&b, data); err != nil {
		return ""
	}
	return b.String()
}

// buildIssuePrompt assembles the user prompt for issue extraction.
func buildIssuePrompt(text string, snap *snapshot.Snapshot) string {
	var b strings.Builder
	if ctx := renderContext(snap); ctx != "" {
		b.WriteString(ctx)
	}
	b.WriteString("Text to convert:\n\n")
	b.WriteString(text)
	return b.String()
}

// buildUpdatePrompt assembles the user prompt for update extraction.
// issueContext describes the issue being modified (identifier, title,
// current state) so the model can interpret relative instructions.
func buildUpdatePrompt(text, issueContext string, snap *snapshot.Snapshot) string {
	var b strings.Builder
	if ctx := renderContext(snap); ctx != "" {
		b.WriteString(ctx)
	}
	if issueContext != "" {
		b.WriteString("Issue being updated:\n")
		b.WriteString(issueContext)
		b.WriteString("\n\n")
	}
	b.WriteString("Requested change:\n\n")
	b.WriteString(text)
	return b.String()
}
