package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/tobyfield/glint/internal/dates"
	"github.com/tobyfield/glint/internal/types"
)

// codeFenceRe matches a leading/trailing markdown code fence around the
// model's JSON reply.
var codeFenceRe = regexp.MustCompile("(?s)^\\s*```(?:json)?\\s*\\n?(.*?)\\n?\\s*```\\s*$")

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return strings.TrimSpace(s)
}

// parseIssue decodes the model's reply into an ExtractedIssue. Parsing is
// permissive per field: a field that fails its own type or range check is
// dropped (and reported in the returned warnings), never fatal. Only
// unparseable JSON or a missing title fails the whole parse.
func parseIssue(raw string, now time.Time) (*types.ExtractedIssue, []string, error) {
	body := stripFences(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, nil, &Error{Reason: "model output is not valid JSON", Raw: raw, Err: err}
	}

	var warnings []string
	drop := func(field, why string) {
		warnings = append(warnings, fmt.Sprintf("dropped %s: %s", field, why))
	}

	record := &types.ExtractedIssue{}

	title, _ := asString(fields["title"])
	record.Title = strings.TrimSpace(title)
	if record.Title == "" {
		return nil, warnings, &Error{Reason: "model output is missing required title", Raw: raw}
	}

	if v, ok := asString(fields["description"]); ok {
		record.Description = strings.TrimSpace(v)
	}
	if v, ok := asString(fields["teamKey"]); ok && v != "" {
		record.TeamKey = strings.ToUpper(strings.TrimSpace(v))
	}
	if v, ok := asString(fields["teamId"]); ok {
		record.TeamID = strings.TrimSpace(v)
	}
	if v, ok := asString(fields["projectId"]); ok {
		record.ProjectID = strings.TrimSpace(v)
	}
	if v, ok := asString(fields["projectName"]); ok {
		record.ProjectName = strings.TrimSpace(v)
	}
	if v, ok := asString(fields["assigneeId"]); ok {
		record.AssigneeID = strings.TrimSpace(v)
	}

	if raw, present := fields["priority"]; present {
		if p, ok := asInt(raw); ok && p >= 0 && p <= 4 {
			record.Priority = &p
		} else {
			drop("priority", fmt.Sprintf("not an integer in [0,4]: %v", raw))
		}
	}

	if raw, present := fields["estimate"]; present {
		if e, ok := asFloat(raw); ok && e > 0 {
			record.Estimate = &e
		} else {
			drop("estimate", fmt.Sprintf("not a positive number: %v", raw))
		}
	}

	if raw, present := fields["labels"]; present {
		labels, bad := asStringSlice(raw)
		for _, l := range labels {
			l = strings.ToLower(strings.TrimSpace(l))
			if l != "" {
				record.Labels = append(record.Labels, l)
			}
		}
		if bad {
			drop("labels", "contained non-string entries")
		}
	}

	if v, present := fields["issueType"]; present {
		s, _ := asString(v)
		it := types.IssueType(strings.ToLower(strings.TrimSpace(s)))
		if types.ValidIssueType(it) {
			record.IssueType = it
		} else {
			drop("issueType", fmt.Sprintf("unknown type: %v", v))
		}
	}

	if v, present := fields["dueDate"]; present {
		s, _ := asString(v)
		if t, err := dates.Parse(strings.TrimSpace(s), now); err == nil {
			record.DueDate = dates.FormatISO(t)
		} else {
			drop("dueDate", fmt.Sprintf("unparseable date: %v", v))
		}
	}

	return record, warnings, nil
}

// parseUpdate decodes the model's reply into an ExtractedUpdate with the
// same permissive per-field policy as parseIssue. An update with no
// recognizable change at all is an error.
func parseUpdate(raw string, now time.Time) (*types.ExtractedUpdate, []string, error) {
	body := stripFences(raw)

	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, nil, &Error{Reason: "model output is not valid JSON", Raw: raw, Err: err}
	}

	var warnings []string
	drop := func(field, why string) {
		warnings = append(warnings, fmt.Sprintf("dropped %s: %s", field, why))
	}

	update := &types.ExtractedUpdate{}

	if v, ok := asString(fields["title"]); ok {
		update.Title = strings.TrimSpace(v)
	}
	if v, ok := asString(fields["description"]); ok {
		update.Description = strings.TrimSpace(v)
	}
	if v, ok := asString(fields["stateName"]); ok {
		update.StateName = strings.TrimSpace(v)
	}
	if v, ok := asString(fields["comment"]); ok {
		update.Comment = strings.TrimSpace(v)
	}
	if v, ok := asString(fields["assigneeId"]); ok {
		update.AssigneeID = strings.TrimSpace(v)
	}

	if raw, present := fields["priority"]; present {
		if p, ok := asInt(raw); ok && p >= 0 && p <= 4 {
			update.Priority = &p
		} else {
			drop("priority", fmt.Sprintf("not an integer in [0,4]: %v", raw))
		}
	}

	if raw, present := fields["estimate"]; present {
		if e, ok := asFloat(raw); ok && e > 0 {
			update.Estimate = &e
		} else {
			drop("estimate", fmt.Sprintf("not a positive number: %v", raw))
		}
	}

	for field, dst := range map[string]*[]string{
		"addLabels":    &update.AddLabels,
		"removeLabels": &update.RemoveLabels,
	} {
		if raw, present := fields[field]; present {
			labels, bad := asStringSlice(raw)
			for _, l := range labels {
				l = strings.ToLower(strings.TrimSpace(l))
				if l != "" {
					*dst = append(*dst, l)
				}
			}
			if bad {
				drop(field, "contained non-string entries")
			}
		}
	}

	if v, present := fields["dueDate"]; present {
		s, _ := asString(v)
		if t, err := dates.Parse(strings.TrimSpace(s), now); err == nil {
			update.DueDate = dates.FormatISO(t)
		} else {
			drop("dueDate", fmt.Sprintf("unparseable date: %v", v))
		}
	}

	if update.Empty() {
		return nil, warnings, &Error{Reason: "model output contains no update fields", Raw: raw}
	}
	return update, warnings, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asFloat accepts float64 only; json.Unmarshal into map[string]any decodes
// every JSON number that way.
func asFloat(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	if f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func asStringSlice(v any) (out []string, hadBad bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, true
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		} else {
			hadBad = true
		}
	}
	return out, hadBad
}
