// Package batch runs the extract-validate-create pipeline over many
// inputs sequentially. Each item succeeds or fails on its own; one bad
// line never poisons the rest unless the caller asks to halt.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tobyfield/glint/internal/debug"
	"github.com/tobyfield/glint/internal/resolve"
	"github.com/tobyfield/glint/internal/snapshot"
	"github.com/tobyfield/glint/internal/tracker"
	"github.com/tobyfield/glint/internal/types"
	"github.com/tobyfield/glint/internal/validate"
)

// DefaultDelay is the pause between consecutive items, mostly to stay
// friendly to model-API rate limits.
const DefaultDelay = 500 * time.Millisecond

// Extractor is the model-backed extraction the orchestrator drives.
type Extractor interface {
	Issue(ctx context.Context, text string, snap *snapshot.Snapshot) (*types.ExtractedIssue, error)
}

// Overrides are applied to every extracted record before defaults,
// replacing whatever the model produced for those fields.
type Overrides struct {
	TeamKey    string
	ProjectID  string
	Priority   *int
	AssigneeID string
}

// Options configure one batch run.
type Options struct {
	Resolve   resolve.Options
	Overrides Overrides
	// AssignSelf assigns every created issue to the current user (the
	// snapshot supplies the ID once fetched).
	AssignSelf      bool
	DryRun          bool
	ContinueOnError bool
	// Delay between items. Zero means DefaultDelay; negative disables.
	Delay      time.Duration
	OnProgress func(ItemResult)
}

// Status classifies an item's outcome.
type Status string

const (
	StatusCreated Status = "created"
	StatusDryRun  Status = "dry-run"
	StatusFailed  Status = "failed"
)

// ItemResult is the outcome of a single input line.
type ItemResult struct {
	Index    int    // position among non-blank lines, starting at 1
	Input    string
	Status   Status
	Record   *types.ExtractedIssue // nil when extraction failed
	Issue    *types.CreatedIssue   // set only for StatusCreated
	Errors   []string
	Warnings []string
}

// Result aggregates a batch run. Succeeded+Failed == Total always; when
// a run halts early the unprocessed items simply never appear.
type Result struct {
	Total     int
	Succeeded int
	Failed    int
	Halted    bool
	Items     []ItemResult
}

// Orchestrator owns the collaborators for a batch run.
type Orchestrator struct {
	extractor Extractor
	client    tracker.Client
	cache     *snapshot.Cache
}

func New(extractor Extractor, client tracker.Client, cache *snapshot.Cache) *Orchestrator {
	return &Orchestrator{extractor: extractor, client: client, cache: cache}
}

// ReadItems collects non-blank lines from r. Blank lines are dropped
// entirely; they do not count toward the batch total.
func ReadItems(r io.Reader) ([]string, error) {
	var items []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		items = append(items, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading batch input: %w", err)
	}
	return items, nil
}

// Run processes items in order. It returns an error only for setup
// failures (snapshot fetch, context cancellation); per-item failures are
// reported inside the Result.
func (o *Orchestrator) Run(ctx context.Context, items []string, opts Options) (*Result, error) {
	snap, err := o.cache.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching workspace snapshot: %w", err)
	}
	if opts.AssignSelf && opts.Overrides.AssigneeID == "" {
		opts.Overrides.AssigneeID = snap.User.ID
	}

	delay := opts.Delay
	if delay == 0 {
		delay = DefaultDelay
	}

	result := &Result{}
	for i, input := range items {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				result.Halted = true
				return result, ctx.Err()
			case <-time.After(delay):
			}
		}

		item := o.runItem(ctx, i+1, input, snap, opts)
		result.Items = append(result.Items, item)
		result.Total++
		if item.Status == StatusFailed {
			result.Failed++
		} else {
			result.Succeeded++
		}
		if opts.OnProgress != nil {
			opts.OnProgress(item)
		}

		if item.Status == StatusFailed && !opts.ContinueOnError {
			result.Halted = true
			break
		}
	}
	return result, nil
}

func (o *Orchestrator) runItem(ctx context.Context, index int, input string, snap *snapshot.Snapshot, opts Options) ItemResult {
	item := ItemResult{Index: index, Input: input}

	record, err := o.extractor.Issue(ctx, input, snap)
	if err != nil {
		item.Status = StatusFailed
		item.Errors = append(item.Errors, fmt.Sprintf("extraction failed: %v", err))
		return item
	}

	record = applyOverrides(record, opts.Overrides)
	record = resolve.ApplyDefaults(record, opts.Resolve)
	item.Record = record

	verdict := validate.Validate(record, snap)
	item.Warnings = append(item.Warnings, verdict.Warnings...)
	if !verdict.Valid {
		item.Status = StatusFailed
		item.Errors = append(item.Errors, verdict.Errors...)
		return item
	}
	if !verdict.Enriched.Empty() {
		record = verdict.Enriched.Apply(record)
		item.Record = record
	}

	resolved := resolve.Resolve(record, snap, opts.Resolve)
	item.Warnings = append(item.Warnings, resolved.Warnings...)
	if resolved.Input.TeamID == "" {
		item.Status = StatusFailed
		item.Errors = append(item.Errors, "no team could be resolved for this item")
		return item
	}

	if opts.DryRun {
		item.Status = StatusDryRun
		return item
	}

	created, err := o.client.CreateIssue(ctx, resolved.Input)
	if err != nil {
		item.Status = StatusFailed
		item.Errors = append(item.Errors, fmt.Sprintf("creating issue: %v", err))
		return item
	}

	debug.Logf("batch: item %d created %s\n", index, created.Identifier)
	item.Status = StatusCreated
	item.Issue = created
	return item
}

func applyOverrides(record *types.ExtractedIssue, ov Overrides) *types.ExtractedIssue {
	if ov.TeamKey == "" && ov.ProjectID == "" && ov.Priority == nil && ov.AssigneeID == "" {
		return record
	}
	out := record.Clone()
	if ov.TeamKey != "" {
		out.TeamKey = strings.ToUpper(ov.TeamKey)
		out.TeamID = ""
	}
	if ov.ProjectID != "" {
		out.ProjectID = ov.ProjectID
		out.ProjectName = ""
	}
	if ov.Priority != nil {
		p := *ov.Priority
		out.Priority = &p
	}
	if ov.AssigneeID != "" {
		out.AssigneeID = ov.AssigneeID
	}
	return out
}
