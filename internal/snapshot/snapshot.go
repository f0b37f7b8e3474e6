// Package snapshot caches a read-only view of workspace metadata (teams,
// projects, labels, workflow states, recent issues, current user) with a
// TTL. Consumers hold the snapshot for the duration of one pipeline pass
// so a single extraction never observes two different snapshots.
package snapshot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tobyfield/glint/internal/debug"
	"github.com/tobyfield/glint/internal/tracker"
	"github.com/tobyfield/glint/internal/types"
)

// DefaultTTL is how long a snapshot stays fresh.
const DefaultTTL = 5 * time.Minute

// recentIssueLimit caps the recent-issue history used for context and
// team-frequency inference.
const recentIssueLimit = 50

// Snapshot is an immutable-per-fetch view of workspace metadata. It is
// replaced atomically on refresh and never partially mutated.
type Snapshot struct {
	Teams        []types.Team
	Projects     []types.Project
	Labels       []types.Label
	States       []types.WorkflowState
	RecentIssues []types.IssueSummary
	User         types.User
	FetchedAt    time.Time
}

// TeamByKey returns the team with the given key (case-insensitive), or nil.
func (s *Snapshot) TeamByKey(key string) *types.Team {
	for i := range s.Teams {
		if strings.EqualFold(s.Teams[i].Key, key) {
			return &s.Teams[i]
		}
	}
	return nil
}

// TeamByID returns the team with the given ID, or nil.
func (s *Snapshot) TeamByID(id string) *types.Team {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return &s.Teams[i]
		}
	}
	return nil
}

// LabelByName returns the label with the given name (case-insensitive), or nil.
func (s *Snapshot) LabelByName(name string) *types.Label {
	for i := range s.Labels {
		if strings.EqualFold(s.Labels[i].Name, name) {
			return &s.Labels[i]
		}
	}
	return nil
}

// ProjectByID returns the project with the given ID, or nil.
func (s *Snapshot) ProjectByID(id string) *types.Project {
	for i := range s.Projects {
		if s.Projects[i].ID == id {
			return &s.Projects[i]
		}
	}
	return nil
}

// Cache owns the current snapshot and refreshes it on demand.
type Cache struct {
	client tracker.Client
	ttl    time.Duration
	store  *Store // optional on-disk persistence

	mu   sync.Mutex
	snap *Snapshot
}

// NewCache creates a snapshot cache over the given tracker client.
// A non-positive ttl falls back to DefaultTTL.
func NewCache(client tracker.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// WithStore attaches on-disk persistence so consecutive invocations
// within the TTL share one fetch.
func (c *Cache) WithStore(store *Store) *Cache {
	c.store = store
	return c
}

// Fetch returns the cached snapshot if it is still fresh, otherwise
// performs a full refresh. Sub-collection failures degrade to empty
// lists; only a current-user failure is fatal.
func (c *Cache) Fetch(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	if c.snap != nil && time.Since(c.snap.FetchedAt) < c.ttl {
		snap := c.snap
		c.mu.Unlock()
		return snap, nil
	}
	c.mu.Unlock()

	if c.store != nil {
		if snap := c.store.Load(); snap != nil && time.Since(snap.FetchedAt) < c.ttl {
			c.mu.Lock()
			c.snap = snap
			c.mu.Unlock()
			return snap, nil
		}
	}

	snap, err := c.refresh(ctx)
	if err != nil {
		return nil, err
	}

	// Replace atomically: concurrent readers see the old snapshot or the
	// new one, never a mix.
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Save(snap); err != nil {
			debug.Logf("snapshot: persist failed: %v\n", err)
		}
	}
	return snap, nil
}

// Cached returns the current snapshot without any network I/O, or nil if
// none is cached (freshness is not checked).
func (c *Cache) Cached() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Invalidate discards the cached snapshot unconditionally, including any
// persisted copy.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
	if c.store != nil {
		_ = c.store.Clear()
	}
}

func (c *Cache) refresh(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{FetchedAt: time.Now()}

	// Teams, projects, labels and recent issues are fetched concurrently
	// and each degrades to an empty list on failure: partial context beats
	// no snapshot at all. The current user is the exception; without it
	// the snapshot is useless for assignment, so its error aborts.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := c.client.ListTeams(gctx)
		if err != nil {
			debug.Logf("snapshot: teams fetch failed: %v\n", err)
			return nil
		}
		snap.Teams = teams
		return nil
	})
	g.Go(func() error {
		projects, err := c.client.ListProjects(gctx)
		if err != nil {
			debug.Logf("snapshot: projects fetch failed: %v\n", err)
			return nil
		}
		snap.Projects = projects
		return nil
	})
	g.Go(func() error {
		labels, err := c.client.ListLabels(gctx)
		if err != nil {
			debug.Logf("snapshot: labels fetch failed: %v\n", err)
			return nil
		}
		snap.Labels = labels
		return nil
	})
	g.Go(func() error {
		issues, err := c.client.ListRecentIssues(gctx, recentIssueLimit)
		if err != nil {
			debug.Logf("snapshot: recent issues fetch failed: %v\n", err)
			return nil
		}
		snap.RecentIssues = issues
		return nil
	})
	g.Go(func() error {
		user, err := c.client.GetCurrentUser(gctx)
		if err != nil {
			return fmt.Errorf("fetch current user: %w", err)
		}
		snap.User = *user
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.States = c.fetchStates(ctx, snap.Teams)
	return snap, nil
}

// fetchStates fetches workflow states for every team in parallel and
// deduplicates them by name (first occurrence wins). Per-team failures
// are swallowed.
func (c *Cache) fetchStates(ctx context.Context, teams []types.Team) []types.WorkflowState {
	results := make([][]types.WorkflowState, len(teams))

	g, gctx := errgroup.WithContext(ctx)
	for i, team := range teams {
		g.Go(func() error {
			states, err := c.client.ListWorkflowStates(gctx, team.ID)
			if err != nil {
				debug.Logf("snapshot: states fetch failed for team %s: %v\n", team.Key, err)
				return nil
			}
			results[i] = states
			return nil
		})
	}
	_ = g.Wait()

	var merged []types.WorkflowState
	seen := make(map[string]bool)
	for _, states := range results {
		for _, s := range states {
			name := strings.ToLower(s.Name)
			if seen[name] {
				continue
			}
			seen[name] = true
			merged = append(merged, s)
		}
	}
	return merged
}
