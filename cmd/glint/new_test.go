package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobyfield/glint/internal/resolve"
	"github.com/tobyfield/glint/internal/snapshot"
	"github.com/tobyfield/glint/internal/testutil"
	"github.com/tobyfield/glint/internal/types"
)

func newResolveResult() *resolve.Result {
	return &resolve.Result{
		Input:      &types.IssueCreate{Title: "Fix login crash", TeamID: "team-be"},
		Team:       &types.Team{ID: "team-be", Key: "ENG"},
		Unresolved: []string{"brand-new"},
	}
}

func TestCreateNewDryRunWritesNothing(t *testing.T) {
	fake := testutil.NewFakeTracker()
	cache := snapshot.NewCache(fake, time.Minute)

	issue, err := createNew(context.Background(), fake, cache, newResolveResult(), true, true)
	require.NoError(t, err)

	assert.Nil(t, issue)
	assert.Equal(t, 0, fake.CallCount("CreateLabel"), "dry run must not create labels")
	assert.Equal(t, 0, fake.CallCount("CreateIssue"))
}

func TestCreateNewCreatesMissingLabels(t *testing.T) {
	fake := testutil.NewFakeTracker()
	cache := snapshot.NewCache(fake, time.Minute)
	result := newResolveResult()

	issue, err := createNew(context.Background(), fake, cache, result, false, true)
	require.NoError(t, err)

	require.NotNil(t, issue)
	assert.Equal(t, 1, fake.CallCount("CreateLabel"))
	require.Len(t, fake.Created, 1)
	require.Len(t, result.Labels, 1)
	assert.Equal(t, "brand-new", result.Labels[0].Name)
	assert.Equal(t, []string{result.Labels[0].ID}, fake.Created[0].LabelIDs)
}
