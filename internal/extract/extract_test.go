package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tobyfield/glint/internal/retry"
	"github.com/tobyfield/glint/internal/snapshot"
	"github.com/tobyfield/glint/internal/types"
)

// messageResponse builds a minimal Anthropic messages API reply whose
// single text block contains body.
func messageResponse(body string) map[string]any {
	return map[string]any{
		"id":    "msg_test",
		"type":  "message",
		"role":  "assistant",
		"model": "claude-3-5-haiku-latest",
		"content": []map[string]any{
			{"type": "text", "text": body},
		},
		"usage": map[string]any{
			"input_tokens":  100,
			"output_tokens": 50,
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New("test-key", option.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	opts := retry.DefaultOptions()
	opts.BaseDelay = time.Millisecond
	opts.MaxDelay = 5 * time.Millisecond
	return client.WithRetryOptions(opts)
}

func TestIssueExtraction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply := `{"title": "Add dark mode support", "issueType": "feature", "labels": ["ui"]}`
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse(reply))
	})

	record, err := client.Issue(context.Background(), "we should support dark mode", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if record.Title != "Add dark mode support" {
		t.Errorf("Title = %q", record.Title)
	}
	if record.IssueType != types.TypeFeature {
		t.Errorf("IssueType = %q, want feature", record.IssueType)
	}
}

func TestIssueEmptyInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API call expected for empty input")
	})

	_, err := client.Issue(context.Background(), "  <div>  </div> ", nil)
	var extractErr *Error
	if !errors.As(err, &extractErr) {
		t.Fatalf("err = %v, want *extract.Error", err)
	}
}

func TestIssueRetriesOn429(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"rate limited"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse(`{"title": "Recovered"}`))
	})

	record, err := client.Issue(context.Background(), "some text", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if record.Title != "Recovered" {
		t.Errorf("Title = %q", record.Title)
	}
	if calls != 3 {
		t.Errorf("API called %d times, want 3", calls)
	}
}

func TestIssue401NotRetried(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	})

	_, err := client.Issue(context.Background(), "some text", nil)
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
	if calls != 1 {
		t.Errorf("API called %d times, want exactly 1 for 401", calls)
	}
}

func TestIssueMalformedReply(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse("I can't help with that."))
	})

	_, err := client.Issue(context.Background(), "some text", nil)
	var extractErr *Error
	if !errors.As(err, &extractErr) {
		t.Fatalf("err = %v, want *extract.Error", err)
	}
}

func TestUpdateExtraction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply := `{"stateName": "Done", "comment": "Fixed in v2.1"}`
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse(reply))
	})

	update, err := client.Update(context.Background(), "mark it done, fixed in v2.1", "ENG-42: Login crash", nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if update.StateName != "Done" {
		t.Errorf("StateName = %q", update.StateName)
	}
	if update.Comment != "Fixed in v2.1" {
		t.Errorf("Comment = %q", update.Comment)
	}
}

func TestPromptEmbedsBoundedContext(t *testing.T) {
	snap := &snapshot.Snapshot{
		Teams: []types.Team{{ID: "t1", Key: "ENG", Name: "Engineering"}},
		User:  types.User{ID: "u1", Name: "Dev"},
	}
	for i := 0; i < 40; i++ {
		snap.Labels = append(snap.Labels, types.Label{ID: "l", Name: "label"})
	}
	for i := 0; i < 20; i++ {
		snap.Projects = append(snap.Projects, types.Project{ID: "p", Name: "proj"})
	}
	for i := 0; i < 12; i++ {
		snap.RecentIssues = append(snap.RecentIssues, types.IssueSummary{Title: "recent", TeamKey: "ENG"})
	}

	prompt := buildIssuePrompt("fix it", snap)

	if got := strings.Count(prompt, "- proj (id p)"); got != maxPromptProjects {
		t.Errorf("projects in prompt = %d, want %d", got, maxPromptProjects)
	}
	if got := strings.Count(prompt, "- [ENG] recent"); got != maxPromptIssues {
		t.Errorf("recent issues in prompt = %d, want %d", got, maxPromptIssues)
	}
}
