package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tobyfield/glint/internal/config"
	"github.com/tobyfield/glint/internal/extract"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"config error", &config.Error{Key: "tracker.api_key", Reason: "not set"}, exitConfig},
		{"auth error", fmt.Errorf("wrapped: %w", extract.ErrAuth), exitConfig},
		{"validation error", &validationError{errs: []string{"title is required"}}, exitValidation},
		{"extraction error", &extractionError{err: errors.New("model call failed")}, exitExtraction},
		{"parse error", &extract.Error{Reason: "reply is not JSON"}, exitExtraction},
		{"write error", errors.New("POST /issues: 500"), exitWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapExtractionKeepsAuthErrors(t *testing.T) {
	authErr := fmt.Errorf("call failed: %w", extract.ErrAuth)
	if got := wrapExtraction(authErr); !errors.Is(got, extract.ErrAuth) {
		t.Errorf("wrapExtraction lost the auth sentinel: %v", got)
	}
	if got := exitCode(wrapExtraction(authErr)); got != exitConfig {
		t.Errorf("auth failure exit code = %d, want %d", got, exitConfig)
	}

	plain := errors.New("overloaded")
	if got := exitCode(wrapExtraction(plain)); got != exitExtraction {
		t.Errorf("model failure exit code = %d, want %d", got, exitExtraction)
	}
}
