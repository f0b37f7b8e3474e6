package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tobyfield/glint/internal/batch"
)

func TestPrintBatchSummary(t *testing.T) {
	tests := []struct {
		name        string
		result      *batch.Result
		interrupted bool
		want        []string
		notWant     []string
	}{
		{
			name:   "all succeeded",
			result: &batch.Result{Total: 3, Succeeded: 3},
			want:   []string{"3 of 3 succeeded"},
		},
		{
			name:    "halted at first failure",
			result:  &batch.Result{Total: 2, Succeeded: 1, Failed: 1, Halted: true},
			want:    []string{"1 of 2 succeeded", "1 failed", "stopped at first failure"},
			notWant: []string{"interrupted"},
		},
		{
			name:        "interrupted mid-run",
			result:      &batch.Result{Total: 2, Succeeded: 2, Halted: true},
			interrupted: true,
			want:        []string{"2 of 2 succeeded", "interrupted"},
			notWant:     []string{"stopped at first failure"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printBatchSummary(&buf, tt.result, tt.interrupted)
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
