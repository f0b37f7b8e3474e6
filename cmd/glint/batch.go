package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tobyfield/glint/internal/batch"
	"github.com/tobyfield/glint/internal/ui"
)

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Create issues from a file of natural-language lines",
	Long: `Process a file (or stdin with "-") with one issue description per
line. Blank lines are skipped. Each line succeeds or fails on its own;
by default the run stops at the first failure, --continue-on-error
keeps going.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

var (
	batchContinue bool
	batchDryRun   bool
	batchTeam     string
	batchPriority int
	batchAssignMe bool
	batchDelay    time.Duration
)

func init() {
	batchCmd.Flags().BoolVar(&batchContinue, "continue-on-error", false, "process remaining lines after a failure")
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "resolve and validate but do not create")
	batchCmd.Flags().StringVarP(&batchTeam, "team", "t", "", "team key applied to every line")
	batchCmd.Flags().IntVar(&batchPriority, "priority", -1, "priority 0-4 applied to every line")
	batchCmd.Flags().BoolVar(&batchAssignMe, "assign-me", false, "assign every issue to the current user")
	batchCmd.Flags().DurationVar(&batchDelay, "delay", 0, "pause between lines (default from config)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	items, err := readBatchInput(args)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return &validationError{errs: []string{"batch input has no non-blank lines"}}
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}

	opts := batch.Options{
		Resolve:         a.resolveOptions(),
		AssignSelf:      batchAssignMe,
		DryRun:          batchDryRun,
		ContinueOnError: batchContinue,
		Delay:           a.cfg.BatchDelay,
		OnProgress:      printBatchItem,
	}
	if batchDelay > 0 {
		opts.Delay = batchDelay
	}
	if batchTeam != "" {
		opts.Overrides.TeamKey = batchTeam
	}
	if batchPriority >= 0 {
		p := batchPriority
		opts.Overrides.Priority = &p
	}

	result, err := batch.New(a.model, a.client, a.cache).Run(ctx, items, opts)
	if result != nil && result.Total > 0 {
		// The per-item summary covers completed items even when the run
		// was interrupted partway through.
		printBatchSummary(os.Stdout, result, err != nil)
	}
	if err != nil {
		return err
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d items failed", result.Failed, result.Total)
	}
	return nil
}

func printBatchSummary(w io.Writer, result *batch.Result, interrupted bool) {
	fmt.Fprintf(w, "\n%d of %d succeeded", result.Succeeded, result.Total)
	if result.Failed > 0 {
		fmt.Fprintf(w, ", %s", ui.Fail(fmt.Sprintf("%d failed", result.Failed)))
	}
	switch {
	case interrupted:
		fmt.Fprintf(w, " %s", ui.Muted("(interrupted)"))
	case result.Halted:
		fmt.Fprintf(w, " %s", ui.Muted("(stopped at first failure; use --continue-on-error to keep going)"))
	}
	fmt.Fprintln(w)
}

func readBatchInput(args []string) ([]string, error) {
	var r io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("opening batch file: %w", err)
		}
		defer f.Close()
		return batch.ReadItems(f)
	}
	return batch.ReadItems(r)
}

func printBatchItem(item batch.ItemResult) {
	switch item.Status {
	case batch.StatusCreated:
		fmt.Printf("%s %s %s\n", ui.Pass(ui.IconPass), ui.Bold(item.Issue.Identifier), item.Issue.Title)
	case batch.StatusDryRun:
		fmt.Printf("%s %s\n", ui.Accent("dry-run:"), item.Record.Title)
	case batch.StatusFailed:
		fmt.Printf("%s line %d: %s\n", ui.Fail(ui.IconFail), item.Index, item.Errors[0])
	}
	for _, w := range item.Warnings {
		fmt.Printf("  %s %s\n", ui.Warn(ui.IconWarn), w)
	}
}
