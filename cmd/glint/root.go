package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tobyfield/glint/internal/config"
	"github.com/tobyfield/glint/internal/debug"
	"github.com/tobyfield/glint/internal/extract"
	"github.com/tobyfield/glint/internal/ui"
)

// Exit codes, stable for scripting.
const (
	exitOK         = 0
	exitWrite      = 1
	exitValidation = 2
	exitExtraction = 3
	exitConfig     = 4
)

var (
	verboseFlag bool
	quietFlag   bool
	configFlag  string // explicit config file path
)

var rootCmd = &cobra.Command{
	Use:   "glint",
	Short: "Create and update tracker issues from natural language",
	Long: `glint turns free-form text into structured issue-tracker records.

Describe an issue the way you would in a chat message; glint extracts the
title, team, priority, labels and due date, checks them against your
workspace, and files the issue.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default $XDG_CONFIG_HOME/glint/config.yaml)")
	rootCmd.Version = version
}

// Execute runs the CLI and maps the failure to an exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Fail("Error:"), err)
		return exitCode(err)
	}
	return exitOK
}

// validationError carries the validator's blocking findings.
type validationError struct {
	errs []string
}

func (e *validationError) Error() string {
	if len(e.errs) == 1 {
		return e.errs[0]
	}
	return fmt.Sprintf("%d validation errors", len(e.errs))
}

// extractionError marks model-call and reply-quality failures so they map
// to the extraction exit code.
type extractionError struct {
	err error
}

func (e *extractionError) Error() string { return e.err.Error() }
func (e *extractionError) Unwrap() error { return e.err }

func wrapExtraction(err error) error {
	// Auth failures are a configuration problem, not a model problem.
	if errors.Is(err, extract.ErrAuth) {
		return err
	}
	return &extractionError{err: err}
}

func exitCode(err error) int {
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return exitConfig
	}
	if errors.Is(err, extract.ErrAuth) {
		return exitConfig
	}
	var valErr *validationError
	if errors.As(err, &valErr) {
		return exitValidation
	}
	var exErr *extractionError
	if errors.As(err, &exErr) {
		return exitExtraction
	}
	var dataErr *extract.Error
	if errors.As(err, &dataErr) {
		return exitExtraction
	}
	return exitWrite
}

func loadConfig() (*config.Config, error) {
	if configFlag != "" {
		return config.LoadFile(configFlag)
	}
	return config.Load()
}

func configPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	return config.Path()
}
