package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tobyfield/glint/internal/snapshot"
	"github.com/tobyfield/glint/internal/ui"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the workspace snapshot cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached workspace snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cacheStore()
		if err != nil {
			return err
		}
		snap := store.Load()
		if snap == nil {
			fmt.Println("no cached snapshot")
			return nil
		}

		age := time.Since(snap.FetchedAt).Round(time.Second)
		fmt.Printf("%s fetched %s ago\n", ui.Bold("snapshot"), age)
		fmt.Printf("  user:    %s\n", snap.User.Name)
		fmt.Printf("  teams:   %d\n", len(snap.Teams))
		fmt.Printf("  projects: %d\n", len(snap.Projects))
		fmt.Printf("  labels:  %d\n", len(snap.Labels))
		fmt.Printf("  states:  %d\n", len(snap.States))
		fmt.Printf("  recent issues: %d\n", len(snap.RecentIssues))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the cached workspace snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cacheStore()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Printf("%s snapshot cache cleared\n", ui.Pass(ui.IconPass))
		return nil
	},
}

func cacheStore() (*snapshot.Store, error) {
	path, err := snapshot.DefaultStorePath()
	if err != nil {
		return nil, err
	}
	return &snapshot.Store{Path: path}, nil
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
