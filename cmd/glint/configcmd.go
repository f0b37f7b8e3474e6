package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tobyfield/glint/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write glint configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a config value (dotted key, e.g. defaults.team)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		value, ok, err := config.GetValue(path, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return &config.Error{Key: args[0], Reason: "not set"}
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value (dotted key, e.g. defaults.team ENG)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		return config.SetValue(path, args[0], args[1])
	},
}

func init() {
	configCmd.AddCommand(configPathCmd, configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
