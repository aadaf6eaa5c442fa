package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/satchel/internal/adapters/driven/embedding"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings and their current values",
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting's value",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Changes a setting and persists it to the config file.

  satchel settings set embedding.provider openai
  satchel settings set search.rrf_k 30`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	for _, key := range settingsService.Keys() {
		value, err := settingsService.GetKey(key)
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		cmd.Printf("  %-26s %s\n", key, value)
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	value, err := settingsService.GetKey(args[0])
	if err != nil {
		return err
	}
	cmd.Println(value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	if err := settingsService.SetKey(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", args[0])

	// Changing the embedding setup is the moment to catch bad
	// credentials or a stopped service; the value stays saved either
	// way so offline configuration still works.
	if strings.HasPrefix(args[0], "embedding.") {
		settings, err := settingsService.Get()
		if err != nil {
			return err
		}
		if err := embedding.ValidateConfig(&settings.Embedding); err != nil {
			cmd.Printf("Warning: embedding service check failed: %v\n", err)
		}
	}
	return nil
}
