package cli

import (
	"fmt"
	"strings"

	"github.com/mgpai22/katha/internal/settings"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persistent settings",
	Long: `Manage settings stored in the per-user configuration file,
including API keys used when no flag or environment variable is set.

Examples:
  katha config set gemini_api_key YOUR_KEY
  katha config get gemini_api_key
  katha config unset openai_api_key
  katha config list`,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings(cmd)
		if err != nil {
			return err
		}
		if err := store.Set(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to save setting: %w", err)
		}
		fmt.Printf("Set %s\n", args[0])
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a setting's value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings(cmd)
		if err != nil {
			return err
		}
		value, ok := store.Get(args[0])
		if !ok {
			return fmt.Errorf("setting %q is not set", args[0])
		}
		fmt.Println(value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings(cmd)
		if err != nil {
			return err
		}
		if err := store.Delete(args[0]); err != nil {
			return fmt.Errorf("failed to remove setting: %w", err)
		}
		fmt.Printf("Unset %s\n", args[0])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings(cmd)
		if err != nil {
			return err
		}
		keys := store.Keys()
		if len(keys) == 0 {
			fmt.Println("No settings stored.")
			return nil
		}
		for _, key := range keys {
			value, _ := store.Get(key)
			fmt.Printf("%s = %s\n", key, maskSecret(key, value))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configListCmd)

	configCmd.PersistentFlags().
		String("file", "", "Settings file path (defaults to the per-user config directory)")
}

func openSettings(cmd *cobra.Command) (*settings.FileStore, error) {
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		defaultPath, err := settings.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	store, err := settings.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	return store, nil
}

// maskSecret hides all but the tail of API keys in listings.
func maskSecret(key, value string) string {
	if !strings.HasSuffix(key, "_api_key") || value == "" {
		return value
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
