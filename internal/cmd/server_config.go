package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cybersonic/lucli/internal/settings"
)

var serverConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "View and modify user-wide LuCLI settings",
	Long: `View and modify the settings stored at ~/.config/lucli/settings.json
(see internal/settings), as distinct from a project's lucee.json
manifest.`,
	Example: `  # Show all settings
  lucli server config get

  # Show value for a specific key
  lucli server config get default.runtime_type

  # Set a value
  lucli server config set default.runtime_type container

  # Open the settings file in $EDITOR
  lucli server config --edit`,
	PersistentPreRunE: nil, // the root command's PersistentPreRunE still runs; it resolves no project
	RunE: func(cmd *cobra.Command, args []string) error {
		edit, err := cmd.Flags().GetBool("edit")
		if err != nil {
			return err
		}
		if !edit {
			return cmd.Help()
		}
		return runConfigEdit(cmd)
	},
}

var serverConfigGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print all settings, or the value at one key",
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := settings.NewLoader()
		if err != nil {
			return fmt.Errorf("init settings loader: %w", err)
		}
		if len(args) == 0 {
			return runConfigShowAll(loader)
		}
		return runConfigShowKey(loader, args[0])
	},
}

var serverConfigSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a settings key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := settings.NewLoader()
		if err != nil {
			return fmt.Errorf("init settings loader: %w", err)
		}
		return runConfigSetKey(loader, args[0], args[1])
	},
}

func runConfigEdit(cmd *cobra.Command) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return settings.ErrNoEditor
	}

	loader, err := settings.NewLoader()
	if err != nil {
		return fmt.Errorf("init settings loader: %w", err)
	}
	if _, err := loader.Load(); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	editorCmd := exec.CommandContext(cmd.Context(), editor, loader.Path()) //nolint:gosec
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	return editorCmd.Run()
}

func runConfigShowAll(loader *settings.Loader) error {
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigShowKey(loader *settings.Loader, key string) error {
	if err := settings.ValidateKey(key); err != nil {
		return err
	}
	if _, err := loader.Load(); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	value, err := loader.Get(key)
	if err != nil {
		return err
	}
	if value == nil {
		fmt.Println("")
		return nil
	}

	switch v := value.(type) {
	case string:
		fmt.Println(v)
	case map[string]any, []any:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal value: %w", err)
		}
		fmt.Print(string(out))
	default:
		fmt.Println(value)
	}
	return nil
}

func runConfigSetKey(loader *settings.Loader, key, value string) error {
	if _, err := loader.Load(); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := loader.Set(key, value); err != nil {
		return err
	}
	fmt.Printf("set %s = %s\n", key, value)
	return nil
}

func init() {
	serverCmd.AddCommand(serverConfigCmd)
	serverConfigCmd.AddCommand(serverConfigGetCmd)
	serverConfigCmd.AddCommand(serverConfigSetCmd)
	serverConfigCmd.Flags().Bool("edit", false, "open the settings file in $EDITOR")
}
