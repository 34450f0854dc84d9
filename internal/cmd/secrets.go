package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage the encrypted secret store consulted by ${secret:NAME} placeholders",
}

var secretsPutCmd = &cobra.Command{
	Use:   "put <name> [value]",
	Short: "Store a secret, prompting for the value if omitted",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		value := ""
		if len(args) == 2 {
			value = args[1]
		} else {
			prompted, err := PrompterFromContext(ctx).Secret(fmt.Sprintf("value for %s", name))
			if err != nil {
				return err
			}
			value = prompted
		}

		store, err := requireSecretsStore(ctx)
		if err != nil {
			return err
		}
		if err := store.Put(ctx, name, []byte(value)); err != nil {
			return fmt.Errorf("put secret %s: %w", name, err)
		}

		fmt.Printf("stored secret %s\n", name)
		return nil
	},
}

var secretsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a stored secret's value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		store, err := requireSecretsStore(ctx)
		if err != nil {
			return err
		}
		value, ok, err := store.Get(ctx, name)
		if err != nil {
			return fmt.Errorf("get secret %s: %w", name, err)
		}
		if !ok {
			return fmt.Errorf("secret %s not found", name)
		}

		fmt.Println(string(value))
		return nil
	},
}

var secretsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the names of stored secrets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := requireSecretsStore(ctx)
		if err != nil {
			return err
		}
		names, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("list secrets: %w", err)
		}

		if len(names) == 0 {
			fmt.Println("No secrets stored")
			return nil
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var secretsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name := args[0]

		store, err := requireSecretsStore(ctx)
		if err != nil {
			return err
		}
		if err := store.Delete(ctx, name); err != nil {
			return fmt.Errorf("delete secret %s: %w", name, err)
		}

		fmt.Printf("deleted secret %s\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(secretsCmd)
	secretsCmd.AddCommand(secretsPutCmd)
	secretsCmd.AddCommand(secretsGetCmd)
	secretsCmd.AddCommand(secretsListCmd)
	secretsCmd.AddCommand(secretsDeleteCmd)
}
