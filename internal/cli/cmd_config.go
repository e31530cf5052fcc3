package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rahulmohankumar24/finch-demo/internal/config"
	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

// newConfigCmd creates the config command with subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and manage configuration",
		Long: `View and manage finch configuration.

Configuration is loaded from multiple sources with this priority:
  1. CLI flags (--storage, --db-driver, --db-path, --log-level)
  2. Environment variables (FINCH_*)
  3. Project: .finch/config.yaml
  4. User: ~/.finch/config.yaml
  5. Defaults: Built-in values

Examples:
  finch config show                       # Show merged config as YAML
  finch config show --source              # Show with source annotations
  finch config get storage.mode
  finch config set --project storage.mode file`,
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	return cmd
}

// newConfigShowCmd creates the 'config show' subcommand.
func newConfigShowCmd() *cobra.Command {
	var showSource bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showSource {
				printConfigWithSources(out, tc)
				return nil
			}
			return printConfigAsYAML(out, tc.Config)
		},
	}

	cmd.Flags().BoolVar(&showSource, "source", false, "show source for each value")
	return cmd
}

// newConfigGetCmd creates the 'config get' subcommand.
func newConfigGetCmd() *cobra.Command {
	var showSource bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a specific config value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := loadConfig()
			if err != nil {
				return err
			}

			value, ok := config.Get(tc.Config, args[0])
			if !ok {
				return fincherrors.ErrInvalidInput("key", fmt.Sprintf("unknown config key %q", args[0]))
			}

			out := cmd.OutOrStdout()
			if showSource {
				fmt.Fprintf(out, "%s (from %s)\n", value, tc.GetSource(args[0]))
			} else {
				fmt.Fprintln(out, value)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSource, "source", false, "show source of the value")
	return cmd
}

// newConfigSetCmd creates the 'config set' subcommand.
func newConfigSetCmd() *cobra.Command {
	var setProject bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: `Set a configuration value.

By default, values are saved to the user config (~/.finch/config.yaml).
Use --project to save to .finch/config.yaml instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			var targetPath string
			if setProject {
				targetPath = filepath.Join(config.FinchDir, config.ConfigFileName)
			} else {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("get home directory: %w", err)
				}
				targetPath = filepath.Join(home, config.FinchDir, config.ConfigFileName)
			}

			cfg, err := config.LoadFrom(targetPath)
			if err != nil {
				return err
			}
			if !config.Set(cfg, key, value) {
				return fincherrors.ErrInvalidInput("key", fmt.Sprintf("cannot set %s to %q", key, value))
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.SaveTo(targetPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, targetPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&setProject, "project", false, "save to project config (.finch/config.yaml)")
	return cmd
}

func printConfigAsYAML(out io.Writer, cfg *config.Config) error {
	masked := *cfg
	if masked.Database.Postgres.Password != "" {
		masked.Database.Postgres.Password = "********"
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(&masked); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

func printConfigWithSources(out io.Writer, tc *config.TrackedConfig) {
	for _, path := range config.Paths() {
		value, _ := config.Get(tc.Config, path)
		fmt.Fprintf(out, "%s = %s (%s)\n", path, value, tc.GetSource(path))
	}
}
