// Package cli implements the finch command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rahulmohankumar24/finch-demo/internal/config"
	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
	"github.com/rahulmohankumar24/finch-demo/internal/service"
	"github.com/rahulmohankumar24/finch-demo/internal/storage"
)

var (
	cfgFile string
	verbose bool
	jsonOut bool

	// overrides holds the persistent flags that override config values.
	overrides *viper.Viper
)

// flagBindings maps persistent flags to the config paths they override.
var flagBindings = map[string]string{
	"storage":   "storage.mode",
	"db-driver": "database.driver",
	"db-path":   "database.sqlite.path",
	"log-level": "log.level",
}

// NewRootCmd builds the finch command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "finch",
		Short: "Task dependency engine for legal matters",
		Long: `finch tracks the tasks of legal matters and the dependencies between them.

Every matter starts with the default intake workflow. A task can run once
every task it depends on is complete and every waiting period has passed.

Quick start:
  finch matter create m1 --client-name "Jane Doe"
  finch task run m1 intake_call
  finch matter show m1
  finch serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is .finch/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.BoolVar(&jsonOut, "json", false, "output as JSON")
	pf.String("storage", "", "storage mode: database, file or memory")
	pf.String("db-driver", "", "database driver: sqlite or postgres")
	pf.String("db-path", "", "SQLite database path")
	pf.String("log-level", "", "log level: debug, info, warn or error")

	overrides = viper.New()
	for flag, path := range flagBindings {
		_ = overrides.BindPFlag(path, pf.Lookup(flag))
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMatterCmd())
	root.AddCommand(newTaskCmd())
	root.AddCommand(newClientCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// Execute runs the root command and prints any error.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		PrintError(err)
		return err
	}
	return nil
}

// loadConfig loads the layered config and applies flag overrides on top.
func loadConfig() (*config.TrackedConfig, error) {
	tc, err := config.LoadWithSources(cfgFile)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(flagBindings))
	for _, path := range flagBindings {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if overrides == nil || !overrides.IsSet(path) {
			continue
		}
		value := overrides.GetString(path)
		if !config.Set(tc.Config, path, value) {
			return nil, fincherrors.ErrConfigInvalid(path, fmt.Sprintf("cannot use %q", value))
		}
		tc.SetSource(path, config.SourceFlag)
	}

	if err := tc.Config.Validate(); err != nil {
		return nil, err
	}
	if verbose && cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", cfgFile)
	}
	return tc, nil
}

// openService loads config, opens the configured backend and wraps it in a
// service. Callers must Close the service.
func openService(ctx context.Context, opts ...service.Option) (*service.Service, *config.Config, error) {
	tc, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg := tc.Config
	logger := cfg.Log.NewLogger(os.Stderr)

	backend, err := storage.NewBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if dbb, ok := backend.(*storage.DatabaseBackend); ok {
		dbb.SetLogger(logger)
	}

	opts = append([]service.Option{service.WithLogger(logger)}, opts...)
	return service.New(backend, opts...), cfg, nil
}
