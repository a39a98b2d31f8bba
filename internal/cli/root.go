package cli

import (
	"fmt"
	"runtime"

	"github.com/bbernhard/leaf-playground/internal/commons"
	"github.com/bbernhard/leaf-playground/internal/config"
	"github.com/bbernhard/leaf-playground/internal/storage"
	"github.com/bbernhard/leaf-playground/internal/submission"
	"github.com/bbernhard/leaf-playground/internal/upload"
	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	verbose      bool
	serverOrigin string
	cfg          *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "playground",
		Short: "Wheat disease detection playground",
		Long: `Pick a wheat leaf image, send it to the inference server and look at the
classification it returns. The same submission flow is available as a web page,
a terminal UI and a one-shot command.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, version)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&serverOrigin, "server", "s", "", "inference server origin (default http://localhost:8000)")

	rootCmd.AddCommand(newWebCommand())
	rootCmd.AddCommand(newUICommand())
	rootCmd.AddCommand(newPredictCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func setup(cmd *cobra.Command, version string) error {
	loaded, err := config.NewLoader().Load(cfgFile)
	if err != nil {
		return err
	}
	if serverOrigin != "" {
		loaded.Server.Origin = serverOrigin
	}
	applyFlagOverrides(cmd, loaded)

	if err := loaded.Validate(); err != nil {
		return err
	}
	if err := commons.SetupLogging(loaded.Logging.Level, loaded.Logging.Format, verbose); err != nil {
		return err
	}
	if err := commons.InitSentry(loaded.Sentry.DSN, version); err != nil {
		return err
	}

	cfg = loaded
	return nil
}

// applyFlagOverrides copies subcommand flags the user set onto the config.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("address") {
		c.Web.Address, _ = flags.GetString("address")
	}
	if flags.Changed("release") {
		c.Web.Release, _ = flags.GetBool("release")
	}
	if flags.Changed("store") {
		c.Store.Backend, _ = flags.GetString("store")
	}
	if flags.Changed("redis-address") {
		c.Store.RedisAddress, _ = flags.GetString("redis-address")
	}
	if flags.Changed("drop-folder") {
		c.Upload.DropFolder, _ = flags.GetString("drop-folder")
	}
	if flags.Changed("workers") {
		c.Batch.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("timeout") {
		c.Server.Timeout, _ = flags.GetDuration("timeout")
	}
}

// newController wires the HTTP client, session store and upload surface.
// The returned cleanup releases the store.
func newController(c *config.Config) (*submission.Controller, *upload.Surface, func(), error) {
	client := submission.NewHTTPClient(c.Server.Origin, c.Server.Timeout)

	var store submission.Store
	cleanup := func() {}

	switch c.Store.Backend {
	case config.BackendRedis:
		pool := storage.NewRedisPool(c.Store.RedisAddress, c.Store.RedisMaxConnections)
		redisStore := storage.NewRedisStore(pool, c.Store.SessionTTL)
		if err := redisStore.Ping(); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		store = redisStore
		cleanup = func() { pool.Close() }
	default:
		store = submission.NewMemoryStore(c.Store.SessionTTL)
	}

	controller := submission.NewController(client, store)
	return controller, upload.NewSurface(controller), cleanup, nil
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version == "dev" || version == "" {
				version = "development"
			}
			if commit == "none" || commit == "" {
				commit = "local-build"
			}
			if date == "unknown" || date == "" {
				date = "local-build"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "playground %s (%s) built on %s\n", version, commit, date)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
		},
	}
}
