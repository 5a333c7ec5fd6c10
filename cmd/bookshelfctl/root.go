package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/di"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
)

type rootOptions struct {
	dataPath string
	envFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "bookshelfctl",
		Short:         "Manage a Bookshelf data directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.dataPath, "data-path", "", "Data directory (default: $DATA_PATH or ~/Bookshelf/data)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to .env file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newCreateUserCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newReindexCmd(opts),
		newPruneSessionsCmd(opts),
		newSeedCmd(opts),
	)

	return root
}

// withContainer builds the service container for one command and shuts it
// down afterwards. Logs go to the command's stderr so stdout stays clean for
// exported JSON.
func (o *rootOptions) withContainer(cmd *cobra.Command, run func(do.Injector) error) (err error) {
	cfg, err := config.Load([]string{
		"-data-path", o.dataPath,
		"-env-file", o.envFile,
		"-log-level", o.logLevel,
	})
	if err != nil {
		return err
	}

	injector := di.NewContainer()
	do.OverrideValue(injector, cfg)
	do.OverrideValue(injector, logger.New(logger.Config{
		Writer:      cmd.ErrOrStderr(),
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	}))

	defer func() {
		if shutdownErr := shutdownError(injector.Shutdown()); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}()

	return run(injector)
}

// shutdownError turns a shutdown report into an error. do/v2 returns a report
// even on success, so only its collected errors count.
func shutdownError(report *do.ShutdownReport) error {
	if report == nil || len(report.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("shutdown: %s", report.Error())
}
