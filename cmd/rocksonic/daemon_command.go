package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/koriwi/rocksonic/internal/app"
	"github.com/koriwi/rocksonic/internal/daemon"
	"github.com/koriwi/rocksonic/internal/logging"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var flags syncFlags
	var (
		watch    string
		marker   string
		interval time.Duration
		subdir   string
		lockPath string
	)

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Sync onto removable devices whenever one is plugged in",
		Long: "daemon watches a mount directory for devices carrying a marker file, syncs the\n" +
			"library onto each device once and waits for it to be removed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), settings)
			if cmd.Flags().Changed("watch") {
				settings.Daemon.WatchDir = watch
			}
			if cmd.Flags().Changed("marker") {
				settings.Daemon.Marker = marker
			}
			if cmd.Flags().Changed("interval") {
				settings.Daemon.PollIntervalSeconds = max(int(interval/time.Second), 1)
			}
			if cmd.Flags().Changed("subdir") {
				settings.Daemon.OutputSubdir = subdir
			}
			if cmd.Flags().Changed("lock") {
				settings.Daemon.LockPath = lockPath
			}

			if err := settings.Validate(); err != nil {
				return fmt.Errorf("invalid configuration:\n%w", err)
			}
			if err := settings.ValidateDaemon(); err != nil {
				return fmt.Errorf("invalid configuration:\n%w", err)
			}
			logger, err := ctx.logger(settings)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printer := newReportPrinter(out, shouldColorize(out), settings.Logging.Level == "debug")

			syncOnto := func(runCtx context.Context, root string) error {
				client, err := app.Connect(runCtx, settings, logger)
				if err != nil {
					return fmt.Errorf("%s: %w", app.ConnectionHint, err)
				}
				opts := settings.SessionOptions()
				opts.Root = root
				session, err := app.NewSession(client, settings, &opts, printer.print, logger)
				if err != nil {
					return err
				}
				result, err := session.Run(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderSummary(result))
				return nil
			}

			d, err := daemon.New(daemon.Options{
				WatchDir:     settings.Daemon.WatchDir,
				Marker:       settings.Daemon.Marker,
				OutputSubdir: settings.Daemon.OutputSubdir,
				PollInterval: settings.PollInterval(),
				LockPath:     settings.Daemon.LockPath,
			}, syncOnto, logging.Component(logger, "daemon"))
			if err != nil {
				return err
			}
			return d.Run(cmd.Context())
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&watch, "watch", "/media", "Directory devices are mounted under")
	cmd.Flags().StringVar(&marker, "marker", ".rockbox", "File that marks a device as a sync target")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Poll interval")
	cmd.Flags().StringVar(&subdir, "subdir", "Music", "Output directory relative to the device")
	cmd.Flags().StringVar(&lockPath, "lock", "", "Lock file that keeps a second daemon from starting")
	return cmd
}
