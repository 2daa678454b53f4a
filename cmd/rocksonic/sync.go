package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koriwi/rocksonic/internal/app"
	"github.com/koriwi/rocksonic/internal/config"
)

// runSync runs one session and prints the report and the summary. Track
// failures are part of the report, not of the returned error.
func runSync(cmd *cobra.Command, ctx *commandContext, settings *config.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	logger, err := ctx.logger(settings)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := newReportPrinter(out, shouldColorize(out), settings.Logging.Level == "debug")

	client, err := app.Connect(cmd.Context(), settings, logger)
	if err != nil {
		return err
	}

	session, err := app.NewSession(client, settings, nil, printer.print, logger)
	if err != nil {
		return err
	}

	result, err := session.Run(cmd.Context())
	if err != nil {
		return err
	}
	if err := cmd.Context().Err(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSummary(result))
	return nil
}
