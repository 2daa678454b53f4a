package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var flags syncFlags

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:   "rocksonic [output directory]",
		Short: "Mirror a Subsonic library onto a local file tree",
		Long: "rocksonic downloads the starred songs or a playlist of a Subsonic server into\n" +
			"<output>/<library>/<artist>/<album>, embedding resized covers and optionally\n" +
			"transcoding to MP3. Running it again only does the missing work.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), settings)
			if len(args) == 1 {
				settings.Library.OutputDir = args[0]
			}
			return runSync(cmd, ctx, settings)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn or error")
	flags.register(rootCmd.Flags())

	rootCmd.AddCommand(newDaemonCommand(ctx))
	rootCmd.AddCommand(newPlaylistsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
