package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/koriwi/rocksonic/internal/app"
	"github.com/koriwi/rocksonic/internal/model"
)

func newPlaylistsCommand(ctx *commandContext) *cobra.Command {
	var flags syncFlags

	cmd := &cobra.Command{
		Use:   "playlists",
		Short: "List the playlists of the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), settings)
			logger, err := ctx.logger(settings)
			if err != nil {
				return err
			}

			client, err := app.Connect(cmd.Context(), settings, logger)
			if err != nil {
				return err
			}
			playlists, err := client.Playlists(cmd.Context())
			if err != nil {
				return fmt.Errorf("list playlists: %w", err)
			}

			rows := make([][]string, 0, len(playlists)+1)
			rows = append(rows, []string{model.FavoritesLibrary, "Starred songs", "", "", ""})
			for _, p := range playlists {
				rows = append(rows, []string{
					p.ID,
					p.Name,
					p.Owner,
					strconv.Itoa(p.SongCount),
					(time.Duration(p.Duration) * time.Second).String(),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Owner", "Songs", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}
