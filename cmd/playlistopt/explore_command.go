package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"playlistopt/internal/explore"
)

func newExploreCommand(ctx *commandContext) *cobra.Command {
	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "Summarize the prepared data with SQL",
		Long: `Load the prepared dataset into an in-memory SQLite database and run canned
summaries or an ad-hoc read-only query against it.

Tables:
  artists(artist, genres, primary_genre, scrobbles)
  songs(song_id, title, artist, raw_genre, genre, popularity, peak, candidate)
  ratings(user, song_id, raw, normalized)`,
	}

	exploreCmd.AddCommand(
		newExploreTableCommand(ctx, "summary", "Dataset counts and averages", func(c context.Context, s *explore.Store) (*explore.Table, error) {
			return s.Summary(c)
		}),
		newExploreTableCommand(ctx, "genres", "Songs, ratings, and popularity per genre", func(c context.Context, s *explore.Store) (*explore.Table, error) {
			return s.Genres(c)
		}),
		newExploreTableCommand(ctx, "users", "Rating counts and ranges per user", func(c context.Context, s *explore.Store) (*explore.Table, error) {
			return s.Users(c)
		}),
		newExploreArtistsCommand(ctx),
		newExploreQueryCommand(ctx),
	)
	return exploreCmd
}

type exploreFunc func(context.Context, *explore.Store) (*explore.Table, error)

func newExploreTableCommand(ctx *commandContext, use, short string, fn exploreFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore(cmd, ctx, fn)
		},
	}
}

func newExploreArtistsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "artists",
		Short: "Artists ordered by scrobbles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore(cmd, ctx, func(c context.Context, s *explore.Store) (*explore.Table, error) {
				return s.Artists(c, limit)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of artists")
	return cmd
}

func newExploreQueryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "query <SQL>",
		Short: "Run a read-only SQL query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			statement := strings.Join(args, " ")
			return runExplore(cmd, ctx, func(c context.Context, s *explore.Store) (*explore.Table, error) {
				return s.Query(c, statement)
			})
		},
	}
}

func runExplore(cmd *cobra.Command, ctx *commandContext, fn exploreFunc) error {
	_, prepared, _, err := ctx.prepare(cmd.Context())
	if err != nil {
		return err
	}
	store, err := explore.Open(cmd.Context(), prepared.Dataset, prepared.Ratings, prepared.Candidates)
	if err != nil {
		return err
	}
	defer store.Close()

	table, err := fn(cmd.Context(), store)
	if err != nil {
		return err
	}
	if ctx.jsonOutput() {
		return writeJSON(cmd, table)
	}
	aligns := make([]columnAlignment, len(table.Columns))
	for i := range aligns {
		if numericColumn(table, i) {
			aligns[i] = alignRight
		}
	}
	writeTable(cmd.OutOrStdout(), table.Columns, table.Rows, aligns)
	return nil
}

func numericColumn(table *explore.Table, col int) bool {
	seen := false
	for _, row := range table.Rows {
		if col >= len(row) || row[col] == "" {
			continue
		}
		for _, r := range row[col] {
			if (r < '0' || r > '9') && r != '.' && r != '-' {
				return false
			}
		}
		seen = true
	}
	return seen
}
