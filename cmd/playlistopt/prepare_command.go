package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"playlistopt/internal/ratings"
)

type prepareSummary struct {
	SongsPath   string   `json:"songs_path"`
	ArtistsPath string   `json:"artists_path"`
	Songs       int      `json:"songs"`
	Artists     int      `json:"artists"`
	Users       []string `json:"users"`
	Ratings     int      `json:"ratings"`
	Candidates  int      `json:"candidates"`
	Unmapped    []string `json:"unmapped_tags"`
	// UserStats describes the raw rating scale of each user.
	UserStats []ratings.UserSummary `json:"user_stats"`
}

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	var showUnmapped bool
	var showUsers bool

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Load, consolidate, filter, and normalize the dataset",
		Long: `Load songs.csv and artists.csv, map genre tags onto the controlled vocabulary,
apply the popularity filter, and normalize ratings per user. Prints a summary of
the prepared data; nothing is written to disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, prepared, _, err := ctx.prepare(cmd.Context())
			if err != nil {
				return err
			}
			summary := prepareSummary{
				SongsPath:   cfg.SongsPath(),
				ArtistsPath: cfg.ArtistsPath(),
				Songs:       len(prepared.Dataset.Songs),
				Artists:     len(prepared.Dataset.Artists),
				Users:       prepared.Ratings.Users(),
				Ratings:     prepared.Ratings.Len(),
				Candidates:  len(prepared.Candidates),
				Unmapped:    prepared.Unmapped,
				UserStats:   ratings.Summarize(prepared.Dataset.Ratings),
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Songs", strconv.Itoa(summary.Songs)},
				{"Artists", strconv.Itoa(summary.Artists)},
				{"Users", strconv.Itoa(len(summary.Users))},
				{"Ratings", strconv.Itoa(summary.Ratings)},
				{"Candidates", strconv.Itoa(summary.Candidates)},
				{"Unmapped tags", strconv.Itoa(len(summary.Unmapped))},
			}
			fmt.Fprintf(out, "Songs: %s\nArtists: %s\n", summary.SongsPath, summary.ArtistsPath)
			writeTable(out, []string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
			if showUnmapped && len(summary.Unmapped) > 0 {
				tagRows := make([][]string, 0, len(summary.Unmapped))
				for _, tag := range summary.Unmapped {
					tagRows = append(tagRows, []string{tag})
				}
				writeTable(out, []string{"Unmapped tag"}, tagRows, nil)
			}
			if showUsers {
				userRows := make([][]string, 0, len(summary.UserStats))
				for _, u := range summary.UserStats {
					userRows = append(userRows, []string{
						u.User,
						strconv.Itoa(u.Count),
						formatFloat(u.Min, 2),
						formatFloat(u.Max, 2),
						formatFloat(u.Mean, 2),
						formatFloat(u.StdDev, 2),
					})
				}
				writeTable(out, []string{"User", "Ratings", "Min", "Max", "Mean", "Std dev"}, userRows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showUsers, "users", false, "Show the raw rating distribution of each user")
	cmd.Flags().BoolVar(&showUnmapped, "show-unmapped", false, "List raw genre tags that consolidated to other")
	return cmd
}
