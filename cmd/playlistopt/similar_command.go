package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"playlistopt/internal/genre"
	"playlistopt/internal/recommend"
)

type similarResult struct {
	User        string                      `json:"user"`
	Neighbours  []recommend.Neighbour       `json:"neighbours"`
	Preferences []recommend.GenrePreference `json:"preferences"`
}

func newSimilarCommand(ctx *commandContext) *cobra.Command {
	var user string
	var k int

	cmd := &cobra.Command{
		Use:   "similar",
		Short: "Show the users most similar to a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := requireUser(user)
			if err != nil {
				return err
			}
			cfg, prepared, _, err := ctx.prepare(cmd.Context())
			if err != nil {
				return err
			}
			if k <= 0 {
				k = cfg.Recommend.K
			}
			neighbours, err := prepared.Recommender.SimilarUsers(target, k)
			if err != nil {
				return err
			}
			prefs, err := prepared.Recommender.GenrePreferences(target)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, similarResult{User: target, Neighbours: neighbours, Preferences: prefs})
			}
			out := cmd.OutOrStdout()
			if len(prefs) > 0 {
				prefRows := make([][]string, 0, len(prefs))
				for _, p := range prefs {
					prefRows = append(prefRows, []string{genre.Display(p.Genre), strconv.Itoa(p.Count), formatFloat(p.Average, 3)})
				}
				writeTable(out, []string{"Rated genre", "Songs", "Avg rating"}, prefRows,
					[]columnAlignment{alignLeft, alignRight, alignRight})
			}
			if len(neighbours) == 0 {
				fmt.Fprintf(out, "No users share rated songs with %s\n", target)
				return nil
			}
			rows := make([][]string, 0, len(neighbours))
			for i, n := range neighbours {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					n.User,
					formatFloat(n.Similarity, 4),
					strconv.Itoa(n.Overlap),
				})
			}
			writeTable(out, []string{"#", "User", "Similarity", "Co-rated"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight})
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Target user (column user_<id> without the prefix)")
	cmd.Flags().IntVar(&k, "k", 0, "Number of similar users (defaults to recommend.k)")
	return cmd
}
