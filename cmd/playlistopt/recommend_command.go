package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"playlistopt/internal/genre"
	"playlistopt/internal/logging"
	"playlistopt/internal/playlist"
	"playlistopt/internal/recommend"
)

type predictedSong struct {
	SongID     string      `json:"song_id"`
	Title      string      `json:"title"`
	Artist     string      `json:"artist"`
	Genre      genre.Genre `json:"genre"`
	Popularity float64     `json:"popularity"`
	Rating     float64     `json:"predicted_rating"`
}

type recommendResult struct {
	User           string                    `json:"user"`
	Recommendation *recommend.Recommendation `json:"recommendation,omitempty"`
	Reason         string                    `json:"reason,omitempty"`
	Songs          []predictedSong           `json:"songs"`
}

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var user string
	var limit int

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend an unexplored genre and its best predicted songs",
		Long: `Pick the genre favoured by the user's most similar users among genres the user
has not explored, then list the candidate songs of that genre with the highest
predicted rating.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := requireUser(user)
			if err != nil {
				return err
			}
			_, prepared, logger, err := ctx.prepare(cmd.Context())
			if err != nil {
				return err
			}
			if err := prepared.CheckUser(target); err != nil {
				return err
			}

			result := recommendResult{User: target}
			rec, err := prepared.Recommender.RecommendGenre(target)
			switch {
			case err == nil:
				result.Recommendation = rec
				cands := playlist.Candidates(prepared.Candidates, prepared.Recommender, target, playlist.ExploreRule{Genre: rec.Genre})
				result.Songs = topPredicted(cands, limit)
			case errors.Is(err, recommend.ErrNoRecommendation):
				logger.Debug("no recommendation", logging.String("user", target), logging.Error(err))
				result.Reason = err.Error()
			default:
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			return printRecommendation(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Target user (column user_<id> without the prefix)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of predicted songs to list")
	return cmd
}

// topPredicted returns the unrated exploration candidates with the highest
// predicted rating, ties broken by popularity then song id.
func topPredicted(cands []playlist.Candidate, limit int) []predictedSong {
	picked := make([]playlist.Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Explore && c.Predicted {
			picked = append(picked, c)
		}
	}
	sort.SliceStable(picked, func(i, j int) bool {
		a, b := picked[i], picked[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.Song.Popularity != b.Song.Popularity {
			return a.Song.Popularity > b.Song.Popularity
		}
		return a.Song.ID < b.Song.ID
	})
	if limit > 0 && len(picked) > limit {
		picked = picked[:limit]
	}
	out := make([]predictedSong, 0, len(picked))
	for _, c := range picked {
		out = append(out, predictedSong{
			SongID:     c.Song.ID,
			Title:      c.Song.Title,
			Artist:     c.Song.Artist,
			Genre:      c.Song.Genre,
			Popularity: c.Song.Popularity,
			Rating:     c.Rating,
		})
	}
	return out
}

func printRecommendation(cmd *cobra.Command, result recommendResult) error {
	out := cmd.OutOrStdout()
	if result.Recommendation == nil {
		fmt.Fprintf(out, "No genre recommendation for %s: %s\n", result.User, result.Reason)
		return nil
	}
	rec := result.Recommendation
	fmt.Fprintf(out, "Recommended genre for %s: %s (score %s)\n", result.User, genre.Display(rec.Genre), formatFloat(rec.Score, 3))

	neighbours := make([]string, 0, len(rec.Neighbours))
	for _, n := range rec.Neighbours {
		neighbours = append(neighbours, fmt.Sprintf("%s (%s)", n.User, formatFloat(n.Similarity, 3)))
	}
	fmt.Fprintf(out, "Similar users: %s\n", strings.Join(neighbours, ", "))
	if len(rec.Excluded) > 0 {
		excluded := make([]string, 0, len(rec.Excluded))
		for _, g := range rec.Excluded {
			excluded = append(excluded, genre.Display(g))
		}
		fmt.Fprintf(out, "Already explored: %s\n", strings.Join(excluded, ", "))
	}

	rows := make([][]string, 0, len(rec.Ranking))
	for i, s := range rec.Ranking {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			genre.Display(s.Genre),
			formatFloat(s.Score, 3),
			strconv.FormatInt(s.Scrobbles, 10),
		})
	}
	writeTable(out, []string{"#", "Genre", "Score", "Scrobbles"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight})

	if len(result.Songs) == 0 {
		fmt.Fprintln(out, "No unrated candidate songs in the recommended genre")
		return nil
	}
	songRows := make([][]string, 0, len(result.Songs))
	for _, s := range result.Songs {
		songRows = append(songRows, []string{s.SongID, s.Title, s.Artist, formatFloat(s.Rating, 3), formatFloat(s.Popularity, 1)})
	}
	writeTable(out, []string{"Song", "Title", "Artist", "Predicted", "Popularity"}, songRows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight})
	return nil
}
