package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"playlistopt/internal/genre"
)

type genreMapping struct {
	Raw     string        `json:"raw"`
	Tags    []string      `json:"tags"`
	Genres  []genre.Genre `json:"genres"`
	Primary genre.Genre   `json:"primary"`
}

type genreCount struct {
	Genre     genre.Genre `json:"genre"`
	Songs     int         `json:"songs"`
	Scrobbles int64       `json:"scrobbles"`
}

func newGenresCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "genres [raw...]",
		Short: "Consolidate genre strings or show catalog genre counts",
		Long: `With arguments, map each raw genre string onto the controlled vocabulary.
Without arguments, load the dataset and show song counts and artist scrobbles
per consolidated genre.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return printGenreMappings(cmd, ctx, args)
			}
			_, prepared, _, err := ctx.prepare(cmd.Context())
			if err != nil {
				return err
			}
			counts := prepared.Dataset.GenreCounts()
			scrobbles := prepared.Dataset.GenreScrobbles()
			result := make([]genreCount, 0, len(counts))
			for _, g := range genre.Vocabulary() {
				if counts[g] == 0 && scrobbles[g] == 0 {
					continue
				}
				result = append(result, genreCount{Genre: g, Songs: counts[g], Scrobbles: scrobbles[g]})
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			rows := make([][]string, 0, len(result))
			for _, c := range result {
				rows = append(rows, []string{
					genre.Display(c.Genre),
					strconv.Itoa(c.Songs),
					strconv.FormatInt(c.Scrobbles, 10),
				})
			}
			writeTable(cmd.OutOrStdout(), []string{"Genre", "Songs", "Scrobbles"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight})
			return nil
		},
	}
}

func printGenreMappings(cmd *cobra.Command, ctx *commandContext, args []string) error {
	mappings := make([]genreMapping, 0, len(args))
	for _, raw := range args {
		tags := genre.ParseTags(raw)
		genres := genre.ConsolidateAll(tags)
		mappings = append(mappings, genreMapping{Raw: raw, Tags: tags, Genres: genres, Primary: genres[0]})
	}
	if ctx.jsonOutput() {
		return writeJSON(cmd, mappings)
	}
	rows := make([][]string, 0, len(mappings))
	for _, m := range mappings {
		labels := make([]string, 0, len(m.Genres))
		for _, g := range m.Genres {
			labels = append(labels, genre.Display(g))
		}
		rows = append(rows, []string{m.Raw, strings.Join(m.Tags, ", "), strings.Join(labels, ", "), genre.Display(m.Primary)})
	}
	writeTable(cmd.OutOrStdout(), []string{"Raw", "Tags", "Genres", "Primary"}, rows, nil)
	return nil
}
