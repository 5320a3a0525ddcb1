package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"playlistopt/internal/config"
	"playlistopt/internal/fileutil"
	"playlistopt/internal/genre"
	"playlistopt/internal/pipeline"
	"playlistopt/internal/playlist"
)

type optimizeOptions struct {
	user         string
	length       int
	maxPerArtist int
	backend      string
	timeLimit    int
	exportPath   string
}

func newOptimizeCommand(ctx *commandContext) *cobra.Command {
	var opts optimizeOptions

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Select and order a playlist for a user",
		Long: `Run the full pipeline for a user: prepare the dataset, pick an exploration
genre from similar users, solve the playlist model, and print the selection in
peak-arc order.

Examples:
  playlistopt optimize --user u01
  playlistopt optimize --user u01 --length 50 --max-per-artist 2
  playlistopt optimize --user u01 --solver cbc --export playlist.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := requireUser(opts.user)
			if err != nil {
				return err
			}
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := applyOptimizeOverrides(base, opts)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			solver, err := pipeline.NewSolver(cfg)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := pipeline.Run(runCtx, cfg, solver, target, logger)
			if err != nil {
				return err
			}

			if path := strings.TrimSpace(opts.exportPath); path != "" {
				if err := exportPlaylist(path, result.Playlist); err != nil {
					return err
				}
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			printPlaylist(cmd.OutOrStdout(), result)
			if path := strings.TrimSpace(opts.exportPath); path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported playlist to %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.user, "user", "u", "", "Target user (column user_<id> without the prefix)")
	cmd.Flags().IntVar(&opts.length, "length", 0, "Exact playlist length (overrides playlist.length)")
	cmd.Flags().IntVar(&opts.maxPerArtist, "max-per-artist", 0, "Maximum songs per artist (overrides playlist.max_per_artist)")
	cmd.Flags().StringVar(&opts.backend, "solver", "", "Solver backend: pbsolve or cbc (overrides solver.backend)")
	cmd.Flags().IntVar(&opts.timeLimit, "time-limit", 0, "Solver time limit in seconds (overrides solver.time_limit_seconds)")
	cmd.Flags().StringVarP(&opts.exportPath, "export", "o", "", "Write the ordered playlist as CSV to this path")
	return cmd
}

// applyOptimizeOverrides returns a validated copy of base with the command
// line overrides applied.
func applyOptimizeOverrides(base *config.Config, opts optimizeOptions) (*config.Config, error) {
	cfg := *base
	if opts.length != 0 {
		cfg.SetLength(opts.length)
	}
	if opts.maxPerArtist != 0 {
		cfg.Playlist.MaxPerArtist = opts.maxPerArtist
	}
	if backend := strings.ToLower(strings.TrimSpace(opts.backend)); backend != "" {
		cfg.Solver.Backend = backend
	}
	if opts.timeLimit != 0 {
		cfg.Solver.TimeLimitSeconds = opts.timeLimit
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid override: %w", err)
	}
	return &cfg, nil
}

func exportPlaylist(path string, pl *playlist.Playlist) error {
	target, err := config.ExpandPath(path)
	if err != nil {
		return fmt.Errorf("resolve export path: %w", err)
	}
	if err := fileutil.WriteAtomic(target, 0o644, func(w io.Writer) error {
		return playlist.WriteCSV(w, pl)
	}); err != nil {
		return fmt.Errorf("export playlist: %w", err)
	}
	return nil
}

func printPlaylist(out io.Writer, result *pipeline.Result) {
	pl := result.Playlist
	fmt.Fprintf(out, "Run: %s\n", result.RunID)
	fmt.Fprintf(out, "User: %s\n", result.User)
	if result.ExplorationGenre != "" {
		fmt.Fprintf(out, "Exploration genre: %s\n", genre.Display(result.ExplorationGenre))
	} else {
		fmt.Fprintln(out, "Exploration genre: none")
	}
	fmt.Fprintf(out, "Status: %s (%s, %s)\n", pl.Status, pl.Backend, pl.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "Objective: %s\n", formatFloat(pl.Objective, 4))
	fmt.Fprintf(out, "Model: %s\n", pl.Model)

	rows := make([][]string, 0, len(pl.Entries))
	for _, e := range pl.Entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Position),
			e.Title,
			e.Artist,
			genre.Display(e.Genre),
			formatFloat(e.Rating, 3),
			yesNo(e.Predicted),
			yesNo(e.Explore),
			formatFloat(e.Peak, 3),
		})
	}
	writeTable(out, []string{"#", "Title", "Artist", "Genre", "Rating", "Predicted", "Explore", "Peak"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight})
}
