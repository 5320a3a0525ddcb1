package playlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playlistopt/internal/genre"
	"playlistopt/internal/logging"
	"playlistopt/internal/milp"
)

// Entry is one song of an ordered playlist.
type Entry struct {
	Position  int         `json:"position"`
	SongID    string      `json:"song_id"`
	Title     string      `json:"title"`
	Artist    string      `json:"artist"`
	Genre     genre.Genre `json:"genre"`
	Peak      float64     `json:"peak"`
	Rating    float64     `json:"rating"`
	Predicted bool        `json:"predicted"`
	Explore   bool        `json:"explore"`
}

// Playlist is an optimized, ordered selection.
type Playlist struct {
	Entries   []Entry       `json:"entries"`
	Objective float64       `json:"objective"`
	Status    milp.Status   `json:"status"`
	Backend   string        `json:"backend"`
	Elapsed   time.Duration `json:"elapsed"`
	Model     milp.Stats    `json:"model"`
}

// Optimize prechecks, builds, and solves the model, verifies the returned
// assignment, and orders the selection as a peak arc. Infeasible models
// are reported, never relaxed.
func Optimize(ctx context.Context, s milp.Solver, cands []Candidate, p Params, opts milp.Options) (*Playlist, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := Precheck(cands, p); err != nil {
		return nil, err
	}
	model, err := Build(cands, p)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	stats := model.Stats()
	logger.Info("solving playlist model",
		logging.String("backend", s.Name()),
		logging.Int("variables", stats.Variables),
		logging.Int("constraints", stats.Constraints),
	)

	res, err := s.Solve(ctx, model.Model, opts)
	if err != nil {
		if errors.Is(err, milp.ErrInfeasible) {
			return nil, fmt.Errorf("%w (%s)", err, stats)
		}
		return nil, err
	}
	if err := model.Check(res.Values); err != nil {
		logging.ErrorWithContext(logger, "solver assignment violates the model", "invalid_assignment",
			logging.String("backend", s.Name()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "retry with the other solver backend"),
		)
		return nil, fmt.Errorf("%w: %s returned an invalid assignment: %w", milp.ErrSolver, s.Name(), err)
	}

	selected := model.Selected(res.Values)
	entries := make([]Entry, 0, len(selected))
	for _, c := range selected {
		entries = append(entries, Entry{
			SongID:    c.Song.ID,
			Title:     c.Song.Title,
			Artist:    c.Song.Artist,
			Genre:     c.Song.Genre,
			Peak:      c.Song.Peak,
			Rating:    c.Rating,
			Predicted: c.Predicted,
			Explore:   c.Explore,
		})
	}

	return &Playlist{
		Entries:   OrderPeakArc(entries, p.PeakPosition),
		Objective: res.Objective,
		Status:    res.Status,
		Backend:   res.Backend,
		Elapsed:   res.Elapsed,
		Model:     stats,
	}, nil
}
