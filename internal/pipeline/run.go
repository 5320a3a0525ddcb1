package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"playlistopt/internal/config"
	"playlistopt/internal/deps"
	"playlistopt/internal/genre"
	"playlistopt/internal/logging"
	"playlistopt/internal/milp"
	"playlistopt/internal/playlist"
	"playlistopt/internal/recommend"
	"playlistopt/internal/services"
	"playlistopt/internal/services/cbc"
	"playlistopt/internal/services/pbsolve"
)

// Result is the outcome of a full run.
type Result struct {
	RunID            string                    `json:"run_id"`
	User             string                    `json:"user"`
	ExplorationGenre genre.Genre               `json:"exploration_genre,omitempty"`
	Recommendation   *recommend.Recommendation `json:"recommendation,omitempty"`
	Playlist         *playlist.Playlist        `json:"playlist"`
}

// NewSolver returns the backend selected by cfg.Solver.Backend.
func NewSolver(cfg *config.Config) (milp.Solver, error) {
	switch cfg.Solver.Backend {
	case "cbc":
		if missing := deps.Missing(deps.CheckBinaries(deps.SolverRequirements(cfg))); len(missing) > 0 {
			return nil, services.Wrap(services.ErrExternalTool, "solve", "cbc backend", missing[0].Detail, nil)
		}
		client, err := cbc.New(cfg.Solver.Binary, cfg.Paths.WorkDir)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "solve", "cbc backend", "", err)
		}
		return client, nil
	case "pbsolve", "":
		client, err := pbsolve.New(cfg.Solver.Precision)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "solve", "pbsolve backend", "", err)
		}
		return client, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "solve", "select backend",
			fmt.Sprintf("unknown solver backend %q", cfg.Solver.Backend), nil)
	}
}

// Run prepares the data, picks an exploration genre for user, and solves
// the playlist model with solver.
func Run(ctx context.Context, cfg *config.Config, solver milp.Solver, user string, logger *slog.Logger) (*Result, error) {
	runID := uuid.NewString()
	ctx = services.WithUser(services.WithRunID(ctx, runID), user)

	prepared, err := Prepare(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := prepared.CheckUser(user); err != nil {
		return nil, err
	}
	return RunPrepared(ctx, cfg, prepared, solver, user, logger)
}

// RunPrepared runs the recommendation and optimization stages on data
// that was already prepared.
func RunPrepared(ctx context.Context, cfg *config.Config, prepared *Prepared, solver milp.Solver, user string, logger *slog.Logger) (*Result, error) {
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	ctx = services.WithUser(ctx, user)
	result := &Result{RunID: runID, User: user}

	recCtx := services.WithStage(ctx, "recommend")
	recLogger := logging.WithContext(recCtx, logging.NewComponentLogger(logger, "pipeline"))
	rec, err := prepared.Recommender.RecommendGenre(user)
	switch {
	case err == nil:
		result.Recommendation = rec
		result.ExplorationGenre = rec.Genre
		recLogger.Info("exploration genre selected",
			logging.String("genre", string(rec.Genre)),
			logging.Int("neighbours", len(rec.Neighbours)),
		)
	case errors.Is(err, recommend.ErrNoRecommendation):
		logging.WarnWithContext(recLogger, "no exploration genre available", "no_recommendation",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "add ratings from more users or lower recommend.min_overlap"),
			logging.String(logging.FieldImpact, "exploration bonus applies only to unrated songs when enabled"),
		)
	default:
		return nil, err
	}

	solveCtx := services.WithStage(ctx, "optimize")
	solveLogger := logging.WithContext(solveCtx, logging.NewComponentLogger(logger, "optimizer"))
	cands := playlist.Candidates(prepared.Candidates, prepared.Recommender, user, playlist.ExploreRule{
		Genre:   result.ExplorationGenre,
		Unrated: cfg.Playlist.ExploreUnrated,
	})
	opts := milp.Options{
		TimeLimit: time.Duration(cfg.Solver.TimeLimitSeconds) * time.Second,
		Logger:    solveLogger,
	}
	pl, err := playlist.Optimize(solveCtx, solver, cands, playlist.ParamsFromConfig(cfg.Playlist), opts)
	if err != nil {
		return nil, err
	}
	solveLogger.Info("playlist optimized",
		logging.String("status", string(pl.Status)),
		logging.String("backend", pl.Backend),
		logging.Int("songs", len(pl.Entries)),
		logging.Float64("objective", pl.Objective),
		logging.Duration("elapsed", pl.Elapsed),
	)
	result.Playlist = pl
	return result, nil
}
