package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"playlistopt/internal/logging"
	"playlistopt/internal/milp"
	"playlistopt/internal/pipeline"
	"playlistopt/internal/recommend"
	"playlistopt/internal/services"
	"playlistopt/internal/testsupport"
)

func TestPrepareLoadsAndNormalizes(t *testing.T) {
	catalog := testsupport.GenerateCatalog(3, 200, 60, 5)
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog(catalog))
	cfg.Preparation.MinPopularity = 50

	prepared, err := pipeline.Prepare(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(prepared.Dataset.Songs) != 200 {
		t.Fatalf("songs = %d", len(prepared.Dataset.Songs))
	}
	for _, s := range prepared.Candidates {
		if s.Popularity < 50 {
			t.Fatalf("candidate %s below popularity threshold", s.ID)
		}
	}
	if len(prepared.Candidates) == 0 || len(prepared.Candidates) == 200 {
		t.Fatalf("popularity filter kept %d songs", len(prepared.Candidates))
	}
	for _, user := range prepared.Ratings.Users() {
		for song, v := range prepared.Ratings.Row(user) {
			if v < 0 || v > 1 {
				t.Fatalf("%s/%s normalized to %v", user, song, v)
			}
		}
	}
}

func TestPrepareMissingData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := pipeline.Prepare(context.Background(), cfg, logging.NewNop())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRunBuildsFeasiblePlaylist(t *testing.T) {
	catalog := testsupport.GenerateCatalog(11, 48, 24, 6)
	cfg := testsupport.NewConfig(t,
		testsupport.WithCatalog(catalog),
		testsupport.WithLength(8),
		testsupport.WithMaxPerArtist(2),
		testsupport.WithTimeLimit(2),
	)
	solver, err := pipeline.NewSolver(cfg)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}

	res, err := pipeline.Run(context.Background(), cfg, solver, "u01", logging.NewNop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := uuid.Parse(res.RunID); err != nil {
		t.Fatalf("run id %q is not a uuid: %v", res.RunID, err)
	}
	if len(res.Playlist.Entries) != 8 {
		t.Fatalf("expected 8 songs, got %d", len(res.Playlist.Entries))
	}
	counts := map[string]int{}
	for _, e := range res.Playlist.Entries {
		counts[e.Artist]++
		if counts[e.Artist] > 2 {
			t.Fatalf("artist %s exceeds cap", e.Artist)
		}
		if res.ExplorationGenre != "" && e.Genre == res.ExplorationGenre && !e.Explore {
			t.Fatalf("song %s in exploration genre not flagged", e.SongID)
		}
	}
	if res.Playlist.Backend != "pbsolve" {
		t.Fatalf("backend = %s", res.Playlist.Backend)
	}
}

func TestRunUnknownUser(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCatalog(testsupport.GenerateCatalog(1, 30, 10, 2)))
	solver, err := pipeline.NewSolver(cfg)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	_, err = pipeline.Run(context.Background(), cfg, solver, "nobody", logging.NewNop())
	if !errors.Is(err, recommend.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestRunSurfacesInfeasibility(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithCatalog(testsupport.GenerateCatalog(5, 30, 5, 3)),
		testsupport.WithLength(12),
		testsupport.WithMaxPerArtist(2),
	)
	solver, err := pipeline.NewSolver(cfg)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	_, err = pipeline.Run(context.Background(), cfg, solver, "u01", logging.NewNop())
	if !errors.Is(err, milp.ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
}

func TestNewSolverSelectsBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend("cbc"), testsupport.WithStubbedBinaries())
	s, err := pipeline.NewSolver(cfg)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	if s.Name() != "cbc" {
		t.Fatalf("backend = %s", s.Name())
	}

	cfg.Solver.Binary = "definitely-missing-cbc"
	if _, err := pipeline.NewSolver(cfg); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool for missing binary, got %v", err)
	}

	cfg.Solver.Backend = "glpk"
	if _, err := pipeline.NewSolver(cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
