package playlist_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"playlistopt/internal/dataset"
	"playlistopt/internal/genre"
	"playlistopt/internal/milp"
	"playlistopt/internal/playlist"
	"playlistopt/internal/services/pbsolve"
)

func cand(id, artist string, g genre.Genre, rating, peak float64) playlist.Candidate {
	return playlist.Candidate{
		Song:   dataset.Song{ID: id, Title: "T " + id, Artist: artist, Genre: g, Peak: peak},
		Rating: rating,
	}
}

func params(length, perArtist int) playlist.Params {
	return playlist.Params{
		MinLength:       length,
		MaxLength:       length,
		MaxPerArtist:    perArtist,
		PeakPosition:    0.7,
		AnthemThreshold: 0.8,
		Weights:         playlist.Weights{Rating: 1},
	}
}

func newSolver(t *testing.T) milp.Solver {
	t.Helper()
	s, err := pbsolve.New(pbsolve.DefaultPrecision)
	if err != nil {
		t.Fatalf("pbsolve.New: %v", err)
	}
	return s
}

type fakeRater map[string]float64

func (f fakeRater) PredictRating(_ string, song string) (float64, bool) {
	if v, ok := f[song]; ok {
		return v, false
	}
	return 0.5, true
}

func (f fakeRater) Rated(_ string, song string) bool {
	_, ok := f[song]
	return ok
}

func TestCandidatesMarkExploration(t *testing.T) {
	songs := []dataset.Song{
		{ID: "s1", Genre: genre.Jazz},
		{ID: "s2", Genre: genre.Rock},
		{ID: "s3", Genre: genre.Rock},
	}
	rater := fakeRater{"s1": 0.9, "s2": 0.1}

	got := playlist.Candidates(songs, rater, "ana", playlist.ExploreRule{Genre: genre.Jazz})
	if !got[0].Explore || got[1].Explore || got[2].Explore {
		t.Fatalf("genre rule flags = %v %v %v", got[0].Explore, got[1].Explore, got[2].Explore)
	}
	if got[2].Rating != 0.5 || !got[2].Predicted || got[0].Predicted {
		t.Fatalf("unexpected ratings %+v", got)
	}

	got = playlist.Candidates(songs, rater, "ana", playlist.ExploreRule{Unrated: true})
	if got[0].Explore || got[1].Explore || !got[2].Explore {
		t.Fatal("unrated rule should flag only s3")
	}
}

func TestPrecheckSurfacesInfeasibility(t *testing.T) {
	cands := []playlist.Candidate{
		cand("s1", "A", genre.Pop, 1, 0.9),
		cand("s2", "A", genre.Pop, 1, 0.1),
		cand("s3", "B", genre.Pop, 1, 0.2),
	}
	tests := []struct {
		name   string
		mutate func(*playlist.Params)
		want   string
	}{
		{name: "too few candidates", mutate: func(p *playlist.Params) { p.MinLength, p.MaxLength = 4, 4 }, want: "3 candidates"},
		{name: "artist capacity", mutate: func(p *playlist.Params) { p.MaxPerArtist = 1 }, want: "2 artists"},
		{name: "exploration", mutate: func(p *playlist.Params) { p.MinExploration = 1 }, want: "exploration"},
		{name: "anthems", mutate: func(p *playlist.Params) { p.MinAnthems = 2 }, want: "peak >= 0.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params(3, 2)
			tt.mutate(&p)
			err := playlist.Precheck(cands, p)
			if !errors.Is(err, milp.ErrInfeasible) {
				t.Fatalf("expected ErrInfeasible, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q should mention %q", err, tt.want)
			}
		})
	}
	if err := playlist.Precheck(cands, params(3, 2)); err != nil {
		t.Fatalf("feasible params rejected: %v", err)
	}
}

func TestBuildModelShape(t *testing.T) {
	cands := []playlist.Candidate{
		cand("s1", "AC/DC", genre.Rock, 0.9, 0.5),
		cand("s2", "AC DC", genre.Rock, 0.4, 0.9),
		cand("s3", "Beyoncé", genre.RnB, 0.7, 0.2),
	}
	cands[2].Explore = true
	p := params(2, 1)
	p.MaxLength = 3
	p.MinMeanPeak = 0.3
	p.MinAnthems = 1
	p.MinExploration = 1
	p.Weights = playlist.Weights{Rating: 2, Exploration: 0.5, Diversity: 0.1}

	m, err := playlist.Build(cands, p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	stats := m.Stats()
	if stats.Variables != 5 {
		t.Fatalf("expected 3 song and 2 genre variables, got %d", stats.Variables)
	}
	var names []string
	for _, c := range m.Constraints {
		names = append(names, c.Name)
	}
	want := "cover_g_r___b cover_g_rock length_min length_max artist_ac_dc artist_ac_dc_2 artist_beyonce peak_mean peak_anthems exploration"
	if got := strings.Join(names, " "); got != want {
		t.Fatalf("constraints = %q\nwant %q", got, want)
	}
	coefs := map[string]float64{}
	for _, term := range m.Objective {
		coefs[m.VarName(term.Var)] = term.Coef
	}
	if coefs["x_0"] != 1.8 || coefs["x_2"] != 1.9 || coefs["g_rock"] != 0.1 {
		t.Fatalf("unexpected objective %v", coefs)
	}

	p.Weights.Diversity = 0
	m, err = playlist.Build(cands, p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.NumVars() != 3 {
		t.Fatalf("diversity off should not add genre variables, got %d", m.NumVars())
	}
}

func TestBuildCapsArtistConstraintNames(t *testing.T) {
	stem := strings.Repeat("The Extremely Long Orchestra ", 12)
	cands := []playlist.Candidate{
		cand("s1", stem+"North", genre.Classical, 0.9, 0.5),
		cand("s2", stem+"South", genre.Classical, 0.4, 0.9),
	}
	m, err := playlist.Build(cands, params(1, 1))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	seen := map[string]bool{}
	artists := 0
	for _, c := range m.Constraints {
		if len(c.Name) > 255 {
			t.Fatalf("constraint name has %d characters", len(c.Name))
		}
		if seen[c.Name] {
			t.Fatalf("duplicate constraint name %q", c.Name)
		}
		seen[c.Name] = true
		if strings.HasPrefix(c.Name, "artist_") {
			artists++
		}
	}
	if artists != 2 {
		t.Fatalf("expected one constraint per artist, got %d", artists)
	}
}

func TestOrderPeakArc(t *testing.T) {
	peaks := []float64{0.3, 0.9, 0.1, 0.5, 0.7, 0.2, 0.6, 0.4, 0.8, 0.0}
	entries := make([]playlist.Entry, len(peaks))
	for i, p := range peaks {
		entries[i] = playlist.Entry{SongID: fmt.Sprintf("s%d", i), Peak: p}
	}
	got := playlist.OrderPeakArc(entries, 0.7)

	top := 6 // round(0.7 * 9)
	if got[top].Peak != 0.9 {
		t.Fatalf("peak at position %d = %v", top, got[top].Peak)
	}
	for i := 1; i <= top; i++ {
		if got[i].Peak < got[i-1].Peak {
			t.Fatalf("rising slope broken at %d: %v", i, got)
		}
	}
	for i := top + 1; i < len(got); i++ {
		if got[i].Peak > got[i-1].Peak {
			t.Fatalf("falling slope broken at %d: %v", i, got)
		}
	}
	for i, e := range got {
		if e.Position != i+1 {
			t.Fatalf("position %d = %d", i, e.Position)
		}
	}

	if first := playlist.OrderPeakArc(entries, 0); first[0].Peak != 0.9 {
		t.Fatal("position 0 should open with the peak")
	}
	if last := playlist.OrderPeakArc(entries, 1); last[len(last)-1].Peak != 0.9 {
		t.Fatal("position 1 should close with the peak")
	}
}

func TestOptimizeRespectsArtistCap(t *testing.T) {
	cands := []playlist.Candidate{
		cand("s1", "A", genre.Pop, 0.9, 0.1),
		cand("s2", "A", genre.Pop, 0.8, 0.2),
		cand("s3", "A", genre.Pop, 0.7, 0.3),
		cand("s4", "B", genre.Rock, 0.1, 0.4),
		cand("s5", "C", genre.Jazz, 0.2, 0.5),
	}
	got, err := playlist.Optimize(context.Background(), newSolver(t), cands, params(3, 2), milp.Options{TimeLimit: 10 * time.Second})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if got.Status != milp.StatusOptimal {
		t.Fatalf("status = %s", got.Status)
	}
	ids := map[string]bool{}
	for _, e := range got.Entries {
		ids[e.SongID] = true
	}
	if len(ids) != 3 || !ids["s1"] || !ids["s2"] || !ids["s5"] {
		t.Fatalf("unexpected selection %v", ids)
	}
	if diff := got.Objective - 1.9; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("objective = %v, want 1.9", got.Objective)
	}
}

type badSolver struct{}

func (badSolver) Name() string { return "bad" }

func (badSolver) Solve(_ context.Context, m *milp.Model, _ milp.Options) (*milp.Result, error) {
	return &milp.Result{Status: milp.StatusOptimal, Values: make([]bool, m.NumVars()), Backend: "bad"}, nil
}

func TestOptimizeRejectsInvalidAssignment(t *testing.T) {
	cands := []playlist.Candidate{cand("s1", "A", genre.Pop, 1, 0), cand("s2", "B", genre.Pop, 1, 0)}
	_, err := playlist.Optimize(context.Background(), badSolver{}, cands, params(2, 1), milp.Options{})
	if !errors.Is(err, milp.ErrSolver) {
		t.Fatalf("expected ErrSolver, got %v", err)
	}
}

func TestOptimizeReportsSolverInfeasibility(t *testing.T) {
	cands := []playlist.Candidate{
		cand("s1", "A", genre.Pop, 1, 0.1),
		cand("s2", "B", genre.Pop, 1, 0.1),
	}
	p := params(2, 1)
	p.MinMeanPeak = 0.5
	_, err := playlist.Optimize(context.Background(), newSolver(t), cands, p, milp.Options{TimeLimit: 5 * time.Second})
	if !errors.Is(err, milp.ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible, got %v", err)
	}
	if !strings.Contains(err.Error(), "variables") {
		t.Fatalf("infeasible error should carry the model summary: %v", err)
	}
}

func TestOptimizeFiveHundredCandidates(t *testing.T) {
	if testing.Short() {
		t.Skip("solver run skipped in short mode")
	}
	rng := rand.New(rand.NewPCG(42, 7))
	vocab := genre.Vocabulary()
	cands := make([]playlist.Candidate, 500)
	for i := range cands {
		cands[i] = cand(
			fmt.Sprintf("s%03d", i),
			fmt.Sprintf("artist%03d", i%170),
			vocab[i%len(vocab)],
			rng.Float64(),
			rng.Float64(),
		)
	}
	p := params(100, 3)
	p.Weights.Diversity = 0.1

	got, err := playlist.Optimize(context.Background(), newSolver(t), cands, p, milp.Options{TimeLimit: 5 * time.Second})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(got.Entries) != 100 {
		t.Fatalf("expected exactly 100 songs, got %d", len(got.Entries))
	}
	perArtist := map[string]int{}
	seen := map[string]bool{}
	for _, e := range got.Entries {
		if seen[e.SongID] {
			t.Fatalf("song %s selected twice", e.SongID)
		}
		seen[e.SongID] = true
		perArtist[e.Artist]++
		if perArtist[e.Artist] > 3 {
			t.Fatalf("artist %s appears more than 3 times", e.Artist)
		}
	}
	if got.Status != milp.StatusOptimal && got.Status != milp.StatusFeasible {
		t.Fatalf("unexpected status %s", got.Status)
	}
}

func TestWriteCSV(t *testing.T) {
	pl := &playlist.Playlist{Entries: []playlist.Entry{
		{Position: 1, SongID: "s1", Title: "One, Two", Artist: "A", Genre: genre.Pop, Peak: 0.25, Rating: 0.5, Explore: true},
	}}
	var sb strings.Builder
	if err := playlist.WriteCSV(&sb, pl); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "position,song_id,title,artist,genre,peak,rating,predicted,explore\n" +
		"1,s1,\"One, Two\",A,pop,0.25,0.5000,false,true\n"
	if sb.String() != want {
		t.Fatalf("unexpected csv:\n%s", sb.String())
	}
}
