package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePreparation(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validatePlaylist(); err != nil {
		return err
	}
	if err := c.validateSolver(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePreparation() error {
	switch c.Preparation.RatingMethod {
	case ratingMethodMinMax, ratingMethodZScore:
	default:
		return fmt.Errorf("preparation.rating_method must be %q or %q, got %q", ratingMethodMinMax, ratingMethodZScore, c.Preparation.RatingMethod)
	}
	if math.IsNaN(c.Preparation.Neutral) || c.Preparation.Neutral < 0 || c.Preparation.Neutral > 1 {
		return errors.New("preparation.neutral must be between 0 and 1")
	}
	if c.Preparation.MinPopularity < 0 {
		return errors.New("preparation.min_popularity must be >= 0")
	}
	if c.Preparation.MinScrobbles < 0 {
		return errors.New("preparation.min_scrobbles must be >= 0")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	switch c.Recommend.Similarity {
	case similarityCosine, similarityPearson:
	default:
		return fmt.Errorf("recommend.similarity must be %q or %q, got %q", similarityCosine, similarityPearson, c.Recommend.Similarity)
	}
	if c.Recommend.K <= 0 {
		return errors.New("recommend.k must be positive")
	}
	switch c.Recommend.Exclude {
	case excludeRated:
	case excludeTopK:
		if c.Recommend.TopK <= 0 {
			return errors.New("recommend.top_k must be positive when recommend.exclude is top_k")
		}
	default:
		return fmt.Errorf("recommend.exclude must be %q or %q, got %q", excludeRated, excludeTopK, c.Recommend.Exclude)
	}
	return nil
}

func (c *Config) validatePlaylist() error {
	p := c.Playlist
	if err := ensurePositiveMap(map[string]int{
		"playlist.min_length":     p.MinLength,
		"playlist.max_length":     p.MaxLength,
		"playlist.max_per_artist": p.MaxPerArtist,
	}); err != nil {
		return err
	}
	if p.MaxLength < p.MinLength {
		return errors.New("playlist.max_length must be >= playlist.min_length")
	}
	if p.MinExploration < 0 {
		return errors.New("playlist.min_exploration must be >= 0")
	}
	if p.MinExploration > p.MaxLength {
		return errors.New("playlist.min_exploration must not exceed playlist.max_length")
	}
	if p.MinAnthems < 0 {
		return errors.New("playlist.min_anthems must be >= 0")
	}
	if p.MinAnthems > p.MaxLength {
		return errors.New("playlist.min_anthems must not exceed playlist.max_length")
	}
	if p.PeakPosition < 0 || p.PeakPosition > 1 {
		return errors.New("playlist.peak_position must be between 0 and 1")
	}
	if p.MinMeanPeak < 0 {
		return errors.New("playlist.min_mean_peak must be >= 0")
	}
	for key, value := range map[string]float64{
		"playlist.weights.rating":      p.Weights.Rating,
		"playlist.weights.exploration": p.Weights.Exploration,
		"playlist.weights.diversity":   p.Weights.Diversity,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			return fmt.Errorf("%s must be a finite value >= 0", key)
		}
	}
	return nil
}

func (c *Config) validateSolver() error {
	switch c.Solver.Backend {
	case solverBackendPB, solverBackendCBC:
	default:
		return fmt.Errorf("solver.backend must be %q or %q, got %q", solverBackendPB, solverBackendCBC, c.Solver.Backend)
	}
	if c.Solver.TimeLimitSeconds <= 0 {
		return errors.New("solver.time_limit_seconds must be positive")
	}
	if c.Solver.Precision < 0 || c.Solver.Precision > maxSolverPrecision {
		return fmt.Errorf("solver.precision must be between 0 and %d", maxSolverPrecision)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
