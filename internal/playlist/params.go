package playlist

import "playlistopt/internal/config"

// Weights are the objective coefficients.
type Weights struct {
	Rating      float64
	Exploration float64
	Diversity   float64
}

// Params holds the model constraints.
type Params struct {
	MinLength       int
	MaxLength       int
	MaxPerArtist    int
	MinExploration  int
	PeakPosition    float64
	MinMeanPeak     float64
	AnthemThreshold float64
	MinAnthems      int
	Weights         Weights
}

// ParamsFromConfig copies the playlist section of cfg.
func ParamsFromConfig(cfg config.Playlist) Params {
	return Params{
		MinLength:       cfg.MinLength,
		MaxLength:       cfg.MaxLength,
		MaxPerArtist:    cfg.MaxPerArtist,
		MinExploration:  cfg.MinExploration,
		PeakPosition:    cfg.PeakPosition,
		MinMeanPeak:     cfg.MinMeanPeak,
		AnthemThreshold: cfg.AnthemThreshold,
		MinAnthems:      cfg.MinAnthems,
		Weights: Weights{
			Rating:      cfg.Weights.Rating,
			Exploration: cfg.Weights.Exploration,
			Diversity:   cfg.Weights.Diversity,
		},
	}
}
