package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"playlistopt/internal/config"
	"playlistopt/internal/dataset"
	"playlistopt/internal/logging"
	"playlistopt/internal/ratings"
	"playlistopt/internal/recommend"
	"playlistopt/internal/services"
)

// Prepared is the read-only output of the data preparation stage.
type Prepared struct {
	Dataset *dataset.Dataset
	// Ratings holds the per-user normalized ratings.
	Ratings     *dataset.RatingMatrix
	Candidates  []dataset.Song
	Recommender *recommend.Recommender
	// Unmapped lists raw genre tags that consolidated to "other".
	Unmapped []string
}

// Prepare loads the input tables, consolidates genres, normalizes ratings,
// and applies the popularity filter.
func Prepare(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Prepared, error) {
	ctx = services.WithStage(ctx, "prepare")
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "pipeline"))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := dataset.Load(cfg.SongsPath(), cfg.ArtistsPath())
	if err != nil {
		return nil, err
	}
	unmapped := ds.Unmapped
	for _, tag := range unmapped {
		logger.Debug("genre tag not in vocabulary", logging.String("tag", tag))
	}

	method, err := ratings.ParseMethod(cfg.Preparation.RatingMethod)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "prepare", "normalize ratings", "", err)
	}
	normalized, err := ratings.Normalize(ds.Ratings, method, cfg.Preparation.Neutral)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "prepare", "normalize ratings", "", err)
	}

	measure, err := recommend.ParseMeasure(cfg.Recommend.Similarity)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "prepare", "similarity", "", err)
	}
	rec, err := recommend.New(ds, normalized, recommend.Options{
		Measure:    measure,
		K:          cfg.Recommend.K,
		MinOverlap: cfg.Recommend.MinOverlap,
		Exclude:    recommend.ExcludeMode(cfg.Recommend.Exclude),
		TopK:       cfg.Recommend.TopK,
		Neutral:    cfg.Preparation.Neutral,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "prepare", "recommender", "", err)
	}

	candidates := ds.FilterPopular(cfg.Preparation.MinPopularity, cfg.Preparation.MinScrobbles)
	logger.Info("data prepared",
		logging.Int("songs", len(ds.Songs)),
		logging.Int("artists", len(ds.Artists)),
		logging.Int("users", len(normalized.Users())),
		logging.Int("ratings", normalized.Len()),
		logging.Int("candidates", len(candidates)),
		logging.Int("unmapped_tags", len(unmapped)),
	)
	if len(candidates) == 0 {
		logging.WarnWithContext(logger, "popularity filter removed every song", "empty_candidates",
			logging.String(logging.FieldErrorHint, "lower preparation.min_popularity or preparation.min_scrobbles"),
			logging.String(logging.FieldImpact, "no playlist can be built"),
		)
	}
	return &Prepared{
		Dataset:     ds,
		Ratings:     normalized,
		Candidates:  candidates,
		Recommender: rec,
		Unmapped:    unmapped,
	}, nil
}

// CheckUser fails with recommend.ErrUnknownUser when user has no column in
// the songs table.
func (p *Prepared) CheckUser(user string) error {
	if !p.Ratings.HasUser(user) {
		return fmt.Errorf("%w %q", recommend.ErrUnknownUser, user)
	}
	return nil
}
