package config

const (
	defaultDataDir         = "data"
	defaultSongsFile       = "songs.csv"
	defaultArtistsFile     = "artists.csv"
	defaultRatingMethod    = "minmax"
	defaultNeutral         = 0.5
	defaultSimilarity      = "cosine"
	defaultNeighbours      = 3
	defaultMinOverlap      = 1
	defaultExclude         = "rated"
	defaultTopK            = 2
	defaultLength          = 30
	defaultMaxPerArtist    = 3
	defaultPeakPosition    = 0.7
	defaultAnthemThreshold = 0.8
	defaultWeightRating    = 1.0
	defaultWeightExplore   = 0.3
	defaultWeightDiversity = 0.1
	defaultSolverBackend   = "pbsolve"
	defaultCBCBinary       = "cbc"
	defaultSolverTimeLimit = 60
	defaultSolverPrecision = 3
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	maxSolverPrecision     = 6
	ratingMethodMinMax     = "minmax"
	ratingMethodZScore     = "zscore"
	similarityCosine       = "cosine"
	similarityPearson      = "pearson"
	excludeRated           = "rated"
	excludeTopK            = "top_k"
	solverBackendPB        = "pbsolve"
	solverBackendCBC       = "cbc"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			SongsFile:   defaultSongsFile,
			ArtistsFile: defaultArtistsFile,
			WorkDir:     defaultWorkDir(),
		},
		Preparation: Preparation{
			RatingMethod: defaultRatingMethod,
			Neutral:      defaultNeutral,
		},
		Recommend: Recommend{
			Similarity: defaultSimilarity,
			K:          defaultNeighbours,
			MinOverlap: defaultMinOverlap,
			Exclude:    defaultExclude,
			TopK:       defaultTopK,
		},
		Playlist: Playlist{
			Length:          defaultLength,
			MaxPerArtist:    defaultMaxPerArtist,
			PeakPosition:    defaultPeakPosition,
			AnthemThreshold: defaultAnthemThreshold,
			Weights: Weights{
				Rating:      defaultWeightRating,
				Exploration: defaultWeightExplore,
				Diversity:   defaultWeightDiversity,
			},
		},
		Solver: Solver{
			Backend:          defaultSolverBackend,
			Binary:           defaultCBCBinary,
			TimeLimitSeconds: defaultSolverTimeLimit,
			Precision:        defaultSolverPrecision,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
