package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePreparation()
	c.normalizeRecommend()
	c.normalizePlaylist()
	c.normalizeSolver()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("PLAYLISTOPT_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	c.Paths.SongsFile = strings.TrimSpace(c.Paths.SongsFile)
	if c.Paths.SongsFile == "" {
		c.Paths.SongsFile = defaultSongsFile
	}
	c.Paths.ArtistsFile = strings.TrimSpace(c.Paths.ArtistsFile)
	if c.Paths.ArtistsFile == "" {
		c.Paths.ArtistsFile = defaultArtistsFile
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir()
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePreparation() {
	c.Preparation.RatingMethod = strings.ToLower(strings.TrimSpace(c.Preparation.RatingMethod))
	if c.Preparation.RatingMethod == "" {
		c.Preparation.RatingMethod = defaultRatingMethod
	}
}

func (c *Config) normalizeRecommend() {
	c.Recommend.Similarity = strings.ToLower(strings.TrimSpace(c.Recommend.Similarity))
	if c.Recommend.Similarity == "" {
		c.Recommend.Similarity = defaultSimilarity
	}
	c.Recommend.Exclude = strings.ToLower(strings.TrimSpace(c.Recommend.Exclude))
	switch c.Recommend.Exclude {
	case "":
		c.Recommend.Exclude = defaultExclude
	case "topk", "top-k":
		c.Recommend.Exclude = excludeTopK
	}
	if c.Recommend.MinOverlap <= 0 {
		c.Recommend.MinOverlap = defaultMinOverlap
	}
}

func (c *Config) normalizePlaylist() {
	if c.Playlist.MinLength == 0 {
		c.Playlist.MinLength = c.Playlist.Length
	}
	if c.Playlist.MaxLength == 0 {
		c.Playlist.MaxLength = max(c.Playlist.Length, c.Playlist.MinLength)
	}
}

// SetLength pins the playlist to exactly n songs.
func (c *Config) SetLength(n int) {
	c.Playlist.Length = n
	c.Playlist.MinLength = n
	c.Playlist.MaxLength = n
}

func (c *Config) normalizeSolver() {
	if value, ok := os.LookupEnv("PLAYLISTOPT_SOLVER"); ok && strings.TrimSpace(value) != "" {
		c.Solver.Backend = value
	}
	c.Solver.Backend = strings.ToLower(strings.TrimSpace(c.Solver.Backend))
	if c.Solver.Backend == "" {
		c.Solver.Backend = defaultSolverBackend
	}
	c.Solver.Binary = strings.TrimSpace(c.Solver.Binary)
	if c.Solver.Binary == "" {
		c.Solver.Binary = defaultCBCBinary
	}
	if c.Solver.Precision == 0 {
		c.Solver.Precision = defaultSolverPrecision
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
