package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"playlistopt/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input and scratch directory configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	SongsFile   string `toml:"songs_file"`
	ArtistsFile string `toml:"artists_file"`
	WorkDir     string `toml:"work_dir"`
	LogDir      string `toml:"log_dir"`
}

// Preparation controls candidate filtering and rating normalization.
type Preparation struct {
	MinPopularity float64 `toml:"min_popularity"`
	MinScrobbles  int64   `toml:"min_scrobbles"`
	RatingMethod  string  `toml:"rating_method"`
	Neutral       float64 `toml:"neutral"`
}

// Recommend controls the collaborative filtering helpers.
type Recommend struct {
	Similarity string `toml:"similarity"`
	K          int    `toml:"k"`
	MinOverlap int    `toml:"min_overlap"`
	// Exclude selects which genres are ineligible for recommendation:
	// "rated" drops every genre the user rated, "top_k" only the user's
	// TopK favourites.
	Exclude string `toml:"exclude"`
	TopK    int    `toml:"top_k"`
}

// Weights holds the objective coefficients. They are operator-chosen knobs;
// no calibration is implied by the defaults.
type Weights struct {
	Rating      float64 `toml:"rating"`
	Exploration float64 `toml:"exploration"`
	Diversity   float64 `toml:"diversity"`
}

// Playlist contains the optimization model parameters.
type Playlist struct {
	// Length is shorthand for MinLength = MaxLength = Length.
	Length          int     `toml:"length"`
	MinLength       int     `toml:"min_length"`
	MaxLength       int     `toml:"max_length"`
	MaxPerArtist    int     `toml:"max_per_artist"`
	ExploreUnrated  bool    `toml:"explore_unrated"`
	MinExploration  int     `toml:"min_exploration"`
	PeakPosition    float64 `toml:"peak_position"`
	MinMeanPeak     float64 `toml:"min_mean_peak"`
	AnthemThreshold float64 `toml:"anthem_threshold"`
	MinAnthems      int     `toml:"min_anthems"`
	Weights         Weights `toml:"weights"`
}

// Solver selects and tunes the optimization backend.
type Solver struct {
	Backend          string `toml:"backend"`
	Binary           string `toml:"binary"`
	TimeLimitSeconds int    `toml:"time_limit_seconds"`
	Precision        int    `toml:"precision"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for playlistopt.
//
// Configuration sections by stage:
//   - Paths: dataset location, solver scratch space, log directory
//   - Preparation: popularity filter and per-user rating normalization
//   - Recommend: similarity measure and neighbourhood size
//   - Playlist: model constraints and objective weights
//   - Solver: backend selection and time limit
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Preparation Preparation `toml:"preparation"`
	Recommend   Recommend   `toml:"recommend"`
	Playlist    Playlist    `toml:"playlist"`
	Solver      Solver      `toml:"solver"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/playlistopt/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("playlistopt.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the solver work directory. The log directory is
// only created when file logging is configured.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WorkDir}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SongsPath returns the absolute path of the songs table.
func (c *Config) SongsPath() string {
	return resolveDataFile(c.Paths.DataDir, c.Paths.SongsFile)
}

// ArtistsPath returns the absolute path of the artists table.
func (c *Config) ArtistsPath() string {
	return resolveDataFile(c.Paths.DataDir, c.Paths.ArtistsFile)
}

// WithDataDir returns a copy of the config reading input tables from dir.
func (c *Config) WithDataDir(dir string) (*Config, error) {
	expanded, err := expandPath(strings.TrimSpace(dir))
	if err != nil {
		return nil, fmt.Errorf("paths.data_dir: %w", err)
	}
	clone := *c
	clone.Paths.DataDir = expanded
	return &clone, nil
}

func resolveDataFile(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultWorkDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "playlistopt", "solver")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/playlistopt/solver"
	}
	return filepath.Join(home, ".cache", "playlistopt", "solver")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// LengthBounds returns the inclusive playlist length range.
func (c *Config) LengthBounds() (int, int) {
	return c.Playlist.MinLength, c.Playlist.MaxLength
}
