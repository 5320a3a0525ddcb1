package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"playlistopt/internal/config"
	"playlistopt/internal/logging"
	"playlistopt/internal/milp"
	"playlistopt/internal/pipeline"
	"playlistopt/internal/recommend"
	"playlistopt/internal/services"
)

type commandContext struct {
	configFlag   *string
	dataDirFlag  *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, dataDirFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		dataDirFlag:  dataDirFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if dir := flagValue(c.dataDirFlag); dir != "" {
			if cfg, err = cfg.WithDataDir(dir); err != nil {
				c.configErr = err
				return
			}
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// prepare loads the configured dataset and runs the preparation stage.
func (c *commandContext) prepare(ctx context.Context) (*config.Config, *pipeline.Prepared, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	prepared, err := pipeline.Prepare(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, prepared, logger, nil
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func requireUser(user string) (string, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return "", errors.New("--user is required")
	}
	return user, nil
}

func exitHint(err error) string {
	switch {
	case errors.Is(err, milp.ErrInfeasible):
		return "relax playlist.max_per_artist, lower min_exploration, min_anthems or min_mean_peak, or loosen the popularity filter"
	case errors.Is(err, recommend.ErrUnknownUser):
		return "run 'playlistopt explore users' to list known users"
	default:
		return services.ExitHint(err)
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
