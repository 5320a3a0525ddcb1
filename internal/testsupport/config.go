package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"playlistopt/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Solver.TimeLimitSeconds = 3
	cfgVal.SetLength(cfgVal.Playlist.Length)

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLength pins the playlist length.
func WithLength(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SetLength(n)
	}
}

// WithMaxPerArtist overrides the per-artist cap.
func WithMaxPerArtist(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Playlist.MaxPerArtist = n
	}
}

// WithTimeLimit overrides the solver time limit in seconds.
func WithTimeLimit(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Solver.TimeLimitSeconds = seconds
	}
}

// WithBackend selects the solver backend.
func WithBackend(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Solver.Backend = name
	}
}

// WithCatalog writes catalog into the config's data directory.
func WithCatalog(catalog Catalog) ConfigOption {
	return func(b *configBuilder) {
		WriteDataset(b.t, b.cfg.Paths.DataDir, catalog)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the solver binary is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"cbc"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
