package cbc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"playlistopt/internal/logging"
	"playlistopt/internal/milp"
	"playlistopt/internal/services"
)

const (
	modelFile    = "model.lp"
	solutionFile = "solution.txt"
	lockFile     = "cbc.lock"
	lockRetry    = 100 * time.Millisecond
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client solves models with the COIN-OR CBC command line solver.
type Client struct {
	binary  string
	workDir string
	exec    Executor
}

// New constructs a CBC client writing model and solution files to workDir.
func New(binary, workDir string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("cbc binary required")
	}
	if strings.TrimSpace(workDir) == "" {
		return nil, errors.New("cbc work directory required")
	}
	client := &Client{
		binary:  binary,
		workDir: workDir,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name identifies the backend.
func (c *Client) Name() string {
	return "cbc"
}

// Solve writes the model, runs CBC, and reads the solution back. The work
// directory is locked for the duration of the call.
func (c *Client) Solve(ctx context.Context, m *milp.Model, opts milp.Options) (*milp.Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(c.workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "solve", "prepare work dir", c.workDir, err)
	}

	lock := flock.New(filepath.Join(c.workDir, lockFile))
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("acquire solver lock: %w", err)
	}
	if !locked {
		return nil, errors.New("acquire solver lock: work directory busy")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release solver lock", logging.Error(err))
		}
	}()

	modelPath := filepath.Join(c.workDir, modelFile)
	solutionPath := filepath.Join(c.workDir, solutionFile)
	if err := os.Remove(solutionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale solution: %w", err)
	}
	if err := writeModel(modelPath, m); err != nil {
		return nil, err
	}

	args := []string{modelPath}
	if opts.TimeLimit > 0 {
		args = append(args, "sec", strconv.Itoa(max(1, int(opts.TimeLimit.Seconds()))))
	}
	args = append(args, "solve", "solu", solutionPath)

	runCtx := ctx
	if opts.TimeLimit > 0 {
		// CBC enforces the limit itself; the context deadline only catches a
		// hung process.
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.TimeLimit+30*time.Second)
		defer cancel()
	}

	logger.Debug("running cbc",
		logging.String("binary", c.binary),
		logging.String("model", modelPath),
		logging.Duration("time_limit", opts.TimeLimit),
	)
	started := time.Now()
	if err := c.exec.Run(runCtx, c.binary, args, func(line string) {
		logger.Debug("cbc output", logging.String("line", line))
	}); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: run %s: %w", milp.ErrSolver, c.binary, err)
	}
	elapsed := time.Since(started)

	file, err := os.Open(solutionPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read solution: %w", milp.ErrSolver, err)
	}
	defer file.Close()
	sol, err := ParseSolution(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", milp.ErrSolver, err)
	}
	return c.result(m, sol, elapsed, logger)
}

func (c *Client) result(m *milp.Model, sol *Solution, elapsed time.Duration, logger *slog.Logger) (*milp.Result, error) {
	switch sol.Status {
	case StatusInfeasible:
		return nil, milp.ErrInfeasible
	case StatusUnbounded:
		return nil, milp.ErrUnbounded
	case StatusNoSolution:
		return nil, milp.ErrTimeout
	}

	values := make([]bool, m.NumVars())
	for name, value := range sol.Values {
		v, ok := m.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: solution names unknown variable %q", milp.ErrSolver, name)
		}
		values[v] = value > 0.5
	}

	status := milp.StatusOptimal
	if sol.Status == StatusStopped {
		status = milp.StatusFeasible
		logging.WarnWithContext(logger, "solver stopped before proving optimality", "solver_time_limit",
			logging.String(logging.FieldErrorHint, "raise solver.time_limit_seconds for a proven optimum"),
			logging.String(logging.FieldImpact, "playlist may be suboptimal"),
		)
	}
	return &milp.Result{
		Status:    status,
		Values:    values,
		Objective: m.Evaluate(values),
		Backend:   c.Name(),
		Elapsed:   elapsed,
	}, nil
}

func writeModel(path string, m *milp.Model) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	if err := milp.WriteLP(file, m); err != nil {
		_ = file.Close()
		return fmt.Errorf("write model file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if onOutput != nil {
				mu.Lock()
				onOutput(scanner.Text())
				mu.Unlock()
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
