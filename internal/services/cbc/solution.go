package cbc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SolutionStatus classifies the header line of a CBC solution file.
type SolutionStatus int

const (
	StatusOptimal SolutionStatus = iota
	// StatusStopped means a limit was hit while an integer solution exists.
	StatusStopped
	// StatusNoSolution means a limit was hit before any integer solution.
	StatusNoSolution
	StatusInfeasible
	StatusUnbounded
)

// Solution is a parsed CBC solution file.
type Solution struct {
	Status    SolutionStatus
	Header    string
	Objective float64
	// Values holds the reported variable values. CBC omits zeros.
	Values map[string]float64
}

// ParseSolution reads the output of CBC's "solu" command.
func ParseSolution(r io.Reader) (*Solution, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read solution header: %w", err)
		}
		return nil, errors.New("solution file is empty")
	}
	header := strings.TrimSpace(scanner.Text())
	status, err := parseStatus(header)
	if err != nil {
		return nil, err
	}
	sol := &Solution{Status: status, Header: header, Values: make(map[string]float64)}
	if idx := strings.LastIndex(header, "objective value"); idx >= 0 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(header[idx+len("objective value"):]), 64); err == nil {
			sol.Objective = v
		}
	}

	line := 1
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		// CBC prefixes entries that break a bound with "**".
		text = strings.TrimSpace(strings.TrimPrefix(text, "**"))
		fields := strings.Fields(text)
		if len(fields) < 3 {
			return nil, fmt.Errorf("solution line %d: expected index, name, and value", line)
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("solution line %d: invalid value %q", line, fields[2])
		}
		sol.Values[fields[1]] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read solution: %w", err)
	}
	if sol.Status == StatusStopped && len(sol.Values) == 0 {
		sol.Status = StatusNoSolution
	}
	return sol, nil
}

func parseStatus(header string) (SolutionStatus, error) {
	lower := strings.ToLower(header)
	switch {
	case strings.Contains(lower, "no integer solution"):
		return StatusNoSolution, nil
	case strings.HasPrefix(lower, "optimal"):
		return StatusOptimal, nil
	case strings.HasPrefix(lower, "infeasible"), strings.HasPrefix(lower, "integer infeasible"):
		return StatusInfeasible, nil
	case strings.HasPrefix(lower, "unbounded"):
		return StatusUnbounded, nil
	case strings.HasPrefix(lower, "stopped"):
		return StatusStopped, nil
	default:
		return 0, fmt.Errorf("unrecognized solution status %q", header)
	}
}
