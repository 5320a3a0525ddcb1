// Package services defines shared utilities consumed by the pipeline stages and
// the solver backends.
//
// Key responsibilities:
//   - Context helpers that stamp the run ID, stage name, and target user for
//     logging.
//   - Structured error markers plus the Wrap helper so the CLI can classify
//     failures (bad input vs missing solver vs timeout).
//   - Subpackages wrapping the solver backends (cbc, pbsolve) behind the
//     milp.Solver interface.
package services
