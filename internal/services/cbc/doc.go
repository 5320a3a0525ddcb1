// Package cbc runs the COIN-OR CBC solver as an external process. Models are
// written in LP format to a locked work directory and the solution file is
// parsed back into a milp.Result.
package cbc
