// Package pbsolve solves binary models in process. Linear constraints are
// scaled to integer pseudo-boolean constraints and handed to gophersat,
// whose anytime optimizer reports the best model found so far when the
// time limit expires.
package pbsolve
