// Package deps reports whether the external executables a configuration
// relies on can be found on PATH.
package deps
