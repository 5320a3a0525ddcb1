// Package testsupport provides helpers shared by package tests: temp-dir
// backed configs and deterministic song/artist catalogs written as CSV.
package testsupport
