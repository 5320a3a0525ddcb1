// Package main hosts the playlistopt CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration once per invocation,
// prepares the dataset through internal/pipeline, and renders results as
// tables or JSON. Subcommands cover data preparation (prepare, genres),
// collaborative filtering (similar, recommend), playlist optimization
// (optimize), SQL exploration (explore), and configuration scaffolding.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
