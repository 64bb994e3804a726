// Package cmd implements the command-line interface of ramdb. It provides a
// hierarchical command structure with operations for running the server and
// accessing its data as a client.
//
// The package is organized into several subpackages:
//
//   - db: Commands running the database access protocol (fetch, call, ping, perf)
//   - serve: Command starting and configuring the ramdb server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See ramdb -help for a list of all commands.
package cmd
