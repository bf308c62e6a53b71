// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates cobra commands and flags into the application's internal
// configuration. Flag defaults can be overridden with MAPFUSE_* environment
// variables.
package cli
