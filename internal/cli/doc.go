// Package cli implements the bop-process and bop-templates command lines.
//
// Each command is a function taking the argument list and an Env, so the
// binaries in cmd/ stay thin and the behaviour can be tested without
// spawning processes. Errors that should end the program with a specific
// status are returned as *ExitError.
package cli
