// Package main provides the entry point for the scconfig CLI.
package main

import (
	"errors"
	"os"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
)

func main() {
	os.Exit(exitCode(Execute()))
}

// exitCode maps a command error to the process exit status: 0 on success,
// 2 when a strict verify run found pending changes, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, engine.ErrActionRequired):
		return 2
	default:
		return 1
	}
}
