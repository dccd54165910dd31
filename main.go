// Package main is the entry point for the sfkit CLI application.
// It provides warehouse, webhook and notebook tooling for data pipelines.
package main

import (
	"sfkit/cli/cmd"
)

// main is the entry point for the sfkit CLI application.
// It initializes and executes the command-line interface.
func main() {
	cmd.Execute()
}
