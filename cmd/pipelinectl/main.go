// Command pipelinectl is a thin cobra CLI over the pipeline's control
// surface (spec.md §6): it issues the same HTTP requests an operator's
// dashboard would, for use from a terminal or a script.
package main

import (
	"fmt"
	"os"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/cmd/pipelinectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
