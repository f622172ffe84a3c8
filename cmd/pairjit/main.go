// Command pairjit compiles textual IR for pairwise interaction
// potentials and evaluates it against particle pair samples.
package main

import (
	"os"

	"github.com/mverlet/pairjit/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
