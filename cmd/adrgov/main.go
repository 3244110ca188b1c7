// Command adrgov runs the ADR governance bot.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/adrgov/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "adrgov: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
