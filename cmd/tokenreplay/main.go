// Command tokenreplay replays event logs on Petri net models and reports
// how well they fit.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tokenreplay/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tokenreplay:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
