// Command xpid detects XH···π interactions in macromolecular structure
// files and writes the classified contacts as CSV or JSON.
package main

import (
	"fmt"
	"os"

	"github.com/turtacn/xpid/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
