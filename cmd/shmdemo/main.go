// Command shmdemo is a small CLI demonstrating the cross-process
// scenario spec.md's external interfaces are built for: one invocation
// creates the arena (master), a second attaches to it from another
// process and prints the arena's metrics.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "shmdemo",
	Short:   "Create or attach to a shmarena-backed shared-memory heap",
	Version: "0.1.0",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
