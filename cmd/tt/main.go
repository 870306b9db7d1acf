// Command tt is a passive, event-sourced time tracker for developers
// who work through terminal multiplexers and AI coding agents.
package main

import (
	"fmt"
	"os"

	"github.com/kandev/tt/cmd/tt/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tt: %v\n", err)
		os.Exit(1)
	}
}
