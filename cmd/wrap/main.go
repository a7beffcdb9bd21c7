// Command wrap serves and inspects HTML slide decks.
package main

import (
	"fmt"
	"os"

	"github.com/livetemplate/wrap/cmd/wrap/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
