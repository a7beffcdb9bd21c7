// Package commands implements the wrap command line.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "0.1.0-dev"

// NewRootCommand builds the command tree. Every call returns fresh flag
// state, so tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "wrap",
		Short: "wrap - HTML slide decks with live navigation",
		Long: `wrap turns a plain HTML file of <section> and <aside> elements into a
navigable slide deck. Every browser window gets its own session: the server
keeps the slide graph, runs slide animations and remembers where each deck
was left.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCommand(),
		newSlidesCommand(),
		newValidateCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of wrap",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wrap version %s\n", Version)
		},
	}
}
