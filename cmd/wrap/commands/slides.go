package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/livetemplate/wrap"
	"github.com/livetemplate/wrap/internal/animation"
)

// slideInfo is the JSON form of one slide table entry.
type slideInfo struct {
	ID        int    `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name,omitempty"`
	Back      *int   `json:"back,omitempty"`
	Next      *int   `json:"next,omitempty"`
	Up        *int   `json:"up,omitempty"`
	Down      *int   `json:"down,omitempty"`
	Template  *int   `json:"template,omitempty"`
	Animation string `json:"animation,omitempty"`
}

func newSlidesCommand() *cobra.Command {
	var (
		asJSON   bool
		markdown bool
	)
	cmd := &cobra.Command{
		Use:   "slides <file>",
		Short: "Print the slide table of a deck",
		Long: `Build a deck the way the server does and print every slide with its
name, neighbour links, template and animation.`,
		Example: `  wrap slides talk.html
  wrap slides talk.html --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deck, err := wrap.ParseFile(args[0], wrap.Options{
				Registry: animation.Builtins(),
				Markdown: markdown,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeSlidesJSON(out, deck)
			}
			if err := writeSlidesTable(out, deck); err != nil {
				return err
			}
			for _, w := range deck.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table as JSON")
	cmd.Flags().BoolVar(&markdown, "markdown", true, `render data-format="markdown" slides`)
	return cmd
}

func slideInfos(deck *wrap.Deck) []slideInfo {
	slides := deck.Table.Slides()
	infos := make([]slideInfo, 0, len(slides))
	for _, s := range slides {
		infos = append(infos, slideInfo{
			ID:        s.ID,
			Kind:      s.Kind.String(),
			Name:      s.Name,
			Back:      s.Back,
			Next:      s.Next,
			Up:        s.Up,
			Down:      s.Down,
			Template:  s.Template,
			Animation: s.Animation,
		})
	}
	return infos
}

func writeSlidesJSON(w io.Writer, deck *wrap.Deck) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(slideInfos(deck))
}

func writeSlidesTable(w io.Writer, deck *wrap.Deck) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tNAME\tBACK\tNEXT\tUP\tDOWN\tTEMPLATE\tANIMATION")
	for _, s := range slideInfos(deck) {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Kind, dash(s.Name),
			link(s.Back), link(s.Next), link(s.Up), link(s.Down),
			link(s.Template), dash(s.Animation))
	}
	return tw.Flush()
}

func link(id *int) string {
	if id == nil {
		return "-"
	}
	return strconv.Itoa(*id)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
