package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/livetemplate/wrap"
	"github.com/livetemplate/wrap/internal/animation"
)

// skipDirs are never searched for decks.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

type fileResult struct {
	path     string
	slides   int
	warnings []string
	err      error
}

func newValidateCommand() *cobra.Command {
	var (
		configPath string
		strict     bool
	)
	cmd := &cobra.Command{
		Use:   "validate [directory]",
		Short: "Check the config and every deck in a directory",
		Long: `Validate the wrap.yaml of a directory and build every HTML deck below it,
reporting build errors and authoring warnings such as unknown animations.`,
		Example: `  wrap validate
  wrap validate ./talks --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cfg, absDir, err := loadConfig(dir, configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🔍 Validating decks in: %s\n\n", absDir)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Path != "" {
				fmt.Fprintf(out, "✅ Config: %s\n", cfg.Path)
			}

			files, err := findDecks(absDir)
			if err != nil {
				return fmt.Errorf("failed to scan directory: %w", err)
			}
			results := validateFiles(absDir, files, cfg.Deck.Markdown, cmd.ErrOrStderr())
			return report(out, results, strict)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default: wrap.yaml in the directory)")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

// findDecks lists the HTML files below dir that hold slides.
func findDecks(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(name) != ".html" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		lower := bytes.ToLower(data)
		if bytes.Contains(lower, []byte("<section")) || bytes.Contains(lower, []byte("<aside")) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func validateFiles(root string, files []string, markdown bool, progress io.Writer) []fileResult {
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("Building decks"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	registry := animation.Builtins()
	results := make([]fileResult, 0, len(files))
	for _, path := range files {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		res := fileResult{path: rel}
		deck, err := wrap.ParseFile(path, wrap.Options{Registry: registry, Markdown: markdown})
		if err != nil {
			res.err = err
		} else {
			res.slides = deck.Table.Len()
			res.warnings = deck.Warnings
		}
		results = append(results, res)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return results
}

func report(out io.Writer, results []fileResult, strict bool) error {
	if len(results) == 0 {
		fmt.Fprintln(out, "No decks found.")
		return nil
	}
	failed := 0
	for _, r := range results {
		switch {
		case r.err != nil:
			failed++
			var de *wrap.DeckError
			if errors.As(r.err, &de) {
				fmt.Fprintln(out, de.Format())
			} else {
				fmt.Fprintf(out, "❌ %s: %v\n", r.path, r.err)
			}
		case len(r.warnings) > 0:
			if strict {
				failed++
			}
			fmt.Fprintf(out, "⚠️  %s (%d slides)\n", r.path, r.slides)
			for _, w := range r.warnings {
				fmt.Fprintf(out, "    - %s\n", w)
			}
		default:
			fmt.Fprintf(out, "✅ %s (%d slides)\n", r.path, r.slides)
		}
	}
	fmt.Fprintf(out, "\n%d deck(s) checked, %d with problems\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("validation failed: %d deck(s) with problems", failed)
	}
	return nil
}
