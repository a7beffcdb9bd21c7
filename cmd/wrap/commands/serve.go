package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/livetemplate/wrap/internal/bookmark"
	"github.com/livetemplate/wrap/internal/config"
	"github.com/livetemplate/wrap/internal/logging"
	"github.com/livetemplate/wrap/internal/metrics"
	"github.com/livetemplate/wrap/internal/server"
)

// shutdownTimeout bounds how long open sessions get to finish on exit.
const shutdownTimeout = 5 * time.Second

// breakerTimeout is how long a tripped bookmark database is left alone.
const breakerTimeout = 30 * time.Second

type serveOptions struct {
	configPath string
	port       int
	host       string
	watch      bool
	debug      bool
}

func newServeCommand() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve [directory]",
		Short: "Start the deck server",
		Long: `Serve a directory of decks. Opening a page that holds <section> or <aside>
elements turns it into a live slide deck; other files are served as-is.`,
		Example: `  wrap serve                  # Serve current directory
  wrap serve ./talks          # Serve the talks directory
  wrap serve --port 9000 -w   # Custom port with live reload`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cfg, absDir, err := loadConfig(dir, opts.configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Server.Port = opts.port
			}
			if flags.Changed("host") {
				cfg.Server.Host = opts.host
			}
			if flags.Changed("watch") {
				cfg.Features.HotReload = opts.watch
			}
			if flags.Changed("debug") {
				cfg.Server.Debug = opts.debug
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, absDir, cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: wrap.yaml in the directory)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 8080, "port to listen on")
	cmd.Flags().StringVar(&opts.host, "host", "localhost", "host to bind")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", true, "reload browsers when deck files change")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "verbose development logging")
	return cmd
}

// loadConfig resolves the deck directory and reads its configuration.
func loadConfig(dir, configPath string) (*config.Config, string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, "", fmt.Errorf("directory does not exist: %s", dir)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromDir(absDir)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, absDir, nil
}

// openStore opens the bookmark store the config asks for. Database stores
// sit behind a circuit breaker.
func openStore(ctx context.Context, cfg config.BookmarksConfig, logger *zap.Logger) (bookmark.Store, func() error, error) {
	if cfg.Driver == "" || cfg.Driver == "memory" {
		return bookmark.NewMemoryStore(), func() error { return nil }, nil
	}
	store, err := bookmark.OpenSQL(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	return bookmark.NewBreakerStore(store, breakerTimeout, logger), store.Close, nil
}

// runServe runs the server until ctx is cancelled.
func runServe(ctx context.Context, dir string, cfg *config.Config, out io.Writer) error {
	logger, err := logging.New(cfg.Server.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	store, closeStore, err := openStore(ctx, cfg.Bookmarks, logger)
	if err != nil {
		return fmt.Errorf("failed to open bookmark store: %w", err)
	}
	defer closeStore()

	var collector *metrics.Collector
	if cfg.Features.Metrics {
		collector = metrics.NewCollector("wrap")
	}

	srv, err := server.New(server.Options{
		Root:    dir,
		Config:  cfg,
		Store:   store,
		Logger:  logger,
		Metrics: collector,
	})
	if err != nil {
		return err
	}

	title := cfg.Title
	if title == "" {
		title = "wrap"
	}
	fmt.Fprintf(out, "📽  %s\n\n", title)
	fmt.Fprintf(out, "Serving: %s\n", dir)
	if deck, page, err := srv.LoadDeck("/"); err == nil {
		fmt.Fprintf(out, "Deck:    %s (%d slides)\n", page, deck.Table.Len())
	}
	fmt.Fprintf(out, "Bookmarks: %s\n", cfg.Bookmarks.Driver)

	if cfg.Features.HotReload {
		if err := srv.EnableWatch(); err != nil {
			srv.Close()
			return fmt.Errorf("failed to enable watch mode: %w", err)
		}
		fmt.Fprintf(out, "\n👀 Watch mode enabled - browsers reload when decks change\n")
	}
	fmt.Fprintf(out, "\n🌐 Server running at http://%s\n", cfg.Server.Addr())
	if collector != nil {
		fmt.Fprintf(out, "📈 Metrics at http://%s/metrics\n", cfg.Server.Addr())
	}
	fmt.Fprintf(out, "Press Ctrl+C to stop\n\n")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
