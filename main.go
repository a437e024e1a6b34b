package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/amirhf/imageSearch/services/search-web/api"
	"github.com/amirhf/imageSearch/services/search-web/config"
	"github.com/amirhf/imageSearch/services/search-web/logging"
	"github.com/amirhf/imageSearch/services/search-web/metrics"
	"github.com/amirhf/imageSearch/services/search-web/models"
	"github.com/amirhf/imageSearch/services/search-web/multimodal"
	"github.com/amirhf/imageSearch/services/search-web/searchclient"
	"github.com/amirhf/imageSearch/services/search-web/session"
	"github.com/amirhf/imageSearch/services/search-web/storage"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "search-web"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	envFile  string
	logLevel string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Multimodal product search",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Optional .env file to load")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(serveCmd(&flags), productsCmd(&flags), queryCmd(&flags))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})
	return cmd
}

func setup(flags *globalFlags, defaultPort string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flags.envFile, defaultPort)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var endpoint, userAgent string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser session API for the search client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags, "3000")
			if err != nil {
				return err
			}
			if endpoint != "" {
				cfg.SearchEndpoint = endpoint
			}
			if userAgent != "" {
				cfg.SearchUserAgent = userAgent
			}

			searcher, err := newSearcher(cfg)
			if err != nil {
				return err
			}

			m := metrics.New()
			previews := session.NewPreviewStore(session.DefaultPreviewPrefix)
			sessions := session.NewManager(func() *session.Session {
				return session.New(searcher, previews, session.WithLogger(logger), session.WithObserver(m))
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go sweepSessions(ctx, sessions, cfg.SessionIdleTimeout, logger)

			handler := api.NewSessionHandler(sessions, previews, logger)
			logger.Info("search client API starting", "port", cfg.Port, "search_endpoint", searcher.Endpoint())
			return listen(ctx, cfg.Port, api.NewSessionRouter(handler, cfg.AllowedOrigins, m.Handler()), logger)
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Search endpoint URL; overrides SEARCH_ENDPOINT")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent sent to the search endpoint; overrides SEARCH_USER_AGENT")
	return cmd
}

func productsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "Serve the product search API backed by Postgres and the multimodal service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags, "8080")
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer store.Close()

			m := metrics.New()
			matcher := multimodal.NewClient(cfg.MultimodalEndpoint, &http.Client{Timeout: cfg.SearchTimeout})
			handler := api.NewHandler(store, matcher, cfg.MaxScore, logger, m)

			logger.Info("product search API starting", "port", cfg.Port, "multimodal_endpoint", cfg.MultimodalEndpoint)
			return listen(ctx, cfg.Port, api.NewProductRouter(handler, cfg.AllowedOrigins, m.Handler()), logger)
		},
	}
}

func queryCmd(flags *globalFlags) *cobra.Command {
	var (
		endpoint  string
		userAgent string
		text      string
		imagePath string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a single search and print the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags, "3000")
			if err != nil {
				return err
			}
			if endpoint != "" {
				cfg.SearchEndpoint = endpoint
			}
			if userAgent != "" {
				cfg.SearchUserAgent = userAgent
			}

			searcher, err := newSearcher(cfg)
			if err != nil {
				return err
			}

			s := session.New(searcher, session.NewPreviewStore(""), session.WithLogger(logger))
			defer s.Close()

			s.SetText(text)
			if imagePath != "" {
				img, err := loadImage(imagePath)
				if err != nil {
					return err
				}
				s.SelectImage(img)
			}
			s.Search(cmd.Context())

			printView(cmd, s.View())
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Search endpoint URL; overrides SEARCH_ENDPOINT")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent sent to the search endpoint; overrides SEARCH_USER_AGENT")
	cmd.Flags().StringVarP(&text, "text", "t", "", "Query text")
	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to a query image")
	return cmd
}

func newSearcher(cfg *config.Config) (*searchclient.Client, error) {
	opts := []searchclient.ClientOption{searchclient.WithTimeout(cfg.SearchTimeout)}
	if cfg.SearchUserAgent != "" {
		opts = append(opts, searchclient.WithUserAgent(cfg.SearchUserAgent))
	}
	return searchclient.NewClient(cfg.SearchEndpoint, opts...)
}

func loadImage(path string) (*models.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	contentType := http.DetectContentType(data)
	return &models.Image{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func printView(cmd *cobra.Command, v session.View) {
	out := cmd.OutOrStdout()
	if v.ErrorMessage != "" {
		fmt.Fprintln(out, v.ErrorMessage)
		return
	}
	for _, item := range v.Results {
		image := item.ImageURL
		if image == "" {
			image = "(no image)"
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", item.ID, item.Title, image)
	}
	fmt.Fprintf(out, "%d result(s)\n", len(v.Results))
}

func sweepSessions(ctx context.Context, sessions *session.Manager, idle time.Duration, logger *slog.Logger) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(idle); n > 0 {
				logger.Debug("expired idle sessions", "count", n)
			}
		}
	}
}

// listen serves handler until ctx is cancelled, then shuts down gracefully.
func listen(ctx context.Context, port string, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
	return nil
}
