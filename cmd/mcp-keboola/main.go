// Package main provides the entry point for the mcp-keboola server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	mcpserver "github.com/keboola-community/mcp-keboola/internal/server"
	"github.com/keboola-community/mcp-keboola/pkg/health"
	"github.com/keboola-community/mcp-keboola/pkg/platform"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type serverOptions struct {
	configPath  string
	transport   string
	address     string
	apiURL      string
	logLevel    string
	showVersion bool
}

func parseFlags() serverOptions {
	opts := serverOptions{}
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.transport, "transport", "stdio", "Transport type: stdio, http")
	flag.StringVar(&opts.address, "address", ":8080", "Server address for HTTP transport")
	flag.StringVar(&opts.apiURL, "api-url", "", "Storage API URL (overrides KBC_STORAGE_API_URL)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level: DEBUG, INFO, WARN, ERROR")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	flag.Parse()
	return opts
}

func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

// setupLogger builds a text logger on stderr so stdout stays clean for the
// stdio transport.
func setupLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadConfig(opts serverOptions) (*platform.Config, error) {
	var cfg *platform.Config
	if opts.configPath != "" {
		loaded, err := platform.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = platform.FromEnv()
	}

	if opts.apiURL != "" {
		cfg.StorageAPIURL = opts.apiURL
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, nil
}

func run() error {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("mcp-keboola version %s\n", mcpserver.Version)
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log := setupLogger(cfg.LogLevel)
	ctx := setupSignalHandler()

	s, reg, err := mcpserver.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := reg.Close(); cerr != nil {
			log.Error("closing toolkits", "error", cerr)
		}
	}()

	switch opts.transport {
	case "stdio":
		log.Info("starting server", "transport", "stdio", "version", mcpserver.Version)
		return runStdio(ctx, s)
	case "http":
		log.Info("starting server", "transport", "http", "address", opts.address, "version", mcpserver.Version)
		checker := health.NewChecker(mcpserver.Version, reg.AllTools())
		return runHTTP(ctx, s, checker, opts.address, log)
	default:
		return fmt.Errorf("unknown transport: %s", opts.transport)
	}
}

func runStdio(ctx context.Context, s *mcp.Server) error {
	if err := s.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("running stdio server: %w", err)
	}
	return nil
}

func runHTTP(ctx context.Context, s *mcp.Server, checker *health.Checker, address string, log *slog.Logger) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.HandleFunc("/healthz", checker.LivenessHandler())
	mux.HandleFunc("/readyz", checker.ReadinessHandler())

	httpServer := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		checker.SetReady()
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		checker.SetDraining()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	}
}
