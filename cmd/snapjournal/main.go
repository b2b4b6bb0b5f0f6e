// SnapJournal backend - local-first AI journaling.
// Entry point: wires config, storage, the model adapter, and the HTTP API.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mhsenkow/myfacesnapjournal/internal/api"
	"github.com/mhsenkow/myfacesnapjournal/internal/domain/journal"
	"github.com/mhsenkow/myfacesnapjournal/internal/infra/config"
	"github.com/mhsenkow/myfacesnapjournal/internal/infra/eventbus"
	"github.com/mhsenkow/myfacesnapjournal/internal/infra/github"
	"github.com/mhsenkow/myfacesnapjournal/internal/infra/llm"
	"github.com/mhsenkow/myfacesnapjournal/internal/infra/sqlite"
	"github.com/mhsenkow/myfacesnapjournal/internal/server"
	"github.com/mhsenkow/myfacesnapjournal/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("snapjournal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	addr := fs.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := fs.String("db", "", "SQLite database path (overrides config)")
	configPath := fs.String("config", "", "Path to YAML config file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// A local .env is optional; absence is not an error.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	if err := serve(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load(), nil
}

func serve(cfg config.Config, logger *slog.Logger) error {
	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := sqlite.MigrateUp(db); err != nil {
		db.Close() //nolint:errcheck
		return fmt.Errorf("run migrations: %w", err)
	}

	adapter, err := llm.New(llm.Options{
		Backend:        cfg.AIBackend,
		Location:       cfg.AILocation,
		EmbeddingModel: cfg.EmbeddingModel,
		ChatModel:      cfg.ChatModel,
		Logger:         logger,
	})
	if err != nil {
		db.Close() //nolint:errcheck
		return fmt.Errorf("build model adapter: %w", err)
	}

	ghClient := github.New(github.Options{
		Owner: cfg.GitHubOwner,
		Repo:  cfg.GitHubRepo,
		Token: cfg.GitHubToken,
	})

	bus := eventbus.New()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	worker := journal.NewEmbedWorker(db, adapter, logger)
	go worker.Start(workerCtx, bus)

	srvConfig := server.DefaultConfig()
	if cfg.HTTPAddr != "" {
		srvConfig.Addr = cfg.HTTPAddr
	}
	srv := server.NewServer(api.Deps{
		DB:      db,
		Bus:     bus,
		Adapter: adapter,
		GitHub:  ghClient,
	}, srvConfig, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(context.Background())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("signal received", "signal", sig.String())
	}

	stopWorker()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
