package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/typer/internal/config"
	"github.com/verte-zerg/typer/internal/observability"
	"github.com/verte-zerg/typer/internal/pool"
	"github.com/verte-zerg/typer/internal/server"
	"github.com/verte-zerg/typer/internal/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pooled text generation endpoint",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	config.RegisterServerFlags(cmd.Flags())
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadServerConfig(cmd.Flags())
	if err != nil {
		return err
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.Format = cfg.LogFormat
	logCfg.File = cfg.LogFile
	logger, err := observability.NewLogger(logCfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	passages, closeStore, err := openPoolStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Warn("failed to close pool store", zap.Error(cerr))
		}
	}()

	providers, err := newProviders(ctx, cfg)
	if err != nil {
		return err
	}
	if len(providers) == 0 {
		logger.Warn("no gemini api key configured, generation requests will get 503")
	}
	chain := pool.NewChain(logger.Named("pool"), pool.DefaultRefillTimeout, providers...)
	p := pool.New(passages, chain,
		pool.WithLogger(logger.Named("pool")),
		pool.WithRetention(cfg.Retention),
	)
	handler := server.NewHandler(p, server.Config{RateLimit: cfg.RateLimit, Burst: cfg.Burst}, logger.Named("server"))

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	logger.Info("pool configured",
		zap.String("store", cfg.PoolStore),
		zap.Strings("models", cfg.Models),
		zap.Duration("retention", cfg.Retention),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(gctx, ln, handler.Routes(), logger.Named("server"))
	})
	g.Go(func() error {
		return p.Janitor(gctx, cfg.Janitor)
	})
	return g.Wait()
}

func openPoolStore(cfg config.ServerConfig) (pool.Store, func() error, error) {
	if cfg.PoolStore == config.PoolStoreSQLite {
		st, err := store.Open(cfg.PoolDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open pool db: %w", err)
		}
		return st.Pool(), st.Close, nil
	}
	return pool.NewMemoryStore(cfg.PoolKeys, cfg.Retention), func() error { return nil }, nil
}

func newProviders(ctx context.Context, cfg config.ServerConfig) ([]pool.Provider, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, nil
	}
	client, err := pool.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	return pool.GeminiProviders(client, cfg.Models...), nil
}
