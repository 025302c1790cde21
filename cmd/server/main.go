package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/polyrec/config"
	"github.com/alejandrodnm/polyrec/internal/adapters/httpapi"
	"github.com/alejandrodnm/polyrec/internal/adapters/notify"
	"github.com/alejandrodnm/polyrec/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyrec/internal/adapters/storage"
	"github.com/alejandrodnm/polyrec/internal/application"
	"github.com/alejandrodnm/polyrec/internal/domain"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	recommend := flag.String("recommend", "", "one-shot: ingest the wallet, score markets, print the table and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	client := polymarket.NewClient(cfg.API.DataBase, cfg.API.GammaBase)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	svc := application.New(application.Config{
		ActivityLimit: cfg.Recommender.ActivityLimit,
		Weights:       weightsFromConfig(cfg.Recommender.Weights),
	}, store, client, client)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *recommend != "" {
		runOnce(ctx, svc, *recommend)
		return
	}

	srv := httpapi.NewServer(httpapi.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.ReadTimeout(),
		WriteTimeout:   cfg.WriteTimeout(),
		IdleTimeout:    cfg.IdleTimeout(),
		RequestTimeout: cfg.RequestTimeout(),
	}, svc, polymarket.NormalizeAddress)

	slog.Info("polyrec starting",
		"config", *configPath,
		"addr", cfg.Server.Host,
		"port", cfg.Server.Port,
		"dsn", cfg.Storage.DSN,
	)

	if err := srv.Run(ctx); err != nil {
		slog.Error("server exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("polyrec stopped cleanly")
}

// runOnce refresca el catálogo, ingesta la wallet y muestra las
// recomendaciones por consola.
func runOnce(ctx context.Context, svc *application.Service, wallet string) {
	normalized, err := polymarket.NormalizeAddress(wallet)
	if err != nil {
		slog.Error("invalid wallet", "err", err, "wallet", wallet)
		os.Exit(1)
	}

	indexed, err := svc.RefreshMarkets(ctx)
	if err != nil {
		slog.Error("failed to index markets", "err", err)
		os.Exit(1)
	}
	slog.Info("market catalog indexed", "markets", indexed)

	res, err := svc.Ingest(ctx, normalized)
	if err != nil {
		slog.Error("ingest failed", "err", err, "wallet", normalized)
		os.Exit(1)
	}
	slog.Info("wallet ingested",
		"wallet", res.ResolvedWallet,
		"positions", res.Positions,
	)

	recs, err := svc.Recommend(ctx, normalized)
	if err != nil {
		slog.Error("recommend failed", "err", err, "wallet", normalized)
		os.Exit(1)
	}

	if err := notify.NewConsole().Notify(ctx, recs); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

func weightsFromConfig(w config.WeightsConfig) domain.Weights {
	return domain.Weights{
		TagSimilarity: w.TagSimilarity,
		CategoryMatch: w.CategoryMatch,
		HorizonMatch:  w.HorizonMatch,
		RiskMatch:     w.RiskMatch,
		Liquidity:     w.Liquidity,
		Momentum:      w.Momentum,
		Novelty:       w.Novelty,
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
