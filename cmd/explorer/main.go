package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mohammed-shakir/incident-explorer/internal/cache/redisstore"
	"github.com/mohammed-shakir/incident-explorer/internal/core/config"
	"github.com/mohammed-shakir/incident-explorer/internal/core/health"
	"github.com/mohammed-shakir/incident-explorer/internal/core/observability"
	"github.com/mohammed-shakir/incident-explorer/internal/core/server"
	"github.com/mohammed-shakir/incident-explorer/internal/dataset"
	"github.com/mohammed-shakir/incident-explorer/internal/dataset/csvload"
	"github.com/mohammed-shakir/incident-explorer/internal/logger"
	h3mapper "github.com/mohammed-shakir/incident-explorer/internal/mapper/h3"
	"github.com/mohammed-shakir/incident-explorer/internal/query"
	"github.com/mohammed-shakir/incident-explorer/internal/queryevents"
	"github.com/mohammed-shakir/incident-explorer/internal/scenarios"
	_ "github.com/mohammed-shakir/incident-explorer/internal/scenarios/baseline"
	_ "github.com/mohammed-shakir/incident-explorer/internal/scenarios/cache"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// overriding scenario and data file via flags
	scenarioFlag := flag.String("scenario", "", "scenario name (baseline|cache)")
	dataFlag := flag.String("data", "", "path to the incident CSV")
	flag.Parse()

	if f := os.Getenv("ENV_FILE"); f != "" {
		if err := godotenv.Load(f); err != nil {
			fmt.Fprintf(os.Stderr, "load %s: %v\n", f, err)
			return 1
		}
	}

	cfg := config.FromEnv()
	if *scenarioFlag != "" {
		cfg.Scenario = strings.TrimSpace(*scenarioFlag)
	}
	if *dataFlag != "" {
		cfg.DataPath = *dataFlag
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Scenario:  cfg.Scenario,
		Component: "explorer",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	if err := cfg.Validate(); err != nil {
		appLog.Error("invalid configuration", "err", err)
		return 1
	}

	prov, err := observability.NewProvider(observability.BuildInfo{
		Version:   Version,
		Revision:  os.Getenv("BUILD_REVISION"),
		Branch:    os.Getenv("BUILD_BRANCH"),
		BuildDate: os.Getenv("BUILD_DATE"),
	})
	if err != nil {
		appLog.Error("metrics setup failed", "err", err)
		return 1
	}
	observability.SetScenario(cfg.Scenario)

	appLog.Info("starting explorer",
		"addr", cfg.Addr,
		"version", Version,
		"data", cfg.DataPath,
		"scenario", cfg.Scenario)

	store, err := loadStore(cfg.DataPath)
	if err != nil {
		appLog.Error("dataset load failed", "err", err)
		return 1
	}
	observability.SetDatasetRecords(store.Len())
	appLog.Info("dataset loaded", "records", store.Len(), "districts", len(store.DistinctDistricts()))

	var opts []query.Option
	if cfg.H3Res >= 0 {
		m, err := h3mapper.New(cfg.H3Res)
		if err != nil {
			appLog.Error("h3 mapper", "err", err)
			return 1
		}
		appLog.Info("h3 cells enabled", "res", m.Resolution())
		opts = append(opts, query.WithCells(m))
	}
	coord := query.New(store, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := scenarios.Deps{Runner: coord}
	ready := []health.Check{{Name: "dataset", Fn: func(context.Context) error { return nil }}}

	if cfg.Scenario == "cache" && cfg.Cache.RedisEnabled {
		rc, err := redisstore.New(ctx, cfg.Cache.RedisAddr,
			redisstore.WithPoolSize(cfg.Cache.RedisPoolSize),
			redisstore.WithDialTimeout(cfg.Cache.RedisDialTimeout),
			redisstore.WithReadTimeout(cfg.Cache.RedisReadTimeout),
			redisstore.WithWriteTimeout(cfg.Cache.RedisWriteTimeout),
		)
		if err != nil {
			appLog.Error("redis client", "err", err)
			return 1
		}
		defer closeLogged(appLog, "redis", rc.Close)
		deps.Shared = rc
		ready = append(ready, health.Check{Name: "redis", Fn: rc.Ping})
	}

	if cfg.QueryEvents.Enabled {
		pub, err := queryevents.NewPublisher(cfg.QueryEvents.Brokers, cfg.QueryEvents.Topic, cfg.QueryEvents.QueueSize, appLog)
		if err != nil {
			appLog.Error("query events publisher", "err", err)
			return 1
		}
		defer closeLogged(appLog, "query events", pub.Close)
		deps.Events = pub
	}

	// selected scenario
	handler, err := scenarios.New(cfg.Scenario, cfg, appLog, deps)
	if err != nil {
		appLog.Error("scenario setup failed", "err", err)
		return 1
	}

	err = server.Run(ctx, cfg, appLog, server.Deps{
		Query:   handler,
		Options: store,
		Metrics: prov.Handler(),
		Ready:   ready,
	})
	if err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

func loadStore(path string) (*dataset.Store, error) {
	recs, err := csvload.LoadFile(path)
	if err != nil {
		return nil, err
	}
	store, err := dataset.New(recs)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}
	return store, nil
}

func closeLogged(l *slog.Logger, what string, fn func() error) {
	if err := fn(); err != nil {
		l.Warn("close failed", "what", what, "err", err)
	}
}
