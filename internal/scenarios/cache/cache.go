package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	cacheiface "github.com/mohammed-shakir/incident-explorer/internal/cache"
	"github.com/mohammed-shakir/incident-explorer/internal/cache/keys"
	"github.com/mohammed-shakir/incident-explorer/internal/cache/local"
	"github.com/mohammed-shakir/incident-explorer/internal/core/config"
	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
	"github.com/mohammed-shakir/incident-explorer/internal/core/observability"
	"github.com/mohammed-shakir/incident-explorer/internal/core/router"
	"github.com/mohammed-shakir/incident-explorer/internal/filter"
	mylog "github.com/mohammed-shakir/incident-explorer/internal/logger"
	"github.com/mohammed-shakir/incident-explorer/internal/queryevents"
	"github.com/mohammed-shakir/incident-explorer/internal/scenarios"
)

// Engine serves whole query results from a tiered cache. The dataset never
// changes while the process runs, so a cached result is only evicted by TTL
// or by LRU pressure, never invalidated.
type Engine struct {
	logger    *slog.Logger
	runner    scenarios.Runner
	events    queryevents.Sink
	tiers     []cacheiface.Tier
	res       int
	ttl       time.Duration
	opTimeout time.Duration
}

func init() {
	scenarios.Register("cache", newCache)
}

// creates cache scenario query handler
func newCache(cfg config.Config, logger *slog.Logger, deps scenarios.Deps) (router.QueryHandler, error) {
	lt, err := local.New(cfg.Cache.LocalSize)
	if err != nil {
		return nil, fmt.Errorf("local tier: %w", err)
	}
	tiers := []cacheiface.Tier{lt}
	if deps.Shared != nil {
		tiers = append(tiers, deps.Shared)
	}
	return New(logger, deps.Runner, deps.Events, tiers, cfg.H3Res, cfg.Cache.TTL, cfg.Cache.OpTimeout), nil
}

// New checks tiers in order; the first is the fastest.
func New(
	logger *slog.Logger,
	runner scenarios.Runner,
	events queryevents.Sink,
	tiers []cacheiface.Tier,
	res int,
	ttl, opTimeout time.Duration,
) *Engine {
	return &Engine{
		logger:    logger,
		runner:    runner,
		events:    events,
		tiers:     tiers,
		res:       res,
		ttl:       ttl,
		opTimeout: opTimeout,
	}
}

// returns context with timeout if set
func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opTimeout)
}

func (e *Engine) HandleQuery(ctx context.Context, w http.ResponseWriter, _ *http.Request, p filter.Params) {
	key := keys.Key(p, e.res)
	ctx = mylog.WithQueryKey(ctx, key)

	if body, idx, ok := e.lookup(ctx, key); ok {
		tier := e.tiers[idx].Name()
		ctx = mylog.WithCacheTier(ctx, tier)
		e.backfill(ctx, key, body, idx)
		e.logger.DebugContext(ctx, "cache hit")
		if e.events != nil {
			e.publishCached(ctx, key, p, body, tier)
		}
		writeBody(w, body, "hit-"+tier)
		return
	}

	res, err := scenarios.Compute(e.runner, p)
	if err != nil {
		e.logger.ErrorContext(ctx, "query failed", "err", err)
		router.WriteError(w, err)
		return
	}
	body, err := json.Marshal(res)
	if err != nil {
		e.logger.ErrorContext(ctx, "encode result", "err", err)
		router.WriteError(w, err)
		return
	}
	e.backfill(ctx, key, body, len(e.tiers))
	e.logger.DebugContext(ctx, "cache miss; computed", "points", len(res.Points))

	if e.events != nil {
		scenarios.Publish(e.events, queryevents.FromQuery(key, p, res, "cache", "compute"))
	}
	writeBody(w, body, "miss")
}

// lookup returns the first tier holding key. A failing tier counts as a miss
// and the next one is tried.
func (e *Engine) lookup(ctx context.Context, key string) ([]byte, int, bool) {
	for i, t := range e.tiers {
		tctx, cancel := e.withTimeout(ctx)
		body, ok, err := t.Get(tctx, key)
		cancel()
		if err != nil {
			e.logger.WarnContext(ctx, "cache get failed", "tier", t.Name(), "err", err)
		}
		if ok && err == nil {
			observability.IncCacheHit(t.Name())
			return body, i, true
		}
		observability.IncCacheMiss(t.Name())
	}
	return nil, 0, false
}

// backfill writes body into every tier before upto.
func (e *Engine) backfill(ctx context.Context, key string, body []byte, upto int) {
	for _, t := range e.tiers[:upto] {
		tctx, cancel := e.withTimeout(ctx)
		if err := t.Set(tctx, key, body, e.ttl); err != nil {
			e.logger.WarnContext(ctx, "cache set failed", "tier", t.Name(), "err", err)
		}
		cancel()
	}
}

func (e *Engine) publishCached(ctx context.Context, key string, p filter.Params, body []byte, tier string) {
	var res model.QueryResult
	if err := json.Unmarshal(body, &res); err != nil {
		e.logger.WarnContext(ctx, "decode cached result", "err", err)
		return
	}
	scenarios.Publish(e.events, queryevents.FromQuery(key, p, res, "cache", tier))
}

func writeBody(w http.ResponseWriter, body []byte, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", status)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
