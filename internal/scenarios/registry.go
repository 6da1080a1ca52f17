// Package scenarios selects how /query is served: straight from the
// coordinator or through the result cache.
package scenarios

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mohammed-shakir/incident-explorer/internal/cache"
	"github.com/mohammed-shakir/incident-explorer/internal/core/config"
	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
	"github.com/mohammed-shakir/incident-explorer/internal/core/observability"
	"github.com/mohammed-shakir/incident-explorer/internal/core/router"
	"github.com/mohammed-shakir/incident-explorer/internal/filter"
	"github.com/mohammed-shakir/incident-explorer/internal/queryevents"
)

// Runner is satisfied by *query.Coordinator.
type Runner interface {
	RunQuery(p filter.Params) (model.QueryResult, error)
}

type Deps struct {
	Runner Runner
	// Events is optional.
	Events queryevents.Sink
	// Shared is an optional second cache tier behind the local one.
	Shared cache.Tier
}

type Factory func(cfg config.Config, logger *slog.Logger, deps Deps) (router.QueryHandler, error)

var reg = map[string]Factory{}

func Register(name string, f Factory) {
	reg[name] = f
}

func New(name string, cfg config.Config, logger *slog.Logger, deps Deps) (router.QueryHandler, error) {
	if deps.Runner == nil {
		return nil, fmt.Errorf("scenario %q: nil runner", name)
	}
	if f, ok := reg[name]; ok {
		return f(cfg, logger, deps)
	}
	if f, ok := reg["baseline"]; ok {
		logger.Warn("unknown scenario; falling back to baseline", "scenario", name)
		return f(cfg, logger, deps)
	}
	return nil, fmt.Errorf("no factory for scenario %q and no baseline registered", name)
}

// Compute runs one query and records its duration and projection sizes.
func Compute(r Runner, p filter.Params) (model.QueryResult, error) {
	start := time.Now()
	res, err := r.RunQuery(p)
	if err != nil {
		observability.IncQueryError("run")
		return model.QueryResult{}, fmt.Errorf("run query: %w", err)
	}
	observability.ObserveQuery(time.Since(start).Seconds(), len(res.Points), len(res.CauseTable), len(res.MonthlyTable))
	return res, nil
}

// Publish is a no-op when no sink is configured.
func Publish(s queryevents.Sink, ev queryevents.Event) {
	if s != nil {
		s.Publish(ev)
	}
}
