package baseline

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mohammed-shakir/incident-explorer/internal/cache/keys"
	"github.com/mohammed-shakir/incident-explorer/internal/core/config"
	"github.com/mohammed-shakir/incident-explorer/internal/core/router"
	"github.com/mohammed-shakir/incident-explorer/internal/filter"
	"github.com/mohammed-shakir/incident-explorer/internal/queryevents"
	"github.com/mohammed-shakir/incident-explorer/internal/scenarios"
)

type Engine struct {
	logger *slog.Logger
	runner scenarios.Runner
	events queryevents.Sink
	res    int
}

func init() {
	scenarios.Register("baseline", newBaseline)
}

func newBaseline(cfg config.Config, logger *slog.Logger, deps scenarios.Deps) (router.QueryHandler, error) {
	return &Engine{
		logger: logger,
		runner: deps.Runner,
		events: deps.Events,
		res:    cfg.H3Res,
	}, nil
}

// HandleQuery recomputes every projection on each request.
func (e *Engine) HandleQuery(ctx context.Context, w http.ResponseWriter, _ *http.Request, p filter.Params) {
	res, err := scenarios.Compute(e.runner, p)
	if err != nil {
		e.logger.ErrorContext(ctx, "query failed", "err", err)
		router.WriteError(w, err)
		return
	}
	e.logger.DebugContext(ctx, "query served",
		"year", p.TargetYear,
		"points", len(res.Points),
		"cause_rows", len(res.CauseTable),
		"month_rows", len(res.MonthlyTable))

	if e.events != nil {
		scenarios.Publish(e.events, queryevents.FromQuery(keys.Key(p, e.res), p, res, "baseline", "compute"))
	}
	if err := router.WriteJSON(w, http.StatusOK, res); err != nil {
		e.logger.ErrorContext(ctx, "write result", "err", err)
	}
}
