// =============================================================================
// Sales Report Bot - Application Wiring
// =============================================================================
//
// This file assembles the components shared by every transport command:
//
//   catalog ──> collector.Machine <── session.Store
//                     │
//   transport ──> bot.Dispatcher ──> bot.Handler ──> reporter.Reporter
//       ▲                                                   │
//       └──────────────────── replies, documents ───────────┘
//
// The transport both produces events (Run) and delivers replies (Sender).
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ginjaninja78/sales-report-bot/internal/bot"
	"github.com/ginjaninja78/sales-report-bot/internal/catalog"
	"github.com/ginjaninja78/sales-report-bot/internal/collector"
	"github.com/ginjaninja78/sales-report-bot/internal/config"
	"github.com/ginjaninja78/sales-report-bot/internal/metrics"
	"github.com/ginjaninja78/sales-report-bot/internal/reporter"
	"github.com/ginjaninja78/sales-report-bot/internal/session"
	"github.com/ginjaninja78/sales-report-bot/pkg/utils"
)

// staleSpoolAge is the age after which leftover spooled workbooks are
// removed at startup.
const staleSpoolAge = time.Hour

// transport is implemented by every inbound/outbound channel.
type transport interface {
	bot.Sender
	Run(ctx context.Context, submit func(context.Context, bot.Event) error) error
}

// app holds the transport-independent components.
type app struct {
	cfg      *config.MainConfig
	catalog  *catalog.Catalog
	store    *session.Store
	metrics  *metrics.Metrics
	machine  *collector.Machine
	location *time.Location
	logger   *slog.Logger
}

// newApp loads the catalog and builds the collection machine.
func newApp(cfg *config.MainConfig) (*app, error) {
	logger := slog.Default()

	cat, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store := session.NewStore()
	m := metrics.New()

	machine := collector.New(cat, store,
		collector.WithLogger(logger),
		collector.WithMetrics(m),
		collector.WithCurrency(cfg.Export.Currency),
	)

	logger.Info("catalog loaded",
		"source", catalogSource(cfg.Catalog.File),
		"products", cat.Len(),
		"exchange", cat.ExchangeCount(),
	)

	return &app{
		cfg:      cfg,
		catalog:  cat,
		store:    store,
		metrics:  m,
		machine:  machine,
		location: loc,
		logger:   logger,
	}, nil
}

// run serves tr until its Run returns, then drains the dispatcher.
func (a *app) run(ctx context.Context, tr transport) error {
	if dir := a.cfg.Export.SpoolDir; dir != "" {
		spool := utils.NewSpool(dir)
		if err := spool.EnsureDir(); err != nil {
			return err
		}
		removed, err := spool.CleanStale(staleSpoolAge)
		if err != nil {
			a.logger.Warn("failed to clean spool", "dir", dir, "error", err)
		} else if removed > 0 {
			a.logger.Info("removed stale spooled reports", "dir", dir, "count", removed)
		}
	}

	if addr := a.cfg.Metrics.Addr; addr != "" {
		go func() {
			if err := a.metrics.Serve(ctx, addr, a.logger); err != nil {
				a.logger.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	rep := reporter.New(tr, reporter.Options{
		Currency: a.cfg.Export.Currency,
		Location: a.location,
		SpoolDir: a.cfg.Export.SpoolDir,
		Logger:   a.logger,
		Metrics:  a.metrics,
	})

	handler := bot.NewHandler(a.machine, tr, rep, a.logger)
	dispatcher := bot.NewDispatcher(handler, a.cfg.MaxConcurrency, a.logger)

	dispatcher.Start(ctx)
	err := tr.Run(ctx, dispatcher.Submit)
	dispatcher.Stop()

	if n := a.store.Len(); n > 0 {
		a.logger.Info("unfinished sessions discarded", "count", n)
	}
	return err
}

func catalogSource(file string) string {
	if file == "" {
		return "built-in"
	}
	return file
}
