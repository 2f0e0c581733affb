package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Holic101/hyperliquid-dca-bot/internal/config"
	"github.com/Holic101/hyperliquid-dca-bot/internal/executor"
	"github.com/Holic101/hyperliquid-dca-bot/internal/feed"
	"github.com/Holic101/hyperliquid-dca-bot/internal/ledger"
	"github.com/Holic101/hyperliquid-dca-bot/internal/model"
	"github.com/Holic101/hyperliquid-dca-bot/internal/notifier"
	"github.com/Holic101/hyperliquid-dca-bot/internal/strategy"
	"github.com/Holic101/hyperliquid-dca-bot/internal/telemetry"
)

// AssetState is the scheduler's view of one asset.
type AssetState int

const (
	StateIdle AssetState = iota
	StateDue
	StateExecuting
	StateCooldown
)

func (s AssetState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDue:
		return "due"
	case StateExecuting:
		return "executing"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// Notifier delivers human-readable event messages.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Scheduler drives the periodic buy cycle. Each cron tick evaluates every
// enabled asset, runs due ones through the decision pipeline and executor
// with bounded concurrency, and isolates per-asset failures.
type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	prices   feed.Source
	exec     *executor.Executor
	ledger   ledger.Ledger
	notifier Notifier
	metrics  *telemetry.Metrics
	log      zerolog.Logger
	now      func() time.Time

	mu     sync.Mutex
	states map[string]AssetState
}

func New(cfg *config.Config, prices feed.Source, exec *executor.Executor, led ledger.Ledger, notifier Notifier, metrics *telemetry.Metrics, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		cfg:      cfg,
		prices:   prices,
		exec:     exec,
		ledger:   led,
		notifier: notifier,
		metrics:  metrics,
		log:      log.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
		states:   make(map[string]AssetState),
	}
}

// Start registers the cycle on the configured cron expression and starts
// the clock.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule.Cron, func() { s.RunCycle(ctx) }); err != nil {
		return fmt.Errorf("register cycle: %w", err)
	}
	s.cron.Start()
	s.log.Info().Str("cron", s.cfg.Schedule.Cron).Msg("scheduler started")
	return nil
}

// Stop halts the cron clock and waits for in-flight cycle work to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// State returns the current state of one asset.
func (s *Scheduler) State(symbol string) AssetState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[symbol]
}

// IsDue reports whether the asset's configured interval has elapsed since
// its last filled trade. Skipped and failed outcomes never reset the
// clock, and an asset with no fill at all is immediately due.
func (s *Scheduler) IsDue(ctx context.Context, cfg config.AssetConfig) (bool, error) {
	last, err := s.ledger.LastFilled(ctx, cfg.Symbol)
	if errors.Is(err, ledger.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("last filled for %s: %w", cfg.Symbol, err)
	}
	return s.now().Sub(last.Timestamp) >= cfg.Frequency.Interval(), nil
}

// RunCycle evaluates all enabled assets once. Due assets are executed
// concurrently up to the configured limit; one asset's failure never
// prevents the others from trading. Cycles may overlap (cron, run-on-start
// and chat triggers are independent); each asset is claimed atomically so
// at most one execution per asset is ever in flight.
func (s *Scheduler) RunCycle(ctx context.Context) {
	start := s.now()
	assets := s.cfg.EnabledAssets()
	s.log.Info().Int("assets", len(assets)).Msg("cycle started")

	var due []config.AssetConfig
	for _, a := range assets {
		if !s.claim(a.Symbol) {
			s.log.Warn().Str("asset", a.Symbol).Msg("already claimed by another cycle, skipping")
			continue
		}
		ok, err := s.IsDue(ctx, a)
		if err != nil {
			s.log.Error().Err(err).Str("asset", a.Symbol).Msg("due check failed")
			s.setState(a.Symbol, StateIdle)
			continue
		}
		if !ok {
			s.setState(a.Symbol, StateIdle)
			continue
		}
		due = append(due, a)
	}

	var (
		outMu    sync.Mutex
		outcomes []*model.TradeRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Schedule.MaxConcurrent)
	for _, a := range due {
		a := a
		g.Go(func() error {
			if rec := s.runAsset(gctx, a); rec != nil {
				outMu.Lock()
				outcomes = append(outcomes, rec)
				outMu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	// Cooldown is transient; assets are idle again once the cycle closes.
	for _, a := range due {
		s.setState(a.Symbol, StateIdle)
	}

	if s.metrics != nil {
		s.metrics.ObserveCycle(start, len(due))
	}
	if s.notifier != nil && len(due) > 0 {
		if err := s.notifier.Notify(ctx, notifier.FormatCycleSummary(start, outcomes)); err != nil {
			s.log.Error().Err(err).Msg("cycle summary notification failed")
		}
	}
	s.log.Info().
		Int("due", len(due)).
		Dur("elapsed", s.now().Sub(start)).
		Msg("cycle finished")
}

// claim marks the asset as selected under the state lock. It fails when
// another cycle already holds the asset in Due or Executing state, which
// keeps overlapping cycles from double-buying.
func (s *Scheduler) claim(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st := s.states[symbol]; st == StateDue || st == StateExecuting {
		return false
	}
	s.states[symbol] = StateDue
	return true
}

func (s *Scheduler) runAsset(ctx context.Context, cfg config.AssetConfig) *model.TradeRecord {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("asset", cfg.Symbol).Any("panic", r).Msg("asset execution panicked")
			s.setState(cfg.Symbol, StateIdle)
		}
	}()

	s.setState(cfg.Symbol, StateExecuting)
	defer s.setState(cfg.Symbol, StateCooldown)

	series, err := s.prices.HistoricalPrices(ctx, cfg.Symbol, LookbackDays(cfg))
	if err != nil {
		s.log.Error().Err(err).Str("asset", cfg.Symbol).Msg("historical prices unavailable")
		if s.metrics != nil {
			s.metrics.FeedErrors.WithLabelValues(s.prices.Name()).Inc()
		}
		series = nil
	}

	currentPrice := 0.0
	if p, err := s.prices.CurrentPrice(ctx, cfg.Symbol); err == nil {
		currentPrice = p
	} else if n := len(series); n > 0 {
		currentPrice = series[n-1].Price
	}

	dec := strategy.Evaluate(series, currentPrice, cfg)
	rec, err := s.exec.Execute(ctx, cfg, dec)
	if err != nil {
		s.log.Error().Err(err).Str("asset", cfg.Symbol).Msg("execution ended without fill")
	}
	if rec != nil {
		s.notifyOutcome(ctx, rec, dec)
	}
	return rec
}

func (s *Scheduler) notifyOutcome(ctx context.Context, rec *model.TradeRecord, dec *strategy.Decision) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, notifier.FormatTradeOutcome(rec, dec)); err != nil {
		s.log.Error().Err(err).Msg("notification failed")
	}
}

func (s *Scheduler) setState(symbol string, st AssetState) {
	s.mu.Lock()
	s.states[symbol] = st
	s.mu.Unlock()
}

// LookbackDays is the history depth the decision pipeline needs: the
// volatility window plus one return, the RSI seed, and the longest
// moving average all have to fit.
func LookbackDays(cfg config.AssetConfig) int {
	days := cfg.VolatilityWindow + 1
	if cfg.RSI.Enabled && cfg.RSI.Period+1 > days {
		days = cfg.RSI.Period + 1
	}
	if cfg.MADips.Enabled {
		for _, p := range cfg.MADips.Periods {
			if p > days {
				days = p
			}
		}
	}
	return days
}
