// Package scheduler runs the periodic full resync: a destructive refresh of
// a trailing window for every mirrored dataset, so the local copy converges
// with late upstream edits.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ronitphilip/zoom-backend/internal/models"
)

// Refresher is the ingestion primitive the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context, dataset models.Dataset, window models.Window) (int, error)
}

var resyncDatasets = []models.Dataset{
	models.DatasetEngagements,
	models.DatasetAgentPerformance,
	models.DatasetAgentTimecard,
	models.DatasetEngagementDetail,
}

// Config configures the resync scheduler.
type Config struct {
	Interval time.Duration
	Lookback time.Duration
}

// Scheduler periodically refreshes a trailing window.
type Scheduler struct {
	mu       sync.Mutex
	engine   Refresher
	interval time.Duration
	lookback time.Duration
	log      *slog.Logger
	now      func() time.Time

	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func New(engine Refresher, cfg Config, log *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		engine:   engine,
		interval: cfg.Interval,
		lookback: cfg.Lookback,
		log:      log,
		now:      time.Now,
	}
}

// Start begins the resync loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	s.log.Info("resync scheduler starting",
		slog.Duration("interval", s.interval),
		slog.Duration("lookback", s.lookback),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RunOnce(ctx)
			case <-s.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop halts the loop and waits for an in-flight resync to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()
	s.wg.Wait()
	s.log.Info("resync scheduler stopped")
}

// RunOnce refreshes the trailing window for every dataset. One dataset
// failing does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	end := s.now().UTC()
	window := models.Window{
		From: end.Add(-s.lookback).Format("2006-01-02T15:04:05Z"),
		To:   end.Format("2006-01-02T15:04:05Z"),
	}
	for _, dataset := range resyncDatasets {
		ingested, err := s.engine.Refresh(ctx, dataset, window)
		if err != nil {
			s.log.Error("resync failed",
				slog.String("dataset", string(dataset)),
				slog.String("from", window.From),
				slog.String("to", window.To),
				slog.String("error", err.Error()),
			)
			continue
		}
		s.log.Info("resync complete",
			slog.String("dataset", string(dataset)),
			slog.String("from", window.From),
			slog.String("to", window.To),
			slog.Int("ingested", ingested),
		)
	}
}
