// Package ingest mirrors upstream analytics datasets into local tables.
// Reports never aggregate upstream responses directly; they read the local
// mirror, which this package fills one page or one full window at a time.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ronitphilip/zoom-backend/internal/metrics"
	"github.com/ronitphilip/zoom-backend/internal/models"
	"github.com/ronitphilip/zoom-backend/internal/repository"
	"github.com/ronitphilip/zoom-backend/internal/zoom"
)

// maxDrainPages bounds a full-window drain so a broken upstream cursor can
// never loop forever.
const maxDrainPages = 500

// Fetcher is the upstream page source.
type Fetcher interface {
	FetchPage(ctx context.Context, dataset models.Dataset, window models.Window, pageSize int, cursor string) (*zoom.Page, error)
}

// Engine pulls upstream pages, normalizes them and upserts them into the
// local store.
type Engine struct {
	fetcher  Fetcher
	store    repository.Store
	pageSize int
	log      *slog.Logger
}

func NewEngine(fetcher Fetcher, store repository.Store, pageSize int, log *slog.Logger) *Engine {
	if pageSize <= 0 {
		pageSize = 100
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{fetcher: fetcher, store: store, pageSize: pageSize, log: log}
}

// FillResult is the outcome of a single-page fill.
type FillResult struct {
	// Engagements holds the page's normalized rows when the dataset is
	// engagements, so a listing can serve them without a re-read.
	Engagements   []models.EngagementRecord
	Stored        int
	NextPageToken string
	TotalRecords  int
}

// FillPage fetches exactly one upstream page and upserts it. Fetch errors
// propagate; storage errors on this path are logged and counted but do not
// fail the fill, since the caller can still serve the fetched rows.
func (e *Engine) FillPage(ctx context.Context, dataset models.Dataset, window models.Window, cursor string) (*FillResult, error) {
	page, err := e.fetchPage(ctx, dataset, window, cursor)
	if err != nil {
		return nil, err
	}

	stored, engs, err := e.storePage(ctx, dataset, page.Records)
	if err != nil {
		metrics.IngestErrors.WithLabelValues(string(dataset)).Inc()
		e.log.Warn("page fill upsert failed",
			slog.String("dataset", string(dataset)),
			slog.String("error", err.Error()),
		)
	}
	return &FillResult{
		Engagements:   engs,
		Stored:        stored,
		NextPageToken: page.NextPageToken,
		TotalRecords:  page.TotalRecords,
	}, nil
}

// Drain fetches every page of the window and upserts them all, returning how
// many records were ingested. Pages already stored stay stored even when a
// later fetch fails; the error still propagates so the caller knows the
// window is incomplete. Storage errors abort the drain.
func (e *Engine) Drain(ctx context.Context, dataset models.Dataset, window models.Window) (int, error) {
	start := time.Now()
	defer func() {
		metrics.DrainDuration.WithLabelValues(string(dataset)).Observe(time.Since(start).Seconds())
	}()

	cursor := ""
	total := 0
	for pages := 0; pages < maxDrainPages; pages++ {
		page, err := e.fetchPage(ctx, dataset, window, cursor)
		if err != nil {
			return total, fmt.Errorf("drain %s after %d pages: %w", dataset, pages, err)
		}

		stored, _, err := e.storePage(ctx, dataset, page.Records)
		if err != nil {
			metrics.IngestErrors.WithLabelValues(string(dataset)).Inc()
			return total, fmt.Errorf("drain %s store page %d: %w", dataset, pages, err)
		}
		total += stored

		cursor = page.NextPageToken
		if cursor == "" {
			return total, nil
		}
	}
	return total, fmt.Errorf("drain %s: page limit %d exceeded", dataset, maxDrainPages)
}

// Refresh replaces the window: delete everything in it, then drain it fresh.
// Returns the ingested count. A failed delete aborts the refresh so stale
// rows are never silently mixed with new ones.
func (e *Engine) Refresh(ctx context.Context, dataset models.Dataset, window models.Window) (int, error) {
	var err error
	switch dataset {
	case models.DatasetEngagements:
		err = e.store.DeleteEngagements(ctx, window, repository.EngagementFilter{})
	case models.DatasetAgentPerformance:
		err = e.store.DeletePerformance(ctx, window)
	case models.DatasetAgentTimecard:
		err = e.store.DeleteTimecards(ctx, window)
	case models.DatasetEngagementDetail:
		err = e.store.DeleteEngagementDetails(ctx, window)
	default:
		return 0, fmt.Errorf("refresh: unknown dataset %q", dataset)
	}
	if err != nil {
		return 0, fmt.Errorf("refresh %s: clear window: %w", dataset, err)
	}
	return e.Drain(ctx, dataset, window)
}

func (e *Engine) fetchPage(ctx context.Context, dataset models.Dataset, window models.Window, cursor string) (*zoom.Page, error) {
	metrics.UpstreamRequests.WithLabelValues(string(dataset)).Inc()
	page, err := e.fetcher.FetchPage(ctx, dataset, window, e.pageSize, cursor)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues(string(dataset)).Inc()
		return nil, err
	}
	return page, nil
}

// storePage normalizes and upserts one page. Malformed records are skipped
// with a warning rather than poisoning the whole page.
func (e *Engine) storePage(ctx context.Context, dataset models.Dataset, records []json.RawMessage) (int, []models.EngagementRecord, error) {
	if len(records) == 0 {
		return 0, nil, nil
	}

	var stored int
	var engs []models.EngagementRecord
	var err error

	switch dataset {
	case models.DatasetEngagements:
		rows := make([]models.EngagementRecord, 0, len(records))
		for _, raw := range records {
			row, nerr := zoom.NormalizeEngagement(raw)
			if nerr != nil {
				e.log.Warn("skipping malformed engagement", slog.String("error", nerr.Error()))
				continue
			}
			rows = append(rows, row)
		}
		engs = rows
		stored = len(rows)
		err = e.store.UpsertEngagements(ctx, rows)

	case models.DatasetAgentPerformance:
		rows := make([]models.PerformanceRecord, 0, len(records))
		for _, raw := range records {
			row, nerr := zoom.NormalizePerformance(raw)
			if nerr != nil {
				e.log.Warn("skipping malformed performance record", slog.String("error", nerr.Error()))
				continue
			}
			rows = append(rows, row)
		}
		stored = len(rows)
		err = e.store.UpsertPerformance(ctx, rows)

	case models.DatasetAgentTimecard:
		rows := make([]models.TimecardRecord, 0, len(records))
		for _, raw := range records {
			row, nerr := zoom.NormalizeTimecard(raw)
			if nerr != nil {
				e.log.Warn("skipping malformed timecard", slog.String("error", nerr.Error()))
				continue
			}
			rows = append(rows, row)
		}
		stored = len(rows)
		err = e.store.UpsertTimecards(ctx, rows)

	case models.DatasetEngagementDetail:
		rows := make([]models.EngagementDetailRecord, 0, len(records))
		for _, raw := range records {
			row, nerr := zoom.NormalizeEngagementDetail(raw)
			if nerr != nil {
				e.log.Warn("skipping malformed engagement detail", slog.String("error", nerr.Error()))
				continue
			}
			rows = append(rows, row)
		}
		stored = len(rows)
		err = e.store.UpsertEngagementDetails(ctx, rows)

	default:
		return 0, nil, fmt.Errorf("unknown dataset %q", dataset)
	}

	if err != nil {
		return 0, engs, err
	}
	metrics.RecordsIngested.WithLabelValues(string(dataset)).Add(float64(stored))
	return stored, engs, nil
}
