// Package reports implements the cache-aside report layer: probe the local
// mirror, hydrate it from upstream on a miss, then aggregate or list from the
// mirror with hybrid pagination.
package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ronitphilip/zoom-backend/internal/ingest"
	"github.com/ronitphilip/zoom-backend/internal/metrics"
	"github.com/ronitphilip/zoom-backend/internal/models"
	"github.com/ronitphilip/zoom-backend/internal/pagination"
	"github.com/ronitphilip/zoom-backend/internal/repository"
)

// ErrValidation marks a rejected request; handlers map it to 400.
var ErrValidation = errors.New("invalid request")

const defaultPageSize = 50

// Service wires the presence probe, the ingestion engine and the aggregate
// queries into the report operations.
type Service struct {
	store  repository.Store
	engine *ingest.Engine
	log    *slog.Logger
}

func NewService(store repository.Store, engine *ingest.Engine, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, engine: engine, log: log}
}

// Request is the shared report request shape.
type Request struct {
	Window          models.Window
	Grouping        string
	IntervalMinutes int
	Count           int
	Page            int
	NextPageToken   string
	Channel         string
	Filter          repository.EngagementFilter
}

// Result is the shared report response envelope.
type Result struct {
	Reports       any    `json:"reports"`
	NextPageToken string `json:"nextPageToken,omitempty"`
	TotalRecords  int    `json:"totalRecords"`
}

func (r *Request) normalize() {
	if r.Count <= 0 {
		r.Count = defaultPageSize
	}
	if r.Page <= 0 {
		r.Page = 1
	}
	if pagination.IsLocalToken(r.NextPageToken) {
		r.Page = pagination.LocalPage(r.NextPageToken)
	}
}

func (r *Request) validateWindow() error {
	if r.Window.From == "" || r.Window.To == "" {
		return fmt.Errorf("%w: from and to are required", ErrValidation)
	}
	if r.Window.From > r.Window.To {
		return fmt.Errorf("%w: from must not be after to", ErrValidation)
	}
	return nil
}

func (r *Request) bucketing() (repository.Bucketing, error) {
	switch r.Grouping {
	case "", "daily":
		return repository.Bucketing{Grouping: repository.GroupingDaily}, nil
	case "interval":
		b := repository.Bucketing{
			Grouping:        repository.GroupingInterval,
			IntervalMinutes: r.IntervalMinutes,
		}
		if !repository.ValidBucketing(b) {
			return b, fmt.Errorf("%w: interval must be 15, 30, 60 or 1440 minutes", ErrValidation)
		}
		return b, nil
	}
	return repository.Bucketing{}, fmt.Errorf("%w: grouping must be daily or interval", ErrValidation)
}

// QueueReport returns bucketed aggregates grouped by queue.
func (s *Service) QueueReport(ctx context.Context, req Request) (*Result, error) {
	return s.aggregateReport(ctx, "queue", req, repository.DimensionQueue)
}

// FlowReport returns bucketed aggregates grouped by flow.
func (s *Service) FlowReport(ctx context.Context, req Request) (*Result, error) {
	return s.aggregateReport(ctx, "flow", req, repository.DimensionFlow)
}

func (s *Service) aggregateReport(ctx context.Context, name string, req Request, dim repository.Dimension) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.ReportDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	req.normalize()
	if err := req.validateWindow(); err != nil {
		return nil, err
	}
	b, err := req.bucketing()
	if err != nil {
		return nil, err
	}

	if err := s.ensureEngagements(ctx, req.Window, req.Filter); err != nil {
		return nil, err
	}

	total, err := s.store.CountAggregateGroups(ctx, req.Window, req.Filter, b, dim)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.AggregateEngagements(ctx, req.Window, req.Filter, b, dim, req.Count, (req.Page-1)*req.Count)
	if err != nil {
		return nil, err
	}

	out := make([]models.BucketedReportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, formatBucket(r))
	}
	next := pagination.NextToken(req.Page, req.Count, total)
	return &Result{Reports: out, NextPageToken: next, TotalRecords: total}, nil
}

// formatBucket turns a raw grouped tuple into the presentation row,
// computing the percentage fields with one decimal place and "0.0" when
// nothing was offered.
func formatBucket(r repository.AggregateRow) models.BucketedReportRow {
	row := models.BucketedReportRow{
		Date:                r.Bucket,
		GroupID:             r.GroupID,
		GroupName:           r.GroupName,
		TotalOffered:        r.Offered,
		TotalAnswered:       r.Answered,
		AbandonedCalls:      r.Abandoned,
		ACDTime:             r.HandlingSum,
		ACWTime:             r.WrapUpSum,
		AgentRingTime:       r.WaitingSum,
		AvgHandleTime:       r.AvgHandle,
		AvgACWTime:          r.AvgWrapUp,
		MaxHandleTime:       r.MaxHandle,
		TransferCount:       r.TransferSum,
		VoiceCalls:          r.Voice,
		DigitalInteractions: r.Digital,
		InboundCalls:        r.Inbound,
		OutboundCalls:       r.Outbound,
		SuccessPercentage:   "0.0",
		AbandonPercentage:   "0.0",
	}
	if r.Offered > 0 {
		row.SuccessPercentage = fmt.Sprintf("%.1f", float64(r.Answered)/float64(r.Offered)*100)
		row.AbandonPercentage = fmt.Sprintf("%.1f", float64(r.Abandoned)/float64(r.Offered)*100)
	}
	return row
}

// ensureEngagements is the cache-presence check: a LIMIT-1 probe with the
// report's own predicate, followed by a full drain on a miss. A window with
// any cached row is treated as hydrated.
func (s *Service) ensureEngagements(ctx context.Context, w models.Window, f repository.EngagementFilter) error {
	has, err := s.store.HasEngagements(ctx, w, f)
	if err != nil {
		return err
	}
	if has {
		metrics.CacheProbes.WithLabelValues(string(models.DatasetEngagements), "hit").Inc()
		return nil
	}
	metrics.CacheProbes.WithLabelValues(string(models.DatasetEngagements), "miss").Inc()
	_, err = s.engine.Drain(ctx, models.DatasetEngagements, w)
	return err
}

// AbandonedReport lists interactions that waited in queue and were never
// handled.
func (s *Service) AbandonedReport(ctx context.Context, req Request) (*Result, error) {
	req.Filter.AbandonedOnly = true
	req.Filter.WaitedOnly = true
	return s.abandonedListing(ctx, "abandoned", req, false)
}

// AgentAbandonedReport lists abandoned interactions that had reached an
// agent, including the agent identity on each row.
func (s *Service) AgentAbandonedReport(ctx context.Context, req Request) (*Result, error) {
	req.Filter.AbandonedOnly = true
	return s.abandonedListing(ctx, "agent_abandoned", req, true)
}

func (s *Service) abandonedListing(ctx context.Context, name string, req Request, withAgent bool) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.ReportDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	req.normalize()
	if err := req.validateWindow(); err != nil {
		return nil, err
	}
	if err := s.ensureEngagements(ctx, req.Window, req.Filter); err != nil {
		return nil, err
	}

	total, err := s.store.CountEngagements(ctx, req.Window, req.Filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListEngagements(ctx, req.Window, req.Filter, req.Count, (req.Page-1)*req.Count)
	if err != nil {
		return nil, err
	}

	out := make([]models.AbandonedCall, 0, len(rows))
	for _, r := range rows {
		call := models.AbandonedCall{
			StartTime:           r.StartTime,
			EngagementID:        r.EngagementID,
			Direction:           r.Direction,
			ConsumerNumber:      r.ConsumerNumber,
			ConsumerID:          r.ConsumerID,
			ConsumerDisplayName: r.ConsumerDisplayName,
			QueueID:             r.QueueID,
			QueueName:           r.QueueName,
			Channel:             r.Channel,
			QueueWaitType:       r.QueueWaitType,
			WaitingDuration:     r.WaitingDuration,
			VoiceMail:           r.VoiceMail,
			TransferCount:       r.TransferCount,
		}
		if withAgent {
			call.AgentID = r.UserID
			call.AgentName = r.DisplayName
		}
		out = append(out, call)
	}
	next := pagination.NextToken(req.Page, req.Count, total)
	return &Result{Reports: out, NextPageToken: next, TotalRecords: total}, nil
}

// EngagementListing serves the raw flattened listing with hybrid pagination.
// An upstream cursor token continues the upstream fetch and passes the next
// cursor through; otherwise the listing is served from the local mirror with
// synthetic page markers, after a single-page lazy fill when the window has
// nothing cached yet.
func (s *Service) EngagementListing(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.ReportDuration.WithLabelValues("engagements").Observe(time.Since(start).Seconds())
	}()

	req.normalize()
	if err := req.validateWindow(); err != nil {
		return nil, err
	}

	if req.NextPageToken != "" && !pagination.IsLocalToken(req.NextPageToken) {
		return s.serveUpstreamPage(ctx, req, req.NextPageToken)
	}

	has, err := s.store.HasEngagements(ctx, req.Window, req.Filter)
	if err != nil {
		return nil, err
	}
	if !has {
		metrics.CacheProbes.WithLabelValues(string(models.DatasetEngagements), "miss").Inc()
		return s.serveUpstreamPage(ctx, req, "")
	}
	metrics.CacheProbes.WithLabelValues(string(models.DatasetEngagements), "hit").Inc()

	total, err := s.store.CountEngagements(ctx, req.Window, req.Filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListEngagements(ctx, req.Window, req.Filter, req.Count, (req.Page-1)*req.Count)
	if err != nil {
		return nil, err
	}
	next := pagination.NextToken(req.Page, req.Count, total)
	return &Result{Reports: rows, NextPageToken: next, TotalRecords: total}, nil
}

// EngagementDetails lists the per-agent engagement detail rows, optionally
// narrowed by channel and agent name. Served cache-aside from the local
// mirror: a probe miss drains the window before listing.
func (s *Service) EngagementDetails(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.ReportDuration.WithLabelValues("engagement_details").Observe(time.Since(start).Seconds())
	}()

	req.normalize()
	if err := req.validateWindow(); err != nil {
		return nil, err
	}
	f := repository.DetailFilter{Channel: req.Channel, AgentName: req.Filter.AgentName}
	if err := s.ensureEngagementDetails(ctx, req.Window, f); err != nil {
		return nil, err
	}

	total, err := s.store.CountEngagementDetails(ctx, req.Window, f)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListEngagementDetails(ctx, req.Window, f, req.Count, (req.Page-1)*req.Count)
	if err != nil {
		return nil, err
	}
	next := pagination.NextToken(req.Page, req.Count, total)
	return &Result{Reports: rows, NextPageToken: next, TotalRecords: total}, nil
}

func (s *Service) ensureEngagementDetails(ctx context.Context, w models.Window, f repository.DetailFilter) error {
	has, err := s.store.HasEngagementDetails(ctx, w, f)
	if err != nil {
		return err
	}
	if has {
		metrics.CacheProbes.WithLabelValues(string(models.DatasetEngagementDetail), "hit").Inc()
		return nil
	}
	metrics.CacheProbes.WithLabelValues(string(models.DatasetEngagementDetail), "miss").Inc()
	_, err = s.engine.Drain(ctx, models.DatasetEngagementDetail, w)
	return err
}

// serveUpstreamPage does a single-page lazy fill and serves the fetched rows
// directly, passing the upstream cursor through for the next call.
func (s *Service) serveUpstreamPage(ctx context.Context, req Request, cursor string) (*Result, error) {
	fill, err := s.engine.FillPage(ctx, models.DatasetEngagements, req.Window, cursor)
	if err != nil {
		return nil, err
	}
	total := fill.TotalRecords
	if total == 0 {
		total = len(fill.Engagements)
	}
	return &Result{
		Reports:       fill.Engagements,
		NextPageToken: fill.NextPageToken,
		TotalRecords:  total,
	}, nil
}
