// Package repository provides the relational store for mirrored analytics
// records and the grouped, bucketed aggregate queries built on them.
package repository

import (
	"context"
	"errors"

	"github.com/ronitphilip/zoom-backend/internal/models"
)

var (
	// ErrNotFound marks a missing row (teams lookups).
	ErrNotFound = errors.New("not found")

	// ErrStorage marks a failed bulk storage operation.
	ErrStorage = errors.New("storage operation failed")
)

// Grouping selects how report buckets are computed.
type Grouping string

const (
	GroupingDaily    Grouping = "daily"
	GroupingInterval Grouping = "interval"
)

// Bucketing describes the time-truncation applied to report rows.
// IntervalMinutes is only consulted when Grouping is GroupingInterval and
// must be 15, 30, 60 or 1440 (a daily alias).
type Bucketing struct {
	Grouping        Grouping
	IntervalMinutes int
}

// Dimension selects the grouping key of an aggregate report.
type Dimension string

const (
	DimensionQueue Dimension = "queue"
	DimensionFlow  Dimension = "flow"
	DimensionAgent Dimension = "agent"
)

// EngagementFilter narrows engagement predicates. Zero values mean "no
// constraint". The same filter drives existence probes, listings, deletes
// and aggregates so the cache-presence probe always matches the read.
type EngagementFilter struct {
	QueueID       string
	QueueName     string
	FlowID        string
	FlowName      string
	AgentName     string
	Direction     string
	AbandonedOnly bool // handling_duration = 0
	WaitedOnly    bool // waiting_duration > 0
}

// DetailFilter narrows engagement-detail predicates. The same filter drives
// the presence probe and the listing so the probe always matches the read.
type DetailFilter struct {
	Channel   string
	AgentName string
}

// AggregateRow is one grouped bucket before presentation formatting.
type AggregateRow struct {
	Bucket      string
	GroupID     string
	GroupName   string
	Offered     int
	Answered    int
	Abandoned   int
	HandlingSum int
	WrapUpSum   int
	WaitingSum  int
	AvgHandle   float64
	AvgWrapUp   float64
	MaxHandle   int
	TransferSum int
	Voice       int
	Digital     int
	Inbound     int
	Outbound    int
}

// Store is the persistence contract for the reporting core.
type Store interface {
	// Engagements (agent_queue table).
	UpsertEngagements(ctx context.Context, rows []models.EngagementRecord) error
	DeleteEngagements(ctx context.Context, w models.Window, f EngagementFilter) error
	HasEngagements(ctx context.Context, w models.Window, f EngagementFilter) (bool, error)
	CountEngagements(ctx context.Context, w models.Window, f EngagementFilter) (int, error)
	ListEngagements(ctx context.Context, w models.Window, f EngagementFilter, limit, offset int) ([]models.EngagementRecord, error)
	AggregateEngagements(ctx context.Context, w models.Window, f EngagementFilter, b Bucketing, dim Dimension, limit, offset int) ([]AggregateRow, error)
	CountAggregateGroups(ctx context.Context, w models.Window, f EngagementFilter, b Bucketing, dim Dimension) (int, error)

	// Agent performance.
	UpsertPerformance(ctx context.Context, rows []models.PerformanceRecord) error
	DeletePerformance(ctx context.Context, w models.Window) error
	HasPerformance(ctx context.Context, w models.Window) (bool, error)
	ListPerformance(ctx context.Context, w models.Window) ([]models.PerformanceRecord, error)

	// Agent timecards.
	UpsertTimecards(ctx context.Context, rows []models.TimecardRecord) error
	DeleteTimecards(ctx context.Context, w models.Window) error
	HasTimecards(ctx context.Context, w models.Window) (bool, error)
	ListTimecards(ctx context.Context, w models.Window) ([]models.TimecardRecord, error)

	// Engagement details.
	UpsertEngagementDetails(ctx context.Context, rows []models.EngagementDetailRecord) error
	DeleteEngagementDetails(ctx context.Context, w models.Window) error
	HasEngagementDetails(ctx context.Context, w models.Window, f DetailFilter) (bool, error)
	CountEngagementDetails(ctx context.Context, w models.Window, f DetailFilter) (int, error)
	ListEngagementDetails(ctx context.Context, w models.Window, f DetailFilter, limit, offset int) ([]models.EngagementDetailRecord, error)

	// Teams (managed externally, read by group summaries).
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeam(ctx context.Context, id int) (*models.Team, error)
	CreateTeam(ctx context.Context, name string, members []string) (*models.Team, error)
	UpdateTeam(ctx context.Context, id int, name *string, members *[]string) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int) error
}
