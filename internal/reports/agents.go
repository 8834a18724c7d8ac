package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ronitphilip/zoom-backend/internal/metrics"
	"github.com/ronitphilip/zoom-backend/internal/models"
	"github.com/ronitphilip/zoom-backend/internal/pagination"
)

// AgentsReport merges the performance and timecard datasets into one row per
// handled interaction, decorated with the agent's work-session status for
// that day.
func (s *Service) AgentsReport(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.ReportDuration.WithLabelValues("agents").Observe(time.Since(start).Seconds())
	}()

	req.normalize()
	if err := req.validateWindow(); err != nil {
		return nil, err
	}
	if err := s.ensurePerformance(ctx, req.Window); err != nil {
		return nil, err
	}
	if err := s.ensureTimecards(ctx, req.Window); err != nil {
		return nil, err
	}

	perf, err := s.store.ListPerformance(ctx, req.Window)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.ListTimecards(ctx, req.Window)
	if err != nil {
		return nil, err
	}

	type dayKey struct{ userID, date string }
	status := make(map[dayKey]models.TimecardRecord)
	for _, c := range cards {
		status[dayKey{c.UserID, datePart(c.StartTime)}] = c
	}

	rows := make([]models.AgentReportRow, 0, len(perf))
	for _, p := range perf {
		if req.Filter.AgentName != "" && p.UserName != req.Filter.AgentName {
			continue
		}
		row := models.AgentReportRow{
			Date:                   datePart(p.StartTime),
			Time:                   timePart(p.StartTime),
			UserID:                 p.UserID,
			UserName:               p.UserName,
			Queue:                  p.QueueName,
			Channel:                p.Channel,
			Direction:              p.Direction,
			Duration:               p.HandleDuration + p.HoldDuration + p.WrapUpDuration,
			HandleDuration:         p.HandleDuration,
			HoldDuration:           p.HoldDuration,
			WrapUpDuration:         p.WrapUpDuration,
			TransferInitiatedCount: p.TransferInitiatedCount,
			TransferCompletedCount: p.TransferCompletedCount,
		}
		if c, ok := status[dayKey{p.UserID, row.Date}]; ok {
			row.Status = c.UserStatus
			row.SubStatus = c.UserSubStatus
		}
		rows = append(rows, row)
	}

	total := len(rows)
	rows = pageSlice(rows, req.Count, req.Page)
	next := pagination.NextToken(req.Page, req.Count, total)
	return &Result{Reports: rows, NextPageToken: next, TotalRecords: total}, nil
}

// AgentSummary aggregates performance and timecard totals per agent and day,
// restricted to the members of one team.
func (s *Service) AgentSummary(ctx context.Context, teamID int, req Request) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.ReportDuration.WithLabelValues("agent_summary").Observe(time.Since(start).Seconds())
	}()

	req.normalize()
	if err := req.validateWindow(); err != nil {
		return nil, err
	}

	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	members := make(map[string]bool, len(team.Members))
	for _, m := range team.Members {
		members[m] = true
	}

	if err := s.ensurePerformance(ctx, req.Window); err != nil {
		return nil, err
	}
	if err := s.ensureTimecards(ctx, req.Window); err != nil {
		return nil, err
	}

	perf, err := s.store.ListPerformance(ctx, req.Window)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.ListTimecards(ctx, req.Window)
	if err != nil {
		return nil, err
	}

	type dayKey struct{ userID, date string }
	groups := make(map[dayKey]*models.AgentSummaryRow)
	for _, p := range perf {
		if !members[p.UserName] {
			continue
		}
		key := dayKey{p.UserID, datePart(p.StartTime)}
		g, ok := groups[key]
		if !ok {
			g = &models.AgentSummaryRow{
				UserID:   p.UserID,
				UserName: p.UserName,
				Date:     key.date,
			}
			groups[key] = g
		}
		if g.QueueName == "" {
			g.QueueName = p.QueueName
		}
		g.TotalHandleDuration += p.HandleDuration
		g.TotalHoldDuration += p.HoldDuration
		g.TotalWrapUpDuration += p.WrapUpDuration
		g.TotalTransferInitiatedCount += p.TransferInitiatedCount
		g.TotalTransferCompletedCount += p.TransferCompletedCount
		g.TotalHandledCount += p.HandledCount
		g.TotalInboundHandledCount += p.InboundHandledCount
		g.TotalOutboundHandledCount += p.OutboundHandledCount
	}
	// Timecards can cover days with no handled interactions; those days
	// still get a row so ready/occupied totals survive.
	for _, c := range cards {
		if !members[c.UserName] {
			continue
		}
		key := dayKey{c.UserID, datePart(c.StartTime)}
		g, ok := groups[key]
		if !ok {
			g = &models.AgentSummaryRow{
				UserID:   c.UserID,
				UserName: c.UserName,
				Date:     key.date,
			}
			groups[key] = g
		}
		g.TotalReadyDuration += c.ReadyDuration
		g.TotalOccupiedDuration += c.OccupiedDuration
	}

	rows := make([]models.AgentSummaryRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, *g)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].UserName < rows[j].UserName
	})

	total := len(rows)
	rows = pageSlice(rows, req.Count, req.Page)
	next := pagination.NextToken(req.Page, req.Count, total)
	return &Result{Reports: rows, NextPageToken: next, TotalRecords: total}, nil
}

func (s *Service) ensurePerformance(ctx context.Context, w models.Window) error {
	has, err := s.store.HasPerformance(ctx, w)
	if err != nil {
		return err
	}
	if has {
		metrics.CacheProbes.WithLabelValues(string(models.DatasetAgentPerformance), "hit").Inc()
		return nil
	}
	metrics.CacheProbes.WithLabelValues(string(models.DatasetAgentPerformance), "miss").Inc()
	_, err = s.engine.Drain(ctx, models.DatasetAgentPerformance, w)
	return err
}

func (s *Service) ensureTimecards(ctx context.Context, w models.Window) error {
	has, err := s.store.HasTimecards(ctx, w)
	if err != nil {
		return err
	}
	if has {
		metrics.CacheProbes.WithLabelValues(string(models.DatasetAgentTimecard), "hit").Inc()
		return nil
	}
	metrics.CacheProbes.WithLabelValues(string(models.DatasetAgentTimecard), "miss").Inc()
	_, err = s.engine.Drain(ctx, models.DatasetAgentTimecard, w)
	return err
}

// datePart and timePart slice an ISO-8601 timestamp without parsing it;
// report rows carry the upstream's own formatting.
func datePart(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

func timePart(ts string) string {
	if len(ts) >= 16 {
		return ts[11:16]
	}
	return ""
}

func pageSlice[T any](rows []T, count, page int) []T {
	if count <= 0 {
		return rows
	}
	offset := (page - 1) * count
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if count < len(rows) {
		rows = rows[:count]
	}
	return rows
}

// Teams management passthrough. The report core only reads teams; these thin
// wrappers keep validation in one place for the handlers.

func (s *Service) ListTeams(ctx context.Context) ([]models.Team, error) {
	return s.store.ListTeams(ctx)
}

func (s *Service) CreateTeam(ctx context.Context, name string, members []string) (*models.Team, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: team_name is required", ErrValidation)
	}
	return s.store.CreateTeam(ctx, name, members)
}

func (s *Service) UpdateTeam(ctx context.Context, id int, name *string, members *[]string) (*models.Team, error) {
	if name != nil && *name == "" {
		return nil, fmt.Errorf("%w: team_name must not be empty", ErrValidation)
	}
	return s.store.UpdateTeam(ctx, id, name, members)
}

func (s *Service) DeleteTeam(ctx context.Context, id int) error {
	return s.store.DeleteTeam(ctx, id)
}
