package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/ronitphilip/zoom-backend/internal/models"
)

// MemoryStore is an in-memory Store used by tests and local development.
// It mirrors the Postgres semantics, including upsert-by-natural-key and
// the shared window/filter predicate.
type MemoryStore struct {
	mu          sync.RWMutex
	engagements map[string]models.EngagementRecord
	performance map[perfKey]models.PerformanceRecord
	timecards   map[string]models.TimecardRecord
	details     map[string]models.EngagementDetailRecord
	teams       map[int]models.Team
	nextTeamID  int
}

type perfKey struct {
	engagementID string
	userID       string
	startTime    string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		engagements: make(map[string]models.EngagementRecord),
		performance: make(map[perfKey]models.PerformanceRecord),
		timecards:   make(map[string]models.TimecardRecord),
		details:     make(map[string]models.EngagementDetailRecord),
		teams:       make(map[int]models.Team),
		nextTeamID:  1,
	}
}

func inWindow(startTime string, w models.Window) bool {
	return startTime >= w.From && startTime <= w.To
}

func matchEngagement(r models.EngagementRecord, w models.Window, f EngagementFilter) bool {
	if !inWindow(r.StartTime, w) {
		return false
	}
	if f.QueueID != "" && r.QueueID != f.QueueID {
		return false
	}
	if f.QueueName != "" && r.QueueName != f.QueueName {
		return false
	}
	if f.FlowID != "" && r.FlowID != f.FlowID {
		return false
	}
	if f.FlowName != "" && r.FlowName != f.FlowName {
		return false
	}
	if f.AgentName != "" && r.DisplayName != f.AgentName {
		return false
	}
	if f.Direction != "" && r.Direction != f.Direction {
		return false
	}
	if f.AbandonedOnly && r.HandlingDuration != 0 {
		return false
	}
	if f.WaitedOnly && r.WaitingDuration <= 0 {
		return false
	}
	return true
}

func (s *MemoryStore) UpsertEngagements(_ context.Context, rows []models.EngagementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.engagements[r.EngagementID] = r
	}
	return nil
}

func (s *MemoryStore) DeleteEngagements(_ context.Context, w models.Window, f EngagementFilter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.engagements {
		if matchEngagement(r, w, f) {
			delete(s.engagements, id)
		}
	}
	return nil
}

func (s *MemoryStore) HasEngagements(_ context.Context, w models.Window, f EngagementFilter) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.engagements {
		if matchEngagement(r, w, f) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CountEngagements(_ context.Context, w models.Window, f EngagementFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.engagements {
		if matchEngagement(r, w, f) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListEngagements(_ context.Context, w models.Window, f EngagementFilter, limit, offset int) ([]models.EngagementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []models.EngagementRecord
	for _, r := range s.engagements {
		if matchEngagement(r, w, f) {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].StartTime != all[j].StartTime {
			return all[i].StartTime < all[j].StartTime
		}
		return all[i].EngagementID < all[j].EngagementID
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) AggregateEngagements(ctx context.Context, w models.Window, f EngagementFilter, b Bucketing, dim Dimension, limit, offset int) ([]AggregateRow, error) {
	rows, err := s.aggregate(ctx, w, f, b, dim)
	if err != nil {
		return nil, err
	}
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *MemoryStore) CountAggregateGroups(ctx context.Context, w models.Window, f EngagementFilter, b Bucketing, dim Dimension) (int, error) {
	rows, err := s.aggregate(ctx, w, f, b, dim)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *MemoryStore) aggregate(_ context.Context, w models.Window, f EngagementFilter, b Bucketing, dim Dimension) ([]AggregateRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type groupKey struct {
		bucket, id, name string
	}
	type accum struct {
		AggregateRow
		handleSum   int
		handleCount int
		wrapSum     int
		wrapCount   int
	}

	groups := make(map[groupKey]*accum)
	for _, r := range s.engagements {
		if !matchEngagement(r, w, f) {
			continue
		}
		bucket, err := BucketLabel(r.StartTime, b)
		if err != nil {
			return nil, err
		}
		var id, name string
		switch dim {
		case DimensionFlow:
			id, name = r.FlowID, r.FlowName
		case DimensionAgent:
			id, name = r.UserID, r.DisplayName
		default:
			id, name = r.QueueID, r.QueueName
		}
		key := groupKey{bucket, id, name}
		g, ok := groups[key]
		if !ok {
			g = &accum{AggregateRow: AggregateRow{Bucket: bucket, GroupID: id, GroupName: name}}
			groups[key] = g
		}
		g.Offered++
		if r.HandlingDuration > 0 {
			g.Answered++
			g.handleSum += r.HandlingDuration + r.WrapUpDuration
			g.handleCount++
		} else {
			g.Abandoned++
		}
		g.HandlingSum += r.HandlingDuration
		g.WrapUpSum += r.WrapUpDuration
		g.WaitingSum += r.WaitingDuration
		if r.WrapUpDuration > 0 {
			g.wrapSum += r.WrapUpDuration
			g.wrapCount++
		}
		if h := r.HandlingDuration + r.WrapUpDuration; h > g.MaxHandle {
			g.MaxHandle = h
		}
		g.TransferSum += r.TransferCount
		if r.Channel == "voice" {
			g.Voice++
		} else {
			g.Digital++
		}
		switch r.Direction {
		case "inbound":
			g.Inbound++
		case "outbound":
			g.Outbound++
		}
	}

	var out []AggregateRow
	for _, g := range groups {
		if g.handleCount > 0 {
			g.AvgHandle = float64(g.handleSum) / float64(g.handleCount)
		}
		if g.wrapCount > 0 {
			g.AvgWrapUp = float64(g.wrapSum) / float64(g.wrapCount)
		}
		out = append(out, g.AggregateRow)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bucket != out[j].Bucket {
			return out[i].Bucket < out[j].Bucket
		}
		return out[i].GroupID < out[j].GroupID
	})
	return out, nil
}

func (s *MemoryStore) UpsertPerformance(_ context.Context, rows []models.PerformanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.performance[perfKey{r.EngagementID, r.UserID, r.StartTime}] = r
	}
	return nil
}

func (s *MemoryStore) DeletePerformance(_ context.Context, w models.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.performance {
		if inWindow(r.StartTime, w) {
			delete(s.performance, k)
		}
	}
	return nil
}

func (s *MemoryStore) HasPerformance(_ context.Context, w models.Window) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.performance {
		if inWindow(r.StartTime, w) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListPerformance(_ context.Context, w models.Window) ([]models.PerformanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.PerformanceRecord
	for _, r := range s.performance {
		if inWindow(r.StartTime, w) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (s *MemoryStore) UpsertTimecards(_ context.Context, rows []models.TimecardRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.timecards[r.WorkSessionID] = r
	}
	return nil
}

func (s *MemoryStore) DeleteTimecards(_ context.Context, w models.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.timecards {
		if inWindow(r.StartTime, w) {
			delete(s.timecards, k)
		}
	}
	return nil
}

func (s *MemoryStore) HasTimecards(_ context.Context, w models.Window) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.timecards {
		if inWindow(r.StartTime, w) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListTimecards(_ context.Context, w models.Window) ([]models.TimecardRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.TimecardRecord
	for _, r := range s.timecards {
		if inWindow(r.StartTime, w) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (s *MemoryStore) UpsertEngagementDetails(_ context.Context, rows []models.EngagementDetailRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.details[r.EngagementID] = r
	}
	return nil
}

func (s *MemoryStore) DeleteEngagementDetails(_ context.Context, w models.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.details {
		if inWindow(r.StartTime, w) {
			delete(s.details, k)
		}
	}
	return nil
}

func matchDetail(r models.EngagementDetailRecord, w models.Window, f DetailFilter) bool {
	if !inWindow(r.StartTime, w) {
		return false
	}
	if f.Channel != "" && r.Channel != f.Channel {
		return false
	}
	if f.AgentName != "" && r.UserName != f.AgentName {
		return false
	}
	return true
}

func (s *MemoryStore) HasEngagementDetails(_ context.Context, w models.Window, f DetailFilter) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.details {
		if matchDetail(r, w, f) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CountEngagementDetails(_ context.Context, w models.Window, f DetailFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.details {
		if matchDetail(r, w, f) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListEngagementDetails(_ context.Context, w models.Window, f DetailFilter, limit, offset int) ([]models.EngagementDetailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []models.EngagementDetailRecord
	for _, r := range s.details {
		if matchDetail(r, w, f) {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].StartTime != all[j].StartTime {
			return all[i].StartTime < all[j].StartTime
		}
		return all[i].EngagementID < all[j].EngagementID
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) ListTeams(_ context.Context) ([]models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Team
	for _, t := range s.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetTeam(_ context.Context, id int) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) CreateTeam(_ context.Context, name string, members []string) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := models.Team{ID: s.nextTeamID, Name: name, Members: members}
	s.teams[t.ID] = t
	s.nextTeamID++
	return &t, nil
}

func (s *MemoryStore) UpdateTeam(_ context.Context, id int, name *string, members *[]string) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, ErrNotFound
	}
	if name != nil {
		t.Name = *name
	}
	if members != nil {
		t.Members = *members
	}
	s.teams[id] = t
	return &t, nil
}

func (s *MemoryStore) DeleteTeam(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[id]; !ok {
		return ErrNotFound
	}
	delete(s.teams, id)
	return nil
}
