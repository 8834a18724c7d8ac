package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronitphilip/zoom-backend/internal/ingest"
	"github.com/ronitphilip/zoom-backend/internal/models"
	"github.com/ronitphilip/zoom-backend/internal/repository"
	"github.com/ronitphilip/zoom-backend/internal/zoom"
)

type scriptedFetcher struct {
	pages   map[string]*zoom.Page
	cursors []string
	calls   int
}

func (f *scriptedFetcher) FetchPage(_ context.Context, _ models.Dataset, _ models.Window, _ int, cursor string) (*zoom.Page, error) {
	f.calls++
	f.cursors = append(f.cursors, cursor)
	if p, ok := f.pages[cursor]; ok {
		return p, nil
	}
	return &zoom.Page{}, nil
}

func newTestService(store repository.Store, fetcher ingest.Fetcher) *Service {
	return NewService(store, ingest.NewEngine(fetcher, store, 100, nil), nil)
}

func testWindow() models.Window {
	return models.Window{From: "2024-01-01T00:00:00Z", To: "2024-01-03T00:00:00Z"}
}

func rawEngagement(t *testing.T, id, start, queueID, queueName string, handling int) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"engagement_id":     id,
		"direction":         "inbound",
		"start_time":        start,
		"queues":            []map[string]string{{"cc_queue_id": queueID, "queue_name": queueName}},
		"channels":          []map[string]string{{"channel": "voice", "channel_source": "phone"}},
		"handling_duration": handling,
		"waiting_duration":  20,
	})
	require.NoError(t, err)
	return raw
}

func seedEngagements(t *testing.T, store repository.Store, rows ...models.EngagementRecord) {
	t.Helper()
	require.NoError(t, store.UpsertEngagements(context.Background(), rows))
}

func TestQueueReportColdCache(t *testing.T) {
	// Empty store: the presence probe misses, the whole window is drained,
	// and the aggregate is served from the fresh mirror.
	fetcher := &scriptedFetcher{pages: map[string]*zoom.Page{
		"": {Records: []json.RawMessage{
			rawEngagement(t, "e1", "2024-01-01T10:00:00Z", "q1", "Support", 120),
			rawEngagement(t, "e2", "2024-01-01T11:00:00Z", "q1", "Support", 0),
			rawEngagement(t, "e3", "2024-01-02T09:00:00Z", "q2", "Sales", 60),
		}},
	}}
	store := repository.NewMemoryStore()
	svc := newTestService(store, fetcher)

	res, err := svc.QueueReport(context.Background(), Request{
		Window:   testWindow(),
		Grouping: "daily",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)

	rows := res.Reports.([]models.BucketedReportRow)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, res.TotalRecords)

	first := rows[0]
	assert.Equal(t, "2024-01-01", first.Date)
	assert.Equal(t, "q1", first.GroupID)
	assert.Equal(t, "Support", first.GroupName)
	assert.Equal(t, 2, first.TotalOffered)
	assert.Equal(t, 1, first.TotalAnswered)
	assert.Equal(t, 1, first.AbandonedCalls)
	assert.Equal(t, "50.0", first.SuccessPercentage)
	assert.Equal(t, "50.0", first.AbandonPercentage)

	second := rows[1]
	assert.Equal(t, "2024-01-02", second.Date)
	assert.Equal(t, "q2", second.GroupID)
	assert.Equal(t, "100.0", second.SuccessPercentage)
}

func TestQueueReportWarmCacheSkipsUpstream(t *testing.T) {
	store := repository.NewMemoryStore()
	seedEngagements(t, store, models.EngagementRecord{
		EngagementID: "e1", StartTime: "2024-01-01T10:07:00Z",
		QueueID: "q1", QueueName: "Support", HandlingDuration: 30, Channel: "voice", Direction: "inbound",
	})
	fetcher := &scriptedFetcher{}
	svc := newTestService(store, fetcher)

	res, err := svc.QueueReport(context.Background(), Request{
		Window:          testWindow(),
		Grouping:        "interval",
		IntervalMinutes: 15,
	})
	require.NoError(t, err)
	assert.Zero(t, fetcher.calls, "a cached window must not touch upstream")

	rows := res.Reports.([]models.BucketedReportRow)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-01 10:00", rows[0].Date)
}

func TestReportValidation(t *testing.T) {
	svc := newTestService(repository.NewMemoryStore(), &scriptedFetcher{})

	_, err := svc.QueueReport(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.QueueReport(context.Background(), Request{
		Window: models.Window{From: "2024-01-02", To: "2024-01-01"},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.QueueReport(context.Background(), Request{
		Window:          testWindow(),
		Grouping:        "interval",
		IntervalMinutes: 45,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.QueueReport(context.Background(), Request{
		Window:   testWindow(),
		Grouping: "hourly",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFormatBucketZeroDivision(t *testing.T) {
	row := formatBucket(repository.AggregateRow{Bucket: "2024-01-01", Offered: 0})
	assert.Equal(t, "0.0", row.SuccessPercentage)
	assert.Equal(t, "0.0", row.AbandonPercentage)
}

func TestFlowReportGroupsByFlow(t *testing.T) {
	store := repository.NewMemoryStore()
	seedEngagements(t, store,
		models.EngagementRecord{EngagementID: "e1", StartTime: "2024-01-01T10:00:00Z", FlowID: "f1", FlowName: "Main IVR", HandlingDuration: 30},
		models.EngagementRecord{EngagementID: "e2", StartTime: "2024-01-01T12:00:00Z", FlowID: "f2", FlowName: "After Hours", HandlingDuration: 0},
	)
	svc := newTestService(store, &scriptedFetcher{})

	res, err := svc.FlowReport(context.Background(), Request{Window: testWindow()})
	require.NoError(t, err)

	rows := res.Reports.([]models.BucketedReportRow)
	require.Len(t, rows, 2)
	assert.Equal(t, "f1", rows[0].GroupID)
	assert.Equal(t, "After Hours", rows[1].GroupName)
}

func TestAbandonedReportFiltersHandledCalls(t *testing.T) {
	store := repository.NewMemoryStore()
	seedEngagements(t, store,
		models.EngagementRecord{EngagementID: "handled", StartTime: "2024-01-01T10:00:00Z", HandlingDuration: 60, WaitingDuration: 5},
		models.EngagementRecord{EngagementID: "dropped", StartTime: "2024-01-01T11:00:00Z", HandlingDuration: 0, WaitingDuration: 45, QueueName: "Support"},
		models.EngagementRecord{EngagementID: "no-wait", StartTime: "2024-01-01T12:00:00Z", HandlingDuration: 0, WaitingDuration: 0},
	)
	svc := newTestService(store, &scriptedFetcher{})

	res, err := svc.AbandonedReport(context.Background(), Request{Window: testWindow()})
	require.NoError(t, err)

	calls := res.Reports.([]models.AbandonedCall)
	require.Len(t, calls, 1)
	assert.Equal(t, "dropped", calls[0].EngagementID)
	assert.Equal(t, 45, calls[0].WaitingDuration)
	assert.Empty(t, calls[0].AgentName)
}

func TestAgentAbandonedReportIncludesAgent(t *testing.T) {
	store := repository.NewMemoryStore()
	seedEngagements(t, store,
		models.EngagementRecord{EngagementID: "e1", StartTime: "2024-01-01T10:00:00Z", HandlingDuration: 0, UserID: "u1", DisplayName: "Alice"},
	)
	svc := newTestService(store, &scriptedFetcher{})

	res, err := svc.AgentAbandonedReport(context.Background(), Request{Window: testWindow()})
	require.NoError(t, err)

	calls := res.Reports.([]models.AbandonedCall)
	require.Len(t, calls, 1)
	assert.Equal(t, "Alice", calls[0].AgentName)
	assert.Equal(t, "u1", calls[0].AgentID)
}

func TestEngagementListingColdCacheServesUpstreamPage(t *testing.T) {
	fetcher := &scriptedFetcher{pages: map[string]*zoom.Page{
		"": {
			Records:       []json.RawMessage{rawEngagement(t, "e1", "2024-01-01T10:00:00Z", "q1", "Support", 60)},
			NextPageToken: "cursor-xyz",
			TotalRecords:  30,
		},
	}}
	store := repository.NewMemoryStore()
	svc := newTestService(store, fetcher)

	res, err := svc.EngagementListing(context.Background(), Request{Window: testWindow(), Count: 10})
	require.NoError(t, err)

	// The upstream cursor passes through unmodified.
	assert.Equal(t, "cursor-xyz", res.NextPageToken)
	assert.Equal(t, 30, res.TotalRecords)
	rows := res.Reports.([]models.EngagementRecord)
	require.Len(t, rows, 1)
	assert.Equal(t, "e1", rows[0].EngagementID)
}

func TestEngagementListingForwardsUpstreamCursor(t *testing.T) {
	fetcher := &scriptedFetcher{pages: map[string]*zoom.Page{
		"cursor-xyz": {Records: []json.RawMessage{rawEngagement(t, "e2", "2024-01-01T11:00:00Z", "q1", "Support", 60)}},
	}}
	store := repository.NewMemoryStore()
	// The window already has cached rows, but an explicit upstream cursor
	// takes the upstream path regardless.
	seedEngagements(t, store, models.EngagementRecord{EngagementID: "cached", StartTime: "2024-01-01T09:00:00Z"})
	svc := newTestService(store, fetcher)

	res, err := svc.EngagementListing(context.Background(), Request{
		Window:        testWindow(),
		NextPageToken: "cursor-xyz",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"cursor-xyz"}, fetcher.cursors)
	assert.Empty(t, res.NextPageToken, "last upstream page ends the pagination")
}

func TestEngagementListingWarmCacheLocalPagination(t *testing.T) {
	store := repository.NewMemoryStore()
	var rows []models.EngagementRecord
	for i := 0; i < 25; i++ {
		rows = append(rows, models.EngagementRecord{
			EngagementID: fmt.Sprintf("e%02d", i),
			StartTime:    fmt.Sprintf("2024-01-01T10:%02d:00Z", i),
		})
	}
	seedEngagements(t, store, rows...)
	fetcher := &scriptedFetcher{}
	svc := newTestService(store, fetcher)

	// Page 1 of 25 records at size 10: 10 rows, a local marker for page 2.
	res, err := svc.EngagementListing(context.Background(), Request{Window: testWindow(), Count: 10})
	require.NoError(t, err)
	assert.Len(t, res.Reports.([]models.EngagementRecord), 10)
	assert.Equal(t, "db_page_2", res.NextPageToken)
	assert.Equal(t, 25, res.TotalRecords)

	// Following the marker stays local; upstream is never called.
	res, err = svc.EngagementListing(context.Background(), Request{
		Window: testWindow(), Count: 10, NextPageToken: res.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, res.Reports.([]models.EngagementRecord), 10)
	assert.Equal(t, "db_page_3", res.NextPageToken)

	res, err = svc.EngagementListing(context.Background(), Request{
		Window: testWindow(), Count: 10, NextPageToken: res.NextPageToken,
	})
	require.NoError(t, err)
	assert.Len(t, res.Reports.([]models.EngagementRecord), 5)
	assert.Empty(t, res.NextPageToken)
	assert.Zero(t, fetcher.calls)
}

func rawDetail(t *testing.T, id, start, channel, userName string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"engagement_id": id,
		"direction":     "inbound",
		"start_time":    start,
		"channel":       channel,
		"user_name":     userName,
		"duration":      180,
	})
	require.NoError(t, err)
	return raw
}

func TestEngagementDetailsColdCacheDrains(t *testing.T) {
	fetcher := &scriptedFetcher{pages: map[string]*zoom.Page{
		"": {Records: []json.RawMessage{
			rawDetail(t, "e1", "2024-01-01T10:00:00Z", "voice", "Alice"),
			rawDetail(t, "e2", "2024-01-01T11:00:00Z", "chat", "Bob"),
		}},
	}}
	store := repository.NewMemoryStore()
	svc := newTestService(store, fetcher)

	res, err := svc.EngagementDetails(context.Background(), Request{Window: testWindow()})
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)

	rows := res.Reports.([]models.EngagementDetailRecord)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, res.TotalRecords)
	assert.Equal(t, "e1", rows[0].EngagementID)
}

func TestEngagementDetailsWarmCacheFilters(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.UpsertEngagementDetails(context.Background(), []models.EngagementDetailRecord{
		{EngagementID: "e1", StartTime: "2024-01-01T10:00:00Z", Channel: "voice", UserName: "Alice"},
		{EngagementID: "e2", StartTime: "2024-01-01T11:00:00Z", Channel: "chat", UserName: "Bob"},
		{EngagementID: "e3", StartTime: "2024-01-01T12:00:00Z", Channel: "voice", UserName: "Bob"},
	}))
	fetcher := &scriptedFetcher{}
	svc := newTestService(store, fetcher)

	res, err := svc.EngagementDetails(context.Background(), Request{
		Window:  testWindow(),
		Channel: "voice",
		Filter:  repository.EngagementFilter{AgentName: "Bob"},
	})
	require.NoError(t, err)
	assert.Zero(t, fetcher.calls, "a hydrated window is served locally")

	rows := res.Reports.([]models.EngagementDetailRecord)
	require.Len(t, rows, 1)
	assert.Equal(t, "e3", rows[0].EngagementID)
	assert.Equal(t, 1, res.TotalRecords)
}

func TestEngagementDetailsLocalPagination(t *testing.T) {
	store := repository.NewMemoryStore()
	var details []models.EngagementDetailRecord
	for i := 0; i < 5; i++ {
		details = append(details, models.EngagementDetailRecord{
			EngagementID: fmt.Sprintf("e%d", i),
			StartTime:    fmt.Sprintf("2024-01-01T1%d:00:00Z", i),
			Channel:      "voice",
		})
	}
	require.NoError(t, store.UpsertEngagementDetails(context.Background(), details))
	svc := newTestService(store, &scriptedFetcher{})

	res, err := svc.EngagementDetails(context.Background(), Request{Window: testWindow(), Count: 2})
	require.NoError(t, err)
	assert.Len(t, res.Reports.([]models.EngagementDetailRecord), 2)
	assert.Equal(t, "db_page_2", res.NextPageToken)
	assert.Equal(t, 5, res.TotalRecords)

	res, err = svc.EngagementDetails(context.Background(), Request{
		Window: testWindow(), Count: 2, NextPageToken: "db_page_3",
	})
	require.NoError(t, err)
	assert.Len(t, res.Reports.([]models.EngagementDetailRecord), 1)
	assert.Empty(t, res.NextPageToken)
}
