package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronitphilip/zoom-backend/internal/models"
	"github.com/ronitphilip/zoom-backend/internal/repository"
	"github.com/ronitphilip/zoom-backend/internal/zoom"
)

// scriptedFetcher serves pre-built pages keyed by cursor; "" is the first page.
type scriptedFetcher struct {
	pages  map[string]*zoom.Page
	failAt string
	calls  int
}

func (f *scriptedFetcher) FetchPage(_ context.Context, _ models.Dataset, _ models.Window, _ int, cursor string) (*zoom.Page, error) {
	f.calls++
	if f.failAt != "" && cursor == f.failAt {
		return nil, fmt.Errorf("%w: connection reset", zoom.ErrUpstreamRequest)
	}
	if p, ok := f.pages[cursor]; ok {
		return p, nil
	}
	return &zoom.Page{}, nil
}

func rawEngagement(t *testing.T, id, start, queueID string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"engagement_id":     id,
		"direction":         "inbound",
		"start_time":        start,
		"channel_types":     []string{"voice"},
		"queues":            []map[string]string{{"cc_queue_id": queueID, "queue_name": "Support"}},
		"agents":            []map[string]string{{"user_id": "u1", "display_name": gofakeit.Name()}},
		"channels":          []map[string]string{{"channel": "voice", "channel_source": "phone"}},
		"handling_duration": gofakeit.Number(1, 600),
	})
	require.NoError(t, err)
	return raw
}

func window() models.Window {
	return models.Window{From: "2024-01-01T00:00:00Z", To: "2024-01-02T00:00:00Z"}
}

func TestDrainFollowsCursors(t *testing.T) {
	fetcher := &scriptedFetcher{pages: map[string]*zoom.Page{
		"": {
			Records:       []json.RawMessage{rawEngagement(t, "e1", "2024-01-01T01:00:00Z", "q1")},
			NextPageToken: "c2",
		},
		"c2": {
			Records:       []json.RawMessage{rawEngagement(t, "e2", "2024-01-01T02:00:00Z", "q1")},
			NextPageToken: "c3",
		},
		"c3": {
			Records: []json.RawMessage{rawEngagement(t, "e3", "2024-01-01T03:00:00Z", "q2")},
		},
	}}
	store := repository.NewMemoryStore()
	engine := NewEngine(fetcher, store, 100, nil)

	ingested, err := engine.Drain(context.Background(), models.DatasetEngagements, window())
	require.NoError(t, err)
	assert.Equal(t, 3, ingested)
	assert.Equal(t, 3, fetcher.calls)

	n, err := store.CountEngagements(context.Background(), window(), repository.EngagementFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDrainIsIdempotent(t *testing.T) {
	fetcher := &scriptedFetcher{pages: map[string]*zoom.Page{
		"": {Records: []json.RawMessage{
			rawEngagement(t, "e1", "2024-01-01T01:00:00Z", "q1"),
			rawEngagement(t, "e2", "2024-01-01T02:00:00Z", "q1"),
		}},
	}}
	store := repository.NewMemoryStore()
	engine := NewEngine(fetcher, store, 100, nil)

	_, err := engine.Drain(context.Background(), models.DatasetEngagements, window())
	require.NoError(t, err)
	_, err = engine.Drain(context.Background(), models.DatasetEngagements, window())
	require.NoError(t, err)

	n, err := store.CountEngagements(context.Background(), window(), repository.EngagementFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n, "re-ingesting the same page must not duplicate rows")
}

func TestDrainSalvagesPartialFetch(t *testing.T) {
	fetcher := &scriptedFetcher{
		pages: map[string]*zoom.Page{
			"": {
				Records:       []json.RawMessage{rawEngagement(t, "e1", "2024-01-01T01:00:00Z", "q1")},
				NextPageToken: "c2",
			},
		},
		failAt: "c2",
	}
	store := repository.NewMemoryStore()
	engine := NewEngine(fetcher, store, 100, nil)

	ingested, err := engine.Drain(context.Background(), models.DatasetEngagements, window())
	require.Error(t, err)
	assert.ErrorIs(t, err, zoom.ErrUpstreamRequest)
	assert.Equal(t, 1, ingested, "records stored before the failure still count")

	// The page fetched before the failure stays stored.
	n, cerr := store.CountEngagements(context.Background(), window(), repository.EngagementFilter{})
	require.NoError(t, cerr)
	assert.Equal(t, 1, n)
}

func TestDrainPageCap(t *testing.T) {
	// An upstream that never terminates its cursor must not loop forever.
	fetcher := &scriptedFetcher{pages: map[string]*zoom.Page{
		"":     {NextPageToken: "loop"},
		"loop": {NextPageToken: "loop"},
	}}
	engine := NewEngine(fetcher, repository.NewMemoryStore(), 100, nil)

	_, err := engine.Drain(context.Background(), models.DatasetEngagements, window())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page limit")
	assert.Equal(t, maxDrainPages, fetcher.calls)
}

func TestRefreshReplacesWindow(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.UpsertEngagements(context.Background(), []models.EngagementRecord{
		{EngagementID: "stale", StartTime: "2024-01-01T05:00:00Z", QueueID: "q1"},
	}))

	fetcher := &scriptedFetcher{pages: map[string]*zoom.Page{
		"": {Records: []json.RawMessage{rawEngagement(t, "fresh", "2024-01-01T06:00:00Z", "q1")}},
	}}
	engine := NewEngine(fetcher, store, 100, nil)

	ingested, err := engine.Refresh(context.Background(), models.DatasetEngagements, window())
	require.NoError(t, err)
	assert.Equal(t, 1, ingested)

	rows, err := store.ListEngagements(context.Background(), window(), repository.EngagementFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "fresh", rows[0].EngagementID)
}

// deleteFailStore simulates a storage failure on the destructive half of a
// refresh.
type deleteFailStore struct {
	*repository.MemoryStore
}

func (s *deleteFailStore) DeleteEngagements(context.Context, models.Window, repository.EngagementFilter) error {
	return repository.ErrStorage
}

func TestRefreshDeleteFailureAborts(t *testing.T) {
	store := &deleteFailStore{repository.NewMemoryStore()}
	fetcher := &scriptedFetcher{pages: map[string]*zoom.Page{}}
	engine := NewEngine(fetcher, store, 100, nil)

	_, err := engine.Refresh(context.Background(), models.DatasetEngagements, window())
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrStorage)
	assert.Zero(t, fetcher.calls, "a failed delete must stop the refresh before any fetch")
}

func TestFillPageReturnsRowsAndCursor(t *testing.T) {
	fetcher := &scriptedFetcher{pages: map[string]*zoom.Page{
		"": {
			Records:       []json.RawMessage{rawEngagement(t, "e1", "2024-01-01T01:00:00Z", "q1")},
			NextPageToken: "c2",
			TotalRecords:  12,
		},
	}}
	store := repository.NewMemoryStore()
	engine := NewEngine(fetcher, store, 100, nil)

	res, err := engine.FillPage(context.Background(), models.DatasetEngagements, window(), "")
	require.NoError(t, err)
	require.Len(t, res.Engagements, 1)
	assert.Equal(t, "e1", res.Engagements[0].EngagementID)
	assert.Equal(t, "c2", res.NextPageToken)
	assert.Equal(t, 12, res.TotalRecords)
	assert.Equal(t, 1, res.Stored)

	has, err := store.HasEngagements(context.Background(), window(), repository.EngagementFilter{})
	require.NoError(t, err)
	assert.True(t, has)
}

// upsertFailStore simulates a storage failure on the lazy-fill path.
type upsertFailStore struct {
	*repository.MemoryStore
}

func (s *upsertFailStore) UpsertEngagements(context.Context, []models.EngagementRecord) error {
	return repository.ErrStorage
}

func TestFillPageSurvivesUpsertFailure(t *testing.T) {
	fetcher := &scriptedFetcher{pages: map[string]*zoom.Page{
		"": {Records: []json.RawMessage{rawEngagement(t, "e1", "2024-01-01T01:00:00Z", "q1")}},
	}}
	engine := NewEngine(fetcher, &upsertFailStore{repository.NewMemoryStore()}, 100, nil)

	// Fetched rows are still returned; the cache write is best-effort here.
	res, err := engine.FillPage(context.Background(), models.DatasetEngagements, window(), "")
	require.NoError(t, err)
	require.Len(t, res.Engagements, 1)
}

func TestDrainSkipsMalformedRecords(t *testing.T) {
	fetcher := &scriptedFetcher{pages: map[string]*zoom.Page{
		"": {Records: []json.RawMessage{
			rawEngagement(t, "e1", "2024-01-01T01:00:00Z", "q1"),
			json.RawMessage(`"not an object"`),
		}},
	}}
	store := repository.NewMemoryStore()
	engine := NewEngine(fetcher, store, 100, nil)

	ingested, err := engine.Drain(context.Background(), models.DatasetEngagements, window())
	require.NoError(t, err)
	assert.Equal(t, 1, ingested, "the malformed record is skipped, not counted")

	n, err := store.CountEngagements(context.Background(), window(), repository.EngagementFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDrainOtherDatasets(t *testing.T) {
	perf, err := json.Marshal(map[string]any{
		"engagement_id": "e1", "user_id": "u1", "start_time": "2024-01-01T01:00:00Z",
		"user_name": "Alice", "handle_duration": 120,
	})
	require.NoError(t, err)
	card, err := json.Marshal(map[string]any{
		"work_session_id": "ws1", "user_id": "u1", "start_time": "2024-01-01T01:00:00Z",
		"user_status": "Ready", "ready_duration": 3600,
	})
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	engine := NewEngine(&scriptedFetcher{pages: map[string]*zoom.Page{
		"": {Records: []json.RawMessage{perf}},
	}}, store, 100, nil)
	_, err = engine.Drain(context.Background(), models.DatasetAgentPerformance, window())
	require.NoError(t, err)

	engine = NewEngine(&scriptedFetcher{pages: map[string]*zoom.Page{
		"": {Records: []json.RawMessage{card}},
	}}, store, 100, nil)
	_, err = engine.Drain(context.Background(), models.DatasetAgentTimecard, window())
	require.NoError(t, err)

	rows, err := store.ListPerformance(context.Background(), window())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 120, rows[0].HandleDuration)

	cards, err := store.ListTimecards(context.Background(), window())
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Ready", cards[0].UserStatus)
}
