package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronitphilip/zoom-backend/internal/models"
)

type recordingRefresher struct {
	mu       sync.Mutex
	windows  []models.Window
	datasets []models.Dataset
	err      error
}

func (r *recordingRefresher) Refresh(_ context.Context, dataset models.Dataset, window models.Window) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.datasets = append(r.datasets, dataset)
	r.windows = append(r.windows, window)
	return 0, r.err
}

func TestRunOnceRefreshesAllDatasets(t *testing.T) {
	ref := &recordingRefresher{}
	s := New(ref, Config{Interval: time.Hour, Lookback: 24 * time.Hour}, nil)
	s.now = func() time.Time {
		return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	}

	s.RunOnce(context.Background())

	require.Len(t, ref.datasets, 4)
	assert.Contains(t, ref.datasets, models.DatasetEngagements)
	assert.Contains(t, ref.datasets, models.DatasetAgentPerformance)
	assert.Contains(t, ref.datasets, models.DatasetAgentTimecard)
	assert.Contains(t, ref.datasets, models.DatasetEngagementDetail)

	w := ref.windows[0]
	assert.Equal(t, "2024-01-01T12:00:00Z", w.From)
	assert.Equal(t, "2024-01-02T12:00:00Z", w.To)
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	ref := &recordingRefresher{err: errors.New("upstream down")}
	s := New(ref, Config{}, nil)

	s.RunOnce(context.Background())
	assert.Len(t, ref.datasets, 4, "one failed dataset must not stop the rest")
}

func TestStartAndStop(t *testing.T) {
	ref := &recordingRefresher{}
	s := New(ref, Config{Interval: 10 * time.Millisecond, Lookback: time.Hour}, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()), "double start must fail")

	time.Sleep(35 * time.Millisecond)
	s.Stop()

	ref.mu.Lock()
	n := len(ref.datasets)
	ref.mu.Unlock()
	assert.GreaterOrEqual(t, n, 4)

	// Stop is idempotent.
	s.Stop()
}
