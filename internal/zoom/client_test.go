package zoom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronitphilip/zoom-backend/internal/models"
)

type staticTokens string

func (s staticTokens) Token(context.Context) (string, error) { return string(s), nil }

func testWindow() models.Window {
	return models.Window{From: "2024-01-01T00:00:00Z", To: "2024-01-02T00:00:00Z"}
}

func TestFetchPageQueryShape(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contact_center/engagements", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"engagements":     []map[string]any{{"engagement_id": "e1"}},
			"next_page_token": "cursor-abc",
			"total_records":   41,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens("tok-1"), time.Second)
	page, err := c.FetchPage(context.Background(), models.DatasetEngagements, testWindow(), 50, "")
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01T00:00:00Z", gotQuery["from"])
	assert.Equal(t, "2024-01-02T00:00:00Z", gotQuery["to"])
	assert.Equal(t, "50", gotQuery["page_size"])
	_, hasCursor := gotQuery["next_page_token"]
	assert.False(t, hasCursor, "first page must not carry a cursor")

	assert.Len(t, page.Records, 1)
	assert.Equal(t, "cursor-abc", page.NextPageToken)
	assert.Equal(t, 41, page.TotalRecords)
}

func TestFetchPageCursorIsolation(t *testing.T) {
	var gotCursor string
	var hasCursor bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCursor = r.URL.Query().Get("next_page_token")
		_, hasCursor = r.URL.Query()["next_page_token"]
		json.NewEncoder(w).Encode(map[string]any{"engagements": []map[string]any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens("tok-1"), time.Second)

	// An upstream-issued cursor is forwarded unmodified.
	_, err := c.FetchPage(context.Background(), models.DatasetEngagements, testWindow(), 50, "cursor-abc")
	require.NoError(t, err)
	assert.Equal(t, "cursor-abc", gotCursor)

	// A synthetic local-page marker is never forwarded upstream.
	_, err = c.FetchPage(context.Background(), models.DatasetEngagements, testWindow(), 50, "db_page_3")
	require.NoError(t, err)
	assert.False(t, hasCursor)
}

func TestFetchPageDatasetPaths(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"users": []map[string]any{{"user_id": "u1"}, {"user_id": "u2"}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens("tok-1"), time.Second)

	page, err := c.FetchPage(context.Background(), models.DatasetAgentPerformance, testWindow(), 50, "")
	require.NoError(t, err)
	assert.Equal(t, "/contact_center/analytics/dataset/historical/agent_performance", gotPath)
	assert.Len(t, page.Records, 2)

	_, err = c.FetchPage(context.Background(), models.DatasetAgentTimecard, testWindow(), 50, "")
	require.NoError(t, err)
	assert.Equal(t, "/contact_center/analytics/dataset/historical/agent_timecard", gotPath)

	_, err = c.FetchPage(context.Background(), "bogus", testWindow(), 50, "")
	assert.ErrorIs(t, err, ErrUpstreamRequest)
}

func TestFetchPageErrorClasses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("next_page_token") {
		case "denied":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens("tok-1"), time.Second)

	_, err := c.FetchPage(context.Background(), models.DatasetEngagements, testWindow(), 50, "denied")
	assert.ErrorIs(t, err, ErrUpstreamAuth)

	_, err = c.FetchPage(context.Background(), models.DatasetEngagements, testWindow(), 50, "")
	assert.ErrorIs(t, err, ErrUpstreamRequest)
}

func TestListUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contact_center/users", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]any{
				{"user_id": "u1", "display_name": "Alice"},
				{"user_id": "u2", "display_name": "Bob"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticTokens("tok-1"), time.Second)
	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].DisplayName)
}
