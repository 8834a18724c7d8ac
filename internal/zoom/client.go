package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ronitphilip/zoom-backend/internal/models"
	"github.com/ronitphilip/zoom-backend/internal/pagination"
)

// Page is one raw upstream page: the dataset's records, the upstream-issued
// continuation cursor (empty on the last page) and an optional total hint.
type Page struct {
	Records       []json.RawMessage
	NextPageToken string
	TotalRecords  int
}

// Client issues paginated GET requests against the upstream analytics API.
// It does not retry; retry policy belongs to the caller.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewClient creates an upstream client with a bounded per-page timeout.
func NewClient(baseURL string, tokens TokenSource, pageTimeout time.Duration) *Client {
	if pageTimeout <= 0 {
		pageTimeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{Timeout: pageTimeout},
	}
}

// FetchPage fetches one page of the given dataset for the window. A synthetic
// local-page marker is never forwarded upstream; any other non-empty cursor
// is passed through as next_page_token unmodified.
func (c *Client) FetchPage(ctx context.Context, dataset models.Dataset, window models.Window, pageSize int, cursor string) (*Page, error) {
	path, ok := datasetPath[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: unknown dataset %q", ErrUpstreamRequest, dataset)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("from", window.From)
	q.Set("to", window.To)
	q.Set("page_size", strconv.Itoa(pageSize))
	if cursor != "" && !pagination.IsLocalToken(cursor) {
		q.Set("next_page_token", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstreamRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: upstream rejected token", ErrUpstreamAuth)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUpstreamRequest, path, resp.StatusCode)
	}

	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstreamRequest, err)
	}

	page := &Page{}
	if raw, ok := envelope[datasetField[dataset]]; ok {
		if err := json.Unmarshal(raw, &page.Records); err != nil {
			return nil, fmt.Errorf("%w: decode %s records: %v", ErrUpstreamRequest, dataset, err)
		}
	}
	if raw, ok := envelope["next_page_token"]; ok {
		_ = json.Unmarshal(raw, &page.NextPageToken)
	}
	if raw, ok := envelope["total_records"]; ok {
		_ = json.Unmarshal(raw, &page.TotalRecords)
	}
	return page, nil
}

// ListUsers fetches the contact-center users directory, used to decorate
// report responses with agent display names.
func (c *Client) ListUsers(ctx context.Context) ([]RawUser, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/contact_center/users", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstreamRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: upstream rejected token", ErrUpstreamAuth)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: users listing returned %d", ErrUpstreamRequest, resp.StatusCode)
	}

	var body struct {
		Users []RawUser `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode users: %v", ErrUpstreamRequest, err)
	}
	return body.Users, nil
}
