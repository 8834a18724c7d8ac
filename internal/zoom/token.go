package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// expiryMargin is subtracted from the upstream TTL so a token is refreshed
// before it actually expires mid-request.
const expiryMargin = 60 * time.Second

// Credentials holds the account-credentials grant inputs.
type Credentials struct {
	AccountID    string
	ClientID     string
	ClientSecret string
}

// TokenSource yields a valid upstream bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenStore caches an issued token with its expiry. Implementations must be
// safe for concurrent use; concurrent refreshes overwriting each other is
// tolerated since the newest token always wins.
type TokenStore interface {
	Get(ctx context.Context) (token string, expiresAt time.Time, err error)
	Put(ctx context.Context, token string, expiresAt time.Time) error
}

// TokenProvider exchanges client credentials for short-lived bearer tokens
// and caches them in a TokenStore.
type TokenProvider struct {
	authURL string
	creds   Credentials
	store   TokenStore
	http    *http.Client
	now     func() time.Time
}

// NewTokenProvider creates a TokenProvider backed by the given store.
func NewTokenProvider(authURL string, creds Credentials, store TokenStore) *TokenProvider {
	return &TokenProvider{
		authURL: authURL,
		creds:   creds,
		store:   store,
		http:    &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
}

// Token returns the cached token while it is still valid, otherwise performs
// a credential exchange and caches the result.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	if tok, expiresAt, err := p.store.Get(ctx); err == nil && tok != "" && p.now().Before(expiresAt) {
		return tok, nil
	}

	tok, expiresAt, err := p.exchange(ctx)
	if err != nil {
		return "", err
	}
	if err := p.store.Put(ctx, tok, expiresAt); err != nil {
		// A failed cache write just means the next caller re-exchanges.
		return tok, nil
	}
	return tok, nil
}

func (p *TokenProvider) exchange(ctx context.Context) (string, time.Time, error) {
	q := url.Values{}
	q.Set("grant_type", "account_credentials")
	q.Set("account_id", p.creds.AccountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.authURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: build token request: %v", ErrUpstreamAuth, err)
	}
	req.SetBasicAuth(p.creds.ClientID, p.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("%w: token endpoint returned %d", ErrUpstreamAuth, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", time.Time{}, fmt.Errorf("%w: decode token response: %v", ErrUpstreamAuth, err)
	}
	if body.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty access token", ErrUpstreamAuth)
	}

	expiresAt := p.now().Add(time.Duration(body.ExpiresIn)*time.Second - expiryMargin)
	return body.AccessToken, expiresAt, nil
}
