// internal/common/auth/token.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"attrition-workers/internal/common/errors"
)

// TokenSource hands out bearer tokens for the analytics API. Invalidate
// drops the cached token so the next Token call fetches a fresh one.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// TokenResponse holds the response from an OAuth2 token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// ClientCredentials fetches tokens with the OAuth2 client credentials grant
// and caches them until shortly before expiry.
type ClientCredentials struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	// refreshed this long before the server-side expiry
	leeway time.Duration
	now    func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClientCredentials creates a token source for the given endpoint.
func NewClientCredentials(tokenURL, clientID, clientSecret string, timeout time.Duration) *ClientCredentials {
	return &ClientCredentials{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		leeway:       30 * time.Second,
		now:          time.Now,
	}
}

// Token returns the cached token or fetches a new one.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	tok, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tok.ExpiresIn)*time.Second - c.leeway)
	return c.accessToken, nil
}

// Invalidate forgets the cached token.
func (c *ClientCredentials) Invalidate() {
	c.mu.Lock()
	c.accessToken = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

func (c *ClientCredentials) fetch(ctx context.Context) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewAnalyticsUnavailableError(c.tokenURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if isTransientHTTPError(resp.StatusCode) {
			return nil, errors.NewAnalyticsUnavailableError(c.tokenURL,
				fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
		}
		return nil, errors.NewAnalyticsAuthFailedError(
			fmt.Sprintf("token request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var tok TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.NewAnalyticsAuthFailedError("token response has no access_token")
	}
	return &tok, nil
}

// isTransientHTTPError reports whether a status is worth retrying.
func isTransientHTTPError(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// StaticToken is a TokenSource for a pre-issued token, used by tools and tests.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

func (s StaticToken) Invalidate() {}
