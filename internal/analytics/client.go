// internal/analytics/client.go
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"attrition-workers/internal/common/auth"
	apperrors "attrition-workers/internal/common/errors"
	commonhttp "attrition-workers/internal/common/http"
	"attrition-workers/internal/common/logger"
	"attrition-workers/internal/models"
)

const (
	employeesPath   = "/api/employees"
	predictionsPath = "/api/predictions"
)

// Filter narrows a fetch. Empty fields are not sent.
type Filter struct {
	Department string `json:"department,omitempty"`
	EmployeeID string `json:"employeeId,omitempty"`
}

func (f Filter) values() url.Values {
	q := url.Values{}
	if f.Department != "" {
		q.Set("department", f.Department)
	}
	if f.EmployeeID != "" {
		q.Set("employeeId", f.EmployeeID)
	}
	return q
}

// Client reads employees and attrition predictions from the analytics API.
// Every request carries a bearer token from tokens; a 401 drops the token and
// the request is replayed once with a fresh one.
type Client struct {
	baseURL string
	http    *commonhttp.Client
	tokens  auth.TokenSource
	logger  logger.Logger
}

func NewClient(baseURL string, httpClient *commonhttp.Client, tokens auth.TokenSource, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		logger:  log.WithFields(map[string]interface{}{"component": "analytics-client"}),
	}
}

// FetchEmployees returns the HR records matching f.
func (c *Client) FetchEmployees(ctx context.Context, f Filter) ([]models.Employee, error) {
	var out []models.Employee
	if err := c.getJSON(ctx, employeesPath, f.values(), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Employee{}
	}
	return out, nil
}

// FetchPredictions returns attrition predictions matching f.
func (c *Client) FetchPredictions(ctx context.Context, f Filter) ([]models.Prediction, error) {
	var out []models.Prediction
	if err := c.getJSON(ctx, predictionsPath, f.values(), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Prediction{}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}

		requestID := uuid.NewString()
		resp, err := c.http.DoWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Accept", "application/json")
			req.Header.Set("X-Request-ID", requestID)
			return req, nil
		})
		if err != nil {
			return classifyTransportError(ctx, endpoint, err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return classifyTransportError(ctx, endpoint, readErr)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized && attempt == 0:
			c.logger.Warn("analytics token rejected, refreshing", map[string]interface{}{
				"endpoint":  path,
				"requestId": requestID,
			})
			c.tokens.Invalidate()
			continue
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return apperrors.NewAnalyticsAuthFailedError(fmt.Sprintf("%s answered %d", path, resp.StatusCode))
		case resp.StatusCode == http.StatusNotFound:
			return apperrors.NewResourceNotFoundError("analytics", path)
		case resp.StatusCode != http.StatusOK:
			return apperrors.NewAnalyticsUnavailableError(endpoint,
				fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 256)))
		}

		if err := decodeList(body, dst); err != nil {
			return apperrors.NewAnalyticsUnavailableError(endpoint, fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	return apperrors.NewAnalyticsAuthFailedError(path + " rejected a refreshed token")
}

// decodeList accepts a bare JSON array or a {"data": [...]} envelope.
func decodeList(body []byte, dst interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, dst)
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, dst)
}

func classifyTransportError(ctx context.Context, endpoint string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewAnalyticsTimeoutError(endpoint)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewAnalyticsTimeoutError(endpoint)
	}
	return apperrors.NewAnalyticsUnavailableError(endpoint, err)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
