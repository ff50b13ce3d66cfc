package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "attrition-workers/internal/common/errors"
	commonhttp "attrition-workers/internal/common/http"
	"attrition-workers/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeTokens struct {
	issued      int32
	invalidated int32
}

func (f *fakeTokens) Token(context.Context) (string, error) {
	n := atomic.AddInt32(&f.issued, 1)
	return "token-" + string(rune('0'+n)), nil
}

func (f *fakeTokens) Invalidate() { atomic.AddInt32(&f.invalidated, 1) }

func newTestClient(t *testing.T, srv *httptest.Server, tokens *fakeTokens) *Client {
	t.Helper()
	httpClient := commonhttp.NewClient(time.Second, 2).WithBaseDelay(time.Millisecond)
	return NewClient(srv.URL+"/", httpClient, tokens, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestFetchPredictions_BareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/predictions", r.URL.Path)
		assert.Equal(t, "Sales", r.URL.Query().Get("department"))
		assert.Empty(t, r.URL.Query().Get("employeeId"))
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`[{"employeeId":"E1","name":"Ana","department":"Sales","classification":"High Risk","probability":0.82,"textAi":"Risk Level: High"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeTokens{})
	preds, err := c.FetchPredictions(context.Background(), Filter{Department: "Sales"})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, "E1", preds[0].EmployeeID)
	assert.InDelta(t, 0.82, preds[0].Probability, 1e-9)
	assert.Equal(t, "Risk Level: High", preds[0].TextAI)
}

func TestFetchEmployees_Envelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/employees", r.URL.Path)
		assert.Equal(t, "E7", r.URL.Query().Get("employeeId"))
		_, _ = w.Write([]byte(`{"data":[{"employeeId":"E7","name":"Bo","department":"R&D","overTime":true,"yearsAtCompany":3}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeTokens{})
	emps, err := c.FetchEmployees(context.Background(), Filter{EmployeeID: "E7"})
	require.NoError(t, err)
	require.Len(t, emps, 1)
	assert.True(t, emps[0].OverTime)
	assert.Equal(t, 3, emps[0].YearsAtCompany)
}

func TestFetchPredictions_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeTokens{})
	preds, err := c.FetchPredictions(context.Background(), Filter{})
	require.NoError(t, err)
	assert.NotNil(t, preds)
	assert.Empty(t, preds)
}

// ==========================
// Token Handling
// ==========================

func TestUnauthorized_RefreshesOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer token-2", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tokens := &fakeTokens{}
	c := newTestClient(t, srv, tokens)
	_, err := c.FetchPredictions(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokens.invalidated))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestUnauthorized_Twice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeTokens{})
	_, err := c.FetchPredictions(context.Background(), Filter{})
	std, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAnalyticsAuthFailed, std.Code)
	assert.False(t, std.Retryable)
}

// ==========================
// Error Mapping
// ==========================

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
	}{
		{name: "server error", status: http.StatusBadGateway, wantCode: apperrors.ErrCodeAnalyticsAPIUnavailable},
		{name: "forbidden", status: http.StatusForbidden, wantCode: apperrors.ErrCodeAnalyticsAuthFailed},
		{name: "not found", status: http.StatusNotFound, wantCode: "RESOURCE_NOT_FOUND"},
		{name: "garbage body", status: http.StatusOK, body: `{"data":`, wantCode: apperrors.ErrCodeAnalyticsAPIUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv, &fakeTokens{})
			_, err := c.FetchEmployees(context.Background(), Filter{})
			std, ok := apperrors.AsStandardError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.wantCode, std.Code)
		})
	}
}

func TestServerErrorRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"employeeId":"E1"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeTokens{})
	preds, err := c.FetchPredictions(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, preds, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeTokens{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchPredictions(ctx, Filter{})
	std, ok := apperrors.AsStandardError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, apperrors.ErrCodeAnalyticsAPITimeout, std.Code)
}
