package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "attrition-workers/internal/common/errors"
)

func tokenServer(t *testing.T, calls *int32, status int, expiresIn int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "dashboard", r.PostForm.Get("client_id"))

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(TokenResponse{
			AccessToken: "tok-" + string(rune('0'+n)),
			ExpiresIn:   expiresIn,
			TokenType:   "Bearer",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientCredentials_CachesUntilExpiry(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls, http.StatusOK, 300)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cc := NewClientCredentials(srv.URL, "dashboard", "secret", time.Second)
	cc.now = func() time.Time { return now }

	ctx := context.Background()
	tok, err := cc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	tok, err = cc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// inside the leeway window
	now = now.Add(280 * time.Second)
	tok, err = cc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
}

func TestClientCredentials_Invalidate(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls, http.StatusOK, 300)
	cc := NewClientCredentials(srv.URL, "dashboard", "secret", time.Second)

	ctx := context.Background()
	_, err := cc.Token(ctx)
	require.NoError(t, err)

	cc.Invalidate()
	tok, err := cc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
}

func TestClientCredentials_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode apperrors.ErrorCode
	}{
		{name: "bad credentials", status: http.StatusUnauthorized, wantCode: apperrors.ErrCodeAnalyticsAuthFailed},
		{name: "server down", status: http.StatusServiceUnavailable, wantCode: apperrors.ErrCodeAnalyticsAPIUnavailable},
		{name: "rate limited", status: http.StatusTooManyRequests, wantCode: apperrors.ErrCodeAnalyticsAPIUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := tokenServer(t, &calls, tt.status, 0)
			cc := NewClientCredentials(srv.URL, "dashboard", "secret", time.Second)

			_, err := cc.Token(context.Background())
			std, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, std.Code)
		})
	}
}

func TestStaticToken(t *testing.T) {
	var src TokenSource = StaticToken("abc")
	tok, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
	src.Invalidate()
}
