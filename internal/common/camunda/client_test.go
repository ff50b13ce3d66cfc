package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attrition-workers/internal/common/config"
	apperrors "attrition-workers/internal/common/errors"
)

var fastRetry = &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

// ==========================
// Retry
// ==========================

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	calls := 0
	result, err := executeWithRetry(context.Background(), fastRetry, func(context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("rpc error: code = Unavailable")
		}
		return "ok", nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	_, err := executeWithRetry(context.Background(), fastRetry, func(context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("rpc error: code = NotFound desc = job not found")
	}, "complete")

	assert.Equal(t, 1, calls)
	std, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode("RESOURCE_NOT_FOUND"), std.Code)
}

func TestExecuteWithRetry_Exhausted(t *testing.T) {
	calls := 0
	_, err := executeWithRetry(context.Background(), fastRetry, func(context.Context) (interface{}, error) {
		calls++
		return nil, errors.New("context deadline exceeded")
	}, "topology")

	assert.Equal(t, 3, calls)
	std, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode("TIMEOUT_ERROR"), std.Code)
	assert.Contains(t, std.Details, "after 3 attempts")
}

func TestExecuteWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := &RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: time.Second}

	_, err := executeWithRetry(ctx, slow, func(context.Context) (interface{}, error) {
		cancel()
		return nil, errors.New("connection refused")
	}, "topology")

	assert.ErrorIs(t, err, context.Canceled)
}

// ==========================
// Error Mapping
// ==========================

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		want apperrors.ErrorCode
	}{
		{"connection refused", "EXTERNAL_SERVICE_ERROR"},
		{"deadline exceeded", "TIMEOUT_ERROR"},
		{"process not found", "RESOURCE_NOT_FOUND"},
		{"deployment already exists", "RESOURCE_CONFLICT"},
		{"permission denied", "AUTHENTICATION_ERROR"},
		{"something odd", "EXTERNAL_SERVICE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			std, ok := apperrors.AsStandardError(mapZeebeError(errors.New(tt.msg), "op", 0))
			require.True(t, ok)
			assert.Equal(t, tt.want, std.Code)
		})
	}
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(errors.New("Broken pipe")))
	assert.True(t, isRetryableZeebeError(errors.New("host unreachable")))
	assert.False(t, isRetryableZeebeError(errors.New("invalid argument")))
}

func TestConfigFrom(t *testing.T) {
	cc := ConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", Plaintext: true})
	assert.Equal(t, "zeebe:26500", cc.GatewayAddress)
	assert.True(t, cc.UsePlaintextConnection)
	assert.Equal(t, 10*time.Second, cc.ConnectionTimeout)

	cc = ConfigFrom(config.CamundaConfig{RequestTimeout: 2500})
	assert.Equal(t, 2500*time.Millisecond, cc.ConnectionTimeout)
}
