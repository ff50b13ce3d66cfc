package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}, mr
}

// ==========================
// Redis
// ==========================

func TestRedisClient_JSONRoundTrip(t *testing.T) {
	rc, mr := newTestRedis(t)
	ctx := context.Background()

	type entry struct {
		EmployeeID string  `json:"employeeId"`
		Score      float64 `json:"score"`
	}

	require.NoError(t, rc.SetJSON(ctx, "predictions:all", []entry{{"E1", 0.8}}, time.Minute))

	var got []entry
	require.NoError(t, rc.GetJSON(ctx, "predictions:all", &got))
	assert.Equal(t, []entry{{"E1", 0.8}}, got)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, rc.GetJSON(ctx, "predictions:all", &got), ErrCacheMiss)
}

func TestRedisClient_GetJSON_BadPayload(t *testing.T) {
	rc, mr := newTestRedis(t)
	require.NoError(t, mr.Set("predictions:all", "{not json"))

	var got []string
	err := rc.GetJSON(context.Background(), "predictions:all", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisClient_PingAndDel(t *testing.T) {
	rc, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.Ping(ctx))
	require.NoError(t, mr.Set("k", "v"))
	require.NoError(t, rc.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))

	mr.Close()
	assert.Error(t, rc.Ping(ctx))
}

// ==========================
// Postgres
// ==========================

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	pg := NewPostgresFromDB(db)
	mock.ExpectPing()
	assert.NoError(t, pg.Ping(context.Background()))

	assert.Contains(t, pg.Stats(), "openConnections")

	mock.ExpectClose()
	assert.NoError(t, pg.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
