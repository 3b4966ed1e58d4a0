package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"wealthdesk-backend/internal/pkg/apperrors"
	"wealthdesk-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestCollect_NoDependencies(t *testing.T) {
	rep := (&Service{Service: "wealthdesk-api"}).Collect(context.Background())
	assert.Equal(t, "issue", rep.Status)
	assert.Equal(t, "wealthdesk-api", rep.Service)
	assert.Equal(t, "disconnected", rep.Dependencies["database"].Status)
	assert.Equal(t, "disconnected", rep.Dependencies["redis"].Status)
	assert.Equal(t, 0, rep.Traffic.TotalRequests)
	assert.Equal(t, "100", rep.Traffic.SuccessRate)
}

func TestCollect_WithTraffic(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	ctx := context.Background()
	now := time.UnixMilli(1_000_000 + 42_000)
	svc := &Service{Rdb: rdb, DB: pinger{}, Now: func() time.Time { return now }}

	require.NoError(t, rdb.Set(ctx, KeyReqTotal, "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, KeyReqErrors, "2", 0).Err())
	require.NoError(t, rdb.Set(ctx, KeyResTime, "150.5", 0).Err())
	require.NoError(t, rdb.Set(ctx, KeyResCount, "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, KeyStartTime, "1000000", 0).Err())

	rep := svc.Collect(ctx)
	assert.Equal(t, "ok", rep.Status)
	assert.Equal(t, 10, rep.Traffic.TotalRequests)
	assert.Equal(t, 8, rep.Traffic.SuccessCount)
	assert.Equal(t, "80.0", rep.Traffic.SuccessRate)
	assert.Equal(t, "15.05", rep.Traffic.AvgResponseTime)
	assert.EqualValues(t, 42, rep.Runtime.UptimeSeconds)

	svc.DB = pinger{err: errors.New("down")}
	rep = svc.Collect(ctx)
	assert.Equal(t, "issue", rep.Status)
	assert.Equal(t, "error", rep.Dependencies["database"].Status)
}

func TestRecorder_AndErrors(t *testing.T) {
	rdb, mr := testutil.NewRedis(t)
	ctx := context.Background()
	rec := Recorder{Rdb: rdb}
	at := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	rec.Start(ctx, "GET", "/api/offers", "10.0.0.1", at)
	rec.Finish(ctx, 200, 20*time.Millisecond)
	rec.Start(ctx, "GET", "/api/dashboard/stats", "10.0.0.1", at)
	rec.Finish(ctx, 503, 40*time.Millisecond)
	for i := 0; i < errorLogSize+5; i++ {
		rec.LogError(ctx, ErrorEntry{Time: at, Method: "GET", Path: "/x", Status: 500, Message: "boom"})
	}

	total, _ := mr.Get(KeyReqTotal)
	assert.Equal(t, "2", total)
	failed, _ := mr.Get(KeyReqErrors)
	assert.Equal(t, "1", failed)

	svc := &Service{Rdb: rdb, AdminKey: "k"}
	rep := svc.Collect(ctx)
	assert.Equal(t, "/api/dashboard/stats", rep.Traffic.LastRequest["path"])

	entries, err := svc.Errors(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, entries, 50)
	n, err := rdb.LLen(ctx, KeyErrorLog).Result()
	require.NoError(t, err)
	assert.EqualValues(t, errorLogSize, n)

	assert.True(t, apperrors.IsKind(svc.Reset(ctx, "wrong"), apperrors.KindAuthorization))
	require.NoError(t, svc.Reset(ctx, "k"))
	assert.False(t, mr.Exists(KeyReqTotal))
	assert.True(t, mr.Exists(KeyStartTime))

	// A nil client is a no-op.
	Recorder{}.Start(ctx, "GET", "/", "", at)
}
