package health

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var errRedisNotConfigured = errors.New("redis is not configured")

// Recorder writes request counters and error entries. A nil Rdb makes every
// call a no-op, and Redis failures are ignored so requests never fail on them.
type Recorder struct {
	Rdb *redis.Client
}

// Start counts an incoming request and remembers it as the last request.
func (r Recorder) Start(ctx context.Context, method, path, ip string, at time.Time) {
	if r.Rdb == nil {
		return
	}
	last, _ := json.Marshal(map[string]interface{}{"time": at, "ip": ip, "path": path, "method": method})
	pipe := r.Rdb.Pipeline()
	pipe.Set(ctx, KeyLastReq, last, 0)
	pipe.Incr(ctx, KeyReqTotal)
	_, _ = pipe.Exec(ctx)
}

// Finish records the response time and counts 5xx responses as failures.
func (r Recorder) Finish(ctx context.Context, status int, elapsed time.Duration) {
	if r.Rdb == nil {
		return
	}
	pipe := r.Rdb.Pipeline()
	pipe.Incr(ctx, KeyResCount)
	pipe.IncrByFloat(ctx, KeyResTime, float64(elapsed.Milliseconds()))
	if status >= 500 {
		pipe.Incr(ctx, KeyReqErrors)
	}
	_, _ = pipe.Exec(ctx)
}

// ErrorEntry is one line of the error log.
type ErrorEntry struct {
	Time    time.Time `json:"time"`
	TraceID string    `json:"traceId,omitempty"`
	Method  string    `json:"method"`
	Path    string    `json:"path"`
	Status  int       `json:"status"`
	Message string    `json:"message"`
}

// LogError pushes e onto the capped error log, newest first.
func (r Recorder) LogError(ctx context.Context, e ErrorEntry) {
	if r.Rdb == nil {
		return
	}
	b, err := json.Marshal(e)
	if err != nil {
		return
	}
	pipe := r.Rdb.Pipeline()
	pipe.LPush(ctx, KeyErrorLog, b)
	pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
	_, _ = pipe.Exec(ctx)
}
