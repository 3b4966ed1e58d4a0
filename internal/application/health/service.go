// Package health reports process and dependency status and keeps the
// request counters behind /health/json in Redis.
package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"wealthdesk-backend/internal/pkg/apperrors"

	"github.com/redis/go-redis/v9"
)

// Redis keys shared by the request marker and the health endpoints.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"
)

// errorLogSize caps the error log list.
const errorLogSize = 100

// DBPinger is optional. If nil, the database is reported as disconnected.
type DBPinger interface {
	Ping(ctx context.Context) error
}

type Service struct {
	Rdb      *redis.Client
	DB       DBPinger
	AdminKey string
	Service  string
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type Report struct {
	Service      string               `json:"service"`
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

// MemoryInfo is in MiB.
type MemoryInfo struct {
	Alloc    int `json:"alloc"`
	HeapUsed int `json:"heapUsed"`
}

type TrafficInfo struct {
	TotalRequests   int                    `json:"totalRequests"`
	SuccessCount    int                    `json:"successCount"`
	FailedCount     int                    `json:"failedCount"`
	SuccessRate     string                 `json:"successRate"`
	AvgResponseTime string                 `json:"avgResponseTime"`
	LastRequest     map[string]interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

func ping(f func() error) DepStatus {
	start := time.Now()
	if err := f(); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// Collect pings the database and Redis and reads the traffic counters.
// Status is "ok" only when both are reachable.
func (s *Service) Collect(ctx context.Context) Report {
	rep := Report{
		Service:      s.Service,
		Dependencies: map[string]DepStatus{},
		Traffic:      TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"},
	}
	db := DepStatus{Status: "disconnected"}
	if s.DB != nil {
		db = ping(func() error { return s.DB.Ping(ctx) })
	}
	rep.Dependencies["database"] = db

	startMs := s.now().UnixMilli()
	rd := DepStatus{Status: "disconnected"}
	if s.Rdb != nil {
		rd = ping(func() error { return s.Rdb.Ping(ctx).Err() })
		if rd.Status == "connected" {
			startMs = s.readTraffic(ctx, &rep.Traffic, startMs)
		}
	}
	rep.Dependencies["redis"] = rd

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (s.now().UnixMilli() - startMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	rep.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{Alloc: int(m.Alloc / 1024 / 1024), HeapUsed: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	rep.Status = "issue"
	if db.Status == "connected" && rd.Status == "connected" {
		rep.Status = "ok"
	}
	return rep
}

// readTraffic fills t from the counters and returns the recorded start time,
// initialising it when absent.
func (s *Service) readTraffic(ctx context.Context, t *TrafficInfo, startMs int64) int64 {
	vals, err := s.Rdb.MGet(ctx, KeyReqTotal, KeyReqErrors, KeyResTime, KeyResCount, KeyStartTime, KeyLastReq).Result()
	if err != nil {
		return startMs
	}
	str := func(i int) string {
		v, _ := vals[i].(string)
		return v
	}
	t.TotalRequests, _ = strconv.Atoi(str(0))
	t.FailedCount, _ = strconv.Atoi(str(1))
	t.SuccessCount = t.TotalRequests - t.FailedCount
	if t.TotalRequests > 0 {
		t.SuccessRate = strconv.FormatFloat(float64(t.SuccessCount)/float64(t.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(2), 64)
	if count, _ := strconv.Atoi(str(3)); count > 0 {
		t.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if v, err := strconv.ParseInt(str(4), 10, 64); err == nil {
		startMs = v
	} else {
		s.Rdb.SetNX(ctx, KeyStartTime, startMs, 0)
	}
	if raw := str(5); raw != "" {
		_ = json.Unmarshal([]byte(raw), &t.LastRequest)
	}
	return startMs
}

// Errors returns up to n of the most recent error log entries.
func (s *Service) Errors(ctx context.Context, n int) ([]map[string]interface{}, error) {
	if s.Rdb == nil {
		return []map[string]interface{}{}, nil
	}
	entries, err := s.Rdb.LRange(ctx, KeyErrorLog, 0, int64(n-1)).Result()
	if err != nil {
		return nil, apperrors.Unavailable(err)
	}
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		var m map[string]interface{}
		if json.Unmarshal([]byte(e), &m) == nil && m != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

// Reset clears the counters and error log. key must match the admin key.
func (s *Service) Reset(ctx context.Context, key string) error {
	if s.AdminKey == "" || key != s.AdminKey {
		return apperrors.Forbidden("Unauthorized")
	}
	if s.Rdb == nil {
		return apperrors.Unavailable(errRedisNotConfigured)
	}
	pipe := s.Rdb.TxPipeline()
	pipe.Del(ctx, KeyReqTotal, KeyReqErrors, KeyResTime, KeyResCount, KeyStartTime, KeyLastReq, KeyErrorLog)
	pipe.Set(ctx, KeyStartTime, strconv.FormatInt(s.now().UnixMilli(), 10), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.Unavailable(err)
	}
	return nil
}
