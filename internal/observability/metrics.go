package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

type Metrics struct {
	families    []promWriter
	scrapeEvery time.Duration

	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqTotal *Counter
	apiReqError *Counter

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	interactions      *CounterVec
	milestoneAchieved *CounterVec
	coursePassed      *Counter
	rescoredRows      *Counter
	removedRows       *Counter
	notifications     *CounterVec

	activityTime *HistogramVec
	workerTotal  *Counter
	workerError  *Counter
	queueDepth   *GaugeVec
	pgStats      *GaugeVec
	redisUp      *Gauge
	redisPing    *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

type Config struct {
	Enabled        bool
	Addr           string
	ScrapeInterval time.Duration
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide registry. It returns nil when metrics are disabled;
// every method is nil-safe.
func Init(log *logger.Logger, cfg Config) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if cfg.ScrapeInterval > 0 {
			instance.scrapeEvery = cfg.ScrapeInterval
		}
		if log != nil {
			log.Info("Observability metrics enabled", "addr", cfg.Addr, "scrape_interval", instance.scrapeEvery)
		}
	})
	return instance
}

func register[T promWriter](m *Metrics, family T) T {
	m.families = append(m.families, family)
	return family
}

var (
	apiBuckets       = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
	aggregateBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2}
	activityBuckets  = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}
)

// New builds an unregistered Metrics, mainly for tests. Families render in
// the order they are registered here.
func New() *Metrics {
	m := &Metrics{scrapeEvery: 10 * time.Second}

	m.apiRequests = register(m, NewCounterVec("ms_api_requests_total", "API requests by method, route and status.", []string{"method", "route", "status"}))
	m.apiLatency = register(m, NewHistogramVec("ms_api_request_duration_seconds", "API request latency in seconds.", []string{"method", "route", "status"}, apiBuckets))
	m.apiInflight = register(m, NewGauge("ms_api_inflight_requests", "In-flight API requests."))
	m.apiReqTotal = register(m, NewCounter("ms_api_requests_total_all", "API requests of any kind."))
	m.apiReqError = register(m, NewCounter("ms_api_requests_error_total", "API requests answered with a 5xx."))

	m.aggregateOps = register(m, NewCounterVec("ms_aggregate_operations_total", "Aggregate writes by op and status.", []string{"op", "status"}))
	m.aggregateLatency = register(m, NewHistogramVec("ms_aggregate_operation_duration_seconds", "Aggregate write latency in seconds.", []string{"op", "status"}, aggregateBuckets))
	m.aggregateConflicts = register(m, NewCounterVec("ms_aggregate_conflicts_total", "Aggregate writes that ended in a conflict.", []string{"op"}))
	m.aggregateRetries = register(m, NewCounterVec("ms_aggregate_retries_total", "Aggregate write attempts that were retried.", []string{"op"}))

	m.interactions = register(m, NewCounterVec("ms_interactions_tracked_total", "Tracked interactions by kind and outcome.", []string{"kind", "outcome"}))
	m.milestoneAchieved = register(m, NewCounterVec("ms_milestones_achieved_total", "Milestones achieved by type.", []string{"type"}))
	m.coursePassed = register(m, NewCounter("ms_course_passed_total", "Course-passed records created."))
	m.rescoredRows = register(m, NewCounter("ms_progress_rescored_total", "Progress rows processed by rescore."))
	m.removedRows = register(m, NewCounter("ms_progress_block_removed_total", "Progress rows updated by assessment removal."))
	m.notifications = register(m, NewCounterVec("ms_notifications_total", "Outbound notifications by channel and status.", []string{"channel", "status"}))

	m.activityTime = register(m, NewHistogramVec("ms_worker_activity_duration_seconds", "Job handler duration in seconds.", []string{"activity", "job_type", "status"}, activityBuckets))
	m.workerTotal = register(m, NewCounter("ms_worker_activity_total", "Job handler runs."))
	m.workerError = register(m, NewCounter("ms_worker_activity_error_total", "Job handler runs that failed."))
	m.queueDepth = register(m, NewGaugeVec("ms_job_queue_depth", "Jobs by status.", []string{"status"}))
	m.pgStats = register(m, NewGaugeVec("ms_postgres_stats", "Database pool stats.", []string{"metric"}))
	m.redisUp = register(m, NewGauge("ms_redis_up", "Redis reachable (1) or not (0)."))
	m.redisPing = register(m, NewGauge("ms_redis_ping_seconds", "Redis ping latency in seconds."))
	return m
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, f := range m.families {
		if err := f.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	op = orUnknown(op)
	status = orUnknown(status)
	m.aggregateOps.Inc(op, status)
	m.aggregateLatency.Observe(dur.Seconds(), op, status)
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(orUnknown(op))
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(orUnknown(op))
}

// AggregateHooks adapts the registry to the aggregate write hooks.
type AggregateHooks struct{ M *Metrics }

func (h AggregateHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.M.ObserveAggregateOperation(name, status, dur)
}
func (h AggregateHooks) IncConflict(name string) { h.M.IncAggregateConflict(name) }
func (h AggregateHooks) IncRetry(name string)    { h.M.IncAggregateRetry(name) }

func (m *Metrics) IncInteraction(kind, outcome string) {
	if m == nil {
		return
	}
	m.interactions.Inc(orUnknown(kind), orUnknown(outcome))
}

func (m *Metrics) IncMilestoneAchieved(milestoneType string) {
	if m == nil {
		return
	}
	m.milestoneAchieved.Inc(orUnknown(milestoneType))
}

func (m *Metrics) IncCoursePassed() {
	if m == nil {
		return
	}
	m.coursePassed.Inc()
}

func (m *Metrics) AddRescored(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rescoredRows.Add(float64(n))
}

func (m *Metrics) AddBlockRemoved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.removedRows.Add(float64(n))
}

func (m *Metrics) IncNotification(channel, status string) {
	if m == nil {
		return
	}
	m.notifications.Inc(orUnknown(channel), orUnknown(status))
}

func (m *Metrics) ObserveActivity(activityName, jobType, status string, dur time.Duration) {
	if m == nil {
		return
	}
	activityName = orUnknown(activityName)
	jobType = orUnknown(jobType)
	status = orUnknown(status)
	m.activityTime.Observe(dur.Seconds(), activityName, jobType, status)
	m.workerTotal.Inc()
	if isFailureStatus(status) {
		m.workerError.Inc()
	}
}

// Collector refreshes gauges once per scrape interval.
type Collector struct {
	Name    string
	Collect func(ctx context.Context) error
}

// PostgresCollector samples the database pool.
func (m *Metrics) PostgresCollector(db *gorm.DB) Collector {
	return Collector{Name: "postgres", Collect: func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		st := sqlDB.Stats()
		for metric, v := range map[string]float64{
			"open_connections":      float64(st.OpenConnections),
			"in_use":                float64(st.InUse),
			"idle":                  float64(st.Idle),
			"wait_count":            float64(st.WaitCount),
			"wait_duration_seconds": st.WaitDuration.Seconds(),
			"max_open_connections":  float64(st.MaxOpenConnections),
		} {
			m.pgStats.Set(v, metric)
		}
		return nil
	}}
}

// RedisCollector pings Redis and records reachability and latency.
func (m *Metrics) RedisCollector(rdb redis.UniversalClient) Collector {
	return Collector{Name: "redis", Collect: func(ctx context.Context) error {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err != nil {
			m.redisUp.Set(0)
			return err
		}
		m.redisUp.Set(1)
		m.redisPing.Set(time.Since(start).Seconds())
		return nil
	}}
}

// RunCollectors ticks every collector on one goroutine until ctx ends. A
// failing collector is logged and retried on the next tick.
func (m *Metrics) RunCollectors(ctx context.Context, log *logger.Logger, collectors ...Collector) {
	if m == nil || len(collectors) == 0 {
		return
	}
	tick := func() {
		for _, c := range collectors {
			if err := c.Collect(ctx); err != nil && log != nil {
				log.Warn("Metrics collector failed", "collector", c.Name, "error", err)
			}
		}
	}
	go func() {
		ticker := time.NewTicker(m.scrapeEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick()
			}
		}
	}()
}

// SetQueueDepth publishes job_run counts by status. Statuses missing from
// counts are reset to zero.
func (m *Metrics) SetQueueDepth(counts map[string]int64) {
	if m == nil {
		return
	}
	for _, s := range []string{"queued", "running", "failed", "dead", "succeeded", "canceled"} {
		m.queueDepth.Set(0, s)
	}
	for status, n := range counts {
		m.queueDepth.Set(float64(n), orUnknown(status))
	}
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
