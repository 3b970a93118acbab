package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveAggregateOperation("op", "success", time.Millisecond)
	m.IncInteraction("video_play", "progressed")
	m.AddRescored(3)
	require.NoError(t, m.WritePrometheus(&bytes.Buffer{}))
}

func TestWritePrometheusExposition(t *testing.T) {
	m := New()
	m.ObserveAggregateOperation("milestone_progress.record_block", "success", 20*time.Millisecond)
	m.IncAggregateConflict("milestone_progress.record_block")
	m.IncInteraction("assessment_answer", "achieved")
	m.IncMilestoneAchieved("CORRECT_ANSWERS")
	m.IncCoursePassed()
	m.AddRescored(2)

	var buf bytes.Buffer
	require.NoError(t, m.WritePrometheus(&buf))
	out := buf.String()

	require.Contains(t, out, `ms_aggregate_operations_total{op="milestone_progress.record_block",status="success"} 1.000000`)
	require.Contains(t, out, `ms_aggregate_conflicts_total{op="milestone_progress.record_block"} 1.000000`)
	require.Contains(t, out, `ms_interactions_tracked_total{kind="assessment_answer",outcome="achieved"} 1.000000`)
	require.Contains(t, out, "ms_course_passed_total 1.000000")
	require.Contains(t, out, "ms_progress_rescored_total 2.000000")
	require.True(t, strings.Contains(out, `ms_aggregate_operation_duration_seconds_bucket{op="milestone_progress.record_block",status="success",le="0.025"} 1`))
}

func TestLabelEscaping(t *testing.T) {
	require.Equal(t, `{kind="a\"b"}`, labelString([]string{"kind"}, []string{`a"b`}))
	require.Equal(t, `{kind="unknown"}`, labelString([]string{"kind"}, nil))
}

func TestParseHeaders(t *testing.T) {
	require.Nil(t, ParseHeaders(""))
	require.Nil(t, ParseHeaders("broken,=x"))
	require.Equal(t, map[string]string{"api-key": "abc", "team": "lms"}, ParseHeaders(" api-key=abc , team=lms"))
}

func TestSetQueueDepthResetsMissingStatuses(t *testing.T) {
	m := New()
	m.SetQueueDepth(map[string]int64{"queued": 2, "dead": 1})
	m.SetQueueDepth(map[string]int64{"queued": 5})

	var buf bytes.Buffer
	require.NoError(t, m.WritePrometheus(&buf))
	out := buf.String()
	require.Contains(t, out, `ms_job_queue_depth{status="queued"} 5.000000`)
	require.Contains(t, out, `ms_job_queue_depth{status="dead"} 0.000000`)
}

func TestRunCollectorsTicksUntilCanceled(t *testing.T) {
	m := New()
	m.scrapeEvery = 5 * time.Millisecond

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	m.RunCollectors(ctx, logger.NewNop(),
		Collector{Name: "ok", Collect: func(context.Context) error { calls.Add(1); return nil }},
		Collector{Name: "broken", Collect: func(context.Context) error { return errors.New("down") }},
	)
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	var nilMetrics *Metrics
	nilMetrics.RunCollectors(context.Background(), nil, Collector{Name: "never", Collect: func(context.Context) error {
		t.Fatal("collector ran on nil metrics")
		return nil
	}})
}

func TestFamiliesRenderInRegistrationOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().WritePrometheus(&buf))
	out := buf.String()
	api := strings.Index(out, "# HELP ms_api_requests_total ")
	redisPing := strings.Index(out, "# HELP ms_redis_ping_seconds ")
	require.True(t, api >= 0 && redisPing > api, "api families must render before redis gauges")
}
