package sse

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/realtime"
)

func TestBroadcastRoutesByChannel(t *testing.T) {
	hub := NewHub(logger.NewNop())
	a, b := hub.NewClient(), hub.NewClient()
	hub.AddChannel(a, "student-a")
	hub.AddChannel(b, "student-b")
	hub.AddChannel(b, "  ")

	hub.Broadcast(realtime.Message{Channel: "student-a", Event: realtime.EventMilestoneCompleted})
	hub.Broadcast(realtime.Message{Event: realtime.EventCoursePassed})

	require.Len(t, a.Outbound, 1)
	assert.Equal(t, realtime.EventMilestoneCompleted, (<-a.Outbound).Event)
	assert.Len(t, b.Outbound, 0)
	assert.Len(t, b.Channels, 1)
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(logger.NewNop())
	c := hub.NewClient()
	hub.AddChannel(c, "s")
	for i := 0; i < defaultOutbound+5; i++ {
		hub.Broadcast(realtime.Message{Channel: "s", Event: realtime.EventMilestoneProgressed})
	}
	assert.Len(t, c.Outbound, defaultOutbound)
}

func TestCloseClientUnsubscribes(t *testing.T) {
	hub := NewHub(logger.NewNop())
	c := hub.NewClient()
	hub.AddChannel(c, "s")
	assert.Equal(t, 1, hub.Subscribers("s"))

	hub.CloseClient(c)
	hub.CloseClient(c)
	assert.Equal(t, 0, hub.Subscribers("s"))
}

func TestCloseAllEndsStreams(t *testing.T) {
	hub := NewHub(logger.NewNop())
	c := hub.NewClient()
	hub.AddChannel(c, "s")

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/events", nil), c)
		close(done)
	}()
	hub.CloseAll()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not end after CloseAll")
	}
	assert.Equal(t, 0, hub.Subscribers("s"))
}

func TestServeHTTPStreamsMessages(t *testing.T) {
	hub := NewHub(logger.NewNop())
	c := hub.NewClient()
	hub.AddChannel(c, "s")

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, c)
		close(done)
	}()

	hub.Broadcast(realtime.Message{Channel: "s", Event: realtime.EventCoursePassed, Data: map[string]any{"course_slug": "intro"}})
	require.Eventually(t, func() bool { return len(c.Outbound) == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, ": connected\n\n"))
	assert.Contains(t, body, "event: course_passed\n")
	assert.Contains(t, body, `"course_slug":"intro"`)
}
