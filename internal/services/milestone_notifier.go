package services

//go:generate mockgen -source=milestone_notifier.go -destination=../mocks/services/milestone_notifier.go -package=mock_services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/observability"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
	"github.com/yungbote/neurobridge-milestones/internal/realtime"
	"github.com/yungbote/neurobridge-milestones/internal/realtime/bus"
)

// MilestoneNotifier records progress events and fans them out to the student's channel.
// Delivery is best-effort: failures are logged and never returned.
type MilestoneNotifier interface {
	MilestoneProgressed(ctx context.Context, studentID uuid.UUID, m *types.Milestone, count, totalScore int)
	MilestoneCompleted(ctx context.Context, studentID uuid.UUID, m *types.Milestone, count, totalScore int)
	CoursePassed(ctx context.Context, course *types.Course, studentID uuid.UUID, passedAt time.Time)
	BadgeEarned(ctx context.Context, course *types.Course, studentID uuid.UUID, assertionID string)
}

type milestoneNotifier struct {
	log    *logger.Logger
	events repos.TrackingEventRepo
	bus    bus.Bus
	now    func() time.Time
}

func NewMilestoneNotifier(baseLog *logger.Logger, events repos.TrackingEventRepo, b bus.Bus) MilestoneNotifier {
	return &milestoneNotifier{
		log:    baseLog.With("service", "MilestoneNotifier"),
		events: events,
		bus:    b,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func milestoneData(m *types.Milestone, count, totalScore int) map[string]any {
	return map[string]any{
		"milestone_id":          m.ID,
		"milestone_name":        m.Name,
		"milestone_type":        string(m.Type),
		"count":                 count,
		"total_score":           totalScore,
		"count_requirement":     m.CountRequirement,
		"min_score_requirement": m.MinScoreRequirement,
		"required_to_pass":      m.RequiredToPass,
	}
}

func (n *milestoneNotifier) MilestoneProgressed(ctx context.Context, studentID uuid.UUID, m *types.Milestone, count, totalScore int) {
	if n == nil || m == nil || studentID == uuid.Nil {
		return
	}
	data := milestoneData(m, count, totalScore)
	n.emit(ctx, m.CourseID, studentID, types.EventMilestoneProgressed, realtime.EventMilestoneProgressed, data)
}

func (n *milestoneNotifier) MilestoneCompleted(ctx context.Context, studentID uuid.UUID, m *types.Milestone, count, totalScore int) {
	if n == nil || m == nil || studentID == uuid.Nil {
		return
	}
	data := milestoneData(m, count, totalScore)
	n.emit(ctx, m.CourseID, studentID, types.EventMilestoneCompleted, realtime.EventMilestoneCompleted, data)
}

func (n *milestoneNotifier) CoursePassed(ctx context.Context, course *types.Course, studentID uuid.UUID, passedAt time.Time) {
	if n == nil || course == nil || studentID == uuid.Nil {
		return
	}
	data := map[string]any{
		"course_id":   course.ID,
		"course_slug": course.Slug,
		"passed_at":   passedAt.UTC(),
	}
	n.emit(ctx, course.ID, studentID, types.EventCoursePassed, realtime.EventCoursePassed, data)
}

func (n *milestoneNotifier) BadgeEarned(ctx context.Context, course *types.Course, studentID uuid.UUID, assertionID string) {
	if n == nil || course == nil || studentID == uuid.Nil {
		return
	}
	data := map[string]any{
		"course_id":        course.ID,
		"course_slug":      course.Slug,
		"badge_class_slug": course.BadgeClassSlug,
		"assertion_id":     assertionID,
	}
	// Badge events are recorded but not pushed.
	n.record(ctx, course.ID, studentID, types.EventBadgeEarned, data)
}

func (n *milestoneNotifier) emit(ctx context.Context, courseID, studentID uuid.UUID, eventType string, ev realtime.Event, data map[string]any) {
	n.record(ctx, courseID, studentID, eventType, data)
	if n.bus == nil {
		return
	}
	msg := realtime.Message{
		Channel: studentID.String(),
		Event:   ev,
		Data:    data,
		SentAt:  n.now(),
	}
	if err := n.bus.Publish(ctx, msg); err != nil {
		observability.Current().IncNotification("bus", "error")
		n.log.Warn("publish notification failed", "event", string(ev), "student_id", studentID, "error", err)
		return
	}
	observability.Current().IncNotification("bus", "ok")
}

func (n *milestoneNotifier) record(ctx context.Context, courseID, studentID uuid.UUID, eventType string, data map[string]any) {
	if n.events == nil {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		n.log.Warn("encode tracking event failed", "event", eventType, "error", err)
		return
	}
	row := &types.TrackingEvent{
		EventType:  eventType,
		CourseID:   courseID,
		StudentID:  studentID,
		Payload:    datatypes.JSON(raw),
		OccurredAt: n.now(),
	}
	if _, err := n.events.Create(dbctx.Context{Ctx: ctx}, []*types.TrackingEvent{row}); err != nil {
		observability.Current().IncNotification("tracking", "error")
		n.log.Warn("record tracking event failed", "event", eventType, "course_id", courseID, "student_id", studentID, "error", err)
		return
	}
	observability.Current().IncNotification("tracking", "ok")
}
