package domain

import (
	"github.com/yungbote/neurobridge-milestones/internal/domain/courses"
	"github.com/yungbote/neurobridge-milestones/internal/domain/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/domain/milestones"
)

const (
	EventMilestoneProgressed = milestones.EventMilestoneProgressed
	EventMilestoneCompleted  = milestones.EventMilestoneCompleted
	EventCoursePassed        = milestones.EventCoursePassed
	EventBadgeEarned         = milestones.EventBadgeEarned
)

type User = courses.User

type Course = courses.Course
type Block = courses.Block
type BlockType = courses.BlockType
type Assessment = courses.Assessment
type AssessmentType = courses.AssessmentType
type AnswerStatus = courses.AnswerStatus
type SubmittedAnswer = courses.SubmittedAnswer
type SimpleInteractiveTool = courses.SimpleInteractiveTool
type SimpleInteractiveToolSubmission = courses.SimpleInteractiveToolSubmission
type ToolSubmissionStatus = courses.ToolSubmissionStatus

type Milestone = milestones.Milestone
type MilestoneType = milestones.Type
type MilestoneProgress = milestones.MilestoneProgress
type MilestoneProgressBlock = milestones.MilestoneProgressBlock
type CoursePassed = milestones.CoursePassed
type Certificate = milestones.Certificate
type TrackingEvent = milestones.TrackingEvent

type JobRun = jobs.JobRun

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&Course{},
		&Block{},
		&Assessment{},
		&SubmittedAnswer{},
		&SimpleInteractiveTool{},
		&SimpleInteractiveToolSubmission{},
		&Milestone{},
		&MilestoneProgress{},
		&MilestoneProgressBlock{},
		&CoursePassed{},
		&Certificate{},
		&TrackingEvent{},
		&JobRun{},
	}
}
