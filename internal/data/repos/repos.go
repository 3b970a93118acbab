package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos/courses"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos/jobs"
	"github.com/yungbote/neurobridge-milestones/internal/data/repos/milestones"
	"github.com/yungbote/neurobridge-milestones/internal/platform/logger"
)

type UserRepo = courses.UserRepo
type CourseRepo = courses.CourseRepo
type BlockRepo = courses.BlockRepo
type AssessmentRepo = courses.AssessmentRepo
type SubmittedAnswerRepo = courses.SubmittedAnswerRepo
type SimpleInteractiveToolRepo = courses.SimpleInteractiveToolRepo
type AnswerQuery = courses.AnswerQuery

type MilestoneRepo = milestones.MilestoneRepo
type MilestoneProgressRepo = milestones.MilestoneProgressRepo
type MilestoneProgressBlockRepo = milestones.MilestoneProgressBlockRepo
type CoursePassedRepo = milestones.CoursePassedRepo
type CertificateRepo = milestones.CertificateRepo
type TrackingEventRepo = milestones.TrackingEventRepo
type ProgressFilter = milestones.ProgressFilter
type ProgressKey = milestones.ProgressKey

type JobRunRepo = jobs.JobRunRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return courses.NewUserRepo(db, baseLog) }
func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return courses.NewCourseRepo(db, baseLog)
}
func NewBlockRepo(db *gorm.DB, baseLog *logger.Logger) BlockRepo {
	return courses.NewBlockRepo(db, baseLog)
}
func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return courses.NewAssessmentRepo(db, baseLog)
}
func NewSubmittedAnswerRepo(db *gorm.DB, baseLog *logger.Logger) SubmittedAnswerRepo {
	return courses.NewSubmittedAnswerRepo(db, baseLog)
}
func NewSimpleInteractiveToolRepo(db *gorm.DB, baseLog *logger.Logger) SimpleInteractiveToolRepo {
	return courses.NewSimpleInteractiveToolRepo(db, baseLog)
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return milestones.NewMilestoneRepo(db, baseLog)
}
func NewMilestoneProgressRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneProgressRepo {
	return milestones.NewMilestoneProgressRepo(db, baseLog)
}
func NewMilestoneProgressBlockRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneProgressBlockRepo {
	return milestones.NewMilestoneProgressBlockRepo(db, baseLog)
}
func NewCoursePassedRepo(db *gorm.DB, baseLog *logger.Logger) CoursePassedRepo {
	return milestones.NewCoursePassedRepo(db, baseLog)
}
func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
	return milestones.NewCertificateRepo(db, baseLog)
}
func NewTrackingEventRepo(db *gorm.DB, baseLog *logger.Logger) TrackingEventRepo {
	return milestones.NewTrackingEventRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}

// Set is every repo bound to one handle.
type Set struct {
	User                   UserRepo
	Course                 CourseRepo
	Block                  BlockRepo
	Assessment             AssessmentRepo
	SubmittedAnswer        SubmittedAnswerRepo
	SimpleInteractiveTool  SimpleInteractiveToolRepo
	Milestone              MilestoneRepo
	MilestoneProgress      MilestoneProgressRepo
	MilestoneProgressBlock MilestoneProgressBlockRepo
	CoursePassed           CoursePassedRepo
	Certificate            CertificateRepo
	TrackingEvent          TrackingEventRepo
	JobRun                 JobRunRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		User:                   NewUserRepo(db, baseLog),
		Course:                 NewCourseRepo(db, baseLog),
		Block:                  NewBlockRepo(db, baseLog),
		Assessment:             NewAssessmentRepo(db, baseLog),
		SubmittedAnswer:        NewSubmittedAnswerRepo(db, baseLog),
		SimpleInteractiveTool:  NewSimpleInteractiveToolRepo(db, baseLog),
		Milestone:              NewMilestoneRepo(db, baseLog),
		MilestoneProgress:      NewMilestoneProgressRepo(db, baseLog),
		MilestoneProgressBlock: NewMilestoneProgressBlockRepo(db, baseLog),
		CoursePassed:           NewCoursePassedRepo(db, baseLog),
		Certificate:            NewCertificateRepo(db, baseLog),
		TrackingEvent:          NewTrackingEventRepo(db, baseLog),
		JobRun:                 NewJobRunRepo(db, baseLog),
	}
}
