package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/domain/courses"
	"github.com/yungbote/neurobridge-milestones/internal/domain/milestones"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

// Interaction is one qualifying student event on a block.
// The concrete types are VideoPlay, ForumPost, AssessmentAnswer and ToolSubmission.
type Interaction interface {
	TargetBlock() *types.Block
	interaction()
}

type VideoPlay struct{ Block *types.Block }

type ForumPost struct{ Block *types.Block }

type AssessmentAnswer struct {
	Block      *types.Block
	Assessment *types.Assessment
	Answer     *types.SubmittedAnswer
}

type ToolSubmission struct {
	Block      *types.Block
	Tool       *types.SimpleInteractiveTool
	Submission *types.SimpleInteractiveToolSubmission
}

func (v VideoPlay) TargetBlock() *types.Block        { return v.Block }
func (f ForumPost) TargetBlock() *types.Block        { return f.Block }
func (a AssessmentAnswer) TargetBlock() *types.Block { return a.Block }
func (t ToolSubmission) TargetBlock() *types.Block   { return t.Block }

func (VideoPlay) interaction()        {}
func (ForumPost) interaction()        {}
func (AssessmentAnswer) interaction() {}
func (ToolSubmission) interaction()   {}

// TrackOptions carries the event-specific inputs of a tracked interaction.
type TrackOptions struct {
	SubmissionID *uuid.UUID
	// PreviousStatus is the submission status before this save, if known.
	PreviousStatus string
}

// InteractionFacts is the normalized view of an interaction used by the ledger.
type InteractionFacts struct {
	Kind          string
	MilestoneType types.MilestoneType
	Score         int
	Graded        bool
}

// FactsOf normalizes an interaction. Video plays and forum posts always score
// 1 and count as graded.
func FactsOf(i Interaction) (InteractionFacts, error) {
	switch v := i.(type) {
	case VideoPlay:
		return InteractionFacts{Kind: "video", MilestoneType: milestones.TypeVideoPlays, Score: 1, Graded: true}, nil
	case ForumPost:
		return InteractionFacts{Kind: "forum_post", MilestoneType: milestones.TypeForumPosts, Score: 1, Graded: true}, nil
	case AssessmentAnswer:
		if v.Answer == nil || v.Assessment == nil {
			return InteractionFacts{}, fmt.Errorf("assessment answer missing answer or assessment")
		}
		return InteractionFacts{Kind: "assessment", MilestoneType: milestones.TypeCorrectAnswers, Score: v.Answer.Score, Graded: v.Assessment.Graded}, nil
	case ToolSubmission:
		if v.Submission == nil || v.Tool == nil {
			return InteractionFacts{}, fmt.Errorf("tool submission missing submission or tool")
		}
		return InteractionFacts{Kind: "simple_interactive_tool", MilestoneType: milestones.TypeSimpleInteractiveToolInteraction, Score: v.Submission.Score, Graded: v.Tool.Graded}, nil
	default:
		return InteractionFacts{}, fmt.Errorf("unsupported interaction %T", i)
	}
}

// AnswerQualifies reports whether a save moved an answer into a finished status.
func AnswerQualifies(current courses.AnswerStatus, previous string) bool {
	if !current.Finished() {
		return false
	}
	return previous == "" || !courses.AnswerStatus(previous).Finished()
}

// ToolSubmissionQualifies is AnswerQualifies for simple interactive tools.
func ToolSubmissionQualifies(current courses.ToolSubmissionStatus, previous string) bool {
	if !current.Finished() {
		return false
	}
	return previous == "" || !courses.ToolSubmissionStatus(previous).Finished()
}

type interactionResolver struct {
	answers repos.SubmittedAnswerRepo
	tools   repos.SimpleInteractiveToolRepo
}

// resolve builds the interaction for a block event. ok is false when the
// event must not touch progress: the block type is untracked, the submission
// is missing, does not belong to the student and block, or is not qualifying.
func (r interactionResolver) resolve(dbc dbctx.Context, studentID uuid.UUID, block *types.Block, opts TrackOptions) (Interaction, bool, error) {
	switch block.Type {
	case courses.BlockTypeVideo:
		return VideoPlay{Block: block}, true, nil
	case courses.BlockTypeForumTopic:
		return ForumPost{Block: block}, true, nil
	case courses.BlockTypeAssessment:
		if opts.SubmissionID == nil || r.answers == nil {
			return nil, false, nil
		}
		ans, err := r.answers.GetByID(dbc, *opts.SubmissionID)
		if err != nil {
			return nil, false, err
		}
		if ans == nil || ans.Assessment == nil {
			return nil, false, nil
		}
		if ans.StudentID != studentID || ans.CourseID != block.CourseID || ans.Assessment.BlockID != block.ID {
			return nil, false, nil
		}
		if !AnswerQualifies(ans.Status, opts.PreviousStatus) {
			return nil, false, nil
		}
		return AssessmentAnswer{Block: block, Assessment: ans.Assessment, Answer: ans}, true, nil
	case courses.BlockTypeSimpleInteractiveTool:
		if opts.SubmissionID == nil || r.tools == nil {
			return nil, false, nil
		}
		sub, err := r.tools.GetSubmissionByID(dbc, *opts.SubmissionID)
		if err != nil {
			return nil, false, err
		}
		if sub == nil || sub.Tool == nil {
			return nil, false, nil
		}
		if sub.StudentID != studentID || sub.CourseID != block.CourseID || sub.Tool.BlockID != block.ID {
			return nil, false, nil
		}
		if !ToolSubmissionQualifies(sub.Status, opts.PreviousStatus) {
			return nil, false, nil
		}
		return ToolSubmission{Block: block, Tool: sub.Tool, Submission: sub}, true, nil
	default:
		return nil, false, nil
	}
}
