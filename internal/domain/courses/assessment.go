package courses

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssessmentType string

const (
	AssessmentTypePoll           AssessmentType = "POLL"
	AssessmentTypeDoneIndicator  AssessmentType = "DONE_INDICATOR"
	AssessmentTypeLongFormText   AssessmentType = "LONG_FORM_TEXT"
	AssessmentTypeMultipleChoice AssessmentType = "MULTIPLE_CHOICE"
)

type AnswerStatus string

const (
	AnswerStatusUnanswered AnswerStatus = "UNANSWERED"
	AnswerStatusIncomplete AnswerStatus = "INCOMPLETE"
	AnswerStatusComplete   AnswerStatus = "COMPLETE"
	AnswerStatusCorrect    AnswerStatus = "CORRECT"
	AnswerStatusIncorrect  AnswerStatus = "INCORRECT"
)

// Finished reports whether an answer in this status counts toward progress.
func (s AnswerStatus) Finished() bool {
	return s == AnswerStatusComplete || s == AnswerStatusCorrect
}

var ErrUnsupportedAssessmentType = errors.New("unsupported assessment type")

type Assessment struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	BlockID   uuid.UUID      `gorm:"type:uuid;column:block_id;not null;uniqueIndex" json:"block_id"`
	Type      AssessmentType `gorm:"column:type;not null" json:"type"`
	Graded    bool           `gorm:"column:graded;not null;default:false" json:"graded"`
	MaxScore  int            `gorm:"column:max_score;not null" json:"max_score"`
	Solution  datatypes.JSON `gorm:"column:solution;type:jsonb" json:"solution,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Assessment) TableName() string { return "assessment" }

func (a *Assessment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ChoiceSolution is the solution shape of a MULTIPLE_CHOICE assessment.
type ChoiceSolution struct {
	CorrectChoiceKeys []string `json:"correct_choice_keys"`
	Join              string   `json:"join,omitempty"`
}

// Evaluate derives the status of a raw answer payload against this assessment.
func (a *Assessment) Evaluate(answer datatypes.JSON) (AnswerStatus, error) {
	var decoded any
	if len(answer) > 0 {
		if err := json.Unmarshal(answer, &decoded); err != nil {
			return "", fmt.Errorf("decode answer: %w", err)
		}
	}

	switch a.Type {
	case AssessmentTypePoll:
		if decoded != nil {
			return AnswerStatusComplete, nil
		}
		return AnswerStatusIncomplete, nil
	case AssessmentTypeDoneIndicator, AssessmentTypeLongFormText:
		if truthy(decoded) {
			return AnswerStatusComplete, nil
		}
		return AnswerStatusIncomplete, nil
	case AssessmentTypeMultipleChoice:
		var sol ChoiceSolution
		if len(a.Solution) > 0 {
			if err := json.Unmarshal(a.Solution, &sol); err != nil {
				return "", fmt.Errorf("decode solution: %w", err)
			}
		}
		chosen := choiceKeys(decoded)
		correct := make(map[string]struct{}, len(sol.CorrectChoiceKeys))
		for _, k := range sol.CorrectChoiceKeys {
			correct[k] = struct{}{}
		}
		switch strings.ToUpper(strings.TrimSpace(sol.Join)) {
		case "", "AND":
			if len(chosen) == len(correct) && subset(chosen, correct) {
				return AnswerStatusCorrect, nil
			}
			return AnswerStatusIncorrect, nil
		case "OR":
			if subset(chosen, correct) {
				return AnswerStatusComplete, nil
			}
			return AnswerStatusIncorrect, nil
		default:
			return "", fmt.Errorf("unsupported choice join %q", sol.Join)
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAssessmentType, a.Type)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return len(t) > 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func choiceKeys(v any) map[string]struct{} {
	out := map[string]struct{}{}
	switch t := v.(type) {
	case string:
		out[t] = struct{}{}
	case []any:
		for _, item := range t {
			out[fmt.Sprint(item)] = struct{}{}
		}
	}
	return out
}

func subset(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

type SubmittedAnswer struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID     uuid.UUID      `gorm:"type:uuid;column:course_id;not null;uniqueIndex:idx_answer_student_assessment_course,priority:3" json:"course_id"`
	StudentID    uuid.UUID      `gorm:"type:uuid;column:student_id;not null;uniqueIndex:idx_answer_student_assessment_course,priority:1" json:"student_id"`
	AssessmentID uuid.UUID      `gorm:"type:uuid;column:assessment_id;not null;uniqueIndex:idx_answer_student_assessment_course,priority:2;index" json:"assessment_id"`
	Status       AnswerStatus   `gorm:"column:status;not null" json:"status"`
	Score        int            `gorm:"column:score;not null;default:0" json:"score"`
	Answer       datatypes.JSON `gorm:"column:answer;type:jsonb" json:"answer,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`

	Assessment *Assessment `gorm:"foreignKey:AssessmentID" json:"assessment,omitempty"`
}

func (SubmittedAnswer) TableName() string { return "submitted_answer" }

func (s *SubmittedAnswer) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Regrade re-derives status against the current assessment definition.
// Finished answers earn the assessment's full max score.
func (s *SubmittedAnswer) Regrade(a *Assessment) error {
	if a == nil {
		return errors.New("regrade: assessment required")
	}
	status, err := a.Evaluate(s.Answer)
	if err != nil {
		return err
	}
	s.Status = status
	if status.Finished() {
		s.Score = a.MaxScore
	}
	return nil
}
