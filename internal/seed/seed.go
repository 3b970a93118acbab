// Package seed loads course definitions from YAML and writes them through the repos.
package seed

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	types "github.com/yungbote/neurobridge-milestones/internal/domain"
	"github.com/yungbote/neurobridge-milestones/internal/domain/courses"
	"github.com/yungbote/neurobridge-milestones/internal/domain/milestones"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

type File struct {
	Course     CourseDef      `yaml:"course"`
	Blocks     []BlockDef     `yaml:"blocks"`
	Milestones []MilestoneDef `yaml:"milestones"`
	Students   []StudentDef   `yaml:"students"`
}

type CourseDef struct {
	Slug               string     `yaml:"slug"`
	Title              string     `yaml:"title"`
	StartDate          *time.Time `yaml:"start_date"`
	EndDate            *time.Time `yaml:"end_date"`
	EnableCertificates bool       `yaml:"enable_certificates"`
	EnableBadges       bool       `yaml:"enable_badges"`
	BadgeClassSlug     string     `yaml:"badge_class_slug"`
}

type BlockDef struct {
	Slug       string         `yaml:"slug"`
	Title      string         `yaml:"title"`
	Type       string         `yaml:"type"`
	Assessment *AssessmentDef `yaml:"assessment"`
	Tool       *ToolDef       `yaml:"tool"`
}

type AssessmentDef struct {
	Type     string         `yaml:"type"`
	Graded   bool           `yaml:"graded"`
	MaxScore int            `yaml:"max_score"`
	Solution map[string]any `yaml:"solution"`
}

type ToolDef struct {
	Graded   bool `yaml:"graded"`
	MaxScore int  `yaml:"max_score"`
}

type MilestoneDef struct {
	Name                string `yaml:"name"`
	Type                string `yaml:"type"`
	CountRequirement    int    `yaml:"count_requirement"`
	MinScoreRequirement int    `yaml:"min_score_requirement"`
	CountGradedOnly     bool   `yaml:"count_graded_only"`
	RequiredToPass      bool   `yaml:"required_to_pass"`
}

type StudentDef struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

// Parse decodes and validates a course definition. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty course definition")
		}
		return nil, fmt.Errorf("decode course definition: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) Validate() error {
	if strings.TrimSpace(f.Course.Slug) == "" {
		return fmt.Errorf("course.slug is required")
	}
	if strings.TrimSpace(f.Course.Title) == "" {
		return fmt.Errorf("course.title is required")
	}
	if f.Course.StartDate != nil && f.Course.EndDate != nil && f.Course.EndDate.Before(*f.Course.StartDate) {
		return fmt.Errorf("course.end_date is before course.start_date")
	}
	if f.Course.EnableBadges && strings.TrimSpace(f.Course.BadgeClassSlug) == "" {
		return fmt.Errorf("course.badge_class_slug is required when badges are enabled")
	}

	slugs := map[string]struct{}{}
	for i, b := range f.Blocks {
		if b.Slug == "" {
			return fmt.Errorf("blocks[%d].slug is required", i)
		}
		if _, dup := slugs[b.Slug]; dup {
			return fmt.Errorf("blocks[%d]: duplicate slug %q", i, b.Slug)
		}
		slugs[b.Slug] = struct{}{}
		if err := b.validate(); err != nil {
			return fmt.Errorf("blocks[%d] (%s): %w", i, b.Slug, err)
		}
	}

	for i, m := range f.Milestones {
		if m.Name == "" {
			return fmt.Errorf("milestones[%d].name is required", i)
		}
		switch milestones.Type(m.Type) {
		case milestones.TypeVideoPlays, milestones.TypeForumPosts, milestones.TypeCorrectAnswers, milestones.TypeSimpleInteractiveToolInteraction:
		default:
			return fmt.Errorf("milestones[%d]: unknown type %q", i, m.Type)
		}
		if m.CountRequirement < 0 || m.MinScoreRequirement < 0 {
			return fmt.Errorf("milestones[%d]: requirements must not be negative", i)
		}
	}

	emails := map[string]struct{}{}
	for i, s := range f.Students {
		email := strings.ToLower(strings.TrimSpace(s.Email))
		if email == "" {
			return fmt.Errorf("students[%d].email is required", i)
		}
		if _, dup := emails[email]; dup {
			return fmt.Errorf("students[%d]: duplicate email %q", i, s.Email)
		}
		emails[email] = struct{}{}
	}
	return nil
}

func (b BlockDef) validate() error {
	switch courses.BlockType(b.Type) {
	case courses.BlockTypeAssessment:
		if b.Assessment == nil {
			return fmt.Errorf("assessment block needs an assessment")
		}
		switch courses.AssessmentType(b.Assessment.Type) {
		case courses.AssessmentTypePoll, courses.AssessmentTypeDoneIndicator, courses.AssessmentTypeLongFormText, courses.AssessmentTypeMultipleChoice:
		default:
			return fmt.Errorf("unknown assessment type %q", b.Assessment.Type)
		}
		if b.Assessment.MaxScore < 0 {
			return fmt.Errorf("assessment max_score must not be negative")
		}
	case courses.BlockTypeSimpleInteractiveTool:
		if b.Tool == nil {
			return fmt.Errorf("interactive tool block needs a tool")
		}
		if b.Tool.MaxScore < 0 {
			return fmt.Errorf("tool max_score must not be negative")
		}
	case courses.BlockTypeVideo, courses.BlockTypeForumTopic, courses.BlockTypeHTMLContent, courses.BlockTypeCallout:
	default:
		return fmt.Errorf("unknown block type %q", b.Type)
	}
	if b.Assessment != nil && courses.BlockType(b.Type) != courses.BlockTypeAssessment {
		return fmt.Errorf("only assessment blocks carry an assessment")
	}
	if b.Tool != nil && courses.BlockType(b.Type) != courses.BlockTypeSimpleInteractiveTool {
		return fmt.Errorf("only interactive tool blocks carry a tool")
	}
	return nil
}

// Result lists the rows created by Apply. Students includes existing users
// matched by email.
type Result struct {
	Course      *types.Course
	Blocks      map[string]*types.Block
	Assessments map[string]*types.Assessment
	Milestones  []*types.Milestone
	Students    []*types.User
}

// Apply writes f in one transaction. A course with the same slug is a conflict.
func Apply(dbc dbctx.Context, db *gorm.DB, set repos.Set, f *File) (*Result, error) {
	if f == nil {
		return nil, fmt.Errorf("course definition required")
	}
	res := &Result{Blocks: map[string]*types.Block{}, Assessments: map[string]*types.Assessment{}}
	err := db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbc.WithTx(tx)

		existing, err := set.Course.GetBySlug(inner, f.Course.Slug)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("course %q already exists (%s)", f.Course.Slug, existing.ID)
		}
		created, err := set.Course.Create(inner, []*types.Course{{
			Slug:               f.Course.Slug,
			Title:              f.Course.Title,
			StartDate:          f.Course.StartDate,
			EndDate:            f.Course.EndDate,
			EnableCertificates: f.Course.EnableCertificates,
			EnableBadges:       f.Course.EnableBadges,
			BadgeClassSlug:     f.Course.BadgeClassSlug,
		}})
		if err != nil {
			return fmt.Errorf("create course: %w", err)
		}
		res.Course = created[0]

		for _, def := range f.Blocks {
			if err := applyBlock(inner, set, res, def); err != nil {
				return err
			}
		}

		if len(f.Milestones) > 0 {
			rows := make([]*types.Milestone, 0, len(f.Milestones))
			for _, m := range f.Milestones {
				rows = append(rows, &types.Milestone{
					CourseID:            res.Course.ID,
					Name:                m.Name,
					Type:                types.MilestoneType(m.Type),
					CountRequirement:    m.CountRequirement,
					MinScoreRequirement: m.MinScoreRequirement,
					CountGradedOnly:     m.CountGradedOnly,
					RequiredToPass:      m.RequiredToPass,
				})
			}
			if res.Milestones, err = set.Milestone.Create(inner, rows); err != nil {
				return fmt.Errorf("create milestones: %w", err)
			}
		}

		for _, s := range f.Students {
			email := strings.ToLower(strings.TrimSpace(s.Email))
			u, err := set.User.GetByEmail(inner, email)
			if err != nil {
				return err
			}
			if u == nil {
				users, err := set.User.Create(inner, []*types.User{{Email: email, Name: s.Name}})
				if err != nil {
					return fmt.Errorf("create student %s: %w", email, err)
				}
				u = users[0]
			}
			res.Students = append(res.Students, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func applyBlock(dbc dbctx.Context, set repos.Set, res *Result, def BlockDef) error {
	blocks, err := set.Block.Create(dbc, []*types.Block{{
		CourseID: res.Course.ID,
		Type:     types.BlockType(def.Type),
		Slug:     def.Slug,
		Title:    def.Title,
	}})
	if err != nil {
		return fmt.Errorf("create block %s: %w", def.Slug, err)
	}
	block := blocks[0]
	res.Blocks[def.Slug] = block

	if a := def.Assessment; a != nil {
		var solution datatypes.JSON
		if len(a.Solution) > 0 {
			raw, err := json.Marshal(a.Solution)
			if err != nil {
				return fmt.Errorf("encode solution of %s: %w", def.Slug, err)
			}
			solution = raw
		}
		rows, err := set.Assessment.Create(dbc, []*types.Assessment{{
			BlockID:  block.ID,
			Type:     types.AssessmentType(a.Type),
			Graded:   a.Graded,
			MaxScore: a.MaxScore,
			Solution: solution,
		}})
		if err != nil {
			return fmt.Errorf("create assessment %s: %w", def.Slug, err)
		}
		res.Assessments[def.Slug] = rows[0]
	}
	if t := def.Tool; t != nil {
		if _, err := set.SimpleInteractiveTool.CreateTools(dbc, []*types.SimpleInteractiveTool{{
			BlockID:  block.ID,
			Graded:   t.Graded,
			MaxScore: t.MaxScore,
		}}); err != nil {
			return fmt.Errorf("create tool %s: %w", def.Slug, err)
		}
	}
	return nil
}
