package aggregates

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-milestones/internal/data/repos"
	domainagg "github.com/yungbote/neurobridge-milestones/internal/domain/aggregates"
	"github.com/yungbote/neurobridge-milestones/internal/platform/dbctx"
)

var columnName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Swap describes a compare-and-set on one row: Set applies only while every
// Expect column still holds its value.
type Swap struct {
	Table  string
	ID     uuid.UUID
	Expect map[string]any
	Set    map[string]any
	// Conflict is the message returned when the row moved underneath us.
	Conflict string
}

func (s Swap) validate() error {
	if !columnName.MatchString(strings.TrimSpace(s.Table)) || s.ID == uuid.Nil {
		return ValidationError("swap needs a table and id")
	}
	if len(s.Set) == 0 {
		return ValidationError("swap has nothing to set")
	}
	for col := range s.Expect {
		if !columnName.MatchString(col) {
			return ValidationError(fmt.Sprintf("invalid guard column %q", col))
		}
	}
	return nil
}

type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) conn(dbc dbctx.Context) (*gorm.DB, error) {
	switch {
	case dbc.Tx != nil:
		return dbc.Tx.WithContext(dbc.Ctx), nil
	case g.db != nil:
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, ValidationError("missing db transaction context")
}

// Apply runs the swap and reports a conflict when no row matched.
func (g CASGuard) Apply(dbc dbctx.Context, s Swap) error {
	if err := s.validate(); err != nil {
		return err
	}
	db, err := g.conn(dbc)
	if err != nil {
		return err
	}

	cols := make([]string, 0, len(s.Expect))
	for col := range s.Expect {
		cols = append(cols, col)
	}
	// stable WHERE order keeps the statement text identical across calls
	sort.Strings(cols)

	q := db.Table(strings.TrimSpace(s.Table)).Where("id = ?", s.ID)
	for _, col := range cols {
		q = q.Where(col+" = ?", s.Expect[col])
	}
	res := q.Updates(s.Set)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		msg := strings.TrimSpace(s.Conflict)
		if msg == "" {
			msg = s.Table + " row changed concurrently"
		}
		return ConflictError(msg)
	}
	return nil
}

// requireOpenCourse loads the course and refuses finished ones.
func requireOpenCourse(dbc dbctx.Context, courses repos.CourseRepo, op string, courseID uuid.UUID, now time.Time) error {
	if courses == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "course repo not configured", nil)
	}
	course, err := courses.GetByID(dbc, courseID)
	if err != nil {
		return err
	}
	if course == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("course not found: %s", courseID), nil)
	}
	if course.HasFinished(now) {
		return CourseFinishedError(fmt.Sprintf("course %s ended %s", course.Slug, course.EndDate.Format(time.RFC3339)))
	}
	return nil
}
