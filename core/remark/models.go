package remark

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/college/core"
)

type Level string

const (
	LevelInfo     Level = "INFO"
	LevelWarn     Level = "WARN"
	LevelCritical Level = "CRITICAL"
)

var Levels = []Level{LevelInfo, LevelWarn, LevelCritical}

func (l Level) Valid() bool {
	for _, lvl := range Levels {
		if l == lvl {
			return true
		}
	}
	return false
}

// Status filters remarks by resolution.
type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
	StatusAll      Status = "all"
)

// ParseStatus defaults unknown values to StatusOpen.
func ParseStatus(s string) Status {
	switch st := Status(core.CleanString(s, true /* lower */)); st {
	case StatusResolved, StatusAll:
		return st
	}
	return StatusOpen
}

// Remark is a disciplinary note on a student. A null TeacherID means a director wrote it.
type Remark struct {
	ID        string      `db:"id" json:"id"`
	StudentID string      `db:"student_id" json:"student_id"`
	TeacherID null.String `db:"teacher_id" json:"teacher_id"`
	AuthorID  string      `db:"author_id" json:"author_id"`
	Level     Level       `db:"level" json:"level"`
	Text      string      `db:"text" json:"text"`
	Resolved  bool        `db:"resolved" json:"resolved"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`

	// read-only
	StudentName string      `db:"student_name" json:"student_name"`
	GroupCode   string      `db:"group_code" json:"group_code"`
	TeacherName null.String `db:"teacher_name" json:"teacher_name"`
	AuthorName  string      `db:"author_name" json:"author_name"`
}

// Filter narrows down remarks; empty fields are ignored.
// InvolvingTeacherID & InvolvingAuthorID match remarks where teacher = T OR author = A.
type Filter struct {
	StudentID          string
	InvolvingTeacherID string
	InvolvingAuthorID  string
	Status             Status
	Level              Level
	Limit              int
}

type NewRemark struct {
	StudentID string `json:"student_id" validate:"required"`
	TeacherID string `json:"teacher_id"`
	AuthorID  string `json:"author_id" validate:"required"`
	Level     Level  `json:"level" validate:"omitempty,oneof=INFO WARN CRITICAL"`
	Text      string `json:"text" validate:"required,notblank"`
}

func (nr *NewRemark) Validate(validate *validator.Validate) error {
	nr.Text = core.CleanString(nr.Text)
	nr.Level = Level(core.CleanString(string(nr.Level)))
	if nr.Level == "" {
		nr.Level = LevelInfo
	}
	return validate.Struct(nr)
}
