package schedule

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/college/core"
)

// Entry is a weekly recurring lesson.
type Entry struct {
	ID        string  `db:"id" json:"id"`
	GroupID   string  `db:"group_id" json:"group_id"`
	SubjectID string  `db:"subject_id" json:"subject_id"`
	TeacherID string  `db:"teacher_id" json:"teacher_id"`
	Weekday   Weekday `db:"weekday" json:"weekday"`
	Start     Clock   `db:"time_start" json:"time_start"`
	End       Clock   `db:"time_end" json:"time_end"`
	Location  string  `db:"location" json:"location"`

	// read-only
	GroupCode   string `db:"group_code" json:"group_code"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

// Filter narrows down entries; empty fields are ignored.
type Filter struct {
	GroupID   string
	TeacherID string
}

type NewEntry struct {
	GroupID   string  `json:"group_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	TeacherID string  `json:"teacher_id" validate:"required"`
	Weekday   Weekday `json:"weekday" validate:"oneof=0 1 2 3 4 5 6"`
	Start     Clock   `json:"time_start"`
	End       Clock   `json:"time_end"`
	Location  string  `json:"location" validate:"max=100"`
}

var (
	errInvalidTime  = "invalid time of day"
	errInvalidRange = "lesson must end after it starts"
)

func (ne *NewEntry) Validate(validate *validator.Validate) error {
	ne.Location = core.CleanString(ne.Location)
	if err := validate.Struct(ne); err != nil {
		return err
	}

	var flds []core.FieldError
	if !ne.Start.Valid() {
		flds = append(flds, core.FieldError{Field: "time_start", Error: errInvalidTime})
	}
	if !ne.End.Valid() {
		flds = append(flds, core.FieldError{Field: "time_end", Error: errInvalidTime})
	}
	if len(flds) == 0 && ne.Start >= ne.End {
		flds = append(flds, core.FieldError{Field: "time_end", Error: errInvalidRange})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
