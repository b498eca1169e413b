package homework

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/college/core"
)

type Homework struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Deadline    time.Time `db:"deadline" json:"deadline"` // date only
	Completed   bool      `db:"completed" json:"completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// read-only
	OwnerID     string `db:"owner_id" json:"-"` // the student's user ID
	SubjectName string `db:"subject_name" json:"subject_name"`
	StudentName string `db:"student_name" json:"student_name"`
	GroupCode   string `db:"group_code" json:"group_code"`
}

// Filter narrows down homework; empty fields are ignored.
// When RestrictSubjects is set, only homework in SubjectIDs match (none if SubjectIDs is empty).
type Filter struct {
	StudentID        string
	GroupID          string
	SubjectID        string
	SubjectIDs       []string
	RestrictSubjects bool
	Limit            int
}

type NewHomework struct {
	StudentID   string    `json:"student_id" validate:"required"`
	SubjectID   string    `json:"subject_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
}

func (nh *NewHomework) Validate(validate *validator.Validate) error {
	nh.Title = core.CleanString(nh.Title)
	nh.Description = core.CleanString(nh.Description)
	if err := validate.Struct(nh); err != nil {
		return err
	}
	if nh.Deadline.IsZero() {
		return core.NewValidationError(nil, core.FieldError{Field: "deadline", Error: "this field is required"})
	}
	y, m, d := nh.Deadline.Date()
	nh.Deadline = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return nil
}

type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func CountOf(hws []Homework) Counts {
	c := Counts{Total: len(hws)}
	for _, hw := range hws {
		if hw.Completed {
			c.Completed++
		}
	}
	c.Pending = c.Total - c.Completed
	return c
}
