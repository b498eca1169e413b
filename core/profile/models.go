package profile

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/college/core"
)

const (
	MaxGPA        = 5.0
	MaxAttendance = 100.0
)

type Student struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	GroupID    string    `db:"group_id" json:"group_id"`
	Course     int       `db:"course" json:"course"`
	Specialty  string    `db:"specialty" json:"specialty"`
	GPA        float64   `db:"gpa" json:"gpa"`
	Attendance float64   `db:"attendance" json:"attendance"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	// read-only
	Name      string `db:"name" json:"name"`
	GroupCode string `db:"group_code" json:"group_code"`
}

type Teacher struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Department string    `db:"department" json:"department"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	SubjectIDs []string  `db:"-" json:"subject_ids"`

	// read-only
	Name string `db:"name" json:"name"`
}

// Teaches reports whether the teacher is assigned the subject.
func (t Teacher) Teaches(subjectID string) bool {
	for _, id := range t.SubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}

type Director struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// read-only
	Name string `db:"name" json:"name"`
}

// Profiles holds every profile an identity has. Absent profiles are nil.
type Profiles struct {
	Student  *Student  `json:"student,omitempty"`
	Teacher  *Teacher  `json:"teacher,omitempty"`
	Director *Director `json:"director,omitempty"`
}

func (p Profiles) Kinds() Kinds {
	var kinds []Kind
	if p.Student != nil {
		kinds = append(kinds, KindStudent)
	}
	if p.Teacher != nil {
		kinds = append(kinds, KindTeacher)
	}
	if p.Director != nil {
		kinds = append(kinds, KindDirector)
	}
	return NewKinds(kinds...)
}

func (p Profiles) Role() Role {
	return Resolve(p.Kinds())
}

// IsStaff reports whether the identity holds a Teacher or Director profile.
func (p Profiles) IsStaff() bool {
	return p.Teacher != nil || p.Director != nil
}

// StudentStats aggregates all student profiles.
type StudentStats struct {
	Count          int     `db:"count" json:"count"`
	MeanGPA        float64 `db:"mean_gpa" json:"mean_gpa"`
	MeanAttendance float64 `db:"mean_attendance" json:"mean_attendance"`
}

type StudentFilter struct {
	GroupID string
}

// GetFilter selects a single profile; the first non-empty field wins.
type GetFilter struct {
	ID     string
	UserID string
}

type NewStudent struct {
	UserID     string  `json:"user_id" validate:"required"`
	GroupID    string  `json:"group_id" validate:"required"`
	Course     int     `json:"course" validate:"gte=1,lte=6"`
	Specialty  string  `json:"specialty" validate:"max=150"`
	GPA        float64 `json:"gpa"`
	Attendance float64 `json:"attendance"`
}

// Clean trims strings, defaults the course & clamps GPA and attendance to their ranges.
func (ns *NewStudent) Clean() {
	ns.Specialty = core.CleanString(ns.Specialty)
	if ns.Course == 0 {
		ns.Course = 1
	}
	ns.GPA = clamp(ns.GPA, 0, MaxGPA)
	ns.Attendance = clamp(ns.Attendance, 0, MaxAttendance)
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}

type NewTeacher struct {
	UserID     string   `json:"user_id" validate:"required"`
	Department string   `json:"department" validate:"max=150"`
	SubjectIDs []string `json:"subject_ids"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Department = core.CleanString(nt.Department)
	return validate.Struct(nt)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
