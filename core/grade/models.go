package grade

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/college/core"
)

const (
	MinValue = 2.0
	MaxValue = 5.0
)

type Grade struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	Value     float64   `db:"value" json:"value"`
	Note      string    `db:"note" json:"note"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// read-only
	SubjectName string `db:"subject_name" json:"subject_name"`
	StudentName string `db:"student_name" json:"student_name"`
	GroupCode   string `db:"group_code" json:"group_code"`
}

// Filter narrows down grades; empty fields are ignored.
// When RestrictSubjects is set, only grades in SubjectIDs match (none if SubjectIDs is empty).
type Filter struct {
	StudentID        string
	GroupID          string
	SubjectID        string
	SubjectIDs       []string
	RestrictSubjects bool
	Limit            int
}

type NewGrade struct {
	StudentID string  `json:"student_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	Value     float64 `json:"value" validate:"gte=2,lte=5"`
	Note      string  `json:"note" validate:"max=255"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Note = core.CleanString(ng.Note)
	return validate.Struct(ng)
}

type SubjectMean struct {
	SubjectID   string  `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	Mean        float64 `json:"mean"`
	Count       int     `json:"count"`
}

// Summary holds grade statistics. Best and Weakest are nil when there are no grades.
type Summary struct {
	Count     int           `json:"count"`
	Mean      float64       `json:"mean"`
	Best      *SubjectMean  `json:"best"`
	Weakest   *SubjectMean  `json:"weakest"`
	BySubject []SubjectMean `json:"by_subject"`
}

// Mean returns the arithmetic mean of the grades, 0 if there are none.
func Mean(grades []Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g.Value
	}
	return sum / float64(len(grades))
}

// Summarize computes the overall mean and per-subject means, ordered by subject name.
func Summarize(grades []Grade) Summary {
	s := Summary{Count: len(grades), Mean: Mean(grades), BySubject: make([]SubjectMean, 0)}
	if len(grades) == 0 {
		return s
	}

	idx := make(map[string]int)
	sums := make([]float64, 0)
	for _, g := range grades {
		i, ok := idx[g.SubjectID]
		if !ok {
			i = len(s.BySubject)
			idx[g.SubjectID] = i
			s.BySubject = append(s.BySubject, SubjectMean{SubjectID: g.SubjectID, SubjectName: g.SubjectName})
			sums = append(sums, 0)
		}
		sums[i] += g.Value
		s.BySubject[i].Count++
	}
	for i := range s.BySubject {
		s.BySubject[i].Mean = sums[i] / float64(s.BySubject[i].Count)
	}
	sort.SliceStable(s.BySubject, func(i, j int) bool { return s.BySubject[i].SubjectName < s.BySubject[j].SubjectName })

	best, weakest := s.BySubject[0], s.BySubject[0]
	for _, sm := range s.BySubject[1:] {
		if sm.Mean > best.Mean {
			best = sm
		}
		if sm.Mean < weakest.Mean {
			weakest = sm
		}
	}
	s.Best, s.Weakest = &best, &weakest
	return s
}
