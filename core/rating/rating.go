// Package rating ranks students of a group by academic results.
package rating

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/college/core/profile"
)

// ErrNotRanked is returned when a student is missing from the ranking it should be part of.
var ErrNotRanked = errors.New("student not found in group ranking")

// Entry is a ranked student.
type Entry struct {
	Place   int             `json:"place"`
	Student profile.Student `json:"student"`
}

// less orders by GPA desc, attendance desc, name asc; ID breaks remaining ties.
func less(a, b profile.Student) bool {
	if a.GPA != b.GPA {
		return a.GPA > b.GPA
	}
	if a.Attendance != b.Attendance {
		return a.Attendance > b.Attendance
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// Rank returns a ranked copy of students; places start at 1.
func Rank(students []profile.Student) []Entry {
	sorted := make([]profile.Student, len(students))
	copy(sorted, students)
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	entries := make([]Entry, 0, len(sorted))
	for i, st := range sorted {
		entries = append(entries, Entry{Place: i + 1, Student: st})
	}
	return entries
}

// Place returns the 1-based place of the student within students, and the number of students ranked.
func Place(students []profile.Student, studentID string) (place, total int, err error) {
	ranked := Rank(students)
	for _, e := range ranked {
		if e.Student.ID == studentID {
			return e.Place, len(ranked), nil
		}
	}
	return 0, len(ranked), ErrNotRanked
}
