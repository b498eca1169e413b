package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/college/core/grade"
	"github.com/trezcool/college/core/homework"
)

// courseworkMatch applies the filter fields shared by grades & homework.
func courseworkMatch(studentID, groupID, subjectID string, subjectIDs []string, restrict bool,
	rowStudentID, rowGroupID, rowSubjectID string) bool {
	switch {
	case studentID != "" && rowStudentID != studentID:
		return false
	case groupID != "" && rowGroupID != groupID:
		return false
	case subjectID != "" && rowSubjectID != subjectID:
		return false
	case restrict && !contains(subjectIDs, rowSubjectID):
		return false
	}
	return true
}

// Grades

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	g.ID = newID(g.ID)
	repo.db.grades = append(repo.db.grades, g)
	return g, nil
}

func (repo *gradeRepository) ListGrades(_ context.Context, filter grade.Filter) ([]grade.Grade, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	grades := make([]grade.Grade, 0)
	for _, g := range repo.db.grades {
		st, _ := repo.db.studentByID(g.StudentID)
		if !courseworkMatch(filter.StudentID, filter.GroupID, filter.SubjectID, filter.SubjectIDs, filter.RestrictSubjects,
			g.StudentID, st.GroupID, g.SubjectID) {
			continue
		}
		g.SubjectName = repo.db.subjectName(g.SubjectID)
		g.StudentName = st.Name
		g.GroupCode = st.GroupCode
		grades = append(grades, g)
	}
	grades = newestFirst(grades, func(g grade.Grade) time.Time { return g.CreatedAt })
	return limit(grades, filter.Limit), nil
}

// Homework

type homeworkRepository struct {
	db *DB
}

var _ homework.Repository = (*homeworkRepository)(nil) // interface compliance check

func NewHomeworkRepository(db *DB) *homeworkRepository {
	return &homeworkRepository{db: db}
}

func (repo *homeworkRepository) fill(hw homework.Homework) homework.Homework {
	st, _ := repo.db.studentByID(hw.StudentID)
	hw.OwnerID = st.UserID
	hw.SubjectName = repo.db.subjectName(hw.SubjectID)
	hw.StudentName = st.Name
	hw.GroupCode = st.GroupCode
	return hw
}

func (repo *homeworkRepository) CreateHomework(_ context.Context, hw homework.Homework) (homework.Homework, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	hw.ID = newID(hw.ID)
	repo.db.homeworks = append(repo.db.homeworks, hw)
	return repo.fill(hw), nil
}

func (repo *homeworkRepository) GetHomework(_ context.Context, id string) (homework.Homework, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, hw := range repo.db.homeworks {
		if hw.ID == id {
			return repo.fill(hw), nil
		}
	}
	return homework.Homework{}, homework.ErrNotFound
}

func (repo *homeworkRepository) ToggleHomework(_ context.Context, id string) (bool, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i := range repo.db.homeworks {
		if repo.db.homeworks[i].ID == id {
			repo.db.homeworks[i].Completed = !repo.db.homeworks[i].Completed
			return repo.db.homeworks[i].Completed, nil
		}
	}
	return false, homework.ErrNotFound
}

func (repo *homeworkRepository) ListHomeworks(_ context.Context, filter homework.Filter) ([]homework.Homework, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	hws := make([]homework.Homework, 0)
	for _, hw := range repo.db.homeworks {
		st, _ := repo.db.studentByID(hw.StudentID)
		if !courseworkMatch(filter.StudentID, filter.GroupID, filter.SubjectID, filter.SubjectIDs, filter.RestrictSubjects,
			hw.StudentID, st.GroupID, hw.SubjectID) {
			continue
		}
		hws = append(hws, repo.fill(hw))
	}
	hws = newestFirst(hws, func(hw homework.Homework) time.Time { return hw.CreatedAt })
	sort.SliceStable(hws, func(i, j int) bool {
		if hws[i].Completed != hws[j].Completed {
			return !hws[i].Completed
		}
		return hws[i].Deadline.Before(hws[j].Deadline)
	})
	return limit(hws, filter.Limit), nil
}
