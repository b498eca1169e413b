package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/college/core/profile"
)

type profileRepository struct {
	db *DB
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *DB) *profileRepository {
	return &profileRepository{db: db}
}

func matches(filter profile.GetFilter, id, userID string) bool {
	switch {
	case filter.ID != "":
		return filter.ID == id
	case filter.UserID != "":
		return filter.UserID == userID
	}
	return false
}

// Students

func (repo *profileRepository) CreateStudent(_ context.Context, st profile.Student) (profile.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, s := range repo.db.students {
		if s.UserID == st.UserID {
			return profile.Student{}, profile.ErrProfileExists
		}
	}
	st.ID = newID(st.ID)
	repo.db.students = append(repo.db.students, st)
	return repo.db.fillStudent(st), nil
}

func (repo *profileRepository) GetStudent(_ context.Context, filter profile.GetFilter) (profile.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, st := range repo.db.students {
		if matches(filter, st.ID, st.UserID) {
			return repo.db.fillStudent(st), nil
		}
	}
	return profile.Student{}, profile.ErrStudentNotFound
}

func (repo *profileRepository) ListStudents(_ context.Context, filter profile.StudentFilter) ([]profile.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students := make([]profile.Student, 0, len(repo.db.students))
	for _, st := range repo.db.students {
		if filter.GroupID != "" && st.GroupID != filter.GroupID {
			continue
		}
		students = append(students, repo.db.fillStudent(st))
	}
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func (repo *profileRepository) StudentStats(_ context.Context) (profile.StudentStats, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	stats := profile.StudentStats{Count: len(repo.db.students)}
	if stats.Count == 0 {
		return stats, nil
	}
	for _, st := range repo.db.students {
		stats.MeanGPA += st.GPA
		stats.MeanAttendance += st.Attendance
	}
	stats.MeanGPA /= float64(stats.Count)
	stats.MeanAttendance /= float64(stats.Count)
	return stats, nil
}

// Teachers

func (repo *profileRepository) CreateTeacher(_ context.Context, t profile.Teacher) (profile.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.teachers {
		if existing.UserID == t.UserID {
			return profile.Teacher{}, profile.ErrProfileExists
		}
	}
	t.ID = newID(t.ID)
	t.SubjectIDs = append(make([]string, 0, len(t.SubjectIDs)), t.SubjectIDs...)
	repo.db.teachers = append(repo.db.teachers, t)
	return repo.db.fillTeacher(t), nil
}

func (repo *profileRepository) GetTeacher(_ context.Context, filter profile.GetFilter) (profile.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, t := range repo.db.teachers {
		if matches(filter, t.ID, t.UserID) {
			return repo.db.fillTeacher(t), nil
		}
	}
	return profile.Teacher{}, profile.ErrTeacherNotFound
}

func (repo *profileRepository) ListTeachers(_ context.Context) ([]profile.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	teachers := make([]profile.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		teachers = append(teachers, repo.db.fillTeacher(t))
	}
	sort.SliceStable(teachers, func(i, j int) bool {
		if teachers[i].Name != teachers[j].Name {
			return teachers[i].Name < teachers[j].Name
		}
		return teachers[i].ID < teachers[j].ID
	})
	return teachers, nil
}

func (repo *profileRepository) CountTeachers(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.teachers), nil
}

func (repo *profileRepository) SetTeacherSubjects(_ context.Context, teacherID string, subjectIDs []string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, t := range repo.db.teachers {
		if t.ID == teacherID {
			repo.db.teachers[i].SubjectIDs = append(make([]string, 0, len(subjectIDs)), subjectIDs...)
			return nil
		}
	}
	return profile.ErrTeacherNotFound
}

// Directors

func (repo *profileRepository) CreateDirector(_ context.Context, d profile.Director) (profile.Director, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.directors {
		if existing.UserID == d.UserID {
			return profile.Director{}, profile.ErrProfileExists
		}
	}
	d.ID = newID(d.ID)
	repo.db.directors = append(repo.db.directors, d)
	d.Name = repo.db.userName(d.UserID)
	return d, nil
}

func (repo *profileRepository) GetDirector(_ context.Context, filter profile.GetFilter) (profile.Director, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, d := range repo.db.directors {
		if matches(filter, d.ID, d.UserID) {
			d.Name = repo.db.userName(d.UserID)
			return d, nil
		}
	}
	return profile.Director{}, profile.ErrDirectorNotFound
}
