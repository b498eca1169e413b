// Package inmemdb is an in-memory implementation of the domain repositories, used in development & tests.
package inmemdb

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/college/core/academic"
	"github.com/trezcool/college/core/grade"
	"github.com/trezcool/college/core/homework"
	"github.com/trezcool/college/core/news"
	"github.com/trezcool/college/core/notification"
	"github.com/trezcool/college/core/profile"
	"github.com/trezcool/college/core/remark"
	"github.com/trezcool/college/core/schedule"
	"github.com/trezcool/college/core/user"
)

// DB holds every table in insertion order. A single lock guards all of them.
type DB struct {
	mu sync.RWMutex

	users         []user.User
	groups        []academic.Group
	subjects      []academic.Subject
	students      []profile.Student
	teachers      []profile.Teacher
	directors     []profile.Director
	entries       []schedule.Entry
	grades        []grade.Grade
	homeworks     []homework.Homework
	remarks       []remark.Remark
	news          []news.News
	notifications []notification.Notification
}

func Open() *DB {
	return &DB{}
}

// Repositories bundles every repository over one DB.
type Repositories struct {
	Users         *userRepository
	Academic      *academicRepository
	Profiles      *profileRepository
	Schedule      *scheduleRepository
	Grades        *gradeRepository
	Homeworks     *homeworkRepository
	Remarks       *remarkRepository
	News          *newsRepository
	Notifications *notificationRepository
}

func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Academic:      NewAcademicRepository(db),
		Profiles:      NewProfileRepository(db),
		Schedule:      NewScheduleRepository(db),
		Grades:        NewGradeRepository(db),
		Homeworks:     NewHomeworkRepository(db),
		Remarks:       NewRemarkRepository(db),
		News:          NewNewsRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

// newestFirst orders rows by creation time, newest first; ties keep the latest inserted first.
func newestFirst[T any](rows []T, createdAt func(T) time.Time) []T {
	out := make([]T, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, rows[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return createdAt(out[i]).After(createdAt(out[j])) })
	return out
}

func limit[T any](rows []T, n int) []T {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// joins; callers hold the lock

func (db *DB) userByID(id string) (user.User, bool) {
	for _, u := range db.users {
		if u.ID == id {
			return u, true
		}
	}
	return user.User{}, false
}

func (db *DB) userName(id string) string {
	u, _ := db.userByID(id)
	return u.DisplayName()
}

func (db *DB) groupCode(id string) string {
	for _, g := range db.groups {
		if g.ID == id {
			return g.Code
		}
	}
	return ""
}

func (db *DB) subjectName(id string) string {
	for _, s := range db.subjects {
		if s.ID == id {
			return s.Name
		}
	}
	return ""
}

func (db *DB) fillStudent(st profile.Student) profile.Student {
	st.Name = db.userName(st.UserID)
	st.GroupCode = db.groupCode(st.GroupID)
	return st
}

func (db *DB) studentByID(id string) (profile.Student, bool) {
	for _, st := range db.students {
		if st.ID == id {
			return db.fillStudent(st), true
		}
	}
	return profile.Student{}, false
}

func (db *DB) fillTeacher(t profile.Teacher) profile.Teacher {
	t.Name = db.userName(t.UserID)
	t.SubjectIDs = append(make([]string, 0, len(t.SubjectIDs)), t.SubjectIDs...)
	return t
}

func (db *DB) teacherByID(id string) (profile.Teacher, bool) {
	for _, t := range db.teachers {
		if t.ID == id {
			return db.fillTeacher(t), true
		}
	}
	return profile.Teacher{}, false
}
