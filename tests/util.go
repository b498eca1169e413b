// Package testutil provides a wired application & fixtures for tests.
package testutil

import (
	"context"
	"io"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/college/apps/shared"
	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/academic"
	"github.com/trezcool/college/core/dashboard"
	"github.com/trezcool/college/core/grade"
	"github.com/trezcool/college/core/homework"
	"github.com/trezcool/college/core/news"
	"github.com/trezcool/college/core/notification"
	"github.com/trezcool/college/core/profile"
	"github.com/trezcool/college/core/remark"
	"github.com/trezcool/college/core/schedule"
	"github.com/trezcool/college/core/user"
	cachesvc "github.com/trezcool/college/services/cache"
	emailsvc "github.com/trezcool/college/services/email"
	logsvc "github.com/trezcool/college/services/logger"
	mediasvc "github.com/trezcool/college/services/media"
	inmemdb "github.com/trezcool/college/storage/database/inmem"
)

// App is a fully wired application. DB is nil unless the in-memory store backs it.
type App struct {
	*shared.Services

	Conf       *core.Config
	DB         *inmemdb.DB
	Repos      shared.Repositories
	Cache      *cachesvc.MemoryCache
	Media      *mediasvc.LocalStorage
	Mail       *emailsvc.ConsoleServiceMock
	Translator ut.Translator
	Validate   *validator.Validate
	Logger     core.Logger
}

func NewApp(t *testing.T) *App {
	t.Helper()
	db := inmemdb.Open()
	app := newApp(t, shared.MemoryRepositories(db))
	app.DB = db
	return app
}

// NewSQLApp wires the application over exec, usually a transaction rolled back by the test.
func NewSQLApp(t *testing.T, exec core.DBExecutor) *App {
	t.Helper()
	return newApp(t, shared.SQLRepositories(exec))
}

func newApp(t *testing.T, repos shared.Repositories) *App {
	conf := core.NewTestConfig()
	conf.Media.Dir = t.TempDir()

	logger := logsvc.NewRollbarLogger(io.Discard, "TEST", conf)
	user.LoadCommonPasswords(logger)

	app := &App{
		Conf:       conf,
		Repos:      repos,
		Cache:      cachesvc.NewMemoryCache(),
		Media:      mediasvc.NewLocalStorage(conf.Media.Dir, conf.Media.BaseURL),
		Mail:       emailsvc.NewConsoleServiceMock(conf, logger),
		Translator: core.NewTranslator(),
		Logger:     logger,
	}
	app.Validate = shared.NewValidator(app.Translator)
	app.Services = shared.NewServices(shared.ServicesDeps{
		Conf:     conf,
		Repos:    app.Repos,
		Cache:    app.Cache,
		Media:    app.Media,
		Mail:     app.Mail,
		Validate: app.Validate,
		Logger:   logger,
	})
	return app
}

// Viewer resolves the identity of usr the way the web layer does.
func (app *App) Viewer(t *testing.T, usr user.User) dashboard.Viewer {
	t.Helper()
	profiles, err := app.Profiles.Lookup(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("Viewer() failed: %v", err)
	}
	return dashboard.Viewer{User: usr, Profiles: profiles}
}

// CreateUser stores a user as is, bypassing the password policy.
func (app *App) CreateUser(t *testing.T, name, uname, email, pwd string, isActive bool, createdAt ...time.Time) user.User {
	t.Helper()
	return CreateUser(t, app.Repos.Users, name, uname, email, pwd, isActive, createdAt...)
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func (app *App) CreateGroup(t *testing.T, code string) academic.Group {
	t.Helper()
	grp, err := app.Academic.CreateGroup(context.Background(), academic.NewGroup{Name: "Group " + code, Code: code})
	if err != nil {
		t.Fatalf("createGroup() failed: %v", err)
	}
	return grp
}

func (app *App) CreateSubject(t *testing.T, code, name string) academic.Subject {
	t.Helper()
	subj, err := app.Academic.CreateSubject(context.Background(), academic.NewSubject{Name: name, Code: code})
	if err != nil {
		t.Fatalf("createSubject() failed: %v", err)
	}
	return subj
}

func (app *App) CreateStudent(t *testing.T, usr user.User, grp academic.Group, gpa, attendance float64) profile.Student {
	t.Helper()
	st, err := app.Profiles.OnboardStudent(context.Background(), profile.NewStudent{
		UserID:     usr.ID,
		GroupID:    grp.ID,
		Course:     2,
		Specialty:  "Software Engineering",
		GPA:        gpa,
		Attendance: attendance,
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return st
}

func (app *App) CreateTeacher(t *testing.T, usr user.User, subjects ...academic.Subject) profile.Teacher {
	t.Helper()
	ids := make([]string, 0, len(subjects))
	for _, subj := range subjects {
		ids = append(ids, subj.ID)
	}
	tchr, err := app.Profiles.OnboardTeacher(context.Background(), profile.NewTeacher{
		UserID:     usr.ID,
		Department: "Computer Science",
		SubjectIDs: ids,
	})
	if err != nil {
		t.Fatalf("createTeacher() failed: %v", err)
	}
	return tchr
}

func (app *App) CreateDirector(t *testing.T, usr user.User) profile.Director {
	t.Helper()
	dir, err := app.Profiles.OnboardDirector(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("createDirector() failed: %v", err)
	}
	return dir
}

// CreateEntry schedules a weekly lesson; start & end are "15:04" times.
func (app *App) CreateEntry(
	t *testing.T,
	grp academic.Group,
	subj academic.Subject,
	tchr profile.Teacher,
	day schedule.Weekday,
	start, end string,
) schedule.Entry {
	t.Helper()
	from, err := schedule.ParseClock(start)
	if err != nil {
		t.Fatalf("createEntry() failed: %v", err)
	}
	to, err := schedule.ParseClock(end)
	if err != nil {
		t.Fatalf("createEntry() failed: %v", err)
	}
	e, err := app.Schedule.Create(context.Background(), schedule.NewEntry{
		GroupID:   grp.ID,
		SubjectID: subj.ID,
		TeacherID: tchr.ID,
		Weekday:   day,
		Start:     from,
		End:       to,
		Location:  "Room 101",
	})
	if err != nil {
		t.Fatalf("createEntry() failed: %v", err)
	}
	return e
}

// The coursework fixtures below write to the store directly: they send no notifications.

func (app *App) CreateGrade(t *testing.T, st profile.Student, subj academic.Subject, value float64, createdAt ...time.Time) grade.Grade {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	g, err := app.Repos.Grades.CreateGrade(context.Background(), grade.Grade{
		StudentID: st.ID,
		SubjectID: subj.ID,
		Value:     value,
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("createGrade() failed: %v", err)
	}
	return g
}

func (app *App) CreateHomework(t *testing.T, st profile.Student, subj academic.Subject, title string, completed bool) homework.Homework {
	t.Helper()
	now := time.Now().UTC()
	hw, err := app.Repos.Homeworks.CreateHomework(context.Background(), homework.Homework{
		StudentID: st.ID,
		SubjectID: subj.ID,
		Title:     title,
		Deadline:  now.AddDate(0, 0, 7).Truncate(24 * time.Hour),
		Completed: completed,
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("createHomework() failed: %v", err)
	}
	return hw
}

// CreateRemark stores a remark on st; an empty teacherID means a director wrote it.
func (app *App) CreateRemark(t *testing.T, st profile.Student, authorID, teacherID string, level remark.Level, resolved bool) remark.Remark {
	t.Helper()
	r, err := app.Repos.Remarks.CreateRemark(context.Background(), remark.Remark{
		StudentID: st.ID,
		TeacherID: null.NewString(teacherID, teacherID != ""),
		AuthorID:  authorID,
		Level:     level,
		Text:      "Late to class",
		Resolved:  resolved,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createRemark() failed: %v", err)
	}
	return r
}

func (app *App) CreateNews(t *testing.T, title string, createdAt ...time.Time) news.News {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	n, err := app.Repos.News.CreateNews(context.Background(), news.News{
		Title:     title,
		Text:      title + " text",
		Tag:       "campus",
		CoverURL:  "/media/news/cover.jpg",
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("createNews() failed: %v", err)
	}
	return n
}

func (app *App) CreateNotification(t *testing.T, userID, title string, isRead bool) notification.Notification {
	t.Helper()
	n, err := app.Repos.Notifications.CreateNotification(context.Background(), notification.Notification{
		UserID:    userID,
		Type:      notification.TypeSystem,
		Title:     title,
		IsRead:    isRead,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createNotification() failed: %v", err)
	}
	return n
}
