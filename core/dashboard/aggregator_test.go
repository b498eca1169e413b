package dashboard_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/college/core/academic"
	"github.com/trezcool/college/core/profile"
	"github.com/trezcool/college/core/remark"
	"github.com/trezcool/college/core/schedule"
	"github.com/trezcool/college/core/user"
	"github.com/trezcool/college/tests"
)

// college is a small fixture: two groups, a teacher, a teaching director and three students.
type college struct {
	app *testutil.App
	ctx context.Context
	now time.Time

	po1, is1          academic.Group
	math, prog, eng   academic.Subject
	teacherUsr        user.User
	teacher           profile.Teacher
	directorUsr       user.User
	directorTeacher   profile.Teacher
	asel, bolot, aida user.User
	aselSt, bolotSt   profile.Student
	aidaSt            profile.Student
	mathMon, progWed  schedule.Entry
}

func newCollege(t *testing.T) *college {
	app := testutil.NewApp(t)
	c := &college{app: app, ctx: context.Background()}

	// 2024-01-01 is a Monday
	c.now = time.Date(2024, time.January, 1, 9, 0, 0, 0, app.Conf.Location())
	app.Dashboards.Now = func() time.Time { return c.now }

	c.po1, c.is1 = app.CreateGroup(t, "PO-1"), app.CreateGroup(t, "IS-1")
	c.math = app.CreateSubject(t, "MATH", "Mathematics")
	c.prog = app.CreateSubject(t, "PROG", "Programming")
	c.eng = app.CreateSubject(t, "ENG", "English")

	c.teacherUsr = app.CreateUser(t, "Timur Bakirov", "bakirov", "", "", true)
	c.teacher = app.CreateTeacher(t, c.teacherUsr, c.math, c.prog)
	c.directorUsr = app.CreateUser(t, "Aigul Sydykova", "director", "", "", true)
	app.CreateDirector(t, c.directorUsr)
	c.directorTeacher = app.CreateTeacher(t, c.directorUsr, c.eng)

	c.asel = app.CreateUser(t, "Asel Asanova", "asel", "", "", true)
	c.bolot = app.CreateUser(t, "Bolot Omurov", "bolot", "", "", true)
	c.aida = app.CreateUser(t, "Aida Kadyrova", "aida", "", "", true)
	c.aselSt = app.CreateStudent(t, c.asel, c.po1, 4.5, 95)
	c.bolotSt = app.CreateStudent(t, c.bolot, c.po1, 3.5, 80)
	c.aidaSt = app.CreateStudent(t, c.aida, c.is1, 5, 99)

	c.mathMon = app.CreateEntry(t, c.po1, c.math, c.teacher, schedule.Monday, "09:00", "10:30")
	c.progWed = app.CreateEntry(t, c.po1, c.prog, c.teacher, schedule.Wednesday, "09:00", "10:30")
	app.CreateEntry(t, c.is1, c.prog, c.teacher, schedule.Tuesday, "13:00", "14:30")
	app.CreateEntry(t, c.po1, c.eng, c.directorTeacher, schedule.Thursday, "11:00", "12:30")
	return c
}

func TestAggregator_Guest(t *testing.T) {
	c := newCollege(t)
	guest := c.app.CreateUser(t, "Visitor", "visitor", "", "", true)

	d, err := c.app.Dashboards.Build(c.ctx, c.app.Viewer(t, guest))
	require.NoError(t, err)
	assert.Equal(t, profile.RoleGuest, d.Role)
	assert.Nil(t, d.Student)
	assert.Nil(t, d.Teacher)
	assert.Nil(t, d.Director)
}

func TestAggregator_Student(t *testing.T) {
	c := newCollege(t)
	app := c.app

	app.CreateGrade(t, c.aselSt, c.math, 5)
	app.CreateGrade(t, c.aselSt, c.prog, 4)
	app.CreateGrade(t, c.bolotSt, c.math, 2)
	for i := 0; i < 8; i++ {
		app.CreateHomework(t, c.aselSt, c.math, fmt.Sprintf("Set %d", i), i%2 == 0)
	}
	app.CreateHomework(t, c.bolotSt, c.math, "Not mine", false)
	for i := 0; i < 3; i++ {
		app.CreateNews(t, fmt.Sprintf("News %d", i), c.now.Add(time.Duration(i)*time.Hour))
	}

	d, err := app.Dashboards.Build(c.ctx, app.Viewer(t, c.asel))
	require.NoError(t, err)
	require.Equal(t, profile.RoleStudent, d.Role)
	sd := d.Student
	require.NotNil(t, sd)

	// Monday 09:00 exactly: the Monday lesson rolls over, Wednesday comes first
	require.NotNil(t, sd.NextLesson)
	assert.Equal(t, "Programming", sd.NextLesson.Subject)
	assert.Equal(t, "Timur Bakirov", sd.NextLesson.Counterpart)
	assert.Equal(t, schedule.Wednesday, sd.NextLesson.Weekday)
	assert.True(t, sd.NextLesson.At.Equal(c.now.AddDate(0, 0, 2)))
	assert.Equal(t, sd.NextLesson.At.UnixMilli(), sd.NextLesson.TimestampMs)

	assert.InDelta(t, 4.5, sd.MeanGrade, 1e-9)
	assert.Equal(t, 95.0, sd.Attendance)
	assert.Equal(t, 1, sd.Place)
	assert.Equal(t, 2, sd.GroupTotal)

	require.Len(t, sd.Homeworks, 6)
	for _, hw := range sd.Homeworks[:4] {
		assert.False(t, hw.Completed, "pending homework comes first")
		assert.Equal(t, c.aselSt.ID, hw.StudentID)
	}

	require.Len(t, sd.News, 2)
	assert.Equal(t, "News 2", sd.News[0].Title)
	assert.Equal(t, "News 1", sd.News[1].Title)
}

func TestAggregator_StudentWithoutData(t *testing.T) {
	app := testutil.NewApp(t)
	grp := app.CreateGroup(t, "PO-1")
	usr := app.CreateUser(t, "Asel", "asel", "", "", true)
	app.CreateStudent(t, usr, grp, 0, 0)

	d, err := app.Dashboards.Build(context.Background(), app.Viewer(t, usr))
	require.NoError(t, err)
	require.NotNil(t, d.Student)
	assert.Nil(t, d.Student.NextLesson)
	assert.Zero(t, d.Student.MeanGrade)
	assert.Empty(t, d.Student.Homeworks)
	assert.Empty(t, d.Student.News)
	assert.Equal(t, 1, d.Student.Place)
	assert.Equal(t, 1, d.Student.GroupTotal)
}

func TestAggregator_Teacher(t *testing.T) {
	c := newCollege(t)
	app := c.app

	app.CreateRemark(t, c.aselSt, c.teacherUsr.ID, c.teacher.ID, remark.LevelWarn, false)
	app.CreateRemark(t, c.bolotSt, c.teacherUsr.ID, c.teacher.ID, remark.LevelInfo, true)
	app.CreateRemark(t, c.aidaSt, c.directorUsr.ID, "", remark.LevelCritical, false)

	d, err := app.Dashboards.Build(c.ctx, app.Viewer(t, c.teacherUsr))
	require.NoError(t, err)
	require.Equal(t, profile.RoleTeacher, d.Role)
	td := d.Teacher
	require.NotNil(t, td)

	require.NotNil(t, td.NextLesson)
	assert.Equal(t, schedule.Tuesday, td.NextLesson.Weekday)
	assert.Equal(t, "IS-1", td.NextLesson.Counterpart)

	require.Len(t, td.Groups, 2)
	assert.Equal(t, "IS-1", td.Groups[0].Code)
	assert.Equal(t, "PO-1", td.Groups[1].Code)
	assert.Equal(t, 1, td.OpenRemarks)
}

func TestAggregator_Director(t *testing.T) {
	c := newCollege(t)
	app := c.app

	app.CreateRemark(t, c.aselSt, c.teacherUsr.ID, c.teacher.ID, remark.LevelWarn, false)
	app.CreateRemark(t, c.aidaSt, c.directorUsr.ID, "", remark.LevelCritical, false)
	app.CreateRemark(t, c.bolotSt, c.teacherUsr.ID, c.teacher.ID, remark.LevelInfo, true)

	d, err := app.Dashboards.Build(c.ctx, app.Viewer(t, c.directorUsr))
	require.NoError(t, err)
	require.Equal(t, profile.RoleDirector, d.Role)
	dd := d.Director
	require.NotNil(t, dd)

	assert.Equal(t, 3, dd.StudentsCount)
	assert.Equal(t, 2, dd.TeachersCount)
	assert.InDelta(t, (4.5+3.5+5)/3, dd.MeanGPA, 1e-9)
	assert.InDelta(t, (95.0+80+99)/3, dd.MeanAttendance, 1e-9)
	assert.Equal(t, 2, dd.OpenRemarks)

	// the director also teaches: teaching mode holds their own lessons
	require.NotNil(t, dd.TeachingMode)
	require.NotNil(t, dd.TeachingMode.NextLesson)
	assert.Equal(t, "English", dd.TeachingMode.NextLesson.Subject)
	assert.Equal(t, "PO-1", dd.TeachingMode.NextLesson.Counterpart)
	assert.Equal(t, c.directorTeacher.ID, dd.TeachingMode.Teacher.ID)
	assert.Equal(t, 1, dd.TeachingMode.OpenRemarks, "the director authored one open remark")
}

func TestAggregator_DirectorOnly(t *testing.T) {
	app := testutil.NewApp(t)
	usr := app.CreateUser(t, "Aigul", "director", "", "", true)
	app.CreateDirector(t, usr)

	d, err := app.Dashboards.Build(context.Background(), app.Viewer(t, usr))
	require.NoError(t, err)
	require.NotNil(t, d.Director)
	assert.Nil(t, d.Director.TeachingMode)
	assert.Zero(t, d.Director.StudentsCount)
	assert.Zero(t, d.Director.MeanGPA)
	assert.Zero(t, d.Director.MeanAttendance)
}
