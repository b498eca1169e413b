package dashboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/dashboard"
	"github.com/trezcool/college/core/remark"
	"github.com/trezcool/college/core/schedule"
)

func TestPages_Guest(t *testing.T) {
	c := newCollege(t)
	guest := c.app.Viewer(t, c.app.CreateUser(t, "Visitor", "visitor", "", "", true))
	agg := c.app.Dashboards

	pages := map[string]func() error{
		"schedule": func() error { _, err := agg.Schedule(c.ctx, guest, dashboard.ScheduleQuery{}); return err },
		"grades":   func() error { _, err := agg.Grades(c.ctx, guest, dashboard.GradesQuery{}); return err },
		"homework": func() error { _, err := agg.Homeworks(c.ctx, guest); return err },
		"remarks":  func() error { _, err := agg.Remarks(c.ctx, guest, dashboard.RemarksQuery{}); return err },
		"rating":   func() error { _, err := agg.Rating(c.ctx, guest, dashboard.RatingQuery{}); return err },
	}
	for name, page := range pages {
		if err := page(); !core.IsForbidden(err) {
			t.Errorf("%s page: got %v, want forbidden", name, err)
		}
	}

	c.app.CreateNotification(t, guest.User.ID, "Welcome", false)
	notes, err := agg.Notifications(c.ctx, guest)
	require.NoError(t, err)
	assert.Len(t, notes.Notifications, 1)
	assert.Equal(t, 1, notes.UnreadCount)

	c.app.CreateNews(t, "Open day")
	items, err := agg.News(c.ctx)
	require.NoError(t, err)
	assert.Len(t, items.Items, 1)
}

func TestPages_Schedule(t *testing.T) {
	c := newCollege(t)
	agg := c.app.Dashboards

	t.Run("student sees their group with teachers", func(t *testing.T) {
		page, err := agg.Schedule(c.ctx, c.app.Viewer(t, c.asel), dashboard.ScheduleQuery{GroupID: c.is1.ID})
		require.NoError(t, err)
		require.Len(t, page.Rows, 3)
		for _, row := range page.Rows {
			assert.NotEqual(t, "IS-1", row.Counterpart)
		}
		assert.Equal(t, "Monday", page.Rows[0].Day)
		assert.Equal(t, "Timur Bakirov", page.Rows[0].Counterpart)
		assert.Empty(t, page.Groups)
		require.NotNil(t, page.NextLesson)
		assert.Equal(t, schedule.Wednesday, page.NextLesson.Weekday)
	})

	t.Run("teacher sees their lessons with groups", func(t *testing.T) {
		page, err := agg.Schedule(c.ctx, c.app.Viewer(t, c.teacherUsr), dashboard.ScheduleQuery{})
		require.NoError(t, err)
		require.Len(t, page.Rows, 3)
		assert.Equal(t, "PO-1", page.Rows[0].Counterpart)
		require.NotNil(t, page.NextLesson)
		assert.Equal(t, "IS-1", page.NextLesson.Counterpart)
	})

	t.Run("director picks a group", func(t *testing.T) {
		viewer := c.app.Viewer(t, c.directorUsr)

		page, err := agg.Schedule(c.ctx, viewer, dashboard.ScheduleQuery{GroupID: c.is1.ID})
		require.NoError(t, err)
		require.Len(t, page.Rows, 1)
		assert.Equal(t, "Timur Bakirov", page.Rows[0].Counterpart)
		assert.Len(t, page.Groups, 2)
		assert.Equal(t, c.is1.ID, page.SelectedGroupID)

		page, err = agg.Schedule(c.ctx, viewer, dashboard.ScheduleQuery{})
		require.NoError(t, err)
		assert.Len(t, page.Rows, 4)
	})
}

func TestPages_Grades(t *testing.T) {
	c := newCollege(t)
	app := c.app
	app.CreateGrade(t, c.aselSt, c.math, 5)
	app.CreateGrade(t, c.aselSt, c.math, 4)
	app.CreateGrade(t, c.aselSt, c.prog, 3)
	app.CreateGrade(t, c.bolotSt, c.eng, 2)
	app.CreateGrade(t, c.aidaSt, c.prog, 5)

	t.Run("student overview", func(t *testing.T) {
		page, err := app.Dashboards.Grades(c.ctx, app.Viewer(t, c.asel), dashboard.GradesQuery{})
		require.NoError(t, err)
		assert.Equal(t, dashboard.ModeStudent, page.Mode)
		assert.Len(t, page.Grades, 3)
		assert.Len(t, page.Subjects, 2, "only graded subjects are offered")
		require.NotNil(t, page.Overview)
		assert.InDelta(t, 4.0, page.Overview.Mean, 1e-9)
		assert.Equal(t, "Mathematics", page.Overview.Best)
		assert.Equal(t, "Programming", page.Overview.Weakest)
		assert.Equal(t, 95.0, page.Overview.Attendance)
	})

	t.Run("student filter by subject", func(t *testing.T) {
		page, err := app.Dashboards.Grades(c.ctx, app.Viewer(t, c.asel), dashboard.GradesQuery{SubjectID: c.math.ID})
		require.NoError(t, err)
		assert.Len(t, page.Grades, 2)
		assert.InDelta(t, 4.5, page.Overview.Mean, 1e-9)
		assert.Equal(t, "Programming", page.Overview.Weakest)
	})

	t.Run("student without grades", func(t *testing.T) {
		page, err := app.Dashboards.Grades(c.ctx, app.Viewer(t, c.aida), dashboard.GradesQuery{SubjectID: c.math.ID})
		require.NoError(t, err)
		assert.Empty(t, page.Grades)
		assert.Zero(t, page.Overview.Mean)
	})

	t.Run("teacher sees taught subjects", func(t *testing.T) {
		page, err := app.Dashboards.Grades(c.ctx, app.Viewer(t, c.teacherUsr), dashboard.GradesQuery{})
		require.NoError(t, err)
		assert.Equal(t, dashboard.ModeStaff, page.Mode)
		assert.Nil(t, page.Overview)
		assert.Len(t, page.Grades, 4)
		assert.Len(t, page.Subjects, 2)
	})

	t.Run("director filters by group", func(t *testing.T) {
		page, err := app.Dashboards.Grades(c.ctx, app.Viewer(t, c.directorUsr), dashboard.GradesQuery{GroupID: c.po1.ID})
		require.NoError(t, err)
		assert.Len(t, page.Grades, 4)
		assert.Len(t, page.Subjects, 3)
		assert.Len(t, page.Groups, 2)
	})
}

func TestPages_Homeworks(t *testing.T) {
	c := newCollege(t)
	app := c.app
	app.CreateHomework(t, c.aselSt, c.math, "Integrals", false)
	app.CreateHomework(t, c.aselSt, c.prog, "Linked lists", true)
	app.CreateHomework(t, c.bolotSt, c.eng, "Essay", false)

	tests := []struct {
		name       string
		viewer     dashboard.Viewer
		wantMode   string
		wantToggle bool
		wantCounts struct{ total, completed, pending int }
	}{
		{"student", app.Viewer(t, c.asel), dashboard.ModeStudent, true, struct{ total, completed, pending int }{2, 1, 1}},
		{"teacher", app.Viewer(t, c.teacherUsr), dashboard.ModeStaff, false, struct{ total, completed, pending int }{2, 1, 1}},
		{"director", app.Viewer(t, c.directorUsr), dashboard.ModeStaff, false, struct{ total, completed, pending int }{3, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := app.Dashboards.Homeworks(c.ctx, tt.viewer)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, page.Mode)
			assert.Equal(t, tt.wantToggle, page.AllowToggle)
			assert.Equal(t, tt.wantCounts.total, page.Counts.Total)
			assert.Equal(t, tt.wantCounts.completed, page.Counts.Completed)
			assert.Equal(t, tt.wantCounts.pending, page.Counts.Pending)
			assert.Len(t, page.Homeworks, tt.wantCounts.total)
		})
	}
}

func TestPages_Remarks(t *testing.T) {
	c := newCollege(t)
	app := c.app
	app.CreateRemark(t, c.aselSt, c.teacherUsr.ID, c.teacher.ID, remark.LevelWarn, false)
	app.CreateRemark(t, c.aselSt, c.teacherUsr.ID, c.teacher.ID, remark.LevelInfo, true)
	app.CreateRemark(t, c.bolotSt, c.directorUsr.ID, "", remark.LevelCritical, false)

	tests := []struct {
		name      string
		viewer    dashboard.Viewer
		query     dashboard.RemarksQuery
		wantLen   int
		wantOpen  int
		wantLevel string
	}{
		{"student open", app.Viewer(t, c.asel), dashboard.RemarksQuery{}, 1, 1, "all"},
		{"student all", app.Viewer(t, c.asel), dashboard.RemarksQuery{Status: "all"}, 2, 1, "all"},
		{"other student", app.Viewer(t, c.aida), dashboard.RemarksQuery{Status: "all"}, 0, 0, "all"},
		{"teacher", app.Viewer(t, c.teacherUsr), dashboard.RemarksQuery{Status: "all"}, 2, 1, "all"},
		{"teacher resolved", app.Viewer(t, c.teacherUsr), dashboard.RemarksQuery{Status: "resolved"}, 1, 1, "all"},
		{"director", app.Viewer(t, c.directorUsr), dashboard.RemarksQuery{}, 2, 2, "all"},
		{"director by level", app.Viewer(t, c.directorUsr), dashboard.RemarksQuery{Level: " critical "}, 1, 2, "CRITICAL"},
		{"unknown level ignored", app.Viewer(t, c.directorUsr), dashboard.RemarksQuery{Status: "lol", Level: "lol"}, 2, 2, "all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := app.Dashboards.Remarks(c.ctx, tt.viewer, tt.query)
			require.NoError(t, err)
			assert.Len(t, page.Remarks, tt.wantLen)
			assert.Equal(t, tt.wantOpen, page.OpenCount)
			assert.Equal(t, tt.wantLevel, page.Level)
		})
	}
}

func TestPages_Rating(t *testing.T) {
	c := newCollege(t)
	agg := c.app.Dashboards

	t.Run("student defaults to their group", func(t *testing.T) {
		page, err := agg.Rating(c.ctx, c.app.Viewer(t, c.bolot), dashboard.RatingQuery{})
		require.NoError(t, err)
		assert.Equal(t, c.po1.ID, page.SelectedGroupID)
		require.Len(t, page.Students, 2)
		assert.Equal(t, c.aselSt.ID, page.Students[0].Student.ID)
		assert.Equal(t, 2, page.Students[1].Place)
		assert.Len(t, page.Top, 2)
	})

	t.Run("director ranks the whole college", func(t *testing.T) {
		page, err := agg.Rating(c.ctx, c.app.Viewer(t, c.directorUsr), dashboard.RatingQuery{})
		require.NoError(t, err)
		assert.Empty(t, page.SelectedGroupID)
		require.Len(t, page.Students, 3)
		assert.Equal(t, c.aidaSt.ID, page.Students[0].Student.ID)
		assert.Len(t, page.Groups, 2)
	})

	t.Run("explicit group", func(t *testing.T) {
		page, err := agg.Rating(c.ctx, c.app.Viewer(t, c.asel), dashboard.RatingQuery{GroupID: c.is1.ID})
		require.NoError(t, err)
		require.Len(t, page.Students, 1)
		assert.Equal(t, 1, page.Students[0].Place)
	})
}
