// Package dashboard assembles the read-only view-models rendered for each role.
package dashboard

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core/academic"
	"github.com/trezcool/college/core/grade"
	"github.com/trezcool/college/core/homework"
	"github.com/trezcool/college/core/news"
	"github.com/trezcool/college/core/notification"
	"github.com/trezcool/college/core/profile"
	"github.com/trezcool/college/core/rating"
	"github.com/trezcool/college/core/remark"
	"github.com/trezcool/college/core/schedule"
	"github.com/trezcool/college/core/user"
)

const (
	dashboardHomeworkLimit = 6
	dashboardNewsLimit     = 2
)

// Viewer is the authenticated identity a view-model is built for.
type Viewer struct {
	User     user.User
	Profiles profile.Profiles
}

func (v Viewer) Role() profile.Role {
	return v.Profiles.Role()
}

// NextLesson is the upcoming occurrence shown on dashboards and the schedule page.
// Counterpart is the teacher's name for students, the group code for teachers.
type NextLesson struct {
	Subject     string           `json:"subject"`
	Location    string           `json:"location"`
	Weekday     schedule.Weekday `json:"weekday"`
	Start       schedule.Clock   `json:"time_start"`
	End         schedule.Clock   `json:"time_end"`
	Counterpart string           `json:"counterpart"`
	At          time.Time        `json:"at"`
	TimestampMs int64            `json:"timestamp_ms"`
}

func newNextLesson(occ schedule.Occurrence, counterpart string) *NextLesson {
	return &NextLesson{
		Subject:     occ.Entry.SubjectName,
		Location:    occ.Entry.Location,
		Weekday:     occ.Entry.Weekday,
		Start:       occ.Entry.Start,
		End:         occ.Entry.End,
		Counterpart: counterpart,
		At:          occ.At,
		TimestampMs: occ.TimestampMs(),
	}
}

type StudentDashboard struct {
	Student    profile.Student     `json:"student"`
	NextLesson *NextLesson         `json:"next_lesson"`
	Homeworks  []homework.Homework `json:"homeworks"`
	MeanGrade  float64             `json:"mean_grade"`
	Attendance float64             `json:"attendance"`
	Place      int                 `json:"place"`
	GroupTotal int                 `json:"group_total"`
	News       []news.News         `json:"news"`
}

type TeacherDashboard struct {
	Teacher     profile.Teacher     `json:"teacher"`
	NextLesson  *NextLesson         `json:"next_lesson"`
	Groups      []schedule.GroupRef `json:"groups"`
	OpenRemarks int                 `json:"open_remarks"`
	News        []news.News         `json:"news"`
}

type DirectorDashboard struct {
	Director       profile.Director `json:"director"`
	StudentsCount  int              `json:"students_count"`
	TeachersCount  int              `json:"teachers_count"`
	MeanGPA        float64          `json:"mean_gpa"`
	MeanAttendance float64          `json:"mean_attendance"`
	OpenRemarks    int              `json:"open_remarks"`
	// TeachingMode is set when the director also teaches.
	TeachingMode *TeacherDashboard `json:"teaching_mode"`
	News         []news.News       `json:"news"`
}

// Dashboard holds the view-model of the viewer's role; the others are nil.
// A guest has none.
type Dashboard struct {
	Role     profile.Role       `json:"role"`
	Student  *StudentDashboard  `json:"student,omitempty"`
	Teacher  *TeacherDashboard  `json:"teacher,omitempty"`
	Director *DirectorDashboard `json:"director,omitempty"`
}

type Services struct {
	Profiles      *profile.Service
	Academic      *academic.Service
	Schedule      *schedule.Service
	Grades        *grade.Service
	Homeworks     *homework.Service
	Remarks       *remark.Service
	News          *news.Service
	Notifications *notification.Service
}

// Aggregator builds dashboards and page view-models from the domain services.
type Aggregator struct {
	svc Services
	loc *time.Location
	// Now is the clock used for next lesson lookups.
	Now func() time.Time
}

func NewAggregator(svc Services, loc *time.Location) *Aggregator {
	vala.BeginValidation().Validate(
		vala.IsNotNil(svc.Profiles, "profiles"),
		vala.IsNotNil(svc.Academic, "academic"),
		vala.IsNotNil(svc.Schedule, "schedule"),
		vala.IsNotNil(svc.Grades, "grades"),
		vala.IsNotNil(svc.Homeworks, "homeworks"),
		vala.IsNotNil(svc.Remarks, "remarks"),
		vala.IsNotNil(svc.News, "news"),
		vala.IsNotNil(svc.Notifications, "notifications"),
		vala.IsNotNil(loc, "loc"),
	).CheckAndPanic()

	return &Aggregator{svc: svc, loc: loc, Now: time.Now}
}

func (agg *Aggregator) now() time.Time {
	return agg.Now().In(agg.loc)
}

// Build dispatches on the viewer's role.
func (agg *Aggregator) Build(ctx context.Context, viewer Viewer) (Dashboard, error) {
	d := Dashboard{Role: viewer.Role()}
	var err error
	switch d.Role {
	case profile.RoleDirector:
		d.Director, err = agg.Director(ctx, viewer)
	case profile.RoleTeacher:
		d.Teacher, err = agg.Teacher(ctx, viewer)
	case profile.RoleStudent:
		d.Student, err = agg.Student(ctx, viewer)
	}
	if err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func (agg *Aggregator) Student(ctx context.Context, viewer Viewer) (*StudentDashboard, error) {
	st := viewer.Profiles.Student
	if st == nil {
		return nil, profile.ErrStudentNotFound
	}

	entries, err := agg.svc.Schedule.ForGroup(ctx, st.GroupID)
	if err != nil {
		return nil, errors.Wrap(err, "listing group schedule")
	}
	hws, err := agg.svc.Homeworks.List(ctx, homework.Filter{StudentID: st.ID, Limit: dashboardHomeworkLimit})
	if err != nil {
		return nil, errors.Wrap(err, "listing homework")
	}
	grades, err := agg.svc.Grades.List(ctx, grade.Filter{StudentID: st.ID})
	if err != nil {
		return nil, errors.Wrap(err, "listing grades")
	}
	groupmates, err := agg.svc.Profiles.ListStudents(ctx, profile.StudentFilter{GroupID: st.GroupID})
	if err != nil {
		return nil, errors.Wrap(err, "listing group students")
	}
	place, total, err := rating.Place(groupmates, st.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "ranking student %s", st.ID)
	}
	recent, err := agg.svc.News.Recent(ctx, dashboardNewsLimit)
	if err != nil {
		return nil, errors.Wrap(err, "listing news")
	}

	d := &StudentDashboard{
		Student:    *st,
		Homeworks:  hws,
		MeanGrade:  grade.Mean(grades),
		Attendance: st.Attendance,
		Place:      place,
		GroupTotal: total,
		News:       recent,
	}
	if occ, ok := schedule.FindNext(entries, agg.now()); ok {
		d.NextLesson = newNextLesson(occ, occ.Entry.TeacherName)
	}
	return d, nil
}

// Teacher builds the teacher dashboard. Directors holding a teacher profile get it too.
func (agg *Aggregator) Teacher(ctx context.Context, viewer Viewer) (*TeacherDashboard, error) {
	t := viewer.Profiles.Teacher
	if t == nil {
		return nil, profile.ErrTeacherNotFound
	}

	entries, err := agg.svc.Schedule.ForTeacher(ctx, t.ID)
	if err != nil {
		return nil, errors.Wrap(err, "listing teacher schedule")
	}
	open, err := agg.svc.Remarks.Count(ctx, remark.Filter{
		InvolvingTeacherID: t.ID,
		InvolvingAuthorID:  viewer.User.ID,
		Status:             remark.StatusOpen,
	})
	if err != nil {
		return nil, errors.Wrap(err, "counting open remarks")
	}
	recent, err := agg.svc.News.Recent(ctx, dashboardNewsLimit)
	if err != nil {
		return nil, errors.Wrap(err, "listing news")
	}

	d := &TeacherDashboard{
		Teacher:     *t,
		Groups:      schedule.DistinctGroups(entries),
		OpenRemarks: open,
		News:        recent,
	}
	if occ, ok := schedule.FindNext(entries, agg.now()); ok {
		d.NextLesson = newNextLesson(occ, occ.Entry.GroupCode)
	}
	return d, nil
}

func (agg *Aggregator) Director(ctx context.Context, viewer Viewer) (*DirectorDashboard, error) {
	dir := viewer.Profiles.Director
	if dir == nil {
		return nil, profile.ErrDirectorNotFound
	}

	stats, err := agg.svc.Profiles.StudentStats(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "computing student stats")
	}
	teachers, err := agg.svc.Profiles.CountTeachers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting teachers")
	}
	open, err := agg.svc.Remarks.Count(ctx, remark.Filter{Status: remark.StatusOpen})
	if err != nil {
		return nil, errors.Wrap(err, "counting open remarks")
	}
	recent, err := agg.svc.News.Recent(ctx, dashboardNewsLimit)
	if err != nil {
		return nil, errors.Wrap(err, "listing news")
	}

	d := &DirectorDashboard{
		Director:       *dir,
		StudentsCount:  stats.Count,
		TeachersCount:  teachers,
		MeanGPA:        stats.MeanGPA,
		MeanAttendance: stats.MeanAttendance,
		OpenRemarks:    open,
		News:           recent,
	}
	if stats.Count == 0 {
		d.MeanGPA, d.MeanAttendance = 0, 0
	}
	if viewer.Profiles.Teacher != nil {
		if d.TeachingMode, err = agg.Teacher(ctx, viewer); err != nil {
			return nil, err
		}
	}
	return d, nil
}
