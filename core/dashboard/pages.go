package dashboard

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/academic"
	"github.com/trezcool/college/core/grade"
	"github.com/trezcool/college/core/homework"
	"github.com/trezcool/college/core/news"
	"github.com/trezcool/college/core/notification"
	"github.com/trezcool/college/core/profile"
	"github.com/trezcool/college/core/rating"
	"github.com/trezcool/college/core/remark"
	"github.com/trezcool/college/core/schedule"
)

const (
	staffGradesLimit     = 300
	studentHomeworkLimit = 200
	staffHomeworkLimit   = 300
	remarksLimit         = 300
	ratingLimit          = 200
	ratingPodium         = 3
	notificationsLimit   = 200
	newsLimit            = 30

	noSubject = "—"

	ModeStudent = "student"
	ModeStaff   = "staff"
)

// scope tells which slice of the data a viewer may see on a page.
type scope int

const (
	scopeNone scope = iota
	scopeStudent
	scopeTeacher
	scopeDirector
)

// pageScope: students without staff profiles see their own data; teachers who are not
// directors see what they teach; directors see everything.
func pageScope(p profile.Profiles) scope {
	switch {
	case p.Student != nil && !p.IsStaff():
		return scopeStudent
	case p.Teacher != nil && p.Director == nil:
		return scopeTeacher
	case p.Director != nil:
		return scopeDirector
	}
	return scopeNone
}

func requireProfile(viewer Viewer) error {
	if viewer.Role() == profile.RoleGuest {
		return core.ErrForbidden
	}
	return nil
}

// Schedule

type ScheduleQuery struct {
	GroupID string `query:"group"`
}

type ScheduleRow struct {
	EntryID     string           `json:"entry_id"`
	Weekday     schedule.Weekday `json:"weekday"`
	Day         string           `json:"day"`
	Start       schedule.Clock   `json:"time_start"`
	End         schedule.Clock   `json:"time_end"`
	Subject     string           `json:"subject"`
	Location    string           `json:"location"`
	Counterpart string           `json:"counterpart"`
}

type SchedulePage struct {
	NextLesson      *NextLesson      `json:"next_lesson"`
	Rows            []ScheduleRow    `json:"rows"`
	Groups          []academic.Group `json:"groups,omitempty"`
	SelectedGroupID string           `json:"selected_group_id,omitempty"`
}

func (agg *Aggregator) Schedule(ctx context.Context, viewer Viewer, q ScheduleQuery) (SchedulePage, error) {
	if err := requireProfile(viewer); err != nil {
		return SchedulePage{}, err
	}
	p := viewer.Profiles
	page := SchedulePage{Rows: make([]ScheduleRow, 0)}

	var filter schedule.Filter
	switch {
	case p.Student != nil:
		filter.GroupID = p.Student.GroupID
	case p.Teacher != nil && p.Director == nil:
		filter.TeacherID = p.Teacher.ID
	default:
		groups, err := agg.svc.Academic.ListGroups(ctx)
		if err != nil {
			return SchedulePage{}, errors.Wrap(err, "listing groups")
		}
		page.Groups = groups
		page.SelectedGroupID = q.GroupID
		filter.GroupID = q.GroupID
	}

	entries, err := agg.svc.Schedule.List(ctx, filter)
	if err != nil {
		return SchedulePage{}, errors.Wrap(err, "listing schedule")
	}

	// teachers see groups; students & directors see teachers
	showGroup := p.Student == nil && p.Director == nil
	for _, e := range entries {
		counterpart := e.TeacherName
		if showGroup {
			counterpart = e.GroupCode
		}
		page.Rows = append(page.Rows, ScheduleRow{
			EntryID:     e.ID,
			Weekday:     e.Weekday,
			Day:         e.Weekday.String(),
			Start:       e.Start,
			End:         e.End,
			Subject:     e.SubjectName,
			Location:    e.Location,
			Counterpart: counterpart,
		})
	}

	if occ, ok := schedule.FindNext(entries, agg.now()); ok {
		counterpart := occ.Entry.TeacherName
		if p.Teacher != nil && p.Student == nil {
			counterpart = occ.Entry.GroupCode
		}
		page.NextLesson = newNextLesson(occ, counterpart)
	}
	return page, nil
}

// Grades

type GradesQuery struct {
	SubjectID string `query:"subject"`
	GroupID   string `query:"group"`
}

// GradesOverview summarizes a student's own grades.
// Best and Weakest are computed over every grade, regardless of the subject filter.
type GradesOverview struct {
	Mean       float64 `json:"mean"`
	Best       string  `json:"best"`
	Weakest    string  `json:"weakest"`
	Attendance float64 `json:"attendance"`
}

type GradesPage struct {
	Mode              string             `json:"mode"`
	Subjects          []academic.Subject `json:"subjects"`
	Groups            []academic.Group   `json:"groups,omitempty"`
	SelectedSubjectID string             `json:"selected_subject_id,omitempty"`
	SelectedGroupID   string             `json:"selected_group_id,omitempty"`
	Overview          *GradesOverview    `json:"overview,omitempty"`
	Grades            []grade.Grade      `json:"grades"`
}

func (agg *Aggregator) Grades(ctx context.Context, viewer Viewer, q GradesQuery) (GradesPage, error) {
	if err := requireProfile(viewer); err != nil {
		return GradesPage{}, err
	}
	subjects, err := agg.svc.Academic.ListSubjects(ctx)
	if err != nil {
		return GradesPage{}, errors.Wrap(err, "listing subjects")
	}

	p := viewer.Profiles
	if pageScope(p) == scopeStudent {
		return agg.studentGrades(ctx, *p.Student, subjects, q)
	}

	page := GradesPage{
		Mode:              ModeStaff,
		Subjects:          subjects,
		SelectedSubjectID: q.SubjectID,
		SelectedGroupID:   q.GroupID,
	}
	if page.Groups, err = agg.svc.Academic.ListGroups(ctx); err != nil {
		return GradesPage{}, errors.Wrap(err, "listing groups")
	}

	filter := grade.Filter{SubjectID: q.SubjectID, GroupID: q.GroupID, Limit: staffGradesLimit}
	if pageScope(p) == scopeTeacher {
		filter.RestrictSubjects = true
		filter.SubjectIDs = p.Teacher.SubjectIDs
		page.Subjects = academic.FilterSubjects(subjects, p.Teacher.SubjectIDs)
	}
	if page.Grades, err = agg.svc.Grades.List(ctx, filter); err != nil {
		return GradesPage{}, errors.Wrap(err, "listing grades")
	}
	return page, nil
}

func (agg *Aggregator) studentGrades(ctx context.Context, st profile.Student, subjects []academic.Subject, q GradesQuery) (GradesPage, error) {
	all, err := agg.svc.Grades.List(ctx, grade.Filter{StudentID: st.ID})
	if err != nil {
		return GradesPage{}, errors.Wrap(err, "listing grades")
	}
	summary := grade.Summarize(all)

	shown := all
	if q.SubjectID != "" {
		shown = make([]grade.Grade, 0, len(all))
		for _, g := range all {
			if g.SubjectID == q.SubjectID {
				shown = append(shown, g)
			}
		}
	}

	graded := make([]string, 0, len(summary.BySubject))
	for _, sm := range summary.BySubject {
		graded = append(graded, sm.SubjectID)
	}

	overview := &GradesOverview{
		Mean:       grade.Mean(shown),
		Best:       noSubject,
		Weakest:    noSubject,
		Attendance: st.Attendance,
	}
	if summary.Best != nil {
		overview.Best = summary.Best.SubjectName
		overview.Weakest = summary.Weakest.SubjectName
	}

	return GradesPage{
		Mode:              ModeStudent,
		Subjects:          academic.FilterSubjects(subjects, graded),
		SelectedSubjectID: q.SubjectID,
		Overview:          overview,
		Grades:            shown,
	}, nil
}

// Homeworks

type HomeworksPage struct {
	Mode        string              `json:"mode"`
	AllowToggle bool                `json:"allow_toggle"`
	Homeworks   []homework.Homework `json:"homeworks"`
	Counts      homework.Counts     `json:"counts"`
}

func (agg *Aggregator) Homeworks(ctx context.Context, viewer Viewer) (HomeworksPage, error) {
	if err := requireProfile(viewer); err != nil {
		return HomeworksPage{}, err
	}

	p := viewer.Profiles
	page := HomeworksPage{Mode: ModeStaff}
	limit := staffHomeworkLimit
	var filter homework.Filter
	switch pageScope(p) {
	case scopeStudent:
		page.Mode, page.AllowToggle = ModeStudent, true
		limit = studentHomeworkLimit
		filter.StudentID = p.Student.ID
	case scopeTeacher:
		filter.RestrictSubjects = true
		filter.SubjectIDs = p.Teacher.SubjectIDs
	}

	// counts cover everything in scope, not only the rows shown
	hws, err := agg.svc.Homeworks.List(ctx, filter)
	if err != nil {
		return HomeworksPage{}, errors.Wrap(err, "listing homework")
	}
	page.Counts = homework.CountOf(hws)
	page.Homeworks = core.Paginate(hws, limit)
	return page, nil
}

// Remarks

type RemarksQuery struct {
	Status string `query:"status"`
	Level  string `query:"level"`
}

type RemarksPage struct {
	Remarks   []remark.Remark `json:"remarks"`
	OpenCount int             `json:"open_count"`
	Status    remark.Status   `json:"status"`
	Level     string          `json:"level"`
}

const allLevels = "all"

func (agg *Aggregator) Remarks(ctx context.Context, viewer Viewer, q RemarksQuery) (RemarksPage, error) {
	if err := requireProfile(viewer); err != nil {
		return RemarksPage{}, err
	}

	var scoped remark.Filter
	p := viewer.Profiles
	switch pageScope(p) {
	case scopeStudent:
		scoped.StudentID = p.Student.ID
	case scopeTeacher:
		scoped.InvolvingTeacherID = p.Teacher.ID
		scoped.InvolvingAuthorID = viewer.User.ID
	}

	page := RemarksPage{Status: remark.ParseStatus(q.Status), Level: allLevels}
	filter := scoped
	filter.Status = page.Status
	filter.Limit = remarksLimit
	if lvl := remark.Level(strings.ToUpper(core.CleanString(q.Level))); lvl.Valid() {
		filter.Level = lvl
		page.Level = string(lvl)
	}

	var err error
	if page.Remarks, err = agg.svc.Remarks.List(ctx, filter); err != nil {
		return RemarksPage{}, errors.Wrap(err, "listing remarks")
	}
	scoped.Status = remark.StatusOpen
	if page.OpenCount, err = agg.svc.Remarks.Count(ctx, scoped); err != nil {
		return RemarksPage{}, errors.Wrap(err, "counting open remarks")
	}
	return page, nil
}

// Rating

type RatingQuery struct {
	GroupID string `query:"group"`
}

type RatingPage struct {
	Groups          []academic.Group `json:"groups"`
	SelectedGroupID string           `json:"selected_group_id"`
	Students        []rating.Entry   `json:"students"`
	Top             []rating.Entry   `json:"top"`
}

// Rating ranks the selected group, the student's own group by default.
// Without any group selected the whole college is ranked.
func (agg *Aggregator) Rating(ctx context.Context, viewer Viewer, q RatingQuery) (RatingPage, error) {
	if err := requireProfile(viewer); err != nil {
		return RatingPage{}, err
	}

	groups, err := agg.svc.Academic.ListGroups(ctx)
	if err != nil {
		return RatingPage{}, errors.Wrap(err, "listing groups")
	}
	page := RatingPage{Groups: groups, SelectedGroupID: q.GroupID}
	if page.SelectedGroupID == "" && viewer.Profiles.Student != nil {
		page.SelectedGroupID = viewer.Profiles.Student.GroupID
	}

	students, err := agg.svc.Profiles.ListStudents(ctx, profile.StudentFilter{GroupID: page.SelectedGroupID})
	if err != nil {
		return RatingPage{}, errors.Wrap(err, "listing students")
	}
	page.Students = core.Paginate(rating.Rank(students), ratingLimit)
	page.Top = core.Paginate(page.Students, ratingPodium)
	return page, nil
}

// Notifications

type NotificationsPage struct {
	Notifications []notification.Notification `json:"notifications"`
	UnreadCount   int                         `json:"unread_count"`
}

// Notifications lists the viewer's own notifications; guests have them too.
func (agg *Aggregator) Notifications(ctx context.Context, viewer Viewer) (NotificationsPage, error) {
	notes, err := agg.svc.Notifications.List(ctx, viewer.User.ID, notificationsLimit)
	if err != nil {
		return NotificationsPage{}, errors.Wrap(err, "listing notifications")
	}
	unread, err := agg.svc.Notifications.UnreadCount(ctx, viewer.User.ID)
	if err != nil {
		return NotificationsPage{}, errors.Wrap(err, "counting unread notifications")
	}
	return NotificationsPage{Notifications: notes, UnreadCount: unread}, nil
}

// News

type NewsPage struct {
	Items []news.News `json:"items"`
}

func (agg *Aggregator) News(ctx context.Context) (NewsPage, error) {
	items, err := agg.svc.News.Recent(ctx, newsLimit)
	if err != nil {
		return NewsPage{}, errors.Wrap(err, "listing news")
	}
	return NewsPage{Items: items}, nil
}
