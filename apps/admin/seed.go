package main

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

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

const defaultSeedPassword = "Kampus#Demo2024"

type (
	seedUser struct {
		username, name, email string
	}

	seedStudent struct {
		seedUser
		group      string
		gpa        float64
		attendance float64
	}

	seedTeacher struct {
		seedUser
		department string
		subjects   []string
	}

	seedLesson struct {
		group, subject, teacher string
		day                     schedule.Weekday
		start, end              schedule.Clock
		location                string
	}
)

var (
	seedGroups = []academic.NewGroup{
		{Name: "Software Engineering, 2nd year", Code: "PO-1"},
		{Name: "Information Systems, 2nd year", Code: "IS-1"},
	}
	seedSubjects = []academic.NewSubject{
		{Name: "Mathematics", Code: "MATH"},
		{Name: "Programming", Code: "PROG"},
		{Name: "Databases", Code: "DB"},
		{Name: "English", Code: "ENG"},
	}
	// the director also teaches English
	seedDirector = seedTeacher{
		seedUser:   seedUser{username: "director", name: "Aigul Sydykova", email: "director@college.local"},
		department: "Languages",
		subjects:   []string{"ENG"},
	}
	seedTeachers = []seedTeacher{
		{
			seedUser:   seedUser{username: "bakirov", name: "Timur Bakirov", email: "bakirov@college.local"},
			department: "Computer Science",
			subjects:   []string{"PROG", "DB"},
		},
		{
			seedUser:   seedUser{username: "ivanova", name: "Elena Ivanova", email: "ivanova@college.local"},
			department: "Mathematics",
			subjects:   []string{"MATH"},
		},
	}
	seedStudents = []seedStudent{
		{seedUser: seedUser{username: "asanov", name: "Bekzat Asanov"}, group: "PO-1", gpa: 4.6, attendance: 97},
		{seedUser: seedUser{username: "omurova", name: "Nurai Omurova"}, group: "PO-1", gpa: 4.1, attendance: 91},
		{seedUser: seedUser{username: "petrov", name: "Ilya Petrov"}, group: "PO-1", gpa: 3.4, attendance: 78},
		{seedUser: seedUser{username: "kadyrova", name: "Aida Kadyrova"}, group: "IS-1", gpa: 4.8, attendance: 99},
		{seedUser: seedUser{username: "sultanov", name: "Erlan Sultanov"}, group: "IS-1", gpa: 3.9, attendance: 85},
	}
	seedLessons = []seedLesson{
		{"PO-1", "MATH", "ivanova", schedule.Monday, schedule.NewClock(9, 0), schedule.NewClock(10, 30), "Room 204"},
		{"PO-1", "PROG", "bakirov", schedule.Monday, schedule.NewClock(10, 40), schedule.NewClock(12, 10), "Lab 3"},
		{"PO-1", "DB", "bakirov", schedule.Wednesday, schedule.NewClock(9, 0), schedule.NewClock(10, 30), "Lab 3"},
		{"PO-1", "ENG", "director", schedule.Thursday, schedule.NewClock(13, 0), schedule.NewClock(14, 30), "Room 101"},
		{"PO-1", "PROG", "bakirov", schedule.Friday, schedule.NewClock(10, 40), schedule.NewClock(12, 10), "Lab 3"},
		{"IS-1", "DB", "bakirov", schedule.Tuesday, schedule.NewClock(9, 0), schedule.NewClock(10, 30), "Lab 2"},
		{"IS-1", "MATH", "ivanova", schedule.Tuesday, schedule.NewClock(10, 40), schedule.NewClock(12, 10), "Room 204"},
		{"IS-1", "ENG", "director", schedule.Wednesday, schedule.NewClock(13, 0), schedule.NewClock(14, 30), "Room 101"},
		{"IS-1", "PROG", "bakirov", schedule.Friday, schedule.NewClock(9, 0), schedule.NewClock(10, 30), "Lab 2"},
	}
)

// seeder keeps the records created so far, by code / username.
type seeder struct {
	cli      *commandLine
	pwd      string
	groups   map[string]academic.Group
	subjects map[string]academic.Subject
	users    map[string]user.User
	teachers map[string]profile.Teacher
	students []profile.Student
}

// seed loads a demo college: groups, subjects, staff, students, their schedule & coursework, news.
func (cli *commandLine) seed(pwd string) error {
	s := &seeder{
		cli:      cli,
		pwd:      pwd,
		groups:   make(map[string]academic.Group),
		subjects: make(map[string]academic.Subject),
		users:    make(map[string]user.User),
		teachers: make(map[string]profile.Teacher),
	}
	ctx := context.Background()

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"academics", s.academics},
		{"staff", s.staff},
		{"students", s.studentProfiles},
		{"schedule", s.schedule},
		{"coursework", s.coursework},
		{"news", s.news},
		{"notifications", s.welcome},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return errors.Wrapf(err, "seeding %s", step.name)
		}
		fmt.Printf("seeded %s\n", step.name)
	}
	return nil
}

func (s *seeder) academics(ctx context.Context) error {
	for _, ng := range seedGroups {
		grp, err := s.cli.svc.Academic.CreateGroup(ctx, ng)
		if err != nil {
			return err
		}
		s.groups[grp.Code] = grp
	}
	for _, ns := range seedSubjects {
		subj, err := s.cli.svc.Academic.CreateSubject(ctx, ns)
		if err != nil {
			return err
		}
		s.subjects[subj.Code] = subj
	}
	return nil
}

func (s *seeder) createUser(ctx context.Context, su seedUser) (user.User, error) {
	usr, err := s.cli.svc.Users.Create(ctx, user.NewUser{
		Name:            su.name,
		Username:        su.username,
		Email:           su.email,
		Password:        s.pwd,
		PasswordConfirm: s.pwd,
	})
	if err != nil {
		return user.User{}, errors.Wrapf(err, "creating user %s", su.username)
	}
	s.users[usr.Username] = usr
	return usr, nil
}

func (s *seeder) createTeacher(ctx context.Context, usr user.User, st seedTeacher) error {
	ids := make([]string, 0, len(st.subjects))
	for _, code := range st.subjects {
		ids = append(ids, s.subjects[code].ID)
	}
	t, err := s.cli.svc.Profiles.OnboardTeacher(ctx, profile.NewTeacher{
		UserID:     usr.ID,
		Department: st.department,
		SubjectIDs: ids,
	})
	if err != nil {
		return err
	}
	s.teachers[usr.Username] = t
	return nil
}

func (s *seeder) staff(ctx context.Context) error {
	dir, err := s.createUser(ctx, seedDirector.seedUser)
	if err != nil {
		return err
	}
	if _, err = s.cli.svc.Profiles.OnboardDirector(ctx, dir.ID); err != nil {
		return err
	}
	if err = s.createTeacher(ctx, dir, seedDirector); err != nil {
		return err
	}

	for _, st := range seedTeachers {
		usr, err := s.createUser(ctx, st.seedUser)
		if err != nil {
			return err
		}
		if err = s.createTeacher(ctx, usr, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) studentProfiles(ctx context.Context) error {
	for _, ss := range seedStudents {
		usr, err := s.createUser(ctx, ss.seedUser)
		if err != nil {
			return err
		}
		st, err := s.cli.svc.Profiles.OnboardStudent(ctx, profile.NewStudent{
			UserID:     usr.ID,
			GroupID:    s.groups[ss.group].ID,
			Course:     2,
			Specialty:  s.groups[ss.group].Name,
			GPA:        ss.gpa,
			Attendance: ss.attendance,
		})
		if err != nil {
			return err
		}
		s.students = append(s.students, st)
	}
	return nil
}

func (s *seeder) schedule(ctx context.Context) error {
	for _, l := range seedLessons {
		_, err := s.cli.svc.Schedule.Create(ctx, schedule.NewEntry{
			GroupID:   s.groups[l.group].ID,
			SubjectID: s.subjects[l.subject].ID,
			TeacherID: s.teachers[l.teacher].ID,
			Weekday:   l.day,
			Start:     l.start,
			End:       l.end,
			Location:  l.location,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) coursework(ctx context.Context) error {
	values := []float64{5, 4, 4.5, 3, 5, 4}
	codes := []string{"MATH", "PROG", "DB", "ENG"}
	deadline := time.Now().UTC().AddDate(0, 0, 7)

	for i, st := range s.students {
		for j, code := range codes {
			_, err := s.cli.svc.Grades.Create(ctx, grade.NewGrade{
				StudentID: st.ID,
				SubjectID: s.subjects[code].ID,
				Value:     values[(i+j)%len(values)],
			})
			if err != nil {
				return err
			}
		}
		for j, code := range codes[:2] {
			_, err := s.cli.svc.Homeworks.Create(ctx, homework.NewHomework{
				StudentID:   st.ID,
				SubjectID:   s.subjects[code].ID,
				Title:       fmt.Sprintf("%s exercises, set %d", s.subjects[code].Name, j+1),
				Description: "Solve every exercise of the set and hand in your notes.",
				Deadline:    deadline.AddDate(0, 0, j*3),
			})
			if err != nil {
				return err
			}
		}
	}

	// one remark from a teacher, one from the director
	bakirov, director := s.users["bakirov"], s.users["director"]
	remarks := []remark.NewRemark{
		{
			StudentID: s.students[2].ID,
			TeacherID: s.teachers["bakirov"].ID,
			AuthorID:  bakirov.ID,
			Level:     remark.LevelWarn,
			Text:      "Missed two lab sessions in a row.",
		},
		{
			StudentID: s.students[4].ID,
			AuthorID:  director.ID,
			Level:     remark.LevelInfo,
			Text:      "Please update your contact details at the office.",
		},
	}
	for _, nr := range remarks {
		if _, err := s.cli.svc.Remarks.Create(ctx, nr); err != nil {
			return err
		}
	}
	return nil
}

// coverImage renders a plain colored cover.
func coverImage(c color.Color) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	img := imaging.New(1280, 720, c)
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (s *seeder) news(ctx context.Context) error {
	items := []struct {
		nn    news.NewNews
		color color.Color
	}{
		{news.NewNews{Title: "Welcome week", Text: "Meet your groups and teachers during the welcome week.", Tag: "campus"},
			color.NRGBA{R: 32, G: 96, B: 160, A: 255}},
		{news.NewNews{Title: "Programming contest", Text: "Registration for the annual programming contest is open.", Tag: "events"},
			color.NRGBA{R: 160, G: 64, B: 32, A: 255}},
		{news.NewNews{Title: "Library hours", Text: "The library is now open until 20:00 on weekdays.", Tag: "campus"},
			color.NRGBA{R: 48, G: 128, B: 64, A: 255}},
	}
	for _, item := range items {
		cover, err := coverImage(item.color)
		if err != nil {
			return errors.Wrap(err, "rendering cover")
		}
		item.nn.Cover = cover
		if _, err = s.cli.svc.News.Create(ctx, item.nn); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) welcome(ctx context.Context) error {
	for _, usr := range s.users {
		_, err := s.cli.svc.Notifications.Send(ctx, notification.NewNotification{
			UserID:  usr.ID,
			Type:    notification.TypeSystem,
			Title:   "Welcome to the college portal",
			Message: "Your dashboard shows your next lesson, homework and news.",
			Link:    "/dashboard",
		})
		if err != nil {
			return err
		}
	}
	return nil
}
