package profile

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/academic"
	"github.com/trezcool/college/core/user"
)

var (
	// errors
	ErrStudentNotFound  = core.NewNotFoundError("student")
	ErrTeacherNotFound  = core.NewNotFoundError("teacher")
	ErrDirectorNotFound = core.NewNotFoundError("director")
	ErrProfileExists    = errors.New("this user already has a profile of this kind")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, st Student) (Student, error)
		GetStudent(ctx context.Context, filter GetFilter) (Student, error)
		// ListStudents returns students ordered by name.
		ListStudents(ctx context.Context, filter StudentFilter) ([]Student, error)
		StudentStats(ctx context.Context) (StudentStats, error)

		// CreateTeacher also stores Teacher.SubjectIDs.
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		GetTeacher(ctx context.Context, filter GetFilter) (Teacher, error)
		ListTeachers(ctx context.Context) ([]Teacher, error)
		CountTeachers(ctx context.Context) (int, error)
		SetTeacherSubjects(ctx context.Context, teacherID string, subjectIDs []string) error

		CreateDirector(ctx context.Context, d Director) (Director, error)
		GetDirector(ctx context.Context, filter GetFilter) (Director, error)
	}

	Service struct {
		repo     Repository
		users    *user.Service
		academic *academic.Service
		validate *validator.Validate
	}
)

func NewService(repo Repository, users *user.Service, academicSvc *academic.Service, validate *validator.Validate) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(users, "users"),
		vala.IsNotNil(academicSvc, "academicSvc"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{repo: repo, users: users, academic: academicSvc, validate: validate}
}

// Lookup loads every profile the identity holds.
func (svc *Service) Lookup(ctx context.Context, userID string) (Profiles, error) {
	var profiles Profiles
	if userID == "" {
		return profiles, nil
	}
	filter := GetFilter{UserID: userID}

	st, err := svc.repo.GetStudent(ctx, filter)
	switch {
	case err == nil:
		profiles.Student = &st
	case !core.IsNotFound(err):
		return Profiles{}, errors.Wrap(err, "getting student profile")
	}

	t, err := svc.repo.GetTeacher(ctx, filter)
	switch {
	case err == nil:
		profiles.Teacher = &t
	case !core.IsNotFound(err):
		return Profiles{}, errors.Wrap(err, "getting teacher profile")
	}

	d, err := svc.repo.GetDirector(ctx, filter)
	switch {
	case err == nil:
		profiles.Director = &d
	case !core.IsNotFound(err):
		return Profiles{}, errors.Wrap(err, "getting director profile")
	}
	return profiles, nil
}

func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{ID: id})
}

func (svc *Service) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, GetFilter{ID: id})
}

func (svc *Service) GetStudentByUser(ctx context.Context, userID string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{UserID: userID})
}

func (svc *Service) GetTeacherByUser(ctx context.Context, userID string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, GetFilter{UserID: userID})
}

func (svc *Service) ListStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	return svc.repo.ListStudents(ctx, filter)
}

func (svc *Service) ListTeachers(ctx context.Context) ([]Teacher, error) {
	return svc.repo.ListTeachers(ctx)
}

func (svc *Service) StudentStats(ctx context.Context) (StudentStats, error) {
	return svc.repo.StudentStats(ctx)
}

func (svc *Service) CountTeachers(ctx context.Context) (int, error) {
	return svc.repo.CountTeachers(ctx)
}

// Onboarding: profiles are created explicitly, never as a side effect of creating a user.

func profileExists(kind string) error {
	return core.NewValidationError(ErrProfileExists, core.FieldError{Field: "user_id", Error: kind + " profile already exists"})
}

func (svc *Service) ensureUser(ctx context.Context, userID string) (user.User, error) {
	usr, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return usr, nil
}

func (svc *Service) OnboardStudent(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	usr, err := svc.ensureUser(ctx, ns.UserID)
	if err != nil {
		return Student{}, err
	}
	grp, err := svc.academic.GetGroup(ctx, ns.GroupID)
	if err != nil {
		return Student{}, errors.Wrap(err, "getting group")
	}
	if _, err = svc.repo.GetStudent(ctx, GetFilter{UserID: usr.ID}); err == nil {
		return Student{}, profileExists("student")
	} else if !core.IsNotFound(err) {
		return Student{}, errors.Wrap(err, "checking student profile")
	}

	st, err := svc.repo.CreateStudent(ctx, Student{
		UserID:     usr.ID,
		GroupID:    grp.ID,
		Course:     ns.Course,
		Specialty:  ns.Specialty,
		GPA:        ns.GPA,
		Attendance: ns.Attendance,
		CreatedAt:  time.Now().UTC(),
		Name:       usr.DisplayName(),
		GroupCode:  grp.Code,
	})
	return st, errors.Wrap(err, "creating student profile")
}

func (svc *Service) OnboardTeacher(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return Teacher{}, err
	}
	usr, err := svc.ensureUser(ctx, nt.UserID)
	if err != nil {
		return Teacher{}, err
	}
	if err = svc.checkSubjects(ctx, nt.SubjectIDs); err != nil {
		return Teacher{}, err
	}
	if _, err = svc.repo.GetTeacher(ctx, GetFilter{UserID: usr.ID}); err == nil {
		return Teacher{}, profileExists("teacher")
	} else if !core.IsNotFound(err) {
		return Teacher{}, errors.Wrap(err, "checking teacher profile")
	}

	t, err := svc.repo.CreateTeacher(ctx, Teacher{
		UserID:     usr.ID,
		Department: nt.Department,
		CreatedAt:  time.Now().UTC(),
		SubjectIDs: nt.SubjectIDs,
		Name:       usr.DisplayName(),
	})
	return t, errors.Wrap(err, "creating teacher profile")
}

func (svc *Service) OnboardDirector(ctx context.Context, userID string) (Director, error) {
	usr, err := svc.ensureUser(ctx, userID)
	if err != nil {
		return Director{}, err
	}
	if _, err = svc.repo.GetDirector(ctx, GetFilter{UserID: usr.ID}); err == nil {
		return Director{}, profileExists("director")
	} else if !core.IsNotFound(err) {
		return Director{}, errors.Wrap(err, "checking director profile")
	}

	d, err := svc.repo.CreateDirector(ctx, Director{
		UserID:    usr.ID,
		CreatedAt: time.Now().UTC(),
		Name:      usr.DisplayName(),
	})
	return d, errors.Wrap(err, "creating director profile")
}

// AssignSubjects replaces the subjects a teacher is assigned.
func (svc *Service) AssignSubjects(ctx context.Context, teacherID string, subjectIDs []string) error {
	if _, err := svc.repo.GetTeacher(ctx, GetFilter{ID: teacherID}); err != nil {
		return errors.Wrap(err, "getting teacher")
	}
	if err := svc.checkSubjects(ctx, subjectIDs); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.SetTeacherSubjects(ctx, teacherID, subjectIDs), "setting teacher subjects")
}

func (svc *Service) checkSubjects(ctx context.Context, subjectIDs []string) error {
	for _, id := range subjectIDs {
		if _, err := svc.academic.GetSubject(ctx, id); err != nil {
			return errors.Wrap(err, "getting subject")
		}
	}
	return nil
}
