package grade

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core/academic"
	"github.com/trezcool/college/core/notification"
	"github.com/trezcool/college/core/profile"
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		// ListGrades returns grades newest first.
		ListGrades(ctx context.Context, filter Filter) ([]Grade, error)
	}

	Service struct {
		repo     Repository
		profiles *profile.Service
		academic *academic.Service
		notifier notification.Sender
		validate *validator.Validate
	}
)

func NewService(
	repo Repository,
	profiles *profile.Service,
	academicSvc *academic.Service,
	notifier notification.Sender,
	validate *validator.Validate,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(profiles, "profiles"),
		vala.IsNotNil(academicSvc, "academicSvc"),
		vala.IsNotNil(notifier, "notifier"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{repo: repo, profiles: profiles, academic: academicSvc, notifier: notifier, validate: validate}
}

// Create records a grade and notifies the student.
func (svc *Service) Create(ctx context.Context, ng NewGrade) (Grade, error) {
	if err := ng.Validate(svc.validate); err != nil {
		return Grade{}, err
	}
	st, err := svc.profiles.GetStudent(ctx, ng.StudentID)
	if err != nil {
		return Grade{}, errors.Wrap(err, "getting student")
	}
	subj, err := svc.academic.GetSubject(ctx, ng.SubjectID)
	if err != nil {
		return Grade{}, errors.Wrap(err, "getting subject")
	}

	g, err := svc.repo.CreateGrade(ctx, Grade{
		StudentID:   st.ID,
		SubjectID:   subj.ID,
		Value:       ng.Value,
		Note:        ng.Note,
		CreatedAt:   time.Now().UTC(),
		SubjectName: subj.Name,
		StudentName: st.Name,
		GroupCode:   st.GroupCode,
	})
	if err != nil {
		return Grade{}, errors.Wrap(err, "creating grade")
	}

	_, err = svc.notifier.Send(ctx, notification.NewNotification{
		UserID:  st.UserID,
		Type:    notification.TypeGrade,
		Title:   "New grade: " + subj.Name,
		Message: fmt.Sprintf("You received %.1f", g.Value),
		Link:    "/grades",
	})
	return g, errors.Wrap(err, "notifying student")
}

func (svc *Service) List(ctx context.Context, filter Filter) ([]Grade, error) {
	if filter.RestrictSubjects && len(filter.SubjectIDs) == 0 {
		return []Grade{}, nil
	}
	return svc.repo.ListGrades(ctx, filter)
}
