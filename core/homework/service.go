package homework

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/academic"
	"github.com/trezcool/college/core/notification"
	"github.com/trezcool/college/core/profile"
)

var ErrNotFound = core.NewNotFoundError("homework")

type (
	Repository interface {
		CreateHomework(ctx context.Context, hw Homework) (Homework, error)
		GetHomework(ctx context.Context, id string) (Homework, error)
		// ToggleHomework flips `completed` in a single update and returns the new value.
		ToggleHomework(ctx context.Context, id string) (bool, error)
		// ListHomeworks returns homework pending first, then by deadline.
		ListHomeworks(ctx context.Context, filter Filter) ([]Homework, error)
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

// Create assigns homework to a student and notifies them.
func (svc *Service) Create(ctx context.Context, nh NewHomework) (Homework, error) {
	if err := nh.Validate(svc.validate); err != nil {
		return Homework{}, err
	}
	st, err := svc.profiles.GetStudent(ctx, nh.StudentID)
	if err != nil {
		return Homework{}, errors.Wrap(err, "getting student")
	}
	subj, err := svc.academic.GetSubject(ctx, nh.SubjectID)
	if err != nil {
		return Homework{}, errors.Wrap(err, "getting subject")
	}

	hw, err := svc.repo.CreateHomework(ctx, Homework{
		StudentID:   st.ID,
		SubjectID:   subj.ID,
		Title:       nh.Title,
		Description: nh.Description,
		Deadline:    nh.Deadline,
		CreatedAt:   time.Now().UTC(),
		OwnerID:     st.UserID,
		SubjectName: subj.Name,
		StudentName: st.Name,
		GroupCode:   st.GroupCode,
	})
	if err != nil {
		return Homework{}, errors.Wrap(err, "creating homework")
	}

	_, err = svc.notifier.Send(ctx, notification.NewNotification{
		UserID:  st.UserID,
		Type:    notification.TypeHomework,
		Title:   "New homework: " + subj.Name,
		Message: hw.Title + " (due " + hw.Deadline.Format("2006-01-02") + ")",
		Link:    "/homeworks",
	})
	return hw, errors.Wrap(err, "notifying student")
}

// Toggle flips the completion state of the homework on behalf of userID.
// Only the owning student's identity may toggle.
func (svc *Service) Toggle(ctx context.Context, id, userID string) (bool, error) {
	hw, err := svc.repo.GetHomework(ctx, id)
	if err != nil {
		return false, errors.Wrap(err, "getting homework")
	}
	if userID == "" || hw.OwnerID != userID {
		return false, core.ErrForbidden
	}
	completed, err := svc.repo.ToggleHomework(ctx, hw.ID)
	return completed, errors.Wrap(err, "toggling homework")
}

func (svc *Service) List(ctx context.Context, filter Filter) ([]Homework, error) {
	if filter.RestrictSubjects && len(filter.SubjectIDs) == 0 {
		return []Homework{}, nil
	}
	return svc.repo.ListHomeworks(ctx, filter)
}
