package remark

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/notification"
	"github.com/trezcool/college/core/profile"
	"github.com/trezcool/college/core/user"
)

var ErrNotFound = core.NewNotFoundError("remark")

type (
	Repository interface {
		CreateRemark(ctx context.Context, r Remark) (Remark, error)
		GetRemark(ctx context.Context, id string) (Remark, error)
		ResolveRemark(ctx context.Context, id string) error
		// ListRemarks returns open remarks first, then newest first.
		ListRemarks(ctx context.Context, filter Filter) ([]Remark, error)
		CountRemarks(ctx context.Context, filter Filter) (int, error)
	}

	Service struct {
		repo     Repository
		profiles *profile.Service
		users    *user.Service
		notifier notification.Sender
		validate *validator.Validate
	}
)

func NewService(
	repo Repository,
	profiles *profile.Service,
	users *user.Service,
	notifier notification.Sender,
	validate *validator.Validate,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(profiles, "profiles"),
		vala.IsNotNil(users, "users"),
		vala.IsNotNil(notifier, "notifier"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{repo: repo, profiles: profiles, users: users, notifier: notifier, validate: validate}
}

// Create records a remark and notifies the student. Without a teacher, the remark is the director's.
func (svc *Service) Create(ctx context.Context, nr NewRemark) (Remark, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Remark{}, err
	}
	st, err := svc.profiles.GetStudent(ctx, nr.StudentID)
	if err != nil {
		return Remark{}, errors.Wrap(err, "getting student")
	}
	author, err := svc.users.GetByID(ctx, nr.AuthorID)
	if err != nil {
		return Remark{}, errors.Wrap(err, "getting author")
	}

	r := Remark{
		StudentID:   st.ID,
		AuthorID:    author.ID,
		Level:       nr.Level,
		Text:        nr.Text,
		CreatedAt:   time.Now().UTC(),
		StudentName: st.Name,
		GroupCode:   st.GroupCode,
		AuthorName:  author.DisplayName(),
	}
	if nr.TeacherID != "" {
		t, err := svc.profiles.GetTeacher(ctx, nr.TeacherID)
		if err != nil {
			return Remark{}, errors.Wrap(err, "getting teacher")
		}
		r.TeacherID = null.StringFrom(t.ID)
		r.TeacherName = null.StringFrom(t.Name)
	}

	r, err = svc.repo.CreateRemark(ctx, r)
	if err != nil {
		return Remark{}, errors.Wrap(err, "creating remark")
	}

	_, err = svc.notifier.Send(ctx, notification.NewNotification{
		UserID:  st.UserID,
		Type:    notification.TypeRemark,
		Title:   "New remark (" + string(r.Level) + ")",
		Message: r.Text,
		Link:    "/remarks",
	})
	return r, errors.Wrap(err, "notifying student")
}

// Resolve closes a remark. Directors, the remark's teacher and its author may resolve it.
func (svc *Service) Resolve(ctx context.Context, id, userID string, profiles profile.Profiles) error {
	r, err := svc.repo.GetRemark(ctx, id)
	if err != nil {
		return errors.Wrap(err, "getting remark")
	}
	allowed := profiles.Director != nil ||
		(userID != "" && r.AuthorID == userID) ||
		(profiles.Teacher != nil && r.TeacherID.Valid && r.TeacherID.String == profiles.Teacher.ID)
	if !allowed {
		return core.ErrForbidden
	}
	if r.Resolved {
		return nil
	}
	return errors.Wrap(svc.repo.ResolveRemark(ctx, id), "resolving remark")
}

func (svc *Service) List(ctx context.Context, filter Filter) ([]Remark, error) {
	return svc.repo.ListRemarks(ctx, filter)
}

func (svc *Service) Count(ctx context.Context, filter Filter) (int, error) {
	return svc.repo.CountRemarks(ctx, filter)
}
