package notification

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/user"
)

var ErrNotFound = core.NewNotFoundError("notification")

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		GetNotification(ctx context.Context, id string) (Notification, error)
		// MarkRead sets is_read on a single notification.
		MarkRead(ctx context.Context, id string) error
		// MarkAllRead marks every unread notification of the user as read and returns how many changed.
		MarkAllRead(ctx context.Context, userID string) (int, error)
		CountUnread(ctx context.Context, userID string) (int, error)
		// ListNotifications returns the user's notifications, unread first then newest first.
		ListNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
	}

	// Sender is implemented by *Service.
	Sender interface {
		Send(ctx context.Context, nn NewNotification) (Notification, error)
	}

	ServiceOptions struct {
		EmailMirror bool // also email notifications to users with an email address
	}

	Service struct {
		repo     Repository
		counter  *Counter
		users    *user.Service
		mailSvc  core.EmailService
		validate *validator.Validate
		logger   core.Logger
		opts     ServiceOptions
	}

	emailData struct {
		Name    string
		Title   string
		Message string
		Link    string
	}
)

var _ Sender = (*Service)(nil)

func NewService(
	repo Repository,
	counter *Counter,
	users *user.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
	opts ServiceOptions,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(counter, "counter"),
		vala.IsNotNil(users, "users"),
		vala.IsNotNil(mailSvc, "mailSvc"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &Service{
		repo:     repo,
		counter:  counter,
		users:    users,
		mailSvc:  mailSvc,
		validate: validate,
		logger:   logger,
		opts:     opts,
	}
}

// Send stores a notification for the user and invalidates their unread count.
func (svc *Service) Send(ctx context.Context, nn NewNotification) (Notification, error) {
	if err := nn.Validate(svc.validate); err != nil {
		return Notification{}, err
	}
	n, err := svc.repo.CreateNotification(ctx, Notification{
		UserID:    nn.UserID,
		Type:      nn.Type,
		Title:     nn.Title,
		Message:   nn.Message,
		Link:      nn.Link,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Notification{}, errors.Wrap(err, "creating notification")
	}
	svc.counter.Invalidate(ctx, n.UserID)

	if svc.opts.EmailMirror {
		svc.mirror(ctx, n)
	}
	return n, nil
}

// mirror emails the notification; failures never fail the send.
func (svc *Service) mirror(ctx context.Context, n Notification) {
	usr, err := svc.users.GetByID(ctx, n.UserID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("mirroring notification %s: %v", n.ID, err), err)
		return
	}
	if usr.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.DisplayName(), Address: usr.Email}},
		Subject:      n.Title,
		Category:     "notification",
		TemplateName: "notification",
		TemplateData: emailData{
			Name:    usr.DisplayName(),
			Title:   n.Title,
			Message: n.Message,
			Link:    n.Link,
		},
	})
}

func (svc *Service) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	return svc.repo.ListNotifications(ctx, userID, limit)
}

func (svc *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return svc.counter.Count(ctx, userID)
}

// MarkRead marks the user's notification as read and returns their fresh unread count.
// Marking an already read notification succeeds without writing.
func (svc *Service) MarkRead(ctx context.Context, id, userID string) (int, error) {
	n, err := svc.repo.GetNotification(ctx, id)
	if err != nil {
		return 0, errors.Wrap(err, "getting notification")
	}
	if n.UserID != userID {
		return 0, core.ErrForbidden
	}
	if !n.IsRead {
		if err = svc.repo.MarkRead(ctx, id); err != nil {
			return 0, errors.Wrap(err, "marking notification read")
		}
		svc.counter.Invalidate(ctx, userID)
	}
	return svc.counter.Count(ctx, userID)
}

// MarkAllRead marks every notification of the user as read and returns how many changed.
func (svc *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	marked, err := svc.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, errors.Wrap(err, "marking notifications read")
	}
	svc.counter.Invalidate(ctx, userID)
	return marked, nil
}
