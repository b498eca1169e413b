package news

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/notification"
	"github.com/trezcool/college/core/user"
)

const (
	coverMaxWidth  = 1280
	coverMaxHeight = 720
	coverQuality   = 85
)

var errInvalidCover = "cover must be a valid image"

type (
	Repository interface {
		CreateNews(ctx context.Context, n News) (News, error)
		// ListNews returns the newest items first.
		ListNews(ctx context.Context, limit int) ([]News, error)
	}

	Service struct {
		repo     Repository
		media    core.MediaStorage
		users    *user.Service
		notifier notification.Sender
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	media core.MediaStorage,
	users *user.Service,
	notifier notification.Sender,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(media, "media"),
		vala.IsNotNil(users, "users"),
		vala.IsNotNil(notifier, "notifier"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &Service{repo: repo, media: media, users: users, notifier: notifier, validate: validate, logger: logger}
}

// Create publishes a news item. The cover is downscaled to fit 1280x720 and stored as JPEG.
func (svc *Service) Create(ctx context.Context, nn NewNews) (News, error) {
	if err := nn.Validate(svc.validate); err != nil {
		return News{}, err
	}

	img, err := imaging.Decode(nn.Cover, imaging.AutoOrientation(true))
	if err != nil {
		return News{}, core.NewValidationError(err, core.FieldError{Field: "cover", Error: errInvalidCover})
	}
	img = imaging.Fit(img, coverMaxWidth, coverMaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(coverQuality)); err != nil {
		return News{}, errors.Wrap(err, "encoding cover")
	}

	id := uuid.New().String()
	coverURL, err := svc.media.Put(ctx, "news/"+id+".jpg", &buf, "image/jpeg")
	if err != nil {
		return News{}, errors.Wrap(err, "storing cover")
	}

	n, err := svc.repo.CreateNews(ctx, News{
		ID:        id,
		Title:     nn.Title,
		Text:      nn.Text,
		Tag:       nn.Tag,
		CoverURL:  coverURL,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return News{}, errors.Wrap(err, "creating news")
	}

	if nn.Broadcast {
		if err = svc.broadcast(ctx, n); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (svc *Service) broadcast(ctx context.Context, n News) error {
	active := true
	users, err := svc.users.Query(ctx, &user.QueryFilter{IsActive: &active})
	if err != nil {
		return errors.Wrap(err, "listing users")
	}
	for _, usr := range users {
		if _, err = svc.notifier.Send(ctx, notification.NewNotification{
			UserID: usr.ID,
			Type:   notification.TypeNews,
			Title:  n.Title,
			Link:   "/news",
		}); err != nil {
			svc.logger.Warn(fmt.Sprintf("notifying %s of news %s: %v", usr.Username, n.ID, err), err)
		}
	}
	return nil
}

func (svc *Service) Recent(ctx context.Context, limit int) ([]News, error) {
	return svc.repo.ListNews(ctx, limit)
}
