package shared

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	cachesvc "github.com/trezcool/college/services/cache"
	emailsvc "github.com/trezcool/college/services/email"
	mediasvc "github.com/trezcool/college/services/media"
)

// NewCache returns the configured cache backend (memory | redis).
func NewCache(ctx context.Context, conf *core.Config) (core.Cache, error) {
	if conf.Cache.Backend == "redis" {
		c, err := cachesvc.NewRedisCache(ctx, conf.Cache.RedisURL, conf.AppName)
		if err != nil {
			return nil, errors.Wrap(err, "connecting to redis")
		}
		return c, nil
	}
	return cachesvc.NewMemoryCache(), nil
}

// NewMediaStorage returns the configured media backend (local | b2).
func NewMediaStorage(ctx context.Context, conf *core.Config) (core.MediaStorage, error) {
	if conf.Media.Backend == "b2" {
		s, err := mediasvc.NewB2Storage(ctx, conf.Media.B2KeyID, conf.Media.B2AppKey, conf.Media.B2Bucket)
		if err != nil {
			return nil, errors.Wrap(err, "connecting to b2")
		}
		return s, nil
	}
	return mediasvc.NewLocalStorage(conf.Media.Dir, conf.Media.BaseURL), nil
}

// NewEmailService prints emails in debug mode and sends them through Sendgrid otherwise.
func NewEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}
