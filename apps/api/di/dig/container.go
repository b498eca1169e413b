// Package dig_container wires the API server with a go.uber.org/dig container.
package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/college/apps/api/echo"
	"github.com/trezcool/college/apps/shared"
	"github.com/trezcool/college/core"
	logsvc "github.com/trezcool/college/services/logger"
	"github.com/trezcool/college/storage/database"
	inmemdb "github.com/trezcool/college/storage/database/inmem"
)

type (
	LoggerParam struct {
		dig.In
		Logger core.Logger `name:"apiLogger"`
	}

	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Store is the Domain Store and how to release it.
	Store struct {
		Repos shared.Repositories
		Close func() error
	}
)

func newLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(os.Stdout, "API", conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(os.Stdout, "DB", conf)
}

func newStore(conf *core.Config, loggerParam DBLoggerParam) *Store {
	logger := loggerParam.Logger

	if conf.Database.Engine == "memory" {
		logger.Info("using the in-memory store: data is lost on restart")
		return &Store{
			Repos: shared.MemoryRepositories(inmemdb.Open()),
			Close: func() error { return nil },
		}
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = database.Migrate(db); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}
	return &Store{Repos: shared.SQLRepositories(db), Close: db.Close}
}

func newCache(conf *core.Config, loggerParam LoggerParam) core.Cache {
	c, err := shared.NewCache(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(err.Error(), err)
	}
	return c
}

func newMediaStorage(conf *core.Config, loggerParam LoggerParam) core.MediaStorage {
	s, err := shared.NewMediaStorage(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(err.Error(), err)
	}
	return s
}

func newEmailService(conf *core.Config, loggerParam LoggerParam) core.EmailService {
	return shared.NewEmailService(conf, loggerParam.Logger)
}

func newServices(
	conf *core.Config,
	store *Store,
	cache core.Cache,
	media core.MediaStorage,
	mail core.EmailService,
	validate *validator.Validate,
	loggerParam LoggerParam,
) *shared.Services {
	return shared.NewServices(shared.ServicesDeps{
		Conf:     conf,
		Repos:    store.Repos,
		Cache:    cache,
		Media:    media,
		Mail:     mail,
		Validate: validate,
		Logger:   loggerParam.Logger,
	})
}

func newServer(
	conf *core.Config,
	validate *validator.Validate,
	translator ut.Translator,
	svc *shared.Services,
	loggerParam LoggerParam,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        loggerParam.Logger,
		Validate:      validate,
		Translator:    translator,
		Users:         svc.Users,
		Profiles:      svc.Profiles,
		Homeworks:     svc.Homeworks,
		Notifications: svc.Notifications,
		Dashboards:    svc.Dashboards,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger, dig.Name("apiLogger")))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newCache))
	must(c.Provide(newMediaStorage))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(shared.NewValidator))
	must(c.Provide(newServices))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
