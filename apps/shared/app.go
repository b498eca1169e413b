// Package shared wires the domain services used by every executable.
package shared

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/academic"
	"github.com/trezcool/college/core/dashboard"
	"github.com/trezcool/college/core/grade"
	"github.com/trezcool/college/core/homework"
	"github.com/trezcool/college/core/news"
	"github.com/trezcool/college/core/notification"
	"github.com/trezcool/college/core/profile"
	"github.com/trezcool/college/core/remark"
	"github.com/trezcool/college/core/schedule"
	"github.com/trezcool/college/core/user"
	inmemdb "github.com/trezcool/college/storage/database/inmem"
	sqlxrepos "github.com/trezcool/college/storage/database/sqlx"
)

// Repositories is the Domain Store, whatever the engine.
type Repositories struct {
	Users         user.Repository
	Academic      academic.Repository
	Profiles      profile.Repository
	Schedule      schedule.Repository
	Grades        grade.Repository
	Homeworks     homework.Repository
	Remarks       remark.Repository
	News          news.Repository
	Notifications notification.Repository
}

func SQLRepositories(exec core.DBExecutor) Repositories {
	r := sqlxrepos.NewRepositories(exec)
	return Repositories{
		Users:         r.Users,
		Academic:      r.Academic,
		Profiles:      r.Profiles,
		Schedule:      r.Schedule,
		Grades:        r.Grades,
		Homeworks:     r.Homeworks,
		Remarks:       r.Remarks,
		News:          r.News,
		Notifications: r.Notifications,
	}
}

func MemoryRepositories(db *inmemdb.DB) Repositories {
	r := inmemdb.NewRepositories(db)
	return Repositories{
		Users:         r.Users,
		Academic:      r.Academic,
		Profiles:      r.Profiles,
		Schedule:      r.Schedule,
		Grades:        r.Grades,
		Homeworks:     r.Homeworks,
		Remarks:       r.Remarks,
		News:          r.News,
		Notifications: r.Notifications,
	}
}

// NewValidator returns a validator with every custom validator & translation registered.
func NewValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)
	return validate
}

type (
	ServicesDeps struct {
		Conf     *core.Config
		Repos    Repositories
		Cache    core.Cache
		Media    core.MediaStorage
		Mail     core.EmailService
		Validate *validator.Validate
		Logger   core.Logger
	}

	Services struct {
		Users         *user.Service
		Academic      *academic.Service
		Profiles      *profile.Service
		Schedule      *schedule.Service
		Grades        *grade.Service
		Homeworks     *homework.Service
		Remarks       *remark.Service
		News          *news.Service
		Notifications *notification.Service
		Counter       *notification.Counter
		Dashboards    *dashboard.Aggregator
	}
)

func NewServices(deps ServicesDeps) *Services {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Conf, "conf"),
		vala.IsNotNil(deps.Cache, "cache"),
		vala.IsNotNil(deps.Media, "media"),
		vala.IsNotNil(deps.Mail, "mail"),
		vala.IsNotNil(deps.Validate, "validate"),
		vala.IsNotNil(deps.Logger, "logger"),
	).CheckAndPanic()

	r := deps.Repos
	svc := new(Services)
	svc.Users = user.NewService(r.Users, deps.Validate)
	svc.Academic = academic.NewService(r.Academic, deps.Validate)
	svc.Profiles = profile.NewService(r.Profiles, svc.Users, svc.Academic, deps.Validate)
	svc.Schedule = schedule.NewService(r.Schedule, deps.Validate)
	svc.Counter = notification.NewCounter(deps.Cache, r.Notifications, deps.Conf.Cache.UnreadTTL, deps.Logger)
	svc.Notifications = notification.NewService(
		r.Notifications,
		svc.Counter,
		svc.Users,
		deps.Mail,
		deps.Validate,
		deps.Logger,
		notification.ServiceOptions{EmailMirror: deps.Conf.EmailMirror},
	)
	svc.Grades = grade.NewService(r.Grades, svc.Profiles, svc.Academic, svc.Notifications, deps.Validate)
	svc.Homeworks = homework.NewService(r.Homeworks, svc.Profiles, svc.Academic, svc.Notifications, deps.Validate)
	svc.Remarks = remark.NewService(r.Remarks, svc.Profiles, svc.Users, svc.Notifications, deps.Validate)
	svc.News = news.NewService(r.News, deps.Media, svc.Users, svc.Notifications, deps.Validate, deps.Logger)
	svc.Dashboards = dashboard.NewAggregator(dashboard.Services{
		Profiles:      svc.Profiles,
		Academic:      svc.Academic,
		Schedule:      svc.Schedule,
		Grades:        svc.Grades,
		Homeworks:     svc.Homeworks,
		Remarks:       svc.Remarks,
		News:          svc.News,
		Notifications: svc.Notifications,
	}, deps.Conf.Location())
	return svc
}
