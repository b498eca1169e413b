package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/dashboard"
	"github.com/trezcool/college/core/homework"
	"github.com/trezcool/college/core/notification"
	"github.com/trezcool/college/core/profile"
	"github.com/trezcool/college/core/user"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		Validate      *validator.Validate
		Translator    ut.Translator
		Users         *user.Service
		Profiles      *profile.Service
		Homeworks     *homework.Service
		Notifications *notification.Service
		Dashboards    *dashboard.Aggregator
	}

	Server struct {
		ServerDeps

		app      *echo.Echo
		sessions *sessions.CookieStore
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Conf, "conf"),
		vala.IsNotNil(deps.Logger, "logger"),
		vala.IsNotNil(deps.Validate, "validate"),
		vala.IsNotNil(deps.Translator, "translator"),
		vala.IsNotNil(deps.Users, "users"),
		vala.IsNotNil(deps.Profiles, "profiles"),
		vala.IsNotNil(deps.Homeworks, "homeworks"),
		vala.IsNotNil(deps.Notifications, "notifications"),
		vala.IsNotNil(deps.Dashboards, "dashboards"),
	).CheckAndPanic()

	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		sessions:   newSessionStore(deps.Conf),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Renderer = newRenderer(conf)
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(requestMetrics, s.identify)

	if conf.Media.Backend == "local" {
		s.app.Static(conf.Media.BaseURL, conf.Media.Dir)
	}

	s.app.GET("/", s.home)
	s.app.GET("/login", s.loginPage)
	s.app.POST("/login", s.login)
	s.app.POST("/logout", s.logout)
	s.app.POST("/api/token", s.token)

	g := s.app.Group("", s.requireAuth)
	g.GET("/dashboard", s.dashboardPage)
	g.GET("/schedule", s.schedulePage)
	g.GET("/grades", s.gradesPage)
	g.GET("/homeworks", s.homeworksPage)
	g.GET("/remarks", s.remarksPage)
	g.GET("/rating", s.ratingPage)
	g.GET("/notifications", s.notificationsPage)
	g.GET("/news", s.newsPage)

	api := g.Group("/api")
	api.POST("/homeworks/:id/toggle", s.toggleHomework)
	api.POST("/notifications/:id/read", s.markNotificationRead)
	api.POST("/notifications/read-all", s.markAllNotificationsRead)
}

// Start listens on the configured host until the server is shut down.
// Listening errors are sent to Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
