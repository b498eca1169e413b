package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core/dashboard"
	"github.com/trezcool/college/core/profile"
)

func bindQuery(ctx echo.Context, dst interface{}) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, dst); err != nil {
		return errors.Wrap(err, "binding query params")
	}
	return nil
}

func (s *Server) home(ctx echo.Context) error {
	if contextViewer(ctx) != nil {
		return ctx.Redirect(http.StatusSeeOther, defaultNextPath)
	}
	return s.render(ctx, http.StatusOK, "guest", dashboard.Dashboard{Role: profile.RoleGuest})
}

func (s *Server) dashboardPage(ctx echo.Context) error {
	d, err := s.Dashboards.Build(ctx.Request().Context(), *contextViewer(ctx))
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	if d.Role == profile.RoleGuest {
		return s.render(ctx, http.StatusOK, "guest", d)
	}
	return s.render(ctx, http.StatusOK, "dashboard", d)
}

func (s *Server) schedulePage(ctx echo.Context) error {
	var q dashboard.ScheduleQuery
	if err := bindQuery(ctx, &q); err != nil {
		return err
	}
	page, err := s.Dashboards.Schedule(ctx.Request().Context(), *contextViewer(ctx), q)
	if err != nil {
		return errors.Wrap(err, "building schedule page")
	}
	return s.render(ctx, http.StatusOK, "schedule", page)
}

func (s *Server) gradesPage(ctx echo.Context) error {
	var q dashboard.GradesQuery
	if err := bindQuery(ctx, &q); err != nil {
		return err
	}
	page, err := s.Dashboards.Grades(ctx.Request().Context(), *contextViewer(ctx), q)
	if err != nil {
		return errors.Wrap(err, "building grades page")
	}
	return s.render(ctx, http.StatusOK, "grades", page)
}

func (s *Server) homeworksPage(ctx echo.Context) error {
	page, err := s.Dashboards.Homeworks(ctx.Request().Context(), *contextViewer(ctx))
	if err != nil {
		return errors.Wrap(err, "building homeworks page")
	}
	return s.render(ctx, http.StatusOK, "homeworks", page)
}

func (s *Server) remarksPage(ctx echo.Context) error {
	var q dashboard.RemarksQuery
	if err := bindQuery(ctx, &q); err != nil {
		return err
	}
	page, err := s.Dashboards.Remarks(ctx.Request().Context(), *contextViewer(ctx), q)
	if err != nil {
		return errors.Wrap(err, "building remarks page")
	}
	return s.render(ctx, http.StatusOK, "remarks", page)
}

func (s *Server) ratingPage(ctx echo.Context) error {
	var q dashboard.RatingQuery
	if err := bindQuery(ctx, &q); err != nil {
		return err
	}
	page, err := s.Dashboards.Rating(ctx.Request().Context(), *contextViewer(ctx), q)
	if err != nil {
		return errors.Wrap(err, "building rating page")
	}
	return s.render(ctx, http.StatusOK, "rating", page)
}

func (s *Server) notificationsPage(ctx echo.Context) error {
	page, err := s.Dashboards.Notifications(ctx.Request().Context(), *contextViewer(ctx))
	if err != nil {
		return errors.Wrap(err, "building notifications page")
	}
	return s.render(ctx, http.StatusOK, "notifications", page)
}

func (s *Server) newsPage(ctx echo.Context) error {
	page, err := s.Dashboards.News(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building news page")
	}
	return s.render(ctx, http.StatusOK, "news", page)
}
