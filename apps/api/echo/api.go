package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type (
	ToggleHomeworkResponse struct {
		OK        bool `json:"ok"`
		Completed bool `json:"completed"`
	}

	MarkReadResponse struct {
		OK          bool `json:"ok"`
		UnreadCount int  `json:"unread_count"`
	}

	MarkAllReadResponse struct {
		OK          bool `json:"ok"`
		Marked      int  `json:"marked"`
		UnreadCount int  `json:"unread_count"`
	}
)

func (s *Server) toggleHomework(ctx echo.Context) error {
	viewer := contextViewer(ctx)
	completed, err := s.Homeworks.Toggle(ctx.Request().Context(), ctx.Param("id"), viewer.User.ID)
	if err != nil {
		return errors.Wrap(err, "toggling homework")
	}
	return ctx.JSON(http.StatusOK, ToggleHomeworkResponse{OK: true, Completed: completed})
}

func (s *Server) markNotificationRead(ctx echo.Context) error {
	viewer := contextViewer(ctx)
	unread, err := s.Notifications.MarkRead(ctx.Request().Context(), ctx.Param("id"), viewer.User.ID)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, MarkReadResponse{OK: true, UnreadCount: unread})
}

func (s *Server) markAllNotificationsRead(ctx echo.Context) error {
	viewer := contextViewer(ctx)
	marked, err := s.Notifications.MarkAllRead(ctx.Request().Context(), viewer.User.ID)
	if err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.JSON(http.StatusOK, MarkAllReadResponse{OK: true, Marked: marked})
}
