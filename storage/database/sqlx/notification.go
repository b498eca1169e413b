package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/news"
	"github.com/trezcool/college/core/notification"
)

const (
	newsColumns         = `id, title, text, tag, cover_url, created_at`
	notificationColumns = `id, user_id, type, title, message, link, is_read, created_at`
)

// News

type newsRepository struct {
	exec core.DBExecutor
}

var _ news.Repository = (*newsRepository)(nil) // interface compliance check

func NewNewsRepository(exec core.DBExecutor) *newsRepository {
	return &newsRepository{exec: exec}
}

func (repo newsRepository) CreateNews(ctx context.Context, n news.News) (news.News, error) {
	n.ID = newID(n.ID)
	_, err := sqlx.NamedExecContext(ctx, repo.exec, `
		INSERT INTO news (`+newsColumns+`)
		VALUES (:id, :title, :text, :tag, :cover_url, :created_at)`,
		n)
	if err != nil {
		return news.News{}, errors.Wrap(err, "inserting news")
	}
	return n, nil
}

func (repo newsRepository) ListNews(ctx context.Context, limit int) ([]news.News, error) {
	var w where
	q, args := w.query(repo.exec, `SELECT `+newsColumns+` FROM news`, ` ORDER BY created_at DESC, id`, limit)
	items := make([]news.News, 0)
	err := repo.exec.SelectContext(ctx, &items, q, args...)
	return items, errors.Wrap(err, "listing news")
}

// Notifications

type notificationRepository struct {
	exec core.DBExecutor
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(exec core.DBExecutor) *notificationRepository {
	return &notificationRepository{exec: exec}
}

func (repo notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	n.ID = newID(n.ID)
	_, err := sqlx.NamedExecContext(ctx, repo.exec, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (:id, :user_id, :type, :title, :message, :link, :is_read, :created_at)`,
		n)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo notificationRepository) GetNotification(ctx context.Context, id string) (notification.Notification, error) {
	if !validID(id) {
		return notification.Notification{}, notification.ErrNotFound
	}
	var n notification.Notification
	err := repo.exec.GetContext(ctx, &n, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	if err != nil {
		return notification.Notification{}, trapNoRowsErr(err, notification.ErrNotFound, "finding notification")
	}
	return n, nil
}

func (repo notificationRepository) MarkRead(ctx context.Context, id string) error {
	if !validID(id) {
		return notification.ErrNotFound
	}
	res, err := repo.exec.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return checkAffected(res, notification.ErrNotFound)
}

func (repo notificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if !validID(userID) {
		return 0, nil
	}
	res, err := repo.exec.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, errors.Wrap(err, "marking notifications read")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "getting affected rows")
}

func (repo notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	if !validID(userID) {
		return 0, nil
	}
	var n int
	err := repo.exec.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID)
	return n, errors.Wrap(err, "counting unread notifications")
}

func (repo notificationRepository) ListNotifications(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	notes := make([]notification.Notification, 0)
	if !validID(userID) {
		return notes, nil
	}
	var w where
	w.add("user_id = ?", userID)
	q, args := w.query(repo.exec, `SELECT `+notificationColumns+` FROM notifications`, ` ORDER BY is_read, created_at DESC, id`, limit)
	err := repo.exec.SelectContext(ctx, &notes, q, args...)
	return notes, errors.Wrap(err, "listing notifications")
}
