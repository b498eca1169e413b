package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/college/core/news"
	"github.com/trezcool/college/core/notification"
)

// News

type newsRepository struct {
	db *DB
}

var _ news.Repository = (*newsRepository)(nil) // interface compliance check

func NewNewsRepository(db *DB) *newsRepository {
	return &newsRepository{db: db}
}

func (repo *newsRepository) CreateNews(_ context.Context, n news.News) (news.News, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	n.ID = newID(n.ID)
	repo.db.news = append(repo.db.news, n)
	return n, nil
}

func (repo *newsRepository) ListNews(_ context.Context, count int) ([]news.News, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	items := newestFirst(repo.db.news, func(n news.News) time.Time { return n.CreatedAt })
	return limit(items, count), nil
}

// Notifications

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	n.ID = newID(n.ID)
	repo.db.notifications = append(repo.db.notifications, n)
	return n, nil
}

func (repo *notificationRepository) GetNotification(_ context.Context, id string) (notification.Notification, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, n := range repo.db.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) MarkRead(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i := range repo.db.notifications {
		if repo.db.notifications[i].ID == id {
			repo.db.notifications[i].IsRead = true
			return nil
		}
	}
	return notification.ErrNotFound
}

func (repo *notificationRepository) MarkAllRead(_ context.Context, userID string) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var marked int
	for i := range repo.db.notifications {
		if n := &repo.db.notifications[i]; n.UserID == userID && !n.IsRead {
			n.IsRead = true
			marked++
		}
	}
	return marked, nil
}

func (repo *notificationRepository) CountUnread(_ context.Context, userID string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var n int
	for _, note := range repo.db.notifications {
		if note.UserID == userID && !note.IsRead {
			n++
		}
	}
	return n, nil
}

func (repo *notificationRepository) ListNotifications(_ context.Context, userID string, count int) ([]notification.Notification, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	notes := make([]notification.Notification, 0)
	for _, note := range repo.db.notifications {
		if note.UserID == userID {
			notes = append(notes, note)
		}
	}
	notes = newestFirst(notes, func(n notification.Notification) time.Time { return n.CreatedAt })
	sort.SliceStable(notes, func(i, j int) bool { return !notes[i].IsRead && notes[j].IsRead })
	return limit(notes, count), nil
}
