package services

import (
	"context"
	"strconv"
	"time"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/cache"
	"worklog-backend/internal/models"
)

// NotificationService serves the bell: listing, read state and the unread
// counter. Notifications are created elsewhere, inside work log transitions.
type NotificationService struct {
	Notifications NotificationStore
}

func NewNotificationService(notifications NotificationStore) *NotificationService {
	return &NotificationService{Notifications: notifications}
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor models.Actor, unreadOnly bool) ([]models.Notification, error) {
	return s.Notifications.ListByRecipient(ctx, actor.ID, unreadOnly)
}

// MarkRead marks one of the actor's notifications as read. Marking an
// already-read notification is a no-op, not an error.
func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, id int) error {
	n, err := s.Notifications.Get(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != actor.ID {
		return apperr.Authorization("notification %d belongs to another user", id)
	}
	if n.Read {
		return nil
	}

	if err := s.Notifications.MarkRead(ctx, id); err != nil {
		return err
	}
	cache.InvalidateNotificationCaches(ctx, actor.ID)
	return nil
}

// MarkAllRead marks every unread notification of the actor and returns the
// number affected. Safe to repeat; the second call reports zero.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor models.Actor) (int, error) {
	affected, err := s.Notifications.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		cache.InvalidateNotificationCaches(ctx, actor.ID)
	}
	return affected, nil
}

// UnreadCount returns the actor's unread counter, cached briefly in Redis
// because the bell polls it.
func (s *NotificationService) UnreadCount(ctx context.Context, actor models.Actor) (int, error) {
	key := cache.UnreadCountKey(actor.ID)
	if data, ok := cache.GetCached(ctx, key); ok {
		if count, err := strconv.Atoi(string(data)); err == nil {
			return count, nil
		}
	}

	count, err := s.Notifications.UnreadCount(ctx, actor.ID)
	if err != nil {
		return 0, err
	}
	cache.SetCached(ctx, key, []byte(strconv.Itoa(count)), 30*time.Second)
	return count, nil
}
