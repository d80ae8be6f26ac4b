package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/musclegram/musclegram/events"
	"github.com/musclegram/musclegram/models"
)

func notificationMessage(kind, from string) string {
	switch kind {
	case models.NotifKindLike:
		return from + " liked your workout"
	case models.NotifKindComment:
		return from + " commented on your workout"
	case models.NotifKindFollow:
		return from + " started following you"
	default:
		return from + " interacted with you"
	}
}

// notify writes a notification for recipient as a side effect of an action
// by actor. Failures are logged and counted; the caller's action stands.
func (b *Backend) notify(ctx context.Context, recipient, actor, kind, postID string) {
	if err := b.createNotification(ctx, recipient, actor, kind, postID); err != nil {
		notificationFailures.WithLabelValues(kind).Inc()
		slog.Warn("failed to create notification", "kind", kind, "for", recipient, "from", actor, "post", postID, "error", err)
	}
}

func (b *Backend) createNotification(ctx context.Context, recipient, actor, kind, postID string) error {
	defer observeOp("create", "notifications", time.Now())

	n := &models.Notification{
		UserID:       recipient,
		FromUserID:   actor,
		FromUserName: actor,
		Type:         kind,
		PostID:       postID,
		CreatedAt:    b.now(),
	}

	u, err := b.GetUser(ctx, actor)
	switch {
	case err == nil:
		n.FromUserName = displayName(u)
		n.FromUserAvatar = u.Avatar
	case errors.Is(err, ErrNotFound):
	default:
		return err
	}
	n.Message = notificationMessage(kind, n.FromUserName)

	if err := b.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	b.publish(ctx, events.Event{
		Topic:   events.TopicNotifications,
		Kind:    events.KindNotification,
		Actor:   actor,
		Subject: recipient,
		PostID:  postID,
	})
	return nil
}

// ListNotifications returns notifications for userID, newest first. A
// non-zero before restricts to notifications created earlier than it.
func (b *Backend) ListNotifications(ctx context.Context, userID string, limit int, before time.Time) ([]models.Notification, error) {
	if limit <= 0 {
		limit = b.feedLimit
	}

	q := b.db.WithContext(ctx).Where("user_id = ?", userID)
	if !before.IsZero() {
		q = q.Where("created_at < ?", before)
	}

	var out []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (b *Backend) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := b.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// MarkAllRead flags every unread notification for userID as read and
// returns how many changed.
func (b *Backend) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	defer observeOp("update", "notifications", time.Now())

	res := b.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
