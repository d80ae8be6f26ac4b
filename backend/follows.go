package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/musclegram/musclegram/events"
	"github.com/musclegram/musclegram/models"
)

// AddFollow inserts a follow edge. It does not check for an existing edge,
// so repeated calls create duplicate rows.
func (b *Backend) AddFollow(ctx context.Context, followerID, followingID string) (*models.Follow, error) {
	defer observeOp("create", "follows", time.Now())

	if followerID == "" {
		return nil, invalid("followerId", "required")
	}
	if followingID == "" {
		return nil, invalid("followingId", "required")
	}
	if followerID == followingID {
		return nil, invalid("followingId", "cannot follow yourself")
	}

	f := &models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   b.now(),
	}
	if err := b.db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, fmt.Errorf("create follow: %w", err)
	}

	b.publish(ctx, events.Event{
		Topic:   events.TopicFollowing,
		Kind:    events.KindFollowAdded,
		Actor:   followerID,
		Subject: followingID,
	})

	b.notify(ctx, followingID, followerID, models.NotifKindFollow, "")

	return f, nil
}

// RemoveFollow deletes every edge for the pair.
func (b *Backend) RemoveFollow(ctx context.Context, followerID, followingID string) error {
	defer observeOp("delete", "follows", time.Now())

	if followerID == "" {
		return invalid("followerId", "required")
	}
	if followingID == "" {
		return invalid("followingId", "required")
	}

	if err := b.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error; err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}

	b.publish(ctx, events.Event{
		Topic:   events.TopicFollowing,
		Kind:    events.KindFollowRemoved,
		Actor:   followerID,
		Subject: followingID,
	})

	return nil
}

// GetFollowers returns one follower id per edge row, oldest edge first.
// Duplicate edges show up as repeated ids.
func (b *Backend) GetFollowers(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := b.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Order("created_at").
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("get followers: %w", err)
	}
	return ids, nil
}

// GetFollowing returns one followed id per edge row, oldest edge first.
func (b *Backend) GetFollowing(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := b.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at").
		Pluck("following_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("get following: %w", err)
	}
	return ids, nil
}

func (b *Backend) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var n int64
	if err := b.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountFollowRows counts raw edge rows for the pair, duplicates included.
func (b *Backend) CountFollowRows(ctx context.Context, followerID, followingID string) (int64, error) {
	var n int64
	if err := b.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
