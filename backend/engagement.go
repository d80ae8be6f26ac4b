package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/musclegram/musclegram/events"
	"github.com/musclegram/musclegram/models"
	"gorm.io/gorm"
)

// AddLike records a like. Like AddFollow it does not look for an existing
// row first.
func (b *Backend) AddLike(ctx context.Context, postID, userID string) (*models.Like, error) {
	defer observeOp("create", "likes", time.Now())

	if postID == "" {
		return nil, invalid("postId", "required")
	}
	if userID == "" {
		return nil, invalid("userId", "required")
	}

	post, err := b.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	l := &models.Like{
		PostID:    postID,
		UserID:    userID,
		CreatedAt: b.now(),
	}
	if err := b.db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, fmt.Errorf("create like: %w", err)
	}

	b.publish(ctx, events.Event{
		Topic:   events.TopicEngagement,
		Kind:    events.KindLikeAdded,
		Actor:   userID,
		Subject: post.UserID,
		PostID:  postID,
	})

	if post.UserID != userID {
		b.notify(ctx, post.UserID, userID, models.NotifKindLike, postID)
	}

	return l, nil
}

// RemoveLike deletes every like row for the pair.
func (b *Backend) RemoveLike(ctx context.Context, postID, userID string) error {
	defer observeOp("delete", "likes", time.Now())

	if postID == "" {
		return invalid("postId", "required")
	}
	if userID == "" {
		return invalid("userId", "required")
	}

	if err := b.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("delete like: %w", err)
	}

	b.publish(ctx, events.Event{
		Topic:  events.TopicEngagement,
		Kind:   events.KindLikeRemoved,
		Actor:  userID,
		PostID: postID,
	})

	return nil
}

func (b *Backend) GetLikes(ctx context.Context, postID string) ([]models.Like, error) {
	var likes []models.Like
	if err := b.db.WithContext(ctx).Order("created_at").Find(&likes, "post_id = ?", postID).Error; err != nil {
		return nil, fmt.Errorf("get likes: %w", err)
	}
	return likes, nil
}

// GetLikers returns the distinct ids of users who liked postID.
func (b *Backend) GetLikers(ctx context.Context, postID string) ([]string, error) {
	likes, err := b.GetLikes(ctx, postID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.UserID)
	}
	return dedupe(ids), nil
}

func (b *Backend) CountLikes(ctx context.Context, postID string) (int64, error) {
	var n int64
	if err := b.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (b *Backend) HasLiked(ctx context.Context, postID, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var n int64
	if err := b.db.WithContext(ctx).Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddComment appends a comment. Replies to a reply are attached to the
// root comment so threads stay one level deep.
func (b *Backend) AddComment(ctx context.Context, postID, userID, content, parentID string) (*models.Comment, error) {
	defer observeOp("create", "comments", time.Now())

	content = strings.TrimSpace(content)
	if postID == "" {
		return nil, invalid("postId", "required")
	}
	if userID == "" {
		return nil, invalid("userId", "required")
	}
	if content == "" {
		return nil, invalid("content", "required")
	}

	post, err := b.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if parentID != "" {
		parent, err := b.GetComment(ctx, parentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, invalid("parentId", "no such comment")
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, invalid("parentId", "comment belongs to another post")
		}
		if parent.ParentID != "" {
			parentID = parent.ParentID
		}
	}

	now := b.now()
	c := &models.Comment{
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	b.publish(ctx, events.Event{
		Topic:   events.TopicEngagement,
		Kind:    events.KindCommentAdded,
		Actor:   userID,
		Subject: post.UserID,
		PostID:  postID,
	})

	if post.UserID != userID {
		b.notify(ctx, post.UserID, userID, models.NotifKindComment, postID)
	}

	return c, nil
}

func (b *Backend) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	if err := b.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

// GetComments returns the comments on postID, oldest first.
func (b *Backend) GetComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := b.db.WithContext(ctx).Order("created_at").Find(&comments, "post_id = ?", postID).Error; err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}
	return comments, nil
}

func (b *Backend) CountComments(ctx context.Context, postID string) (int64, error) {
	var n int64
	if err := b.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (b *Backend) DeleteComment(ctx context.Context, viewer, id string) error {
	defer observeOp("delete", "comments", time.Now())

	c, err := b.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != viewer {
		return ErrForbidden
	}

	if err := b.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	b.publish(ctx, events.Event{
		Topic:  events.TopicEngagement,
		Kind:   events.KindCommentDeleted,
		Actor:  viewer,
		PostID: c.PostID,
	})

	return nil
}
