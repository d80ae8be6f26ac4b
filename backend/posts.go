package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/musclegram/musclegram/events"
	"github.com/musclegram/musclegram/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const timestampLayout = "2006/01/02 15:04"

// GetAllPosts returns up to limit posts, newest first.
func (b *Backend) GetAllPosts(ctx context.Context, limit int) ([]models.Post, error) {
	defer observeOp("list", "posts", time.Now())

	if limit <= 0 {
		limit = b.feedLimit
	}

	var posts []models.Post
	if err := b.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("get all posts: %w", err)
	}
	return posts, nil
}

// GetPostsByUser returns every post by userID, newest first.
func (b *Backend) GetPostsByUser(ctx context.Context, userID string) ([]models.Post, error) {
	posts, _, err := b.workoutCache.Get(ctx, userID, func(ctx context.Context) ([]models.Post, error) {
		defer observeOp("list_by_user", "posts", time.Now())

		var posts []models.Post
		if err := b.db.WithContext(ctx).Find(&posts, "user_id = ?", userID).Error; err != nil {
			return nil, fmt.Errorf("get posts by user: %w", err)
		}
		sortNewestFirst(posts)
		return posts, nil
	})
	if err != nil {
		return nil, err
	}

	// the cached slice is shared, so hand out copies down to the sets
	out := make([]models.Post, len(posts))
	for i, p := range posts {
		ex := p.Exercise.Data()
		ex.Sets = slices.Clone(ex.Sets)
		p.Exercise = datatypes.NewJSONType(ex)
		out[i] = p
	}
	return out, nil
}

func (b *Backend) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	if err := b.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

func (b *Backend) CountPostsByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := b.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (b *Backend) CreatePost(ctx context.Context, userID, content string, ex models.Exercise) (*models.Post, error) {
	defer observeOp("create", "posts", time.Now())

	if userID == "" {
		return nil, invalid("userId", "required")
	}
	ex, err := normalizeExercise(ex)
	if err != nil {
		return nil, err
	}

	pcid, err := postCid(content, ex)
	if err != nil {
		return nil, err
	}

	now := b.now()
	p := &models.Post{
		UserID:    userID,
		Content:   content,
		Exercise:  datatypes.NewJSONType(ex),
		Timestamp: now.Format(timestampLayout),
		Cid:       pcid,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := b.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	b.workoutCache.Invalidate(userID)
	b.publish(ctx, events.Event{
		Topic:   events.TopicPosts,
		Kind:    events.KindPostCreated,
		Actor:   userID,
		Subject: userID,
		PostID:  p.ID,
	})

	return p, nil
}

// UpdatePost rewrites a post in place. A non-empty ifMatch must equal the
// stored cid or the update is refused with ErrConflict.
func (b *Backend) UpdatePost(ctx context.Context, viewer, id, content string, ex models.Exercise, ifMatch string) (*models.Post, error) {
	defer observeOp("update", "posts", time.Now())

	keepExerciseID := ex.ID == ""
	ex, err := normalizeExercise(ex)
	if err != nil {
		return nil, err
	}

	p, err := b.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != viewer {
		return nil, ErrForbidden
	}
	if ifMatch != "" && ifMatch != p.Cid {
		return nil, ErrConflict
	}

	if keepExerciseID && p.Exercise.Data().ID != "" {
		ex.ID = p.Exercise.Data().ID
	}

	pcid, err := postCid(content, ex)
	if err != nil {
		return nil, err
	}

	p.Content = content
	p.Exercise = datatypes.NewJSONType(ex)
	p.Cid = pcid
	p.UpdatedAt = b.now()

	if err := b.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", p.ID).Updates(map[string]any{
		"content":    p.Content,
		"exercise":   p.Exercise,
		"cid":        p.Cid,
		"updated_at": p.UpdatedAt,
	}).Error; err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	b.workoutCache.Invalidate(p.UserID)
	b.publish(ctx, events.Event{
		Topic:   events.TopicPosts,
		Kind:    events.KindPostUpdated,
		Actor:   viewer,
		Subject: p.UserID,
		PostID:  p.ID,
	})

	return p, nil
}

// DeletePost removes the post row only. Likes, comments and notifications
// that point at it are left in place.
func (b *Backend) DeletePost(ctx context.Context, viewer, id string) error {
	defer observeOp("delete", "posts", time.Now())

	p, err := b.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if p.UserID != viewer {
		return ErrForbidden
	}

	if err := b.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	b.workoutCache.Invalidate(p.UserID)
	b.publish(ctx, events.Event{
		Topic:   events.TopicPosts,
		Kind:    events.KindPostDeleted,
		Actor:   viewer,
		Subject: p.UserID,
		PostID:  id,
	})

	return nil
}

func normalizeExercise(ex models.Exercise) (models.Exercise, error) {
	ex.Name = strings.TrimSpace(ex.Name)
	if ex.Name == "" {
		return ex, invalid("exercise.name", "required")
	}
	if len(ex.Sets) == 0 {
		return ex, invalid("exercise.sets", "at least one set is required")
	}

	sets := make([]models.Set, 0, len(ex.Sets))
	for i, s := range ex.Sets {
		s.Weight = strings.TrimSpace(s.Weight)
		s.Reps = strings.TrimSpace(s.Reps)
		if w, err := strconv.ParseFloat(s.Weight, 64); err != nil || w < 0 {
			return ex, invalid(fmt.Sprintf("exercise.sets[%d].weight", i), "must be a non-negative number")
		}
		if r, err := strconv.Atoi(s.Reps); err != nil || r <= 0 {
			return ex, invalid(fmt.Sprintf("exercise.sets[%d].reps", i), "must be a positive integer")
		}
		sets = append(sets, s)
	}
	ex.Sets = sets

	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	return ex, nil
}

// postCid is a CIDv1 over the canonical JSON of the post body.
func postCid(content string, ex models.Exercise) (string, error) {
	buf, err := json.Marshal(struct {
		Content  string          `json:"content"`
		Exercise models.Exercise `json:"exercise"`
	}{content, ex})
	if err != nil {
		return "", err
	}

	mh, err := multihash.Sum(buf, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}

	return cid.NewCidV1(cid.Raw, mh).String(), nil
}

func sortNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

func (b *Backend) publish(ctx context.Context, evt events.Event) {
	if err := b.pub.Publish(ctx, evt); err != nil {
		slog.Warn("failed to publish event", "topic", evt.Topic, "kind", evt.Kind, "error", err)
	}
}
