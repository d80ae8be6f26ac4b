package backend

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/musclegram/musclegram/events"
	"github.com/musclegram/musclegram/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recorder struct {
	mu   sync.Mutex
	evts []events.Event
}

func (r *recorder) Publish(_ context.Context, evt events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evts = append(r.evts, evt)
	return nil
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.evts {
		out = append(out, e.Kind)
	}
	return out
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// newTestBackend returns a backend whose clock advances one second per call
// so creation order is deterministic.
func newTestBackend(t *testing.T) (*Backend, *recorder) {
	t.Helper()
	rec := &recorder{}
	b, err := NewBackend(openTestDB(t), rec, Config{})
	require.NoError(t, err)

	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	b.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	return b, rec
}

func mustUser(t *testing.T, b *Backend, id, name string) *models.User {
	t.Helper()
	u, err := b.UpsertUser(context.Background(), &models.User{
		ID:          id,
		Email:       id + "@example.com",
		Username:    id,
		DisplayName: name,
	})
	require.NoError(t, err)
	return u
}

func benchPress() models.Exercise {
	return models.Exercise{
		Name: "Bench Press",
		Sets: []models.Set{
			{Weight: "60", Reps: "10"},
			{Weight: "62.5", Reps: "8"},
		},
	}
}

func mustPost(t *testing.T, b *Backend, userID string) *models.Post {
	t.Helper()
	p, err := b.CreatePost(context.Background(), userID, "leg day", benchPress())
	require.NoError(t, err)
	return p
}

func TestUpsertUser(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	t.Run("validation", func(t *testing.T) {
		_, err := b.UpsertUser(ctx, &models.User{ID: "u1", Email: "not-an-email", Username: "u1"})
		require.ErrorIs(t, err, ErrValidation)

		_, err = b.UpsertUser(ctx, &models.User{ID: "u1", Email: "a@b.c"})
		require.ErrorIs(t, err, ErrValidation)

		_, err = b.UpsertUser(ctx, &models.User{Email: "a@b.c", Username: "x"})
		require.ErrorIs(t, err, ErrValidation)

		_, err = b.GetUser(ctx, "u1")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("create then update", func(t *testing.T) {
		u := mustUser(t, b, "u1", "Alice")
		require.Equal(t, "Alice", u.DisplayName)

		u2, err := b.UpsertUser(ctx, &models.User{ID: "u1", Email: "alice@example.com", Username: "alice", Bio: "squats"})
		require.NoError(t, err)
		require.Equal(t, "alice", u2.Username)
		require.Equal(t, "squats", u2.Bio)

		got, err := b.GetUser(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", got.Email)
	})

	t.Run("search", func(t *testing.T) {
		mustUser(t, b, "bob", "Bobby")
		users, err := b.SearchUsers(ctx, "BO", 10)
		require.NoError(t, err)
		require.Len(t, users, 1)
		require.Equal(t, "bob", users[0].ID)

		users, err = b.SearchUsers(ctx, "  ", 10)
		require.NoError(t, err)
		require.Empty(t, users)
	})
}

func TestPosts(t *testing.T) {
	ctx := context.Background()
	b, rec := newTestBackend(t)

	t.Run("create validates", func(t *testing.T) {
		_, err := b.CreatePost(ctx, "", "x", benchPress())
		require.ErrorIs(t, err, ErrValidation)

		_, err = b.CreatePost(ctx, "u1", "x", models.Exercise{Name: "Squat"})
		require.ErrorIs(t, err, ErrValidation)

		_, err = b.CreatePost(ctx, "u1", "x", models.Exercise{Name: "Squat", Sets: []models.Set{{Weight: "heavy", Reps: "5"}}})
		require.ErrorIs(t, err, ErrValidation)

		_, err = b.CreatePost(ctx, "u1", "x", models.Exercise{Sets: []models.Set{{Weight: "100", Reps: "5"}}})
		require.ErrorIs(t, err, ErrValidation)

		all, err := b.GetAllPosts(ctx, 0)
		require.NoError(t, err)
		require.Empty(t, all)
	})

	p1 := mustPost(t, b, "u1")
	p2 := mustPost(t, b, "u2")
	p3 := mustPost(t, b, "u1")

	t.Run("create fills derived fields", func(t *testing.T) {
		require.NotEmpty(t, p1.ID)
		require.NotEmpty(t, p1.Cid)
		require.NotEmpty(t, p1.Exercise.Data().ID)
		require.Equal(t, p1.CreatedAt.Format(timestampLayout), p1.Timestamp)
		require.Equal(t, "62.5", p1.Exercise.Data().Sets[1].Weight)
	})

	t.Run("get all newest first with limit", func(t *testing.T) {
		all, err := b.GetAllPosts(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, []string{p3.ID, p2.ID, p1.ID}, postIDs(all))

		two, err := b.GetAllPosts(ctx, 2)
		require.NoError(t, err)
		require.Equal(t, []string{p3.ID, p2.ID}, postIDs(two))
	})

	t.Run("get by user newest first", func(t *testing.T) {
		mine, err := b.GetPostsByUser(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, []string{p3.ID, p1.ID}, postIDs(mine))

		n, err := b.CountPostsByUser(ctx, "u1")
		require.NoError(t, err)
		require.EqualValues(t, 2, n)
	})

	t.Run("by user results do not alias the cache", func(t *testing.T) {
		mine, err := b.GetPostsByUser(ctx, "u1")
		require.NoError(t, err)
		ex := mine[0].Exercise.Data()
		want := ex.Sets[0].Weight
		ex.Sets[0].Weight = "999"
		mine[0].Content = "scribbled"

		again, err := b.GetPostsByUser(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, want, again[0].Exercise.Data().Sets[0].Weight)
		require.NotEqual(t, "scribbled", again[0].Content)
	})

	t.Run("update by owner only", func(t *testing.T) {
		ex := benchPress()
		ex.Sets = append(ex.Sets, models.Set{Weight: "65", Reps: "5"})

		_, err := b.UpdatePost(ctx, "u2", p1.ID, "edited", ex, "")
		require.ErrorIs(t, err, ErrForbidden)

		_, err = b.UpdatePost(ctx, "u1", p1.ID, "edited", ex, "not-the-cid")
		require.ErrorIs(t, err, ErrConflict)

		up, err := b.UpdatePost(ctx, "u1", p1.ID, "edited", ex, p1.Cid)
		require.NoError(t, err)
		require.NotEqual(t, p1.Cid, up.Cid)
		require.Equal(t, p1.Exercise.Data().ID, up.Exercise.Data().ID)

		got, err := b.GetPost(ctx, p1.ID)
		require.NoError(t, err)
		require.Equal(t, "edited", got.Content)
		require.Len(t, got.Exercise.Data().Sets, 3)
		require.Equal(t, up.Cid, got.Cid)

		mine, err := b.GetPostsByUser(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "edited", mine[1].Content)
	})

	t.Run("cid covers content", func(t *testing.T) {
		a, err := postCid("x", benchPress())
		require.NoError(t, err)
		c, err := postCid("y", benchPress())
		require.NoError(t, err)
		require.NotEqual(t, a, c)
	})

	t.Run("delete by owner only", func(t *testing.T) {
		require.ErrorIs(t, b.DeletePost(ctx, "u2", p3.ID), ErrForbidden)
		require.NoError(t, b.DeletePost(ctx, "u1", p3.ID))
		require.ErrorIs(t, b.DeletePost(ctx, "u1", p3.ID), ErrNotFound)

		_, err := b.GetPost(ctx, p3.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	require.Contains(t, rec.kinds(), events.KindPostCreated)
	require.Contains(t, rec.kinds(), events.KindPostUpdated)
	require.Contains(t, rec.kinds(), events.KindPostDeleted)
}

// Deleting a post does not cascade. This pins the current behavior: likes
// and comments for a deleted post stay behind.
func TestDeletePostLeavesOrphans(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	p := mustPost(t, b, "u2")
	_, err := b.AddLike(ctx, p.ID, "u1")
	require.NoError(t, err)
	_, err = b.AddComment(ctx, p.ID, "u1", "nice", "")
	require.NoError(t, err)

	require.NoError(t, b.DeletePost(ctx, "u2", p.ID))

	byUser, err := b.GetPostsByUser(ctx, "u2")
	require.NoError(t, err)
	require.Empty(t, byUser)

	all, err := b.GetAllPosts(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, all)

	likes, err := b.CountLikes(ctx, p.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, likes)

	comments, err := b.CountComments(ctx, p.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, comments)
}

func postIDs(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
