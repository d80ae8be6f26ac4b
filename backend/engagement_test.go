package backend

import (
	"context"
	"testing"
	"time"

	"github.com/musclegram/musclegram/events"
	"github.com/musclegram/musclegram/models"
	"github.com/stretchr/testify/require"
)

func TestLikes(t *testing.T) {
	ctx := context.Background()
	b, rec := newTestBackend(t)
	mustUser(t, b, "u1", "Alice")

	p := mustPost(t, b, "u2")

	n, err := b.CountLikes(ctx, p.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	liked, err := b.HasLiked(ctx, p.ID, "u1")
	require.NoError(t, err)
	require.False(t, liked)

	_, err = b.AddLike(ctx, "missing", "u1")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = b.AddLike(ctx, p.ID, "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = b.AddLike(ctx, p.ID, "u1")
	require.NoError(t, err)
	_, err = b.AddLike(ctx, p.ID, "u1")
	require.NoError(t, err)
	_, err = b.AddLike(ctx, p.ID, "u3")
	require.NoError(t, err)

	n, err = b.CountLikes(ctx, p.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	likers, err := b.GetLikers(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u3"}, likers)

	liked, err = b.HasLiked(ctx, p.ID, "u1")
	require.NoError(t, err)
	require.True(t, liked)

	liked, err = b.HasLiked(ctx, p.ID, "")
	require.NoError(t, err)
	require.False(t, liked)

	require.NoError(t, b.RemoveLike(ctx, p.ID, "u1"))
	n, err = b.CountLikes(ctx, p.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	notifs, err := b.ListNotifications(ctx, "u2", 0, time.Time{})
	require.NoError(t, err)
	require.Len(t, notifs, 3)
	require.Equal(t, models.NotifKindLike, notifs[0].Type)
	require.Equal(t, "u3", notifs[0].FromUserID)
	require.Equal(t, "u3 liked your workout", notifs[0].Message)
	require.Equal(t, "Alice liked your workout", notifs[2].Message)
	require.Equal(t, p.ID, notifs[2].PostID)

	require.Contains(t, rec.kinds(), events.KindLikeAdded)
	require.Contains(t, rec.kinds(), events.KindLikeRemoved)
	require.Contains(t, rec.kinds(), events.KindNotification)
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	p := mustPost(t, b, "u1")
	_, err := b.AddLike(ctx, p.ID, "u1")
	require.NoError(t, err)
	_, err = b.AddComment(ctx, p.ID, "u1", "pr!", "")
	require.NoError(t, err)

	n, err := b.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, n)
}

// A failed notification write must not undo the action that caused it.
func TestNotificationFailureKeepsAction(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	p := mustPost(t, b, "u2")
	require.NoError(t, b.db.Migrator().DropTable(&models.Notification{}))

	_, err := b.AddLike(ctx, p.ID, "u1")
	require.NoError(t, err)

	n, err := b.CountLikes(ctx, p.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = b.AddFollow(ctx, "u1", "u2")
	require.NoError(t, err)

	ok, err := b.IsFollowing(ctx, "u1", "u2")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	p := mustPost(t, b, "u2")
	other := mustPost(t, b, "u2")

	_, err := b.AddComment(ctx, p.ID, "u1", "   ", "")
	require.ErrorIs(t, err, ErrValidation)

	root, err := b.AddComment(ctx, p.ID, "u1", "strong", "")
	require.NoError(t, err)
	require.Empty(t, root.ParentID)

	reply, err := b.AddComment(ctx, p.ID, "u2", "thanks", root.ID)
	require.NoError(t, err)
	require.Equal(t, root.ID, reply.ParentID)

	nested, err := b.AddComment(ctx, p.ID, "u3", "me too", reply.ID)
	require.NoError(t, err)
	require.Equal(t, root.ID, nested.ParentID)

	_, err = b.AddComment(ctx, other.ID, "u1", "wrong thread", root.ID)
	require.ErrorIs(t, err, ErrValidation)

	_, err = b.AddComment(ctx, p.ID, "u1", "ghost", "missing")
	require.ErrorIs(t, err, ErrValidation)

	comments, err := b.GetComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	require.Equal(t, root.ID, comments[0].ID)
	require.Equal(t, nested.ID, comments[2].ID)

	require.ErrorIs(t, b.DeleteComment(ctx, "u2", root.ID), ErrForbidden)
	require.NoError(t, b.DeleteComment(ctx, "u1", root.ID))
	require.ErrorIs(t, b.DeleteComment(ctx, "u1", root.ID), ErrNotFound)

	n, err := b.CountComments(ctx, p.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	unread, err := b.UnreadCount(ctx, "u2")
	require.NoError(t, err)
	require.EqualValues(t, 2, unread)
}
