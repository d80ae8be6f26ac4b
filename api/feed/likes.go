package feed

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/backend"
	"github.com/musclegram/musclegram/hydration"
	"github.com/musclegram/musclegram/views"
)

// HandleLike and HandleUnlike answer with the post's fresh engagement so
// the client can redraw the like button without another fetch.
func HandleLike(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "like")
	defer span.End()

	viewer := apiutil.Viewer(c)
	postID := c.Param("id")

	if _, err := b.AddLike(ctx, postID, viewer); err != nil {
		return apiutil.StoreError(c, err)
	}

	return engagementResponse(c, hydrator, postID, viewer)
}

func HandleUnlike(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "unlike")
	defer span.End()

	viewer := apiutil.Viewer(c)
	postID := c.Param("id")

	if err := b.RemoveLike(ctx, postID, viewer); err != nil {
		return apiutil.StoreError(c, err)
	}

	return engagementResponse(c, hydrator, postID, viewer)
}

func engagementResponse(c echo.Context, hydrator *hydration.Hydrator, postID, viewer string) error {
	eng, err := hydrator.GetEngagement(c.Request().Context(), postID, viewer)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"postId":         postID,
		"likesCount":     eng.LikeCount,
		"commentsCount":  eng.CommentCount,
		"viewerHasLiked": eng.ViewerLiked,
	})
}

// HandleGetLikes lists who liked a post
func HandleGetLikes(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "getLikes")
	defer span.End()

	postID := c.Param("id")
	if _, err := b.GetPost(ctx, postID); err != nil {
		return apiutil.StoreError(c, err)
	}

	likers, err := b.GetLikers(ctx, postID)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	actors, err := hydrator.HydrateActors(ctx, likers)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"postId": postID,
		"likes":  views.ProfileList(likers, actors),
	})
}
