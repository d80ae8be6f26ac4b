package feed

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/backend"
	"github.com/musclegram/musclegram/hydration"
	"github.com/musclegram/musclegram/models"
	"github.com/musclegram/musclegram/timeline"
	"github.com/musclegram/musclegram/views"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("api/feed")

// HandleGetFeed serves the home feed. The following filter needs a viewer.
func HandleGetFeed(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "getFeed")
	defer span.End()

	filter := c.QueryParam("filter")
	if !timeline.ValidFilter(filter) {
		return apiutil.BadRequest(c, "filter must be all or following")
	}

	viewer := apiutil.Viewer(c)
	if filter == timeline.FilterFollowing && viewer == "" {
		return apiutil.AuthRequired(c)
	}

	limit := apiutil.ParseLimit(c, b.FeedLimit())

	posts, err := b.GetAllPosts(ctx, limit)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	var following []string
	if filter == timeline.FilterFollowing {
		following, err = b.GetFollowing(ctx, viewer)
		if err != nil {
			return apiutil.StoreError(c, err)
		}
	}

	feed, err := renderPosts(ctx, hydrator, viewer, timeline.Apply(filter, posts, following))
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"feed": feed,
	})
}

// HandleGetUserPosts serves a profile's workout list
func HandleGetUserPosts(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "getUserPosts")
	defer span.End()

	posts, err := b.GetPostsByUser(ctx, c.Param("id"))
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	limit := apiutil.ParseLimit(c, b.FeedLimit())
	if len(posts) > limit {
		posts = posts[:limit]
	}

	feed, err := renderPosts(ctx, hydrator, apiutil.Viewer(c), posts)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"feed": feed,
	})
}

func renderPosts(ctx context.Context, hydrator *hydration.Hydrator, viewer string, posts []models.Post) ([]*views.PostView, error) {
	infos := hydrator.HydratePosts(ctx, posts, viewer)

	authors := make([]string, 0, len(infos))
	for _, p := range infos {
		authors = append(authors, p.Post.UserID)
	}

	actors, err := hydrator.HydrateActors(ctx, authors)
	if err != nil {
		return nil, err
	}

	return views.Feed(infos, actors), nil
}

func renderPost(ctx context.Context, hydrator *hydration.Hydrator, viewer string, post *models.Post) (*views.PostView, error) {
	info, err := hydrator.HydratePostDB(ctx, post, viewer)
	if err != nil {
		return nil, err
	}

	actors, err := hydrator.HydrateActors(ctx, []string{post.UserID})
	if err != nil {
		return nil, err
	}

	return views.Post(info, actors[post.UserID]), nil
}
