package graph

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/backend"
	"github.com/musclegram/musclegram/hydration"
	"github.com/musclegram/musclegram/views"
)

// HandleGetFollowers lists the users following :id
func HandleGetFollowers(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "getFollowers")
	defer span.End()

	return listUsers(ctx, c, hydrator, "followers", func(ctx context.Context, id string) ([]string, error) {
		return b.GetFollowers(ctx, id)
	})
}

// HandleGetFollowing lists the users :id follows
func HandleGetFollowing(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "getFollowing")
	defer span.End()

	return listUsers(ctx, c, hydrator, "following", func(ctx context.Context, id string) ([]string, error) {
		return b.GetFollowing(ctx, id)
	})
}

func listUsers(ctx context.Context, c echo.Context, hydrator *hydration.Hydrator, key string, load func(context.Context, string) ([]string, error)) error {
	subject := c.Param("id")

	ids, err := load(ctx, subject)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	limit := apiutil.ParseLimit(c, apiutil.DefaultLimit)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	actors, err := hydrator.HydrateActors(ctx, append([]string{subject}, ids...))
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"subject": views.ProfileBasic(actors[subject]),
		key:       views.ProfileList(ids, actors),
	})
}
