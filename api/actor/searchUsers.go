package actor

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/backend"
	"github.com/musclegram/musclegram/hydration"
	"github.com/musclegram/musclegram/views"
)

// HandleSearchUsers does a prefix match on username and display name
func HandleSearchUsers(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "searchUsers")
	defer span.End()

	users, err := b.SearchUsers(ctx, c.QueryParam("q"), apiutil.ParseLimit(c, apiutil.DefaultLimit))
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	actors, err := hydrator.HydrateActors(ctx, ids)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"users": views.ProfileList(ids, actors),
	})
}
