package actor

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/hydration"
	"github.com/musclegram/musclegram/views"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("api/actor")

// HandleGetProfile serves the profile page header for :id
func HandleGetProfile(c echo.Context, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "getProfile")
	defer span.End()

	actor, err := hydrator.HydrateActorDetailed(ctx, c.Param("id"), apiutil.Viewer(c))
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, views.ProfileDetailed(actor))
}
