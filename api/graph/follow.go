package graph

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/backend"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("api/graph")

// HandleFollow makes the viewer follow :id
func HandleFollow(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "follow")
	defer span.End()

	viewer := apiutil.Viewer(c)
	subject := c.Param("id")

	if _, err := b.AddFollow(ctx, viewer, subject); err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"subject":   subject,
		"following": true,
	})
}

func HandleUnfollow(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "unfollow")
	defer span.End()

	viewer := apiutil.Viewer(c)
	subject := c.Param("id")

	if err := b.RemoveFollow(ctx, viewer, subject); err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"subject":   subject,
		"following": false,
	})
}
