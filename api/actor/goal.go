package actor

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/backend"
)

// HandleGetGoal returns the viewer's monthly days goal. A viewer who never
// set one gets a zero target rather than a 404.
func HandleGetGoal(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "getGoal")
	defer span.End()

	g, err := b.GetDaysGoal(ctx, apiutil.Viewer(c))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return c.JSON(http.StatusOK, map[string]any{
				"monthlyTarget": 0,
			})
		}
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, g)
}

func HandlePutGoal(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "putGoal")
	defer span.End()

	var in struct {
		MonthlyTarget int `json:"monthlyTarget"`
	}
	if err := c.Bind(&in); err != nil {
		return apiutil.BadRequest(c, "invalid request body")
	}

	g, err := b.SetDaysGoal(ctx, apiutil.Viewer(c), in.MonthlyTarget)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, g)
}
