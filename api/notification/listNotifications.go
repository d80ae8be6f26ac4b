package notification

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/backend"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("api/notification")

// HandleListNotifications pages through the viewer's notifications, newest
// first. The cursor is the RFC3339 creation time of the last item seen.
func HandleListNotifications(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "listNotifications")
	defer span.End()

	limit := apiutil.ParseLimit(c, apiutil.DefaultLimit)

	var cursor time.Time
	if cursorParam := c.QueryParam("cursor"); cursorParam != "" {
		t, err := time.Parse(time.RFC3339Nano, cursorParam)
		if err != nil {
			return apiutil.BadRequest(c, "invalid cursor")
		}
		cursor = t
	}

	notifs, err := b.ListNotifications(ctx, apiutil.Viewer(c), limit, cursor)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	var nextCursor string
	if len(notifs) == limit {
		nextCursor = notifs[len(notifs)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"notifications": notifs,
		"cursor":        nextCursor,
	})
}

func HandleGetUnreadCount(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "getUnreadCount")
	defer span.End()

	n, err := b.UnreadCount(ctx, apiutil.Viewer(c))
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"count": n,
	})
}

// HandleUpdateSeen marks everything read; clients call it when the
// notification panel opens.
func HandleUpdateSeen(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "updateSeen")
	defer span.End()

	n, err := b.MarkAllRead(ctx, apiutil.Viewer(c))
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"updated": n,
	})
}
