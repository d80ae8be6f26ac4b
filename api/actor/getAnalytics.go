package actor

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/analytics"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/backend"
)

// HandleGetAnalytics builds the training report for :id. ?month=YYYY-MM
// picks the goal month (default current) and ?tz= an IANA zone for day
// boundaries (default UTC).
func HandleGetAnalytics(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "getAnalytics")
	defer span.End()

	userID := c.Param("id")

	loc := time.UTC
	if tz := c.QueryParam("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return apiutil.BadRequest(c, "unknown time zone")
		}
		loc = l
	}

	now := time.Now().In(loc)
	month := now
	if m := c.QueryParam("month"); m != "" {
		t, err := time.ParseInLocation("2006-01", m, loc)
		if err != nil {
			return apiutil.BadRequest(c, "month must be YYYY-MM")
		}
		month = t
	}

	posts, err := b.GetPostsByUser(ctx, userID)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	catalog, err := b.Catalog(ctx, userID)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	var target int
	g, err := b.GetDaysGoal(ctx, userID)
	switch {
	case err == nil:
		target = g.MonthlyTarget
	case errors.Is(err, backend.ErrNotFound):
	default:
		return apiutil.StoreError(c, err)
	}

	report := analytics.BuildReport(posts, analytics.ReportParams{
		Catalog:  catalog,
		Month:    month,
		Target:   target,
		Now:      now,
		Location: loc,
	})

	return c.JSON(http.StatusOK, report)
}
