package actor

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/backend"
	"github.com/musclegram/musclegram/models"
)

type profileInput struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar"`
}

// HandlePutProfile saves the viewer's profile settings
func HandlePutProfile(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "putProfile")
	defer span.End()

	var in profileInput
	if err := c.Bind(&in); err != nil {
		return apiutil.BadRequest(c, "invalid request body")
	}

	u, err := b.UpsertUser(ctx, &models.User{
		ID:          apiutil.Viewer(c),
		Email:       in.Email,
		Username:    in.Username,
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		Avatar:      in.Avatar,
	})
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, u)
}
