package feed

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/backend"
	"github.com/musclegram/musclegram/hydration"
	"github.com/musclegram/musclegram/models"
)

type postInput struct {
	Content  string          `json:"content"`
	Exercise models.Exercise `json:"exercise"`
}

func HandleGetPost(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "getPost")
	defer span.End()

	p, err := b.GetPost(ctx, c.Param("id"))
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	view, err := renderPost(ctx, hydrator, apiutil.Viewer(c), p)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	apiutil.SetETag(c, p.Cid)
	return c.JSON(http.StatusOK, view)
}

func HandleCreatePost(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "createPost")
	defer span.End()

	viewer := apiutil.Viewer(c)

	var in postInput
	if err := c.Bind(&in); err != nil {
		return apiutil.BadRequest(c, "invalid request body")
	}

	p, err := b.CreatePost(ctx, viewer, in.Content, in.Exercise)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	view, err := renderPost(ctx, hydrator, viewer, p)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	apiutil.SetETag(c, p.Cid)
	return c.JSON(http.StatusCreated, view)
}

// HandleUpdatePost replaces a post's body. An If-Match header makes the
// update conditional on the current cid.
func HandleUpdatePost(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "updatePost")
	defer span.End()

	viewer := apiutil.Viewer(c)

	var in postInput
	if err := c.Bind(&in); err != nil {
		return apiutil.BadRequest(c, "invalid request body")
	}

	p, err := b.UpdatePost(ctx, viewer, c.Param("id"), in.Content, in.Exercise, apiutil.IfMatch(c))
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	view, err := renderPost(ctx, hydrator, viewer, p)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	apiutil.SetETag(c, p.Cid)
	return c.JSON(http.StatusOK, view)
}

func HandleDeletePost(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "deletePost")
	defer span.End()

	if err := b.DeletePost(ctx, apiutil.Viewer(c), c.Param("id")); err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
