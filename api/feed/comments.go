package feed

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/backend"
	"github.com/musclegram/musclegram/hydration"
	"github.com/musclegram/musclegram/views"
)

func HandleGetComments(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "getComments")
	defer span.End()

	postID := c.Param("id")
	comments, err := b.GetComments(ctx, postID)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	authors := make([]string, 0, len(comments))
	for _, cm := range comments {
		authors = append(authors, cm.UserID)
	}
	actors, err := hydrator.HydrateActors(ctx, authors)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"postId":   postID,
		"comments": views.CommentThread(comments, actors),
	})
}

func HandleCreateComment(c echo.Context, b *backend.Backend, hydrator *hydration.Hydrator) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "createComment")
	defer span.End()

	var in struct {
		Content  string `json:"content"`
		ParentID string `json:"parentId"`
	}
	if err := c.Bind(&in); err != nil {
		return apiutil.BadRequest(c, "invalid request body")
	}

	viewer := apiutil.Viewer(c)
	cm, err := b.AddComment(ctx, c.Param("id"), viewer, in.Content, in.ParentID)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	actors, err := hydrator.HydrateActors(ctx, []string{viewer})
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusCreated, &views.CommentView{
		ID:        cm.ID,
		PostID:    cm.PostID,
		ParentID:  cm.ParentID,
		Author:    views.ProfileBasic(actors[viewer]),
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt,
	})
}

func HandleDeleteComment(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "deleteComment")
	defer span.End()

	cm, err := b.GetComment(ctx, c.Param("commentId"))
	if err != nil {
		return apiutil.StoreError(c, err)
	}
	if cm.PostID != c.Param("id") {
		return apiutil.StoreError(c, backend.ErrNotFound)
	}

	if err := b.DeleteComment(ctx, apiutil.Viewer(c), cm.ID); err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
