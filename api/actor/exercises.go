package actor

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/backend"
)

// HandleGetExercises returns the exercise picker catalog for the viewer
func HandleGetExercises(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "getExercises")
	defer span.End()

	viewer := apiutil.Viewer(c)

	catalog, err := b.Catalog(ctx, viewer)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	custom, err := b.GetCustomExercises(ctx, viewer)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"bodyParts": backend.BodyParts,
		"catalog":   catalog,
		"custom":    custom,
	})
}

func HandleAddExercise(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "addExercise")
	defer span.End()

	var in struct {
		BodyPart     string `json:"bodyPart"`
		ExerciseName string `json:"exerciseName"`
	}
	if err := c.Bind(&in); err != nil {
		return apiutil.BadRequest(c, "invalid request body")
	}

	ce, err := b.AddCustomExercise(ctx, apiutil.Viewer(c), in.BodyPart, in.ExerciseName)
	if err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.JSON(http.StatusCreated, ce)
}

func HandleDeleteExercise(c echo.Context, b *backend.Backend) error {
	ctx := c.Request().Context()
	ctx, span := tracer.Start(ctx, "deleteExercise")
	defer span.End()

	if err := b.DeleteCustomExercise(ctx, apiutil.Viewer(c), c.Param("id")); err != nil {
		return apiutil.StoreError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
