package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCustomExercises(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	_, err := b.AddCustomExercise(ctx, "u1", "toes", "Toe Curl")
	require.ErrorIs(t, err, ErrValidation)

	_, err = b.AddCustomExercise(ctx, "u1", BodyPartLegs, " ")
	require.ErrorIs(t, err, ErrValidation)

	exs, err := b.GetCustomExercises(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, exs)

	ce, err := b.AddCustomExercise(ctx, "u1", BodyPartLegs, "Hack Squat")
	require.NoError(t, err)
	_, err = b.AddCustomExercise(ctx, "u1", BodyPartChest, "Bench Press")
	require.NoError(t, err)

	// the add invalidated the empty cached list
	exs, err = b.GetCustomExercises(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, exs, 2)

	cat, err := b.Catalog(ctx, "u1")
	require.NoError(t, err)
	require.Contains(t, cat[BodyPartLegs], "Hack Squat")
	require.Len(t, cat[BodyPartChest], len(defaultCatalog[BodyPartChest]))

	// a built-in name filed under another part stays where the catalog has it
	_, err = b.AddCustomExercise(ctx, "u1", BodyPartLegs, "Bench Press")
	require.NoError(t, err)
	cat, err = b.Catalog(ctx, "u1")
	require.NoError(t, err)
	require.NotContains(t, cat[BodyPartLegs], "Bench Press")
	require.Contains(t, cat[BodyPartChest], "Bench Press")

	require.NotContains(t, DefaultCatalog()[BodyPartLegs], "Hack Squat")

	otherCat, err := b.Catalog(ctx, "u2")
	require.NoError(t, err)
	require.NotContains(t, otherCat[BodyPartLegs], "Hack Squat")

	require.ErrorIs(t, b.DeleteCustomExercise(ctx, "u2", ce.ID), ErrForbidden)
	require.NoError(t, b.DeleteCustomExercise(ctx, "u1", ce.ID))
	require.ErrorIs(t, b.DeleteCustomExercise(ctx, "u1", ce.ID), ErrNotFound)

	exs, err = b.GetCustomExercises(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, exs, 2)
}
