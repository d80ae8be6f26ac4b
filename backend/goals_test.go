package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDaysGoal(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	_, err := b.GetDaysGoal(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	for _, bad := range []int{0, -1, 32} {
		_, err := b.SetDaysGoal(ctx, "u1", bad)
		require.ErrorIs(t, err, ErrValidation)
	}

	g, err := b.SetDaysGoal(ctx, "u1", 12)
	require.NoError(t, err)
	require.Equal(t, 12, g.MonthlyTarget)

	g2, err := b.SetDaysGoal(ctx, "u1", 20)
	require.NoError(t, err)
	require.Equal(t, 20, g2.MonthlyTarget)
	require.Equal(t, g.ID, g2.ID)

	got, err := b.GetDaysGoal(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 20, got.MonthlyTarget)
}
