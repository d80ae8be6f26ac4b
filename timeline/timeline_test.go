package timeline

import (
	"testing"

	"github.com/musclegram/musclegram/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func posts(authors ...string) []models.Post {
	out := make([]models.Post, 0, len(authors))
	for i, a := range authors {
		out = append(out, models.Post{ID: string(rune('a' + i)), UserID: a})
	}
	return out
}

func ids(ps []models.Post) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFollowing(t *testing.T) {
	feed := posts("u2", "u3", "u2", "u4", "u3")

	t.Run("keeps order", func(t *testing.T) {
		got := Following(feed, []string{"u3", "u2"})
		require.Equal(t, []string{"a", "b", "c", "e"}, ids(got))
	})

	t.Run("idempotent", func(t *testing.T) {
		once := Following(feed, []string{"u2"})
		twice := Following(once, []string{"u2"})
		require.Equal(t, once, twice)
	})

	t.Run("empty follow set", func(t *testing.T) {
		require.Empty(t, Following(feed, nil))
	})

	t.Run("duplicate ids", func(t *testing.T) {
		require.Equal(t, ids(Following(feed, []string{"u4"})), ids(Following(feed, []string{"u4", "u4"})))
	})
}

func TestAllAndApply(t *testing.T) {
	feed := posts("u2", "u3")
	require.Equal(t, feed, All(feed))
	require.Equal(t, feed, All(All(feed)))

	assert.Equal(t, []string{"b"}, ids(Apply(FilterFollowing, feed, []string{"u3"})))
	assert.Equal(t, []string{"a", "b"}, ids(Apply(FilterAll, feed, []string{"u3"})))
	assert.Equal(t, []string{"a", "b"}, ids(Apply("", feed, nil)))

	assert.Equal(t, []string{"a"}, ids(ByAuthor(feed, "u2")))

	assert.True(t, ValidFilter(""))
	assert.True(t, ValidFilter(FilterFollowing))
	assert.False(t, ValidFilter("trending"))
}
