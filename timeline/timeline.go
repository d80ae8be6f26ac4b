// Package timeline splits a newest-first post list into the views the feed
// page shows. Nothing here touches the store; callers pass in what they
// already loaded.
package timeline

import (
	"github.com/musclegram/musclegram/models"
)

const (
	FilterAll       = "all"
	FilterFollowing = "following"
)

// ValidFilter reports whether f names a known feed filter. The empty string
// means FilterAll.
func ValidFilter(f string) bool {
	return f == "" || f == FilterAll || f == FilterFollowing
}

// All returns posts as given.
func All(posts []models.Post) []models.Post {
	return posts
}

// Following keeps the posts written by someone in followingIDs. Order is
// preserved and applying it twice changes nothing.
func Following(posts []models.Post, followingIDs []string) []models.Post {
	set := make(map[string]struct{}, len(followingIDs))
	for _, id := range followingIDs {
		set[id] = struct{}{}
	}

	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := set[p.UserID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func ByAuthor(posts []models.Post, userID string) []models.Post {
	return Following(posts, []string{userID})
}

// Apply dispatches on filter. Unknown filters fall back to All.
func Apply(filter string, posts []models.Post, followingIDs []string) []models.Post {
	if filter == FilterFollowing {
		return Following(posts, followingIDs)
	}
	return All(posts)
}
