package views

import (
	"time"

	"github.com/musclegram/musclegram/hydration"
	"github.com/musclegram/musclegram/models"
)

type PostView struct {
	ID        string            `json:"id"`
	Cid       string            `json:"cid"`
	Author    *ProfileViewBasic `json:"author"`
	Content   string            `json:"content"`
	Exercise  models.Exercise   `json:"exercise"`
	Timestamp string            `json:"timestamp"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`

	LikesCount    int64 `json:"likesCount"`
	CommentsCount int64 `json:"commentsCount"`
	ViewerLiked   bool  `json:"viewerHasLiked"`
}

type CommentView struct {
	ID        string            `json:"id"`
	PostID    string            `json:"postId"`
	ParentID  string            `json:"parentId,omitempty"`
	Author    *ProfileViewBasic `json:"author"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"createdAt"`
	Replies   []*CommentView    `json:"replies,omitempty"`
}

// Post builds the feed card for a hydrated post
func Post(post *hydration.PostInfo, author *hydration.ActorInfo) *PostView {
	return &PostView{
		ID:            post.Post.ID,
		Cid:           post.Post.Cid,
		Author:        ProfileBasic(author),
		Content:       post.Post.Content,
		Exercise:      post.Post.Exercise.Data(),
		Timestamp:     post.Post.Timestamp,
		CreatedAt:     post.Post.CreatedAt,
		UpdatedAt:     post.Post.UpdatedAt,
		LikesCount:    post.LikeCount,
		CommentsCount: post.CommentCount,
		ViewerLiked:   post.ViewerLiked,
	}
}

// Feed builds views for posts in order. Authors missing from the map get a
// placeholder.
func Feed(posts []*hydration.PostInfo, actors map[string]*hydration.ActorInfo) []*PostView {
	out := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		a, ok := actors[p.Post.UserID]
		if !ok {
			a = &hydration.ActorInfo{ID: p.Post.UserID, Missing: true}
		}
		out = append(out, Post(p, a))
	}
	return out
}

// CommentThread nests replies under their root comment. Comments whose
// parent is gone are shown at the top level. Input order is kept.
func CommentThread(comments []models.Comment, actors map[string]*hydration.ActorInfo) []*CommentView {
	byID := make(map[string]*CommentView, len(comments))
	for _, c := range comments {
		a, ok := actors[c.UserID]
		if !ok {
			a = &hydration.ActorInfo{ID: c.UserID, Missing: true}
		}
		byID[c.ID] = &CommentView{
			ID:        c.ID,
			PostID:    c.PostID,
			ParentID:  c.ParentID,
			Author:    ProfileBasic(a),
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		}
	}

	var roots []*CommentView
	for _, c := range comments {
		v := byID[c.ID]
		if parent, ok := byID[c.ParentID]; ok && c.ParentID != "" {
			parent.Replies = append(parent.Replies, v)
			continue
		}
		roots = append(roots, v)
	}
	return roots
}
