package hydration

import (
	"context"
	"log/slog"
	"sync"

	"github.com/musclegram/musclegram/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("hydrator")

type engagementCounts struct {
	Likes    int64
	Comments int64
}

// Engagement is what a viewer sees under a post.
type Engagement struct {
	LikeCount    int64
	CommentCount int64
	ViewerLiked  bool
}

// PostInfo contains hydrated post information
type PostInfo struct {
	Post models.Post
	Engagement
}

// GetEngagement computes like and comment counts for postID and whether
// viewer has liked it. Counts come from the cache when present; the viewer
// state is always read from the store.
func (h *Hydrator) GetEngagement(ctx context.Context, postID, viewer string) (*Engagement, error) {
	ctx, span := tracer.Start(ctx, "getEngagement")
	defer span.End()
	span.SetAttributes(attribute.String("post", postID))

	var (
		wg       sync.WaitGroup
		counts   engagementCounts
		liked    bool
		countErr error
		likedErr error
	)

	wg.Go(func() {
		counts, countErr = h.loadCounts(ctx, postID)
	})

	if viewer != "" {
		wg.Go(func() {
			_, span := tracer.Start(ctx, "viewerLikeState")
			defer span.End()
			liked, likedErr = h.backend.HasLiked(ctx, postID, viewer)
		})
	}

	wg.Wait()

	if countErr != nil {
		return nil, countErr
	}
	if likedErr != nil {
		return nil, likedErr
	}

	return &Engagement{
		LikeCount:    counts.Likes,
		CommentCount: counts.Comments,
		ViewerLiked:  liked,
	}, nil
}

func (h *Hydrator) loadCounts(ctx context.Context, postID string) (engagementCounts, error) {
	if c, ok := h.counts.Get(postID); ok {
		engagementCacheLookups.WithLabelValues("hit").Inc()
		return c, nil
	}
	engagementCacheLookups.WithLabelValues("miss").Inc()

	load, gen := h.beginLoad(postID)

	var (
		wg              sync.WaitGroup
		c               engagementCounts
		likeErr, cmtErr error
	)
	wg.Go(func() {
		_, span := tracer.Start(ctx, "likeCounts")
		defer span.End()
		c.Likes, likeErr = h.backend.CountLikes(ctx, postID)
	})
	wg.Go(func() {
		_, span := tracer.Start(ctx, "commentCounts")
		defer span.End()
		c.Comments, cmtErr = h.backend.CountComments(ctx, postID)
	})
	wg.Wait()

	if likeErr != nil {
		h.finishLoad(postID, load, gen, nil)
		return c, likeErr
	}
	if cmtErr != nil {
		h.finishLoad(postID, load, gen, nil)
		return c, cmtErr
	}

	h.finishLoad(postID, load, gen, &c)
	return c, nil
}

// HydratePost hydrates a single post by id
func (h *Hydrator) HydratePost(ctx context.Context, postID, viewer string) (*PostInfo, error) {
	ctx, span := tracer.Start(ctx, "hydratePost")
	defer span.End()

	p, err := h.backend.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	return h.HydratePostDB(ctx, p, viewer)
}

func (h *Hydrator) HydratePostDB(ctx context.Context, p *models.Post, viewer string) (*PostInfo, error) {
	eng, err := h.GetEngagement(ctx, p.ID, viewer)
	if err != nil {
		return nil, err
	}

	return &PostInfo{
		Post:       *p,
		Engagement: *eng,
	}, nil
}

// HydratePosts hydrates posts concurrently and returns them in input order.
// Posts that fail to hydrate are logged and left out.
func (h *Hydrator) HydratePosts(ctx context.Context, posts []models.Post, viewer string) []*PostInfo {
	ctx, span := tracer.Start(ctx, "hydratePosts")
	defer span.End()

	infos := make([]*PostInfo, len(posts))

	var wg sync.WaitGroup
	for i := range posts {
		wg.Go(func() {
			info, err := h.HydratePostDB(ctx, &posts[i], viewer)
			if err != nil {
				slog.Error("failed to hydrate post", "post", posts[i].ID, "error", err)
				return
			}
			infos[i] = info
		})
	}
	wg.Wait()

	out := make([]*PostInfo, 0, len(infos))
	for _, info := range infos {
		if info != nil {
			out = append(out, info)
		}
	}
	return out
}
