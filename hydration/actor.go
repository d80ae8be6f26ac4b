package hydration

import (
	"context"
	"log/slog"
	"sync"

	"github.com/musclegram/musclegram/models"
)

// ActorInfo contains hydrated actor information
type ActorInfo struct {
	ID          string
	Username    string
	DisplayName string
	Avatar      string
	Bio         string

	// Missing is set when posts or edges point at a user with no profile row.
	Missing bool
}

func actorFromUser(u *models.User) *ActorInfo {
	return &ActorInfo{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Bio:         u.Bio,
	}
}

func missingActor(id string) *ActorInfo {
	return &ActorInfo{ID: id, DisplayName: id, Missing: true}
}

// HydrateActor hydrates full actor information
func (h *Hydrator) HydrateActor(ctx context.Context, id string) (*ActorInfo, error) {
	ctx, span := tracer.Start(ctx, "hydrateActor")
	defer span.End()

	u, err := h.backend.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return actorFromUser(u), nil
}

// HydrateActors hydrates multiple actors. Ids without a profile row get a
// placeholder so posts by them still render.
func (h *Hydrator) HydrateActors(ctx context.Context, ids []string) (map[string]*ActorInfo, error) {
	ctx, span := tracer.Start(ctx, "hydrateActors")
	defer span.End()

	users, err := h.backend.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*ActorInfo, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			result[id] = actorFromUser(u)
		} else {
			result[id] = missingActor(id)
		}
	}
	return result, nil
}

type ViewerState struct {
	Following  bool
	FollowedBy bool
}

type ActorInfoDetailed struct {
	ActorInfo
	FollowCount   int64
	FollowerCount int64
	PostCount     int64
	ViewerState   *ViewerState
}

func (h *Hydrator) HydrateActorDetailed(ctx context.Context, id string, viewer string) (*ActorInfoDetailed, error) {
	act, err := h.HydrateActor(ctx, id)
	if err != nil {
		return nil, err
	}

	actd := ActorInfoDetailed{
		ActorInfo: *act,
	}

	var wg sync.WaitGroup
	wg.Go(func() {
		ids, err := h.backend.GetFollowing(ctx, id)
		if err != nil {
			slog.Error("failed to get follow count", "user", id, "error", err)
		}
		actd.FollowCount = int64(len(ids))
	})
	wg.Go(func() {
		ids, err := h.backend.GetFollowers(ctx, id)
		if err != nil {
			slog.Error("failed to get follower count", "user", id, "error", err)
		}
		actd.FollowerCount = int64(len(ids))
	})
	wg.Go(func() {
		c, err := h.backend.CountPostsByUser(ctx, id)
		if err != nil {
			slog.Error("failed to get post count", "user", id, "error", err)
		}
		actd.PostCount = c
	})

	if viewer != "" && viewer != id {
		wg.Go(func() {
			actd.ViewerState = h.getProfileViewerState(ctx, id, viewer)
		})
	}

	wg.Wait()

	return &actd, nil
}

func (h *Hydrator) getProfileViewerState(ctx context.Context, id, viewer string) *ViewerState {
	vs := &ViewerState{}

	var wg sync.WaitGroup

	wg.Go(func() {
		following, err := h.backend.IsFollowing(ctx, viewer, id)
		if err != nil {
			slog.Error("failed to get following relationship", "user", id, "viewer", viewer, "error", err)
			return
		}
		vs.Following = following
	})

	wg.Go(func() {
		followedBy, err := h.backend.IsFollowing(ctx, id, viewer)
		if err != nil {
			slog.Error("failed to get followedBy relationship", "user", id, "viewer", viewer, "error", err)
			return
		}
		vs.FollowedBy = followedBy
	})

	wg.Wait()

	return vs
}

