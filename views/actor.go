package views

import (
	"github.com/musclegram/musclegram/hydration"
)

type ProfileViewBasic struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
}

type ViewerState struct {
	Following  bool `json:"following"`
	FollowedBy bool `json:"followedBy"`
}

type ProfileViewDetailed struct {
	ProfileViewBasic
	Bio            string       `json:"bio,omitempty"`
	FollowersCount int64        `json:"followersCount"`
	FollowsCount   int64        `json:"followsCount"`
	PostsCount     int64        `json:"postsCount"`
	Viewer         *ViewerState `json:"viewer,omitempty"`
}

// ProfileBasic builds the author block shown on posts and lists
func ProfileBasic(actor *hydration.ActorInfo) *ProfileViewBasic {
	view := &ProfileViewBasic{
		ID:          actor.ID,
		Username:    actor.Username,
		DisplayName: actor.DisplayName,
		Avatar:      actor.Avatar,
	}

	if view.DisplayName == "" {
		view.DisplayName = actor.Username
	}
	if view.DisplayName == "" {
		view.DisplayName = actor.ID
	}

	return view
}

// ProfileDetailed builds the profile page view
func ProfileDetailed(actor *hydration.ActorInfoDetailed) *ProfileViewDetailed {
	view := &ProfileViewDetailed{
		ProfileViewBasic: *ProfileBasic(&actor.ActorInfo),
		Bio:              actor.Bio,
		FollowersCount:   actor.FollowerCount,
		FollowsCount:     actor.FollowCount,
		PostsCount:       actor.PostCount,
	}

	if actor.ViewerState != nil {
		view.Viewer = &ViewerState{
			Following:  actor.ViewerState.Following,
			FollowedBy: actor.ViewerState.FollowedBy,
		}
	}

	return view
}

// ProfileList builds basic views for ids in order, using placeholders for
// ids the actor map does not cover.
func ProfileList(ids []string, actors map[string]*hydration.ActorInfo) []*ProfileViewBasic {
	out := make([]*ProfileViewBasic, 0, len(ids))
	for _, id := range ids {
		a, ok := actors[id]
		if !ok {
			a = &hydration.ActorInfo{ID: id, Missing: true}
		}
		out = append(out, ProfileBasic(a))
	}
	return out
}
