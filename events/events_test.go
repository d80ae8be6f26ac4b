package events

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBusDeliversBeforePublishReturns(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []Event
	require.NoError(t, bus.Subscribe(ctx, func(evt Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, evt)
	}, TopicEngagement))

	evt := Event{Topic: TopicEngagement, Kind: KindLikeAdded, Actor: "u1", Subject: "u2", PostID: "p1"}
	require.NoError(t, bus.Publish(ctx, evt))

	// the publish blocked until the handler acked, so no waiting here
	mu.Lock()
	require.Equal(t, []Event{evt}, got)
	mu.Unlock()

	require.NoError(t, bus.Publish(ctx, Event{Topic: TopicPosts, Kind: KindPostCreated}))
	mu.Lock()
	require.Len(t, got, 1)
	mu.Unlock()
}

func TestBusWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	require.NoError(t, bus.Publish(context.Background(), Event{Topic: TopicFollowing, Kind: KindFollowAdded}))
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	require.NoError(t, p.Publish(context.Background(), Event{Topic: TopicPosts}))
}
