package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Topic string

const (
	TopicPosts         Topic = "posts.updated"
	TopicFollowing     Topic = "following.updated"
	TopicEngagement    Topic = "engagement.updated"
	TopicNotifications Topic = "notifications.created"
)

var AllTopics = []Topic{TopicPosts, TopicFollowing, TopicEngagement, TopicNotifications}

const (
	KindPostCreated    = "post_created"
	KindPostUpdated    = "post_updated"
	KindPostDeleted    = "post_deleted"
	KindFollowAdded    = "follow_added"
	KindFollowRemoved  = "follow_removed"
	KindLikeAdded      = "like_added"
	KindLikeRemoved    = "like_removed"
	KindCommentAdded   = "comment_added"
	KindCommentDeleted = "comment_deleted"
	KindNotification   = "notification"
)

// Event describes a change to shared state. Actor is the user who made the
// change, Subject the user it is about (post owner, followee, recipient).
type Event struct {
	Topic   Topic  `json:"topic"`
	Kind    string `json:"kind"`
	Actor   string `json:"actor,omitempty"`
	Subject string `json:"subject,omitempty"`
	PostID  string `json:"postId,omitempty"`
}

// Publisher is what the store needs from the bus.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Subscriber delivers events to handler until ctx is done.
type Subscriber interface {
	Subscribe(ctx context.Context, handler func(Event), topics ...Topic) error
}

// Bus is an in-process pub/sub. Publish blocks until every current
// subscriber has acked the message.
type Bus struct {
	gc *gochannel.GoChannel

	closeOnce sync.Once
}

func NewBus() *Bus {
	return &Bus{
		gc: gochannel.NewGoChannel(gochannel.Config{
			BlockPublishUntilSubscriberAck: true,
		}, watermill.NopLogger{}),
	}
}

func (b *Bus) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := b.gc.Publish(string(evt.Topic), msg); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Topic, err)
	}
	return nil
}

// Subscribe delivers events on the given topics until ctx is done. The
// handler runs on the subscriber goroutine; the message is acked once it
// returns.
func (b *Bus) Subscribe(ctx context.Context, handler func(Event), topics ...Topic) error {
	for _, t := range topics {
		msgs, err := b.gc.Subscribe(ctx, string(t))
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}

		go func() {
			for msg := range msgs {
				var evt Event
				if err := json.Unmarshal(msg.Payload, &evt); err != nil {
					slog.Error("failed to decode event", "topic", t, "error", err)
					msg.Ack()
					continue
				}
				handler(evt)
				msg.Ack()
			}
		}()
	}

	return nil
}

func (b *Bus) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = b.gc.Close()
	})
	return err
}

// Nop drops everything.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
