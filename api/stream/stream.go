package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/musclegram/musclegram/api/apiutil"
	"github.com/musclegram/musclegram/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
	Name: "stream_events_dropped_total",
	Help: "Events not delivered to a websocket client because its buffer was full",
})

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Relevant reports whether viewer should be told about evt. Post and
// engagement changes are public; follow changes go to both ends of the edge
// and notifications only to their recipient.
func Relevant(evt events.Event, viewer string) bool {
	switch evt.Topic {
	case events.TopicPosts, events.TopicEngagement:
		return true
	case events.TopicFollowing:
		return viewer != "" && (evt.Actor == viewer || evt.Subject == viewer)
	case events.TopicNotifications:
		return viewer != "" && evt.Subject == viewer
	default:
		return false
	}
}

// HandleStream upgrades to a websocket and forwards relevant bus events as
// JSON. A slow client loses events rather than holding up publishers.
func HandleStream(c echo.Context, sub events.Subscriber) error {
	viewer := apiutil.Viewer(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan events.Event, sendBuffer)
	if err := sub.Subscribe(ctx, func(evt events.Event) {
		if !Relevant(evt, viewer) {
			return
		}
		select {
		case out <- evt:
		default:
			droppedEvents.Inc()
		}
	}, events.AllTopics...); err != nil {
		return apiutil.StoreError(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		log.Warnf("websocket upgrade failed: %s", err)
		return nil
	}
	defer conn.Close()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-out:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				log.Warnf("failed to write event to %q: %s", viewer, err)
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return nil
			}
		}
	}
}
