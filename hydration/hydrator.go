package hydration

import (
	"context"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/musclegram/musclegram/backend"
	"github.com/musclegram/musclegram/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var engagementCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "engagement_cache_lookups_total",
	Help: "Engagement count cache lookups by result",
}, []string{"result"})

// Hydrator turns stored rows into the derived data the views need
type Hydrator struct {
	backend *backend.Backend

	counts *lru.TwoQueueCache[string, engagementCounts]

	// loading tracks count loads in flight per post. An event for the post
	// bumps gen, and a load that saw an older gen does not cache its result.
	lk      sync.Mutex
	loading map[string]*countLoad
}

type countLoad struct {
	gen  uint64
	refs int
}

// NewHydrator creates a new Hydrator
func NewHydrator(b *backend.Backend) (*Hydrator, error) {
	counts, err := lru.New2Q[string, engagementCounts](50_000)
	if err != nil {
		return nil, err
	}

	return &Hydrator{
		backend: b,
		counts:  counts,
		loading: make(map[string]*countLoad),
	}, nil
}

// Watch drops cached counts for any post that the bus reports as changed.
// It returns once the subscriptions are registered.
func (h *Hydrator) Watch(ctx context.Context, sub events.Subscriber) error {
	return sub.Subscribe(ctx, h.handleEvent, events.TopicEngagement, events.TopicPosts)
}

func (h *Hydrator) handleEvent(evt events.Event) {
	if evt.PostID == "" {
		return
	}

	h.lk.Lock()
	defer h.lk.Unlock()

	if l, ok := h.loading[evt.PostID]; ok {
		l.gen++
	}
	if h.counts.Contains(evt.PostID) {
		slog.Debug("invalidating engagement counts", "post", evt.PostID, "kind", evt.Kind)
	}
	h.counts.Remove(evt.PostID)
}

// beginLoad registers a count load for postID and returns the generation
// it started at.
func (h *Hydrator) beginLoad(postID string) (*countLoad, uint64) {
	h.lk.Lock()
	defer h.lk.Unlock()

	l, ok := h.loading[postID]
	if !ok {
		l = &countLoad{}
		h.loading[postID] = l
	}
	l.refs++
	return l, l.gen
}

// finishLoad caches c unless an event for postID arrived since the load began.
func (h *Hydrator) finishLoad(postID string, l *countLoad, gen uint64, c *engagementCounts) {
	h.lk.Lock()
	defer h.lk.Unlock()

	if c != nil && l.gen == gen {
		h.counts.Add(postID, *c)
	}
	l.refs--
	if l.refs == 0 {
		delete(h.loading, postID)
	}
}
