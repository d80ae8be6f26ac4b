package backend

import (
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/musclegram/musclegram/cache"
	"github.com/musclegram/musclegram/events"
	"github.com/musclegram/musclegram/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var storeOpHist = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "store_op_duration",
	Help:    "A histogram of store operation durations in milliseconds",
	Buckets: prometheus.ExponentialBuckets(1, 2, 15),
}, []string{"op", "collection"})

var notificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "notification_write_failures_total",
	Help: "Notification writes that failed after the primary action succeeded",
}, []string{"kind"})

const DefaultFeedLimit = 50

type Config struct {
	FeedLimit int
	CacheTTL  time.Duration
}

// Backend is the store accessor for every musclegram entity. The database is
// the source of truth; the caches here only shortcut reads.
type Backend struct {
	db  *gorm.DB
	pub events.Publisher

	feedLimit int

	userCache *lru.TwoQueueCache[string, *models.User]

	workoutCache  *cache.ReadThrough[[]models.Post]
	exerciseCache *cache.ReadThrough[[]models.CustomExercise]

	now func() time.Time
}

func NewBackend(db *gorm.DB, pub events.Publisher, cfg Config) (*Backend, error) {
	uc, err := lru.New2Q[string, *models.User](100_000)
	if err != nil {
		return nil, err
	}

	if pub == nil {
		pub = events.Nop{}
	}
	if cfg.FeedLimit <= 0 {
		cfg.FeedLimit = DefaultFeedLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute * 5
	}

	return &Backend{
		db:            db,
		pub:           pub,
		feedLimit:     cfg.FeedLimit,
		userCache:     uc,
		workoutCache:  cache.NewReadThrough[[]models.Post](cache.SubjectWorkoutExercises, 10_000, cfg.CacheTTL),
		exerciseCache: cache.NewReadThrough[[]models.CustomExercise](cache.SubjectCustomExercises, 10_000, cfg.CacheTTL),
		now:           time.Now,
	}, nil
}

func (b *Backend) FeedLimit() int {
	return b.feedLimit
}

func observeOp(op, collection string, start time.Time) {
	storeOpHist.WithLabelValues(op, collection).Observe(float64(time.Since(start).Milliseconds()))
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// dedupe keeps the first occurrence of each id.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
