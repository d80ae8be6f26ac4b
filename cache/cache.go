// Package cache holds per-user read-through caches keyed
// musclegram_<subject>_<userId>. The store stays authoritative: entries expire
// after a TTL and writers invalidate the key for the subject they touched.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const keyPrefix = "musclegram_"

const (
	SubjectWorkoutExercises = "workoutExercises"
	SubjectCustomExercises  = "customExercises"
)

func Key(subject, userID string) string {
	return keyPrefix + subject + "_" + userID
}

type entry[T any] struct {
	val       T
	fetchedAt time.Time
}

type ReadThrough[T any] struct {
	subject string
	lru     *expirable.LRU[string, entry[T]]
	now     func() time.Time
}

func NewReadThrough[T any](subject string, size int, ttl time.Duration) *ReadThrough[T] {
	return &ReadThrough[T]{
		subject: subject,
		lru:     expirable.NewLRU[string, entry[T]](size, nil, ttl),
		now:     time.Now,
	}
}

// Get returns the cached value for userID, calling load on a miss. The
// returned time is when the value was read from the store.
func (c *ReadThrough[T]) Get(ctx context.Context, userID string, load func(context.Context) (T, error)) (T, time.Time, error) {
	k := Key(c.subject, userID)
	if e, ok := c.lru.Get(k); ok {
		return e.val, e.fetchedAt, nil
	}

	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, time.Time{}, err
	}

	e := entry[T]{val: v, fetchedAt: c.now()}
	c.lru.Add(k, e)
	return e.val, e.fetchedAt, nil
}

func (c *ReadThrough[T]) Invalidate(userID string) {
	c.lru.Remove(Key(c.subject, userID))
}

func (c *ReadThrough[T]) Len() int {
	return c.lru.Len()
}
