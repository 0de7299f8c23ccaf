// Package scheduler is the request-to-route scheduling engine: the request
// lifecycle state machine, the bin/worker conflict detector, the worker load
// balancer and the route aggregator. All state-changing entry points
// serialize per scheduling key, (bin, date) for request creation and
// (worker, date) for approval and route mutation, so concurrent callers
// cannot both pass a conflict check and double-book a slot.
package scheduler

import (
	"os"
	"strconv"
	"time"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
)

// DefaultDailyCapacity is one assignment per fixed time slot.
const DefaultDailyCapacity = 5

// dateLayout is the calendar-day format used on requests and routes.
const dateLayout = "2006-01-02"

// Notifier is the outbound event contract. Delivery is fire-and-forget;
// implementations must never block the scheduling path.
type Notifier interface {
	Publish(userID, typ, title, message, relatedID string)
	PublishToRole(users []models.User, typ, title, message, relatedID string)
}

// Engine coordinates requests, routes, bins and workers on top of a Store.
type Engine struct {
	store    store.Store
	notifier Notifier
	locks    *keyedMutex

	dailyCapacity int
	now           func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine clock. Used by tests to pin "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithDailyCapacity overrides the per-worker daily assignment cap.
func WithDailyCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.dailyCapacity = n
		}
	}
}

// New creates an Engine. notifier may be nil.
func New(s store.Store, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		store:         s,
		notifier:      notifier,
		locks:         newKeyedMutex(),
		dailyCapacity: capacityFromEnv(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func capacityFromEnv() int {
	if v := os.Getenv("WORKER_DAILY_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultDailyCapacity
}

// today returns the current calendar day in the engine clock's location.
func (e *Engine) today() time.Time {
	now := e.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (e *Engine) notify(userID, typ, title, message, relatedID string) {
	if e.notifier != nil {
		e.notifier.Publish(userID, typ, title, message, relatedID)
	}
}
