// Package quota bounds cost against a metered generation backend. A
// Tracker combines an unbounded, process-lifetime memoization cache for
// generation responses with a daily request quota that resets when the
// local calendar date changes. The tracker is injected into whichever
// generator uses it rather than living in package-level state, so tests
// and multiple generators get independent accounting. Multi-process
// deployments still get one counter per process; sharing quota across
// processes would need an external store and is deliberately not attempted
// here.
package quota

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultDailyLimit is the generation-call ceiling applied when no explicit
// limit is configured.
const DefaultDailyLimit = 20

// ErrQuotaExceeded is returned by Consume once the daily ceiling is
// reached. It is terminal for the attempt: callers must not retry until
// the counter resets.
var ErrQuotaExceeded = errors.New("daily generation quota exceeded")

// Tracker memoizes generation responses by prompt and enforces the daily
// request quota. All methods are safe for concurrent use.
type Tracker struct {
	mu         sync.Mutex
	cache      map[string]string
	dailyLimit int
	count      int
	resetDate  string
	now        func() time.Time
}

// NewTracker creates a Tracker with the given daily ceiling. Non-positive
// limits fall back to DefaultDailyLimit.
func NewTracker(dailyLimit int) *Tracker {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	return &Tracker{
		cache:      make(map[string]string),
		dailyLimit: dailyLimit,
		now:        time.Now,
	}
}

// cacheKey normalizes a prompt for memoization.
func cacheKey(prompt string) string {
	return strings.ToLower(strings.TrimSpace(prompt))
}

// Lookup returns the cached raw response for the prompt, if any.
func (t *Tracker) Lookup(prompt string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	raw, ok := t.cache[cacheKey(prompt)]
	return raw, ok
}

// Store memoizes a raw response under the prompt's cache key. The cache is
// unbounded and lives for the process lifetime; there is no eviction.
func (t *Tracker) Store(prompt, raw string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cache[cacheKey(prompt)] = raw
}

// Consume takes one unit of daily quota, resetting the counter first if
// the local calendar date has changed since the last reset. It returns
// ErrQuotaExceeded when the ceiling has been reached; the error is raised
// before any network call is attempted.
func (t *Tracker) Consume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := t.now().Format("2006-01-02")
	if t.resetDate != today {
		t.count = 0
		t.resetDate = today
	}

	if t.count >= t.dailyLimit {
		return fmt.Errorf("%w: limit %d/day", ErrQuotaExceeded, t.dailyLimit)
	}

	t.count++
	return nil
}
