package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupAndStore(t *testing.T) {
	tracker := NewTracker(5)

	_, ok := tracker.Lookup("Plan a Tokyo trip")
	assert.False(t, ok)

	tracker.Store("Plan a Tokyo trip", `{"title": "Tokyo"}`)

	raw, ok := tracker.Lookup("Plan a Tokyo trip")
	require.True(t, ok)
	assert.Equal(t, `{"title": "Tokyo"}`, raw)
}

func TestCacheKeyNormalization(t *testing.T) {
	tracker := NewTracker(5)
	tracker.Store("  Plan a Tokyo Trip  ", "cached")

	raw, ok := tracker.Lookup("plan a tokyo trip")
	require.True(t, ok)
	assert.Equal(t, "cached", raw)
}

func TestConsumeEnforcesCeiling(t *testing.T) {
	tracker := NewTracker(2)

	require.NoError(t, tracker.Consume())
	require.NoError(t, tracker.Consume())

	err := tracker.Consume()
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestConsumeResetsOnDateChange(t *testing.T) {
	tracker := NewTracker(1)

	current := time.Date(2024, 6, 1, 23, 0, 0, 0, time.Local)
	tracker.now = func() time.Time { return current }

	require.NoError(t, tracker.Consume())
	assert.ErrorIs(t, tracker.Consume(), ErrQuotaExceeded)

	// Crossing midnight resets the counter.
	current = time.Date(2024, 6, 2, 0, 1, 0, 0, time.Local)
	assert.NoError(t, tracker.Consume())
}

func TestNewTrackerDefaultLimit(t *testing.T) {
	tracker := NewTracker(0)
	assert.Equal(t, DefaultDailyLimit, tracker.dailyLimit)
}
