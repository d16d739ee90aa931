package calendar

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carlsburger/GastroCore-sub003/internal/dates"
	"github.com/carlsburger/GastroCore-sub003/internal/models"
)

// fakeRanger records requested ranges and echoes one summary per date.
type fakeRanger struct {
	mu     sync.Mutex
	calls  [][]string
	block  chan struct{} // when set, Aggregate waits until closed
	blocks int           // how many calls should block
}

func (f *fakeRanger) Aggregate(ctx context.Context, days []time.Time) ([]models.DaySummary, error) {
	f.mu.Lock()
	keys := dates.Keys(days)
	f.calls = append(f.calls, keys)
	shouldBlock := f.block != nil && f.blocks > 0
	if shouldBlock {
		f.blocks--
	}
	f.mu.Unlock()

	if shouldBlock {
		<-f.block
	}

	summaries := make([]models.DaySummary, len(keys))
	for i, key := range keys {
		summaries[i] = models.DaySummary{Date: key, Reservations: []models.SummaryEntry{}}
	}
	return summaries, nil
}

func (f *fakeRanger) lastCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

// memPrefs is an in-memory PreferenceStore.
type memPrefs struct {
	mu    sync.Mutex
	modes map[string]string
}

func newMemPrefs() *memPrefs {
	return &memPrefs{modes: make(map[string]string)}
}

func (m *memPrefs) GetViewMode(ctx context.Context, profile, fallback string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mode, ok := m.modes[profile]; ok {
		return mode, nil
	}
	return fallback, nil
}

func (m *memPrefs) SetViewMode(ctx context.Context, profile, mode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[profile] = mode
	return nil
}

func mustDay(t *testing.T, key string) time.Time {
	t.Helper()
	d, err := dates.ParseKey(key)
	if err != nil {
		t.Fatalf("parse %s: %v", key, err)
	}
	return d
}

func newTestController(t *testing.T, ranger Ranger, prefs PreferenceStore) *Controller {
	t.Helper()
	c, err := NewController(context.Background(), ranger, prefs, "default", nil)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	c.SetClock(func() time.Time {
		return time.Date(2025, time.March, 5, 14, 30, 0, 0, time.Local)
	})
	return c
}

func TestSelectDayEntersDayMode(t *testing.T) {
	ranger := &fakeRanger{}
	c := newTestController(t, ranger, newMemPrefs())
	ctx := context.Background()

	assert.NoError(t, c.SelectDay(ctx, mustDay(t, "2025-03-05")))

	state := c.State()
	assert.Equal(t, ModeDay, state.Mode)
	assert.Equal(t, "2025-03-05", state.Anchor)
	assert.Equal(t, []string{"2025-03-05"}, ranger.lastCall(), "day mode fetches exactly one date")

	// Prev in day mode steps one day back.
	assert.NoError(t, c.Prev(ctx))
	assert.Equal(t, "2025-03-04", c.State().Anchor)
	assert.Equal(t, []string{"2025-03-04"}, ranger.lastCall())
}

func TestWeekNavigationShiftsBySevenDays(t *testing.T) {
	ranger := &fakeRanger{}
	c := newTestController(t, ranger, newMemPrefs())
	ctx := context.Background()

	assert.NoError(t, c.Today(ctx))
	assert.Equal(t, "2025-03-05", c.State().Anchor)
	assert.Len(t, ranger.lastCall(), 7, "week mode fetches seven dates")
	assert.Equal(t, "2025-03-03", ranger.lastCall()[0])

	assert.NoError(t, c.Next(ctx))
	assert.Equal(t, "2025-03-12", c.State().Anchor)
	assert.Equal(t, "2025-03-10", ranger.lastCall()[0])

	assert.NoError(t, c.Prev(ctx))
	assert.NoError(t, c.Prev(ctx))
	assert.Equal(t, "2025-02-26", c.State().Anchor)
}

func TestSetModeKeepsAnchor(t *testing.T) {
	ranger := &fakeRanger{}
	c := newTestController(t, ranger, newMemPrefs())
	ctx := context.Background()

	assert.NoError(t, c.SelectDay(ctx, mustDay(t, "2025-03-05")))
	assert.NoError(t, c.SetMode(ctx, ModeWeek))

	state := c.State()
	assert.Equal(t, ModeWeek, state.Mode)
	assert.Equal(t, "2025-03-05", state.Anchor)

	assert.Error(t, c.SetMode(ctx, Mode("month")))
}

func TestModePreferencePersistsAcrossControllers(t *testing.T) {
	prefs := newMemPrefs()
	ranger := &fakeRanger{}
	ctx := context.Background()

	first := newTestController(t, ranger, prefs)
	assert.NoError(t, first.SelectDay(ctx, mustDay(t, "2025-03-20")))

	// A fresh controller restores day mode but not the selected date.
	second := newTestController(t, ranger, prefs)
	assert.NoError(t, second.Today(ctx))
	state := second.State()
	assert.Equal(t, ModeDay, state.Mode)
	assert.Equal(t, "2025-03-05", state.Anchor, "anchor starts at today, not the old selection")
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	ranger := &fakeRanger{block: make(chan struct{}), blocks: 1}
	c := newTestController(t, ranger, newMemPrefs())
	ctx := context.Background()

	// First refresh hangs in flight.
	firstDone := make(chan error, 1)
	go func() { firstDone <- c.Refresh(ctx) }()

	// Wait until the in-flight call is registered.
	deadline := time.After(2 * time.Second)
	for {
		if ranger.lastCall() != nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first refresh never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// A newer navigation completes while the old fetch is still blocked.
	assert.NoError(t, c.SelectDay(ctx, mustDay(t, "2025-03-20")))
	assert.Equal(t, "2025-03-20", c.State().Days[0].Date)

	// Release the stale fetch; its (week-sized) result must not
	// overwrite the newer day view.
	close(ranger.block)
	assert.NoError(t, <-firstDone)

	state := c.State()
	assert.Len(t, state.Days, 1)
	assert.Equal(t, "2025-03-20", state.Days[0].Date)
}
