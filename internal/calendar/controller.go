// Package calendar holds the view state of the reservation calendar:
// week/day mode, the anchor date, navigation and the currently visible
// aggregated range.
package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carlsburger/GastroCore-sub003/internal/dates"
	"github.com/carlsburger/GastroCore-sub003/internal/metrics"
	"github.com/carlsburger/GastroCore-sub003/internal/models"
)

// Mode is the calendar view mode.
type Mode string

const (
	ModeWeek Mode = "week"
	ModeDay  Mode = "day"
)

// ValidMode reports whether m is a known view mode.
func ValidMode(m Mode) bool {
	return m == ModeWeek || m == ModeDay
}

// PreferenceStore loads and saves the persisted view mode.
type PreferenceStore interface {
	GetViewMode(ctx context.Context, profile, fallback string) (string, error)
	SetViewMode(ctx context.Context, profile, mode string) error
}

// Ranger aggregates day summaries for a range of dates.
type Ranger interface {
	Aggregate(ctx context.Context, days []time.Time) ([]models.DaySummary, error)
}

// ViewState is a snapshot of the controller for rendering.
type ViewState struct {
	Mode    Mode                `json:"mode"`
	Anchor  string              `json:"anchor"`
	ISOWeek int                 `json:"iso_week"`
	Days    []models.DaySummary `json:"days"`
}

// Controller owns the calendar view state. Every navigation or mode
// change re-fetches exactly the range the new view needs: 7 dates in
// week mode, 1 in day mode.
//
// Each refresh carries a generation token; a fetch that completes after
// a newer navigation has started is discarded instead of overwriting
// fresher state.
type Controller struct {
	ranger  Ranger
	prefs   PreferenceStore
	profile string
	log     *zerolog.Logger
	now     func() time.Time

	mu         sync.Mutex
	mode       Mode
	anchor     time.Time
	generation uint64
	visible    []models.DaySummary
}

// NewController creates a controller anchored on today, restoring the
// persisted view mode. It does not fetch; call Refresh for the first load.
func NewController(ctx context.Context, ranger Ranger, prefs PreferenceStore, profile string, log *zerolog.Logger) (*Controller, error) {
	c := &Controller{
		ranger:  ranger,
		prefs:   prefs,
		profile: profile,
		log:     log,
		now:     time.Now,
	}

	mode := ModeWeek
	if prefs != nil {
		stored, err := prefs.GetViewMode(ctx, profile, string(ModeWeek))
		if err != nil {
			return nil, fmt.Errorf("restore view mode: %w", err)
		}
		if ValidMode(Mode(stored)) {
			mode = Mode(stored)
		}
	}

	c.mode = mode
	c.anchor = dates.Normalize(c.now())
	return c, nil
}

// SetClock overrides the time source, for tests.
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// State returns the current view state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ViewState{
		Mode:    c.mode,
		Anchor:  dates.Key(c.anchor),
		ISOWeek: dates.ISOWeekNumber(c.anchor),
		Days:    c.visible,
	}
}

// SelectDay enters day mode with the given date selected.
func (c *Controller) SelectDay(ctx context.Context, day time.Time) error {
	c.mu.Lock()
	c.mode = ModeDay
	c.anchor = dates.Normalize(day)
	c.mu.Unlock()

	if err := c.persistMode(ctx, ModeDay); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// SetMode switches the view mode without moving the anchor.
func (c *Controller) SetMode(ctx context.Context, mode Mode) error {
	if !ValidMode(mode) {
		return fmt.Errorf("unknown view mode %q", mode)
	}

	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()

	if err := c.persistMode(ctx, mode); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Today resets the anchor to the current date, keeping the mode.
func (c *Controller) Today(ctx context.Context) error {
	c.mu.Lock()
	c.anchor = dates.Normalize(c.now())
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Next advances the anchor by one week or one day, depending on mode.
func (c *Controller) Next(ctx context.Context) error {
	return c.shift(ctx, 1)
}

// Prev moves the anchor back by one week or one day, depending on mode.
func (c *Controller) Prev(ctx context.Context) error {
	return c.shift(ctx, -1)
}

func (c *Controller) shift(ctx context.Context, direction int) error {
	c.mu.Lock()
	if c.mode == ModeWeek {
		c.anchor = dates.ShiftWeek(c.anchor, direction)
	} else {
		c.anchor = dates.ShiftDay(c.anchor, direction)
	}
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh fetches the visible range for the current mode and anchor.
// A refresh superseded by a newer one leaves the state untouched.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	generation := c.generation
	mode, anchor := c.mode, c.anchor
	c.mu.Unlock()

	var days []time.Time
	if mode == ModeWeek {
		days = dates.WeekRangeOf(anchor)
	} else {
		days = []time.Time{anchor}
	}

	summaries, err := c.ranger.Aggregate(ctx, days)
	if err != nil {
		return fmt.Errorf("refresh %s view: %w", mode, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		metrics.IncStaleResponseDropped()
		if c.log != nil {
			c.log.Debug().
				Uint64("generation", generation).
				Uint64("current", c.generation).
				Msg("stale refresh discarded")
		}
		return nil
	}
	c.visible = summaries
	return nil
}

func (c *Controller) persistMode(ctx context.Context, mode Mode) error {
	if c.prefs == nil {
		return nil
	}
	if err := c.prefs.SetViewMode(ctx, c.profile, string(mode)); err != nil {
		return fmt.Errorf("persist view mode: %w", err)
	}
	return nil
}
