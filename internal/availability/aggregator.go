// Package availability merges the backend's opening-hours, slot and
// reservation feeds into one per-date summary record.
package availability

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carlsburger/GastroCore-sub003/internal/dates"
	"github.com/carlsburger/GastroCore-sub003/internal/metrics"
	"github.com/carlsburger/GastroCore-sub003/internal/models"
)

// SummaryLimit is the number of reservation entries kept per day for
// display; the full count is reported separately.
const SummaryLimit = 5

// Feed provides the three backend collections the aggregator consumes.
type Feed interface {
	GetOpeningHours(ctx context.Context, from, to string) ([]models.DayAvailability, error)
	GetSlotDays(ctx context.Context, from, to string) ([]models.DaySlots, error)
	GetReservations(ctx context.Context, date string) ([]models.Reservation, error)
}

// Aggregator builds DaySummary records for a range of dates.
type Aggregator struct {
	feed Feed
	log  *zerolog.Logger
}

// NewAggregator creates an aggregator over the given feed.
func NewAggregator(feed Feed, log *zerolog.Logger) *Aggregator {
	return &Aggregator{feed: feed, log: log}
}

// Aggregate fetches hours, slots and reservations for the given dates
// and merges them into one summary per date, in input order.
//
// The hours and slots feeds are required: either failing aborts the
// aggregation. Per-date reservation fetches are dispatched concurrently
// and a failing date degrades to a zero count instead of failing the
// whole range.
func (a *Aggregator) Aggregate(ctx context.Context, days []time.Time) ([]models.DaySummary, error) {
	if len(days) == 0 {
		return nil, nil
	}

	from := dates.Key(days[0])
	to := dates.Key(days[len(days)-1])

	hours, err := a.feed.GetOpeningHours(ctx, from, to)
	if err != nil {
		metrics.IncFeedFetch("hours", "error")
		return nil, fmt.Errorf("aggregate %s..%s: %w", from, to, err)
	}
	metrics.IncFeedFetch("hours", "ok")

	slotDays, err := a.feed.GetSlotDays(ctx, from, to)
	if err != nil {
		metrics.IncFeedFetch("slots", "error")
		return nil, fmt.Errorf("aggregate %s..%s: %w", from, to, err)
	}
	metrics.IncFeedFetch("slots", "ok")

	// One pass per feed; last write wins on duplicate dates.
	hoursByDate := make(map[string]models.DayAvailability, len(hours))
	for _, h := range hours {
		hoursByDate[h.Date] = h
	}
	slotsByDate := make(map[string]models.DaySlots, len(slotDays))
	for _, s := range slotDays {
		slotsByDate[s.Date] = s
	}

	reservations, degraded := a.fetchReservations(ctx, days)

	summaries := make([]models.DaySummary, 0, len(days))
	for _, day := range days {
		key := dates.Key(day)
		summary := mergeDay(key, hoursByDate, slotsByDate, reservations[key])
		summary.CountDegraded = degraded[key]
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// fetchReservations issues one request per date, joined with a
// WaitGroup. A failed date is recorded as degraded and skipped.
func (a *Aggregator) fetchReservations(ctx context.Context, days []time.Time) (map[string][]models.Reservation, map[string]bool) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		results  = make(map[string][]models.Reservation, len(days))
		degraded = make(map[string]bool)
	)

	for _, day := range days {
		key := dates.Key(day)
		wg.Add(1)
		go func() {
			defer wg.Done()

			list, err := a.feed.GetReservations(ctx, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				degraded[key] = true
				metrics.IncFeedFetch("reservations", "error")
				if a.log != nil {
					a.log.Warn().Err(err).Str("date", key).Msg("reservation fetch degraded to zero")
				}
				return
			}
			metrics.IncFeedFetch("reservations", "ok")
			results[key] = list
		}()
	}

	wg.Wait()
	return results, degraded
}

func mergeDay(key string, hours map[string]models.DayAvailability, slots map[string]models.DaySlots, reservations []models.Reservation) models.DaySummary {
	summary := models.DaySummary{Date: key, Reservations: []models.SummaryEntry{}}

	h, hasHours := hours[key]
	s, hasSlots := slots[key]

	// A date is open only if both feeds exist and agree. Either feed
	// signaling closed (or missing the date entirely) wins.
	summary.Open = hasHours && hasSlots && h.IsOpen && s.Open

	if hasHours {
		summary.Blocks = h.Blocks
		summary.IsHoliday = h.IsHoliday
		summary.HolidayName = h.HolidayName
		summary.ClosureReason = h.ClosureReason
		summary.HasEvent = h.HasEvent
	}
	if hasSlots {
		summary.Slots = s.Slots
		summary.BlockedRanges = s.Blocked
		summary.Notes = s.Notes
	}

	counted := make([]models.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.IsCounted() {
			counted = append(counted, r)
		}
	}
	// Times are zero-padded HH:MM, so string order is time order.
	sort.SliceStable(counted, func(i, j int) bool {
		return counted[i].Time < counted[j].Time
	})

	summary.ReservationCount = len(counted)
	for i, r := range counted {
		if i == SummaryLimit {
			break
		}
		summary.Reservations = append(summary.Reservations, models.SummaryEntry{
			Time:      r.Time,
			Name:      r.GuestName,
			PartySize: r.PartySize,
		})
	}
	return summary
}
