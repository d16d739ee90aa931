package models

// Occupancy statuses as delivered by the backend snapshot feed.
const (
	StatusFree     = "frei"
	StatusReserved = "reserviert"
	StatusOccupied = "belegt"
	StatusBlocked  = "gesperrt"
)

// Reservation statuses that are excluded from day summaries.
const (
	ReservationCancelled = "storniert"
	ReservationNoShow    = "no_show"
)

// Table areas.
const (
	AreaRestaurant = "restaurant"
	AreaTerrasse   = "terrasse"
	AreaEvent      = "event"
)

// Sub-areas within the restaurant area.
const (
	SubAreaSaal         = "saal"
	SubAreaWintergarten = "wintergarten"
)

// OpeningBlock is a start/end pair within a day's opening hours.
type OpeningBlock struct {
	Start string `json:"start"` // "11:30"
	End   string `json:"end"`   // "14:30"
}

// DayAvailability is one date from the opening-hours feed.
type DayAvailability struct {
	Date          string         `json:"date"` // YYYY-MM-DD
	IsOpen        bool           `json:"is_open"`
	Blocks        []OpeningBlock `json:"blocks,omitempty"`
	IsHoliday     bool           `json:"is_holiday,omitempty"`
	HolidayName   string         `json:"holiday_name,omitempty"`
	ClosureReason string         `json:"closure_reason,omitempty"`
	HasEvent      bool           `json:"has_event,omitempty"`
}

// BlockedRange is a time interval excluded from booking.
type BlockedRange struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason,omitempty"`
}

// DaySlots is one date from the slot-availability feed.
type DaySlots struct {
	Date    string         `json:"date"`
	Open    bool           `json:"open"`
	Slots   []string       `json:"slots,omitempty"` // bookable "HH:MM" values
	Blocked []BlockedRange `json:"blocked,omitempty"`
	Notes   []string       `json:"notes,omitempty"`
}

// Reservation is one entry from the reservations feed.
type Reservation struct {
	Date         string   `json:"date"`
	Time         string   `json:"time"` // "HH:MM", zero-padded
	GuestName    string   `json:"guest_name"`
	PartySize    int      `json:"party_size"`
	Status       string   `json:"status"`
	TableNumbers []string `json:"table_numbers,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Email        string   `json:"email,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Occasion     string   `json:"occasion,omitempty"`
	MenuChoice   string   `json:"menu_choice,omitempty"`
}

// IsCounted reports whether the reservation belongs in day summaries.
// Cancelled and no-show reservations are excluded.
func (r *Reservation) IsCounted() bool {
	return r.Status != ReservationCancelled && r.Status != ReservationNoShow
}

// SummaryEntry is one line of the per-day reservation summary.
type SummaryEntry struct {
	Time      string `json:"time"`
	Name      string `json:"name"`
	PartySize int    `json:"party_size"`
}

// DaySummary is the merged per-date view model: opening hours, slots and
// a reservation summary combined into one record.
type DaySummary struct {
	Date             string         `json:"date"`
	Open             bool           `json:"open"`
	Blocks           []OpeningBlock `json:"blocks,omitempty"`
	IsHoliday        bool           `json:"is_holiday,omitempty"`
	HolidayName      string         `json:"holiday_name,omitempty"`
	ClosureReason    string         `json:"closure_reason,omitempty"`
	HasEvent         bool           `json:"has_event,omitempty"`
	Slots            []string       `json:"slots,omitempty"`
	BlockedRanges    []BlockedRange `json:"blocked_ranges,omitempty"`
	Notes            []string       `json:"notes,omitempty"`
	Reservations     []SummaryEntry `json:"reservations"`
	ReservationCount int            `json:"reservation_count"`
	// CountDegraded marks dates whose reservation fetch failed; the count
	// is reported as zero rather than failing the whole range.
	CountDegraded bool `json:"count_degraded,omitempty"`
}

// OccupancyEntry is one table's status in the occupancy snapshot feed.
type OccupancyEntry struct {
	TableID     string       `json:"table_id"`
	Status      string       `json:"status"`
	Reservation *Reservation `json:"reservation,omitempty"`
}
