// Package occupancy builds the printable table-occupancy snapshot: a
// deterministic grouping of tables by area, their current status and
// best-effort special-indicator badges.
package occupancy

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carlsburger/GastroCore-sub003/internal/config"
	"github.com/carlsburger/GastroCore-sub003/internal/metrics"
	"github.com/carlsburger/GastroCore-sub003/internal/models"
	"github.com/carlsburger/GastroCore-sub003/internal/report"
)

// nonNumericSentinel sorts tables with non-numeric numbers last.
const nonNumericSentinel = 1e12

// Badge labels derived from reservation free text.
const (
	BadgeBirthday     = "birthday"
	BadgeAllergy      = "allergy"
	BadgeVegetarian   = "vegetarian"
	BadgeExtendedStay = "extended_stay"
)

// Source provides the feeds the snapshot is built from.
type Source interface {
	GetTables(ctx context.Context) ([]models.Table, error)
	GetOccupancy(ctx context.Context, date, slot string) ([]models.OccupancyEntry, error)
}

// Printer dispatches a rendered snapshot file to a physical printer.
type Printer interface {
	Print(ctx context.Context, path string) error
}

// PlacedTable is one table row of the snapshot.
type PlacedTable struct {
	Table  models.Table `json:"table"`
	Status string       `json:"status"`
	Guest  string       `json:"guest,omitempty"`
	Badges []string     `json:"badges,omitempty"`
}

// Group is one (area, sub-area) bucket of the snapshot.
type Group struct {
	Label  string        `json:"label"`
	Tables []PlacedTable `json:"tables"`
}

// Snapshot is the print-stable occupancy view for one date and slot.
type Snapshot struct {
	Date   string  `json:"date"`
	Slot   string  `json:"slot"`
	Groups []Group `json:"groups"`
}

// Projector loads the feeds, builds snapshots and dispatches them to
// the printer once per successful load.
type Projector struct {
	source      Source
	printer     Printer
	outDir      string
	settleDelay time.Duration
	log         *zerolog.Logger

	mu         sync.RWMutex
	indicators *config.IndicatorsConfig

	newWriter func() report.Writer
}

// NewProjector creates a projector writing snapshot workbooks to outDir.
func NewProjector(source Source, printer Printer, outDir string, settleDelay time.Duration, log *zerolog.Logger) *Projector {
	return &Projector{
		source:      source,
		printer:     printer,
		outDir:      outDir,
		settleDelay: settleDelay,
		log:         log,
		indicators:  config.DefaultIndicators(),
		newWriter:   report.NewExcelWriter,
	}
}

// SetIndicators swaps the badge keyword lists (hot reload hook).
func (p *Projector) SetIndicators(cfg *config.IndicatorsConfig) {
	if cfg == nil {
		return
	}
	p.mu.Lock()
	p.indicators = cfg
	p.mu.Unlock()
}

// Project loads tables and occupancy for a date/slot, renders the
// snapshot workbook and sends it to the printer exactly once. The
// settle delay runs between a successful render and the print dispatch.
func (p *Projector) Project(ctx context.Context, date, slot string) (*Snapshot, string, error) {
	tables, err := p.source.GetTables(ctx)
	if err != nil {
		metrics.IncPrintJob("error")
		return nil, "", fmt.Errorf("print snapshot: %w", err)
	}
	occ, err := p.source.GetOccupancy(ctx, date, slot)
	if err != nil {
		metrics.IncPrintJob("error")
		return nil, "", fmt.Errorf("print snapshot: %w", err)
	}

	p.mu.RLock()
	indicators := p.indicators
	p.mu.RUnlock()

	snapshot := BuildSnapshot(date, slot, tables, occ, indicators)

	path := filepath.Join(p.outDir, fmt.Sprintf("occupancy_%s_%s.xlsx", date, strings.ReplaceAll(slot, ":", "")))
	if err := p.render(snapshot, path); err != nil {
		metrics.IncPrintJob("error")
		return nil, "", fmt.Errorf("render snapshot: %w", err)
	}

	// Let the spooler see a fully written file before dispatching.
	if p.settleDelay > 0 {
		select {
		case <-time.After(p.settleDelay):
		case <-ctx.Done():
			metrics.IncPrintJob("cancelled")
			return nil, "", ctx.Err()
		}
	}

	if p.printer != nil {
		if err := p.printer.Print(ctx, path); err != nil {
			metrics.IncPrintJob("error")
			return nil, "", fmt.Errorf("dispatch print: %w", err)
		}
	}

	metrics.IncPrintJob("ok")
	if p.log != nil {
		p.log.Info().Str("date", date).Str("slot", slot).Str("path", path).Msg("occupancy snapshot printed")
	}
	return snapshot, path, nil
}

func (p *Projector) render(snapshot *Snapshot, path string) error {
	w := p.newWriter()
	defer w.Close()

	if err := w.AddSheet(fmt.Sprintf("%s %s", snapshot.Date, snapshot.Slot)); err != nil {
		return err
	}
	if err := w.WriteHeader([]string{"Bereich", "Tisch", "Plätze", "Status", "Gast", "Hinweise"}); err != nil {
		return err
	}
	for _, group := range snapshot.Groups {
		for _, placed := range group.Tables {
			row := []interface{}{
				group.Label,
				placed.Table.TableNumber,
				placed.Table.SeatsDefault,
				placed.Status,
				placed.Guest,
				strings.Join(placed.Badges, ", "),
			}
			if err := w.WriteRow(row); err != nil {
				return err
			}
		}
	}
	return w.SaveToFile(path)
}

// BuildSnapshot groups active tables by (area, sub-area) and resolves
// each table's status from the occupancy feed. Tables without an
// occupancy record are free, not unknown.
func BuildSnapshot(date, slot string, tables []models.Table, occ []models.OccupancyEntry, indicators *config.IndicatorsConfig) *Snapshot {
	byTable := make(map[string]models.OccupancyEntry, len(occ))
	for _, entry := range occ {
		byTable[entry.TableID] = entry
	}

	buckets := make(map[string][]PlacedTable)
	for _, table := range tables {
		if !table.Active {
			continue
		}

		placed := PlacedTable{Table: table, Status: models.StatusFree}
		if entry, ok := byTable[table.TableNumber]; ok {
			if entry.Status != "" {
				placed.Status = entry.Status
			}
			if entry.Reservation != nil {
				placed.Guest = entry.Reservation.GuestName
				placed.Badges = DetectIndicators(entry.Reservation, indicators)
			}
		}

		key := groupLabel(table.Area, table.SubArea)
		buckets[key] = append(buckets[key], placed)
	}

	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	groups := make([]Group, 0, len(labels))
	for _, label := range labels {
		placed := buckets[label]
		sort.SliceStable(placed, func(i, j int) bool {
			return tableSortKey(placed[i].Table.TableNumber) < tableSortKey(placed[j].Table.TableNumber)
		})
		groups = append(groups, Group{Label: label, Tables: placed})
	}

	return &Snapshot{Date: date, Slot: slot, Groups: groups}
}

// DetectIndicators derives best-effort badges from the free-text fields
// of a reservation. This is a heuristic for the print sheet, not an
// authoritative classification.
func DetectIndicators(r *models.Reservation, indicators *config.IndicatorsConfig) []string {
	if r == nil {
		return nil
	}
	if indicators == nil {
		indicators = config.DefaultIndicators()
	}

	haystack := strings.ToLower(r.Occasion + " " + r.Notes + " " + r.MenuChoice)

	var badges []string
	if matchesAny(haystack, indicators.Birthday) {
		badges = append(badges, BadgeBirthday)
	}
	if matchesAny(haystack, indicators.Allergy) {
		badges = append(badges, BadgeAllergy)
	}
	if matchesAny(haystack, indicators.Vegetarian) {
		badges = append(badges, BadgeVegetarian)
	}
	if matchesAny(haystack, indicators.ExtendedStay) {
		badges = append(badges, BadgeExtendedStay)
	}
	return badges
}

func matchesAny(haystack string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

func groupLabel(area, subArea string) string {
	if subArea != "" {
		return area + " - " + subArea
	}
	return area
}

func tableSortKey(number string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil {
		return nonNumericSentinel
	}
	return value
}
