// Package export produces the monthly reservation report handed to the
// tax office: one workbook per job, one row per counted reservation.
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carlsburger/GastroCore-sub003/internal/dates"
	"github.com/carlsburger/GastroCore-sub003/internal/metrics"
	"github.com/carlsburger/GastroCore-sub003/internal/models"
	"github.com/carlsburger/GastroCore-sub003/internal/report"
)

// ReservationSource fetches reservations for a single date.
type ReservationSource interface {
	GetReservations(ctx context.Context, date string) ([]models.Reservation, error)
}

// JobResult describes a finished export job.
type JobResult struct {
	ID            string `json:"id"`
	Month         string `json:"month"` // YYYY-MM
	Path          string `json:"path"`
	Rows          int    `json:"rows"`
	DegradedDates int    `json:"degraded_dates"`
}

// Exporter runs tax export jobs.
type Exporter struct {
	source    ReservationSource
	outDir    string
	log       *zerolog.Logger
	newWriter func() report.Writer
}

// NewExporter creates an exporter writing workbooks to outDir.
func NewExporter(source ReservationSource, outDir string, log *zerolog.Logger) *Exporter {
	return &Exporter{
		source:    source,
		outDir:    outDir,
		log:       log,
		newWriter: report.NewExcelWriter,
	}
}

// Run exports all counted reservations of a month. Days whose fetch
// fails are skipped and counted as degraded, mirroring the calendar's
// partial-failure behavior; the job itself still succeeds.
func (e *Exporter) Run(ctx context.Context, year int, month time.Month) (*JobResult, error) {
	result := &JobResult{
		ID:    uuid.NewString(),
		Month: fmt.Sprintf("%04d-%02d", year, month),
	}

	var rows []models.Reservation
	for _, day := range dates.MonthRange(year, month) {
		key := dates.Key(day)
		list, err := e.source.GetReservations(ctx, key)
		if err != nil {
			result.DegradedDates++
			if e.log != nil {
				e.log.Warn().Err(err).Str("date", key).Msg("export day skipped")
			}
			continue
		}
		for _, r := range list {
			if r.IsCounted() {
				rows = append(rows, r)
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].Time < rows[j].Time
	})

	path := filepath.Join(e.outDir, fmt.Sprintf("tax_export_%s_%s.xlsx", result.Month, result.ID))
	if err := e.write(rows, result.Month, path); err != nil {
		metrics.IncExportJob("error")
		return nil, fmt.Errorf("tax export %s: %w", result.Month, err)
	}

	result.Path = path
	result.Rows = len(rows)
	metrics.IncExportJob("ok")
	if e.log != nil {
		e.log.Info().
			Str("job_id", result.ID).
			Str("month", result.Month).
			Int("rows", result.Rows).
			Int("degraded_dates", result.DegradedDates).
			Msg("tax export finished")
	}
	return result, nil
}

func (e *Exporter) write(rows []models.Reservation, month, path string) error {
	w := e.newWriter()
	defer w.Close()

	if err := w.AddSheet(month); err != nil {
		return err
	}
	if err := w.WriteHeader(ExportColumns()); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.WriteRow(ExportRow(&r)); err != nil {
			return err
		}
	}
	return w.SaveToFile(path)
}

// ExportColumns returns the header row of the tax export sheet.
func ExportColumns() []string {
	return []string{"Datum", "Uhrzeit", "Gast", "Personen", "Tische", "Status"}
}

// ExportRow renders one reservation as a sheet row.
func ExportRow(r *models.Reservation) []interface{} {
	return []interface{}{
		r.Date,
		r.Time,
		r.GuestName,
		r.PartySize,
		strings.Join(r.TableNumbers, ","),
		r.Status,
	}
}
