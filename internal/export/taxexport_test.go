package export

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carlsburger/GastroCore-sub003/internal/models"
	"github.com/carlsburger/GastroCore-sub003/internal/report"
)

type fakeSource struct {
	byDate map[string][]models.Reservation
	errOn  map[string]error
}

func (f *fakeSource) GetReservations(ctx context.Context, date string) ([]models.Reservation, error) {
	if err := f.errOn[date]; err != nil {
		return nil, err
	}
	return f.byDate[date], nil
}

// captureWriter records written rows instead of producing a workbook.
type captureWriter struct {
	sheet  string
	header []string
	rows   [][]interface{}
	saved  string
}

func (c *captureWriter) AddSheet(name string) error { c.sheet = name; return nil }

func (c *captureWriter) WriteHeader(columns []string) error { c.header = columns; return nil }

func (c *captureWriter) WriteRow(row []interface{}) error { c.rows = append(c.rows, row); return nil }

func (c *captureWriter) Save(io.Writer) error { return nil }

func (c *captureWriter) SaveToFile(path string) error { c.saved = path; return nil }

func (c *captureWriter) Close() error { return nil }

func TestRunExportsCountedReservationsSorted(t *testing.T) {
	source := &fakeSource{byDate: map[string][]models.Reservation{
		"2025-02-10": {
			{Date: "2025-02-10", Time: "20:00", GuestName: "Huber", PartySize: 4, Status: "bestätigt"},
			{Date: "2025-02-10", Time: "18:00", GuestName: "Meier", PartySize: 2, Status: "storniert"},
			{Date: "2025-02-10", Time: "19:00", GuestName: "Klein", PartySize: 3, Status: "bestätigt"},
		},
		"2025-02-03": {
			{Date: "2025-02-03", Time: "19:30", GuestName: "Braun", PartySize: 5, Status: "bestätigt"},
		},
	}}

	writer := &captureWriter{}
	exporter := NewExporter(source, t.TempDir(), nil)
	exporter.newWriter = func() report.Writer { return writer }

	result, err := exporter.Run(context.Background(), 2025, time.February)

	assert.NoError(t, err)
	assert.Equal(t, "2025-02", result.Month)
	assert.Equal(t, 3, result.Rows, "cancelled reservations are excluded")
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, writer.saved, result.Path)

	assert.Equal(t, ExportColumns(), writer.header)
	assert.Len(t, writer.rows, 3)
	// Sorted by date, then time.
	assert.Equal(t, "Braun", writer.rows[0][2])
	assert.Equal(t, "Klein", writer.rows[1][2])
	assert.Equal(t, "Huber", writer.rows[2][2])
}

func TestRunDegradesFailedDays(t *testing.T) {
	source := &fakeSource{
		byDate: map[string][]models.Reservation{
			"2025-02-01": {{Date: "2025-02-01", Time: "18:00", GuestName: "Huber", PartySize: 2, Status: "bestätigt"}},
		},
		errOn: map[string]error{"2025-02-14": errors.New("http 500")},
	}

	writer := &captureWriter{}
	exporter := NewExporter(source, t.TempDir(), nil)
	exporter.newWriter = func() report.Writer { return writer }

	result, err := exporter.Run(context.Background(), 2025, time.February)

	assert.NoError(t, err, "a failed day must not fail the job")
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, 1, result.DegradedDates)
}

func TestExportRow(t *testing.T) {
	r := &models.Reservation{
		Date:         "2025-02-10",
		Time:         "19:00",
		GuestName:    "Klein",
		PartySize:    3,
		TableNumbers: []string{"4", "5"},
		Status:       "bestätigt",
	}

	row := ExportRow(r)
	assert.Equal(t, []interface{}{"2025-02-10", "19:00", "Klein", 3, "4,5", "bestätigt"}, row)
}
