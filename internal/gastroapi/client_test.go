package gastroapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetOpeningHoursSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"days":[{"date":"2025-03-03","is_open":true}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-token")
	days, err := client.GetOpeningHours(context.Background(), "2025-03-03", "2025-03-09")

	assert.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Len(t, days, 1)
	assert.True(t, days[0].IsOpen)
}

func TestMissingTokenShortCircuits(t *testing.T) {
	requested := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = true
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.GetReservations(context.Background(), "2025-03-03")

	assert.ErrorIs(t, err, ErrNoToken)
	assert.False(t, requested, "no request may be sent without a token")
}

func TestGetReservationsAcceptsBothShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "bare array",
			body: `[{"date":"2025-03-03","time":"19:00","guest_name":"Huber","party_size":4,"status":"bestätigt"}]`,
		},
		{
			name: "items wrapper",
			body: `{"items":[{"date":"2025-03-03","time":"19:00","guest_name":"Huber","party_size":4,"status":"bestätigt"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "token")
			reservations, err := client.GetReservations(context.Background(), "2025-03-03")

			assert.NoError(t, err)
			assert.Len(t, reservations, 1)
			assert.Equal(t, "Huber", reservations[0].GuestName)
			assert.Equal(t, 4, reservations[0].PartySize)
		})
	}
}

func TestHTTPErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "token")
	_, err := client.GetSlotDays(context.Background(), "2025-03-03", "2025-03-09")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "http 502")
}

func TestGetTablesNormalizesOvalTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tables":[
			{"table_number":"3","area":"restaurant","sub_area":"saal","seats_max":8,"seats_default":6,"combinable":true,"combinable_with":["4"],"active":true},
			{"table_number":"4","area":"restaurant","sub_area":"saal","seats_max":4,"seats_default":4,"combinable":true,"active":true}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "token")
	tables, err := client.GetTables(context.Background())

	assert.NoError(t, err)
	assert.Len(t, tables, 2)
	assert.False(t, tables[0].Combinable, "table 3 is never combinable")
	assert.Empty(t, tables[0].CombinableWith)
	assert.True(t, tables[1].Combinable)
}

func TestGetOccupancy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-03-03", r.URL.Query().Get("date"))
		assert.Equal(t, "19:00", r.URL.Query().Get("time"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"occupancy":[{"table_id":"12","status":"reserviert"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "token")
	occ, err := client.GetOccupancy(context.Background(), "2025-03-03", "19:00")

	assert.NoError(t, err)
	assert.Len(t, occ, 1)
	assert.Equal(t, "reserviert", occ[0].Status)
}
