package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"flight_booker/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  map[string]string
	body   []byte
}

func newTestClient(t *testing.T, status int, body string) (*Client, *recorded) {
	t.Helper()

	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = map[string]string{}
		for k := range r.URL.Query() {
			rec.query[k] = r.URL.Query().Get(k)
		}
		rec.body, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api/", "secret-token")
	require.NoError(t, err)
	return c, rec
}

func TestNew(t *testing.T) {
	_, err := New("localhost:5000", "t")
	require.Error(t, err)

	_, err = New("http://localhost:5000/api", "t")
	require.NoError(t, err)
}

func TestListAirports(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `[{"id":1,"title":"Vilnius","code":"VNO"}]`)

	got, err := c.ListAirports(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.Airport{{ID: 1, Title: "Vilnius", Code: "VNO"}}, got)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/airports", rec.path)
	assert.Equal(t, map[string]string{"authToken": "secret-token"}, rec.query)
}

func TestListBookings(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		pageSize int
		want     []models.Booking
		wantErr  bool
	}{
		{
			name:     "bare array",
			status:   http.StatusOK,
			body:     `[{"id":5,"firstName":"A","lastName":"B","departureAirportId":1,"arrivalAirportId":2,"departureDate":"2025-01-01T00:00:00Z","returnDate":"2025-01-05T00:00:00Z"}]`,
			pageSize: 5,
			want: []models.Booking{{
				ID: 5, FirstName: "A", LastName: "B",
				DepartureAirportID: 1, ArrivalAirportID: 2,
				DepartureDate: "2025-01-01T00:00:00Z", ReturnDate: "2025-01-05T00:00:00Z",
			}},
		},
		{
			name:     "list envelope",
			status:   http.StatusOK,
			body:     `{"list":[{"id":7},{"id":9}],"totalCount":2}`,
			pageSize: 0,
			want:     []models.Booking{{ID: 7}, {ID: 9}},
		},
		{
			name:     "empty page is not an error",
			status:   http.StatusOK,
			body:     `{"list":[]}`,
			pageSize: 5,
			want:     []models.Booking{},
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     `boom`,
			pageSize: 5,
			wantErr:  true,
		},
		{
			name:     "wrong shape",
			status:   http.StatusOK,
			body:     `{"items":[]}`,
			pageSize: 5,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestClient(t, tt.status, tt.body)

			got, err := c.ListBookings(context.Background(), 2, tt.pageSize)

			assert.Equal(t, "/api/bookings", rec.path)
			assert.Equal(t, "2", rec.query["pageIndex"])
			assert.Equal(t, "5", rec.query["pageSize"])
			assert.Equal(t, "secret-token", rec.query["authToken"])

			if tt.wantErr {
				rf, ok := AsRemoteFailure(err)
				require.True(t, ok, "want RemoteFailure, got %v", err)
				assert.Equal(t, OpListBookings, rf.Op)
				assert.Equal(t, tt.status, rf.Status)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Differences: (-want,+got)\n%s", diff)
			}
		})
	}
}

func TestCreateBooking(t *testing.T) {
	c, rec := newTestClient(t, http.StatusCreated, `{"id":11,"firstName":"Ada","lastName":"L","departureAirportId":1,"arrivalAirportId":2,"departureDate":"2025-07-01","returnDate":"2025-07-02"}`)

	draft := models.BookingFormData{
		FirstName: "Ada", LastName: "L",
		DepartureAirportID: 1, ArrivalAirportID: 2,
		DepartureDate: "2025-07-01", ReturnDate: "2025-07-02",
	}
	got, err := c.CreateBooking(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, 11, got.ID)
	assert.Equal(t, draft, got.FormData())
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/bookings/create", rec.path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(rec.body, &sent))
	assert.Equal(t, map[string]any{
		"firstName":          "Ada",
		"lastName":           "L",
		"departureAirportId": float64(1),
		"arrivalAirportId":   float64(2),
		"departureDate":      "2025-07-01",
		"returnDate":         "2025-07-02",
	}, sent)
}

func TestCreateBookingBadResponse(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"id":"eleven"}`)

	_, err := c.CreateBooking(context.Background(), models.BookingFormData{})
	rf, ok := AsRemoteFailure(err)
	require.True(t, ok)
	assert.Equal(t, OpCreateBooking, rf.Op)
}

func TestDeleteBooking(t *testing.T) {
	c, rec := newTestClient(t, http.StatusNoContent, ``)

	require.NoError(t, c.DeleteBooking(context.Background(), 7))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/api/bookings/delete/7", rec.path)
	assert.Equal(t, "secret-token", rec.query["authToken"])
}

func TestDeleteBookingFailureKeepsBody(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNotFound, `booking 7 not found`)

	err := c.DeleteBooking(context.Background(), 7)
	rf, ok := AsRemoteFailure(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, rf.Status)
	assert.Equal(t, "booking 7 not found", rf.Body)
	assert.Contains(t, err.Error(), "status 404")
}

func TestGetBooking(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"id":3,"firstName":"Grace"}`)

	got, err := c.GetBooking(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.FirstName)
	assert.Equal(t, "/api/bookings/3", rec.path)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(srv.URL, "t")
	require.NoError(t, err)

	_, err = c.ListAirports(context.Background())
	rf, ok := AsRemoteFailure(err)
	require.True(t, ok)
	assert.Equal(t, 0, rf.Status)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestCancelledContext(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `[]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListBookings(ctx, 0, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
