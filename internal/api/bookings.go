package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"flight_booker/internal/models"
)

const (
	OpListBookings  = "list_bookings"
	OpCreateBooking = "create_booking"
	OpDeleteBooking = "delete_booking"
	OpGetBooking    = "get_booking"
)

// ListBookings - GET /bookings?pageIndex=&pageSize=
// Страница за концом данных возвращается пустым срезом без ошибки.
func (c *Client) ListBookings(ctx context.Context, pageIndex, pageSize int) ([]models.Booking, error) {
	if pageIndex < 0 {
		return nil, &RemoteFailure{Op: OpListBookings, Err: fmt.Errorf("invalid page index %d", pageIndex)}
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	q := url.Values{}
	q.Set("pageIndex", strconv.Itoa(pageIndex))
	q.Set("pageSize", strconv.Itoa(pageSize))

	b, status, err := c.do(ctx, OpListBookings, http.MethodGet, "/bookings", q, nil)
	if err != nil {
		return nil, err
	}

	bookings, err := DecodeBookingList(b)
	if err != nil {
		return nil, &RemoteFailure{Op: OpListBookings, Status: status, Err: err}
	}
	return bookings, nil
}

// CreateBooking - POST /bookings/create, id назначает сервер.
func (c *Client) CreateBooking(ctx context.Context, draft models.BookingFormData) (models.Booking, error) {
	b, status, err := c.do(ctx, OpCreateBooking, http.MethodPost, "/bookings/create", nil, draft)
	if err != nil {
		return models.Booking{}, err
	}

	booking, err := decodeBooking(b)
	if err != nil {
		return models.Booking{}, &RemoteFailure{Op: OpCreateBooking, Status: status, Err: err}
	}
	return booking, nil
}

// DeleteBooking - DELETE /bookings/delete/{id}, тело ответа игнорируется.
func (c *Client) DeleteBooking(ctx context.Context, id int) error {
	_, _, err := c.do(ctx, OpDeleteBooking, http.MethodDelete, "/bookings/delete/"+strconv.Itoa(id), nil, nil)
	return err
}

// GetBooking - GET /bookings/{id}
func (c *Client) GetBooking(ctx context.Context, id int) (models.Booking, error) {
	b, status, err := c.do(ctx, OpGetBooking, http.MethodGet, "/bookings/"+strconv.Itoa(id), nil, nil)
	if err != nil {
		return models.Booking{}, err
	}

	booking, err := decodeBooking(b)
	if err != nil {
		return models.Booking{}, &RemoteFailure{Op: OpGetBooking, Status: status, Err: err}
	}
	return booking, nil
}
