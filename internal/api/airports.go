package api

import (
	"context"
	"net/http"

	"flight_booker/internal/models"
)

const OpListAirports = "list_airports"

// ListAirports - GET /airports, весь справочник без пагинации.
func (c *Client) ListAirports(ctx context.Context) ([]models.Airport, error) {
	b, status, err := c.do(ctx, OpListAirports, http.MethodGet, "/airports", nil, nil)
	if err != nil {
		return nil, err
	}

	airports, err := decodeAirports(b)
	if err != nil {
		return nil, &RemoteFailure{Op: OpListAirports, Status: status, Err: err}
	}
	return airports, nil
}
