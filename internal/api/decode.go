package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"flight_booker/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrEmptyPayload = errors.New("empty payload")
	ErrMissingList  = errors.New(`object payload without "list" field`)
	ErrUnknownShape = errors.New("payload is neither an array nor an object")
)

const airportSchemaJSON = `{
	"type": "object",
	"required": ["id"],
	"properties": {
		"id":    {"type": "integer"},
		"title": {"type": "string"},
		"code":  {"type": "string"}
	}
}`

const bookingSchemaJSON = `{
	"type": "object",
	"required": ["id"],
	"properties": {
		"id":                 {"type": "integer"},
		"firstName":          {"type": "string"},
		"lastName":           {"type": "string"},
		"departureAirportId": {"type": "integer"},
		"arrivalAirportId":   {"type": "integer"},
		"departureDate":      {"type": "string"},
		"returnDate":         {"type": "string"}
	}
}`

var (
	airportListSchema = mustSchema(`{"type": "array", "items": ` + airportSchemaJSON + `}`)
	bookingSchema     = mustSchema(bookingSchemaJSON)
	bookingListSchema = mustSchema(`{"type": "array", "items": ` + bookingSchemaJSON + `}`)
)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("compile json schema: %v", err))
	}
	return schema
}

// DecodeBookingList нормализует ответ GET /bookings.
// Сервер отдаёт либо массив, либо объект {"list": [...]}; всё остальное - ошибка.
func DecodeBookingList(b []byte) ([]models.Booking, error) {
	payload := bytes.TrimSpace(b)
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}

	var items []byte
	switch payload[0] {
	case '[':
		items = payload
	case '{':
		var envelope struct {
			List json.RawMessage `json:"list"`
		}
		if err := json.Unmarshal(payload, &envelope); err != nil {
			return nil, fmt.Errorf("decode list envelope: %w", err)
		}
		list := bytes.TrimSpace(envelope.List)
		if len(list) == 0 || bytes.Equal(list, []byte("null")) {
			return nil, ErrMissingList
		}
		items = list
	default:
		return nil, ErrUnknownShape
	}

	bookings, err := decodeChecked[[]models.Booking](bookingListSchema, items)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

func decodeAirports(b []byte) ([]models.Airport, error) {
	airports, err := decodeChecked[[]models.Airport](airportListSchema, bytes.TrimSpace(b))
	if err != nil {
		return nil, err
	}
	if airports == nil {
		airports = []models.Airport{}
	}
	return airports, nil
}

func decodeBooking(b []byte) (models.Booking, error) {
	return decodeChecked[models.Booking](bookingSchema, bytes.TrimSpace(b))
}

// decodeChecked сначала проверяет форму JSON по схеме, потом делает Unmarshal.
func decodeChecked[T any](schema *gojsonschema.Schema, b []byte) (T, error) {
	var out T
	if len(b) == 0 {
		return out, ErrEmptyPayload
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(b))
	if err != nil {
		return out, fmt.Errorf("parse payload: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return out, fmt.Errorf("unexpected payload shape: %s", strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}
