package kafka

import (
	"encoding/json"
	"errors"
	"testing"

	"flight_booker/internal/models"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	return cfg
}

func TestSendBookingEvent(t *testing.T) {
	sp := mocks.NewSyncProducer(t, mockConfig())
	defer func() { require.NoError(t, sp.Close()) }()

	var sent []byte
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		sent = val
		return nil
	})

	p := NewProducer(sp, "booking_events")
	ev := NewBookingCreated(models.Booking{ID: 12, FirstName: "Ada"})
	require.NoError(t, p.SendBookingEvent(ev))

	var got BookingEvent
	require.NoError(t, json.Unmarshal(sent, &got))
	assert.Equal(t, EventBookingCreated, got.Type)
	assert.Equal(t, 12, got.BookingID)
	require.NotNil(t, got.Booking)
	assert.Equal(t, "Ada", got.Booking.FirstName)
	assert.NotEmpty(t, got.EventID)
}

func TestSendBookingEventErrors(t *testing.T) {
	sp := mocks.NewSyncProducer(t, mockConfig())
	defer func() { require.NoError(t, sp.Close()) }()

	p := NewProducer(sp, "booking_events")
	assert.Error(t, p.SendBookingEvent(nil))
	assert.Error(t, p.SendBookingEvent(NewBookingDeleted(0)))

	sp.ExpectSendMessageAndFail(errors.New("broker down"))
	err := p.SendBookingEvent(NewBookingDeleted(3))
	assert.ErrorContains(t, err, "broker down")
}

func TestDeletedEventHasNoBooking(t *testing.T) {
	b, err := json.Marshal(NewBookingDeleted(4))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "booking.deleted", raw["type"])
	assert.NotContains(t, raw, "booking")
}
