// Package apperr turns failures of remote operations into short, static messages that are
// safe to show in the browser. Details of the cause only go to the log, and only in
// development.
package apperr

import (
	"fmt"

	"flight_booker/internal/api"

	"github.com/sirupsen/logrus"
)

// Op - пользовательский контекст операции, по нему выбирается сообщение.
type Op string

const (
	OpLoadAirports  Op = "getAirports"
	OpLoadBookings  Op = "getBookings"
	OpCreateBooking Op = "createBooking"
	OpDeleteBooking Op = "deleteBooking"
	OpGetBooking    Op = "getBookingDetails"
)

const retrySuffix = " Please try again later."

var messages = map[Op]string{
	OpLoadAirports:  "Failed to load airports.",
	OpLoadBookings:  "Failed to load bookings.",
	OpCreateBooking: "Something went wrong while creating the booking.",
	OpDeleteBooking: "Failed to delete booking.",
	OpGetBooking:    "Failed to load booking details.",
}

const fallbackMessage = "Something went wrong."

type Normalizer struct {
	dev    bool
	logger logrus.FieldLogger
}

func New(dev bool, logger logrus.FieldLogger) *Normalizer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Normalizer{dev: dev, logger: logger}
}

// Normalize возвращает статичное сообщение для op. Текст cause наружу не попадает.
func (n *Normalizer) Normalize(op Op, cause error) string {
	n.log(op, 0, cause)
	return Message(op)
}

// NormalizeBooking - то же, но с номером бронирования в тексте
// ("Failed to delete booking #7. Please try again later.").
func (n *Normalizer) NormalizeBooking(op Op, id int, cause error) string {
	n.log(op, id, cause)

	switch op {
	case OpDeleteBooking:
		return fmt.Sprintf("Failed to delete booking #%d.%s", id, retrySuffix)
	case OpGetBooking:
		return fmt.Sprintf("Failed to load details of booking #%d.%s", id, retrySuffix)
	default:
		return Message(op)
	}
}

// Message - дружелюбный текст для op без логирования.
func Message(op Op) string {
	if m, ok := messages[op]; ok {
		return m + retrySuffix
	}
	return fallbackMessage + retrySuffix
}

// log пишет диагностику только в dev-режиме и никогда не паникует.
func (n *Normalizer) log(op Op, id int, cause error) {
	if n == nil || !n.dev {
		return
	}
	defer func() { _ = recover() }()

	fields := logrus.Fields{"context": string(op)}
	if id != 0 {
		fields["booking_id"] = id
	}

	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	if rf, ok := api.AsRemoteFailure(cause); ok {
		if rf.Status != 0 {
			fields["status"] = rf.Status
		}
		if rf.Body != "" {
			fields["body"] = rf.Body
		}
	}
	fields["error"] = msg

	n.logger.WithFields(fields).Warn("operation failed")
}
