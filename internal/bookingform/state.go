package bookingform

import (
	"flight_booker/internal/models"
	"flight_booker/internal/validation"
)

type Phase string

const (
	PhaseEditing    Phase = "editing"
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
)

// State - снимок формы. Errors и Created - копии.
type State struct {
	Phase      Phase
	Draft      models.BookingFormData
	Errors     validation.Errors
	Submitting bool
	Success    bool
	GlobalErr  string
	Created    *models.Booking
}

func (s State) clone() State {
	out := s
	out.Errors = s.Errors.Clone()
	if s.Created != nil {
		b := *s.Created
		out.Created = &b
	}
	return out
}

type Event interface {
	isEvent()
}

type (
	FieldChanged struct {
		Field validation.Field
		Value string
	}
	Submitted      struct{}
	ResetRequested struct{}
)

func (FieldChanged) isEvent()   {}
func (Submitted) isEvent()      {}
func (ResetRequested) isEvent() {}
