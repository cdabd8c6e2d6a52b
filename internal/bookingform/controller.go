// Package bookingform drives the booking creation form: draft editing, local validation
// and a single outstanding create request.
package bookingform

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"flight_booker/internal/apperr"
	"flight_booker/internal/metrics"
	"flight_booker/internal/models"
	"flight_booker/internal/validation"

	"github.com/sirupsen/logrus"
)

var ErrUnknownField = errors.New("unknown form field")

type Creator interface {
	CreateBooking(ctx context.Context, draft models.BookingFormData) (models.Booking, error)
}

type Option func(*Controller)

// WithOnCreated - уведомление родительского представления об успешном создании.
func WithOnCreated(fn func(models.Booking)) Option {
	return func(c *Controller) { c.onCreated = fn }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

type Controller struct {
	creator   Creator
	norm      *apperr.Normalizer
	logger    logrus.FieldLogger
	onCreated func(models.Booking)

	mu     sync.Mutex
	st     State
	closed bool
	gen    uint64

	subs    map[int]func(State)
	nextSub int
}

func New(creator Creator, norm *apperr.Normalizer, opts ...Option) *Controller {
	c := &Controller{
		creator: creator,
		norm:    norm,
		logger:  logrus.StandardLogger(),
		st: State{
			Phase:  PhaseEditing,
			Errors: validation.Errors{},
		},
		subs: map[int]func(State){},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.norm == nil {
		c.norm = apperr.New(false, c.logger)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.clone()
}

func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case FieldChanged:
		return c.SetField(e.Field, e.Value)
	case Submitted:
		c.Submit(ctx)
	case ResetRequested:
		c.Reset()
	default:
		return fmt.Errorf("booking form: unknown event %T", ev)
	}
	return nil
}

// SetField меняет одно поле черновика, снимает его ошибку и баннер успеха.
// Для аэропортов value - id из селектора; нечисловое значение = "не выбран".
// Пока идёт отправка, черновик заморожен и правки игнорируются.
func (c *Controller) SetField(field validation.Field, value string) error {
	c.mu.Lock()
	if c.closed || c.st.Submitting {
		c.mu.Unlock()
		return nil
	}

	d := &c.st.Draft
	switch field {
	case validation.FieldFirstName:
		d.FirstName = value
	case validation.FieldLastName:
		d.LastName = value
	case validation.FieldDepartureAirportID:
		d.DepartureAirportID = parseAirportID(value)
	case validation.FieldArrivalAirportID:
		d.ArrivalAirportID = parseAirportID(value)
	case validation.FieldDepartureDate:
		d.DepartureDate = value
	case validation.FieldReturnDate:
		d.ReturnDate = value
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	c.st.Errors.Clear(field)
	if field == validation.FieldDepartureDate || field == validation.FieldReturnDate {
		c.st.Errors.Clear(validation.FieldDateValidation)
	}
	c.st.Success = false
	c.st.Created = nil
	c.mu.Unlock()

	c.notify()
	return nil
}

// Submit проверяет черновик локально и, если он валиден, создаёт бронирование.
// Пока запрос в полёте, повторная отправка игнорируется.
func (c *Controller) Submit(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.st.Submitting {
		c.mu.Unlock()
		return
	}

	c.st.Errors = validation.Errors{}
	c.st.GlobalErr = ""
	c.st.Success = false
	c.st.Created = nil
	c.st.Phase = PhaseValidating

	draft := c.st.Draft
	errs := validation.Validate(draft)
	if !errs.Valid() {
		c.st.Errors = errs
		c.st.Phase = PhaseEditing
		c.mu.Unlock()

		for _, f := range errs.Populated() {
			metrics.IncValidationFailure(string(f))
		}
		c.notify()
		return
	}

	gen := c.gen
	c.st.Submitting = true
	c.st.Phase = PhaseSubmitting
	c.mu.Unlock()
	c.notify()

	booking, err := c.creator.CreateBooking(ctx, draft)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("booking form: stale create result discarded")
		return
	}
	c.st.Submitting = false
	c.st.Phase = PhaseEditing

	if err != nil {
		// черновик не трогаем, ошибка одна и общая
		c.st.GlobalErr = c.norm.Normalize(apperr.OpCreateBooking, err)
		c.mu.Unlock()
		c.notify()
		return
	}

	c.st.Draft = models.BookingFormData{}
	c.st.Success = true
	c.st.Created = &booking
	onCreated := c.onCreated
	c.mu.Unlock()

	metrics.IncBookingCreated()
	c.notify()

	if onCreated != nil {
		onCreated(booking)
	}
}

// Reset возвращает форму к пустому черновику. Во время отправки игнорируется.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.closed || c.st.Submitting {
		c.mu.Unlock()
		return
	}
	c.st.Draft = models.BookingFormData{}
	c.st.Errors = validation.Errors{}
	c.st.GlobalErr = ""
	c.st.Success = false
	c.st.Created = nil
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.gen++
	c.subs = map[int]func(State){}
}

func (c *Controller) notify() {
	c.mu.Lock()
	if c.closed || len(c.subs) == 0 {
		c.mu.Unlock()
		return
	}
	snapshot := c.st.clone()
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

func parseAirportID(v string) int {
	id, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || id < 0 {
		return models.NoAirport
	}
	return id
}
