package bookingform

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"flight_booker/internal/apperr"
	"flight_booker/internal/models"
	"flight_booker/internal/validation"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type CreatorMock struct {
	mock.Mock
}

func (m *CreatorMock) CreateBooking(_ context.Context, draft models.BookingFormData) (models.Booking, error) {
	args := m.Called(draft)
	return args.Get(0).(models.Booking), args.Error(1)
}

func newController(creator Creator, opts ...Option) *Controller {
	logger, _ := test.NewNullLogger()
	return New(creator, apperr.New(false, logger), append([]Option{WithLogger(logger)}, opts...)...)
}

var filled = models.BookingFormData{
	FirstName:          "Ada",
	LastName:           "Lovelace",
	DepartureAirportID: 1,
	ArrivalAirportID:   2,
	DepartureDate:      "2025-07-01",
	ReturnDate:         "2025-07-08",
}

func fill(t *testing.T, c *Controller, d models.BookingFormData) {
	t.Helper()
	fields := map[validation.Field]string{
		validation.FieldFirstName:          d.FirstName,
		validation.FieldLastName:           d.LastName,
		validation.FieldDepartureAirportID: strconv.Itoa(d.DepartureAirportID),
		validation.FieldArrivalAirportID:   strconv.Itoa(d.ArrivalAirportID),
		validation.FieldDepartureDate:      d.DepartureDate,
		validation.FieldReturnDate:         d.ReturnDate,
	}
	for f, v := range fields {
		require.NoError(t, c.Dispatch(context.Background(), FieldChanged{Field: f, Value: v}))
	}
}

func TestSubmitInvalidDraftDoesNotCallNetwork(t *testing.T) {
	creator := &CreatorMock{}
	c := newController(creator)

	c.Submit(context.Background())

	st := c.State()
	assert.Equal(t, PhaseEditing, st.Phase)
	assert.Equal(t, 6, st.Errors.Len())
	assert.False(t, st.Submitting)
	assert.Empty(t, st.GlobalErr)
	creator.AssertNotCalled(t, "CreateBooking", mock.Anything)
}

func TestSubmitSuccessResetsDraft(t *testing.T) {
	creator := &CreatorMock{}
	created := models.Booking{ID: 99, FirstName: "Ada"}
	creator.On("CreateBooking", filled).Return(created, nil).Once()

	var notified []models.Booking
	c := newController(creator, WithOnCreated(func(b models.Booking) { notified = append(notified, b) }))
	fill(t, c, filled)

	c.Dispatch(context.Background(), Submitted{})

	st := c.State()
	assert.True(t, st.Success)
	assert.True(t, st.Draft.IsEmpty())
	assert.True(t, st.Errors.Valid())
	assert.Empty(t, st.GlobalErr)
	require.NotNil(t, st.Created)
	assert.Equal(t, 99, st.Created.ID)
	assert.Equal(t, []models.Booking{created}, notified)
	creator.AssertExpectations(t)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	creator := &CreatorMock{}
	creator.On("CreateBooking", filled).Return(models.Booking{}, errors.New("409 conflict: duplicate")).Once()

	called := false
	c := newController(creator, WithOnCreated(func(models.Booking) { called = true }))
	fill(t, c, filled)

	c.Submit(context.Background())

	st := c.State()
	assert.Equal(t, filled, st.Draft)
	assert.Equal(t, "Something went wrong while creating the booking. Please try again later.", st.GlobalErr)
	assert.Equal(t, 0, st.Errors.Len())
	assert.False(t, st.Success)
	assert.False(t, st.Submitting)
	assert.False(t, called)
}

func TestGlobalErrorClearedOnNextAttempt(t *testing.T) {
	creator := &CreatorMock{}
	creator.On("CreateBooking", filled).Return(models.Booking{}, errors.New("down")).Once()
	creator.On("CreateBooking", filled).Return(models.Booking{ID: 1}, nil).Once()

	c := newController(creator)
	fill(t, c, filled)

	c.Submit(context.Background())
	require.NotEmpty(t, c.State().GlobalErr)

	c.Submit(context.Background())
	st := c.State()
	assert.Empty(t, st.GlobalErr)
	assert.True(t, st.Success)
}

func TestFieldEditClearsItsErrorAndSuccess(t *testing.T) {
	creator := &CreatorMock{}
	creator.On("CreateBooking", filled).Return(models.Booking{ID: 1}, nil).Once()

	c := newController(creator)
	fill(t, c, filled)
	c.Submit(context.Background())
	require.True(t, c.State().Success)

	require.NoError(t, c.SetField(validation.FieldFirstName, "Grace"))
	assert.False(t, c.State().Success)

	// сейчас черновик почти пустой
	c.Submit(context.Background())
	require.True(t, c.State().Errors.Has(validation.FieldLastName))
	require.False(t, c.State().Errors.Has(validation.FieldFirstName))

	require.NoError(t, c.SetField(validation.FieldLastName, "Hopper"))
	st := c.State()
	assert.False(t, st.Errors.Has(validation.FieldLastName))
	assert.True(t, st.Errors.Has(validation.FieldDepartureAirportID))
}

func TestDateEditClearsDateOrderError(t *testing.T) {
	c := newController(&CreatorMock{})
	reversed := filled
	reversed.DepartureDate, reversed.ReturnDate = "2025-07-08", "2025-07-01"
	fill(t, c, reversed)

	c.Submit(context.Background())
	require.True(t, c.State().Errors.Has(validation.FieldDateValidation))

	require.NoError(t, c.SetField(validation.FieldReturnDate, "2025-07-09"))
	assert.True(t, c.State().Errors.Valid())
}

func TestSetField(t *testing.T) {
	c := newController(&CreatorMock{})

	require.NoError(t, c.SetField(validation.FieldDepartureAirportID, " 12 "))
	require.NoError(t, c.SetField(validation.FieldArrivalAirportID, "Select..."))
	assert.Equal(t, 12, c.State().Draft.DepartureAirportID)
	assert.Equal(t, models.NoAirport, c.State().Draft.ArrivalAirportID)

	err := c.SetField(validation.FieldDateValidation, "x")
	assert.ErrorIs(t, err, ErrUnknownField)
	err = c.Dispatch(context.Background(), FieldChanged{Field: "id", Value: "1"})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSubmitWhileSubmittingIsIgnored(t *testing.T) {
	creator := &CreatorMock{}
	started := make(chan struct{})
	release := make(chan struct{})
	creator.On("CreateBooking", filled).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(models.Booking{ID: 5}, nil).Once()

	c := newController(creator)
	fill(t, c, filled)

	done := make(chan struct{})
	go func() {
		c.Submit(context.Background())
		close(done)
	}()
	<-started

	st := c.State()
	assert.True(t, st.Submitting)
	assert.Equal(t, PhaseSubmitting, st.Phase)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Submit(context.Background())
		}()
	}
	wg.Wait()

	close(release)
	<-done
	creator.AssertNumberOfCalls(t, "CreateBooking", 1)
	assert.True(t, c.State().Success)
}

func TestEditsWhileSubmittingAreIgnored(t *testing.T) {
	creator := &CreatorMock{}
	started := make(chan struct{})
	release := make(chan struct{})
	creator.On("CreateBooking", filled).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(models.Booking{ID: 8}, nil).Once()

	c := newController(creator)
	fill(t, c, filled)

	done := make(chan struct{})
	go func() {
		c.Submit(context.Background())
		close(done)
	}()
	<-started

	require.NoError(t, c.SetField(validation.FieldFirstName, "Grace"))
	require.NoError(t, c.Dispatch(context.Background(), ResetRequested{}))
	assert.Equal(t, filled, c.State().Draft, "draft is frozen while submitting")

	close(release)
	<-done

	st := c.State()
	assert.True(t, st.Success)
	require.NotNil(t, st.Created)
	assert.Equal(t, 8, st.Created.ID)
	assert.True(t, st.Draft.IsEmpty())

	// после завершения правки снова принимаются
	require.NoError(t, c.SetField(validation.FieldFirstName, "Grace"))
	assert.Equal(t, "Grace", c.State().Draft.FirstName)
	assert.False(t, c.State().Success)
}

func TestLateCreateAfterCloseIsDiscarded(t *testing.T) {
	creator := &CreatorMock{}
	started := make(chan struct{})
	release := make(chan struct{})
	creator.On("CreateBooking", filled).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(models.Booking{ID: 5}, nil).Once()

	called := false
	c := newController(creator, WithOnCreated(func(models.Booking) { called = true }))
	fill(t, c, filled)

	done := make(chan struct{})
	go func() {
		c.Submit(context.Background())
		close(done)
	}()
	<-started
	c.Close()
	close(release)
	<-done

	st := c.State()
	assert.False(t, st.Success)
	assert.Equal(t, filled, st.Draft)
	assert.False(t, called)
}

func TestResetAndSubscribe(t *testing.T) {
	c := newController(&CreatorMock{})

	var got []State
	cancel := c.Subscribe(func(s State) { got = append(got, s) })

	require.NoError(t, c.SetField(validation.FieldFirstName, "Ada"))
	require.NoError(t, c.Dispatch(context.Background(), ResetRequested{}))

	require.Len(t, got, 2)
	assert.Equal(t, "Ada", got[0].Draft.FirstName)
	assert.True(t, got[1].Draft.IsEmpty())

	cancel()
	require.NoError(t, c.SetField(validation.FieldFirstName, "Grace"))
	assert.Len(t, got, 2)
}
