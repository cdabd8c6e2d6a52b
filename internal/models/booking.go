package models

type Booking struct {
	ID                 int    `json:"id"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	DepartureAirportID int    `json:"departureAirportId"`
	ArrivalAirportID   int    `json:"arrivalAirportId"`
	DepartureDate      string `json:"departureDate"`
	ReturnDate         string `json:"returnDate"`
}

// BookingFormData - черновик бронирования без серверного id.
type BookingFormData struct {
	FirstName          string `json:"firstName" validate:"notblank"`
	LastName           string `json:"lastName" validate:"notblank"`
	DepartureAirportID int    `json:"departureAirportId" validate:"required"`
	ArrivalAirportID   int    `json:"arrivalAirportId" validate:"required"`
	DepartureDate      string `json:"departureDate" validate:"required,isodate"`
	ReturnDate         string `json:"returnDate" validate:"required,isodate"`
}

// IsEmpty reports whether the draft still holds its default values.
func (d BookingFormData) IsEmpty() bool {
	return d == BookingFormData{}
}

func (b Booking) FormData() BookingFormData {
	return BookingFormData{
		FirstName:          b.FirstName,
		LastName:           b.LastName,
		DepartureAirportID: b.DepartureAirportID,
		ArrivalAirportID:   b.ArrivalAirportID,
		DepartureDate:      b.DepartureDate,
		ReturnDate:         b.ReturnDate,
	}
}

func (b Booking) FullName() string {
	return b.FirstName + " " + b.LastName
}

// DepartureDay returns the calendar-day part (YYYY-MM-DD) of the departure date.
func (b Booking) DepartureDay() string { return day(b.DepartureDate) }

// ReturnDay returns the calendar-day part (YYYY-MM-DD) of the return date.
func (b Booking) ReturnDay() string { return day(b.ReturnDate) }

func day(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
