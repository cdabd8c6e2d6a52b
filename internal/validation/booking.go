// Package validation checks a booking draft before it is sent to the remote API.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"flight_booker/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type Field string

const (
	FieldFirstName          Field = "firstName"
	FieldLastName           Field = "lastName"
	FieldDepartureAirportID Field = "departureAirportId"
	FieldArrivalAirportID   Field = "arrivalAirportId"
	FieldDepartureDate      Field = "departureDate"
	FieldReturnDate         Field = "returnDate"

	// FieldDateValidation - общий слот для кросс-полевой проверки дат.
	FieldDateValidation Field = "dateValidation"
)

// Fields - все слоты в порядке отображения на форме.
var Fields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldDepartureAirportID,
	FieldArrivalAirportID,
	FieldDepartureDate,
	FieldReturnDate,
	FieldDateValidation,
}

const (
	tagDateOrder   = "dateorder"
	tagSameAirport = "sameairport"
)

var messages = map[string]string{
	key(FieldFirstName, "notblank"):            "First name is required.",
	key(FieldLastName, "notblank"):             "Last name is required.",
	key(FieldDepartureAirportID, "required"):   "Please select a departure airport.",
	key(FieldArrivalAirportID, "required"):     "Please select an arrival airport.",
	key(FieldDepartureDate, "required"):        "Please choose a departure date.",
	key(FieldDepartureDate, "isodate"):         "Please choose a valid departure date.",
	key(FieldReturnDate, "required"):           "Please choose a return date.",
	key(FieldReturnDate, "isodate"):            "Please choose a valid return date.",
	key(FieldDateValidation, tagDateOrder):     "Return date must be after the departure date.",
	key(FieldArrivalAirportID, tagSameAirport): "Departure and arrival airports must be different.",
}

func key(f Field, tag string) string { return string(f) + "/" + tag }

// dateLayouts - что присылает <input type="date"> и что отдаёт сервер.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDate разбирает дату из формы или ответа сервера.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// имена полей в ошибках - как в JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	v.RegisterStructValidation(crossFieldRules, models.BookingFormData{})
	return v
}

// crossFieldRules: порядок дат и разные аэропорты.
// Ошибку одинаковых аэропортов вешаем на поле прибытия, чтобы она не затирала ошибку дат.
func crossFieldRules(sl validator.StructLevel) {
	d := sl.Current().Interface().(models.BookingFormData)

	if d.DepartureDate != "" && d.ReturnDate != "" {
		dep, depErr := ParseDate(d.DepartureDate)
		ret, retErr := ParseDate(d.ReturnDate)
		if depErr == nil && retErr == nil && calendarDay(ret).Before(calendarDay(dep)) {
			sl.ReportError(d.ReturnDate, string(FieldDateValidation), "ReturnDate", tagDateOrder, "")
		}
	}

	if d.DepartureAirportID != models.NoAirport &&
		d.ArrivalAirportID != models.NoAirport &&
		d.DepartureAirportID == d.ArrivalAirportID {
		sl.ReportError(d.ArrivalAirportID, string(FieldArrivalAirportID), "ArrivalAirportID", tagSameAirport, "")
	}
}

// calendarDay отбрасывает время: сравниваются даты, а не моменты.
// День берётся в зоне самой метки, как он записан в строке.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate проверяет черновик. Пустой результат - можно отправлять.
func Validate(draft models.BookingFormData) Errors {
	out := Errors{}

	err := validate.Struct(draft)
	if err == nil {
		return out
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError возможен только при передаче не-структуры
		panic(err)
	}

	for _, fe := range fieldErrs {
		f := Field(fe.Field())
		if _, seen := out[f]; seen {
			continue
		}
		msg, ok := messages[key(f, fe.Tag())]
		if !ok {
			msg = "Invalid value."
		}
		out[f] = msg
	}
	return out
}
