package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"flight_booker/internal/airports"
	"flight_booker/internal/apperr"
	"flight_booker/internal/bookingform"
	"flight_booker/internal/bookinglist"
	"flight_booker/internal/models"
	"flight_booker/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// BookingAPI - то, что страницам нужно от удалённого API напрямую,
// в обход контроллеров.
type BookingAPI interface {
	airports.Lister
	GetBooking(ctx context.Context, id int) (models.Booking, error)
}

type BookingHandler struct {
	sessions  *SessionStore
	api       BookingAPI
	norm      *apperr.Normalizer
	threshold float64
	pages     pages
	logger    logrus.FieldLogger
}

func NewBookingHandler(
	sessions *SessionStore,
	api BookingAPI,
	norm *apperr.Normalizer,
	threshold float64,
	logger logrus.FieldLogger,
) (*BookingHandler, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	p, err := parsePages()
	if err != nil {
		return nil, err
	}

	return &BookingHandler{
		sessions:  sessions,
		api:       api,
		norm:      norm,
		threshold: threshold,
		pages:     p,
		logger:    logger,
	}, nil
}

type formPage struct {
	Nav        string
	Airports   []airports.Option
	AirportErr string
	State      bookingform.State
}

type listPage struct {
	Nav        string
	View       string
	Threshold  float64
	Dir        *airports.Directory
	AirportErr string
	State      bookinglist.State
	Detail     *models.Booking
	DetailErr  string
}

// поля формы, которые принимает POST /
var formFields = []validation.Field{
	validation.FieldFirstName,
	validation.FieldLastName,
	validation.FieldDepartureAirportID,
	validation.FieldArrivalAirportID,
	validation.FieldDepartureDate,
	validation.FieldReturnDate,
}

// GET /
func (h *BookingHandler) FormPage(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Acquire(w, r)
	h.renderForm(w, r, sess, http.StatusOK)
}

// POST /
// Поля формы применяются как правки, затем отправка. Ответ - та же страница.
func (h *BookingHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	sess := h.sessions.Acquire(w, r)
	form := sess.Form()

	for _, f := range formFields {
		if _, ok := r.PostForm[string(f)]; !ok {
			continue
		}
		if err := form.Dispatch(r.Context(), bookingform.FieldChanged{Field: f, Value: r.PostForm.Get(string(f))}); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	form.Submit(r.Context())

	status := http.StatusOK
	if st := form.State(); !st.Errors.Valid() {
		status = http.StatusUnprocessableEntity
	}
	h.renderForm(w, r, sess, status)
}

type fieldResponse struct {
	Errors  validation.Errors `json:"errors"`
	Success bool              `json:"success"`
}

// POST /form/field
// 200: { "errors": {...}, "success": bool }
// 400: unknown field
func (h *BookingHandler) EditField(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	field := validation.Field(strings.TrimSpace(r.PostForm.Get("field")))
	sess := h.sessions.Acquire(w, r)

	err := sess.Form().Dispatch(r.Context(), bookingform.FieldChanged{Field: field, Value: r.PostForm.Get("value")})
	if err != nil {
		if errors.Is(err, bookingform.ErrUnknownField) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	st := sess.Form().State()
	errs := st.Errors
	if errs == nil {
		errs = validation.Errors{}
	}
	writeJSON(w, http.StatusOK, fieldResponse{Errors: errs, Success: st.Success})
}

// GET /bookings?view=
// Без view (или с неизвестным) открывается новый просмотр списка.
func (h *BookingHandler) ListPage(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Acquire(w, r)
	v := h.ensureView(r, sess, r.URL.Query().Get("view"))
	h.renderList(w, v, nil, "")
}

// GET /bookings/more?view=&scrollTop=&clientHeight=&scrollHeight=
// Фрагмент таблицы. С геометрией - проверка близости к низу, без неё - явная догрузка.
func (h *BookingHandler) More(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sess := h.sessions.Acquire(w, r)

	v, ok := sess.view(q.Get("view"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown view")
		return
	}

	pos, hasPos, err := parsePosition(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if hasPos {
		v.controller().Dispatch(r.Context(), bookinglist.Scrolled{Position: pos})
	} else {
		v.controller().Dispatch(r.Context(), bookinglist.LoadMoreRequested{})
	}

	data := h.listData(v, nil, "")
	if err := h.pages.render(w, http.StatusOK, "list", "rows", data); err != nil {
		h.logger.WithError(err).Error("render failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// POST /bookings/{id}/delete
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	sess := h.sessions.Acquire(w, r)
	v := h.ensureView(r, sess, r.PostForm.Get("view"))
	v.controller().Dispatch(r.Context(), bookinglist.DeleteRequested{ID: id})

	http.Redirect(w, r, listURL(v.id), http.StatusSeeOther)
}

// GET /bookings/{id}?view=
// Загруженное бронирование показывается без сети; иначе (прямая ссылка) запрашивается по id.
func (h *BookingHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	sess := h.sessions.Acquire(w, r)
	v := h.ensureView(r, sess, r.URL.Query().Get("view"))
	v.controller().Dispatch(r.Context(), bookinglist.SelectRequested{ID: id})

	if sel := v.controller().State().Selected; sel != nil && sel.ID == id {
		h.renderList(w, v, sel, "")
		return
	}

	b, err := h.api.GetBooking(r.Context(), id)
	if err != nil {
		h.renderList(w, v, nil, h.norm.NormalizeBooking(apperr.OpGetBooking, id, err))
		return
	}
	h.renderList(w, v, &b, "")
}

// GET /bookings/{id}/close?view=
func (h *BookingHandler) CloseDetail(w http.ResponseWriter, r *http.Request) {
	if _, ok := bookingID(w, r); !ok {
		return
	}

	sess := h.sessions.Acquire(w, r)
	viewID := r.URL.Query().Get("view")
	if v, ok := sess.view(viewID); ok {
		v.controller().Dispatch(r.Context(), bookinglist.Deselected{})
	}

	http.Redirect(w, r, listURL(viewID), http.StatusSeeOther)
}

// ensureView находит просмотр списка или открывает новый: справочник аэропортов
// грузится один раз на просмотр, первая страница - через Initialize.
// Устаревший после создания бронирования просмотр получает новый контроллер списка.
func (h *BookingHandler) ensureView(r *http.Request, sess *Session, viewID string) *listView {
	if v, ok := sess.view(viewID); ok {
		if sess.takeStale(v) {
			list := h.sessions.ctrls.NewList()
			v.replace(list)
			list.Dispatch(r.Context(), bookinglist.Initialized{})
		}
		return v
	}

	dir, airportErr := h.loadAirports(r.Context())
	v := sess.openView(h.sessions.ctrls.NewList(), dir, airportErr)
	v.controller().Dispatch(r.Context(), bookinglist.Initialized{})
	return v
}

// loadAirports: при ошибке страница всё равно рисуется, с пустым справочником.
func (h *BookingHandler) loadAirports(ctx context.Context) (*airports.Directory, string) {
	dir, err := airports.Load(ctx, h.api)
	if err != nil {
		return airports.Empty(), h.norm.Normalize(apperr.OpLoadAirports, err)
	}
	return dir, ""
}

func (h *BookingHandler) renderForm(w http.ResponseWriter, r *http.Request, sess *Session, status int) {
	dir, airportErr := h.loadAirports(r.Context())

	data := formPage{
		Nav:        "form",
		Airports:   dir.Options(),
		AirportErr: airportErr,
		State:      sess.Form().State(),
	}
	if err := h.pages.render(w, status, "form", "layout", data); err != nil {
		h.logger.WithError(err).Error("render failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *BookingHandler) renderList(w http.ResponseWriter, v *listView, detail *models.Booking, detailErr string) {
	data := h.listData(v, detail, detailErr)
	if err := h.pages.render(w, http.StatusOK, "list", "layout", data); err != nil {
		h.logger.WithError(err).Error("render failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *BookingHandler) listData(v *listView, detail *models.Booking, detailErr string) listPage {
	return listPage{
		Nav:        "list",
		View:       v.id,
		Threshold:  h.threshold,
		Dir:        v.dir,
		AirportErr: v.airportErr,
		State:      v.controller().State(),
		Detail:     detail,
		DetailErr:  detailErr,
	}
}

func bookingID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// parsePosition: все три параметра или ни одного.
func parsePosition(q url.Values) (bookinglist.Position, bool, error) {
	keys := []string{"scrollTop", "clientHeight", "scrollHeight"}

	var vals [3]float64
	present := 0
	for i, k := range keys {
		raw := strings.TrimSpace(q.Get(k))
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return bookinglist.Position{}, false, fmt.Errorf("%s must be a number", k)
		}
		vals[i] = f
		present++
	}

	switch present {
	case 0:
		return bookinglist.Position{}, false, nil
	case len(keys):
		return bookinglist.Position{ScrollTop: vals[0], ClientHeight: vals[1], ScrollHeight: vals[2]}, true, nil
	default:
		return bookinglist.Position{}, false, errors.New("scrollTop, clientHeight and scrollHeight go together")
	}
}

func listURL(viewID string) string {
	if viewID == "" {
		return "/bookings"
	}
	return "/bookings?view=" + url.QueryEscape(viewID)
}
