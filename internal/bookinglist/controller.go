// Package bookinglist drives the infinite-scrolling list of bookings: page fetching,
// exhaustion, deletion and selection for the detail view.
package bookinglist

import (
	"context"
	"sync"

	"flight_booker/internal/api"
	"flight_booker/internal/apperr"
	"flight_booker/internal/metrics"
	"flight_booker/internal/models"

	"github.com/sirupsen/logrus"
)

// DefaultThreshold - "почти внизу", в пикселях.
const DefaultThreshold = 150

// Source - то, что списку нужно от удалённого API.
type Source interface {
	ListBookings(ctx context.Context, pageIndex, pageSize int) ([]models.Booking, error)
	DeleteBooking(ctx context.Context, id int) error
}

type Option func(*Controller)

func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.st.PageSize = n
		}
	}
}

func WithThreshold(px float64) Option {
	return func(c *Controller) {
		if px >= 0 {
			c.threshold = px
		}
	}
}

// WithOnDeleted - уведомление о подтверждённом сервером удалении.
func WithOnDeleted(fn func(id int)) Option {
	return func(c *Controller) { c.onDeleted = fn }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller безопасен для вызова из разных горутин. Мьютекс никогда не держится
// во время сетевого вызова; повторные загрузки отсекаются флагами Loading/HasMore.
type Controller struct {
	source    Source
	norm      *apperr.Normalizer
	logger    logrus.FieldLogger
	threshold float64
	onDeleted func(id int)

	mu          sync.Mutex
	st          State
	initialized bool
	closed      bool
	gen         uint64 // меняется на Close; ответы старого поколения выбрасываются

	subs    map[int]func(State)
	nextSub int
}

func New(source Source, norm *apperr.Normalizer, opts ...Option) *Controller {
	c := &Controller{
		source:    source,
		norm:      norm,
		logger:    logrus.StandardLogger(),
		threshold: DefaultThreshold,
		st: State{
			Phase:    PhaseIdle,
			PageSize: api.DefaultPageSize,
			HasMore:  true,
			Deleting: map[int]bool{},
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

// Subscribe registers fn to receive a snapshot after every state change.
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

func (c *Controller) Dispatch(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case Initialized:
		c.Initialize(ctx)
	case LoadMoreRequested:
		c.LoadMore(ctx)
	case Scrolled:
		c.OnScroll(ctx, e.Position)
	case DeleteRequested:
		c.Delete(ctx, e.ID)
	case SelectRequested:
		c.Select(e.ID)
	case Deselected:
		c.Deselect()
	default:
		c.logger.WithField("event", ev).Warn("booking list: unknown event")
	}
}

// Initialize загружает первую страницу. Повторные вызовы ничего не делают.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.initialized || c.closed {
		c.mu.Unlock()
		return
	}
	c.initialized = true
	c.mu.Unlock()

	c.LoadMore(ctx)
}

// LoadMore запрашивает следующую страницу, если ничего не грузится и данные не кончились.
func (c *Controller) LoadMore(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.st.Loading || !c.st.HasMore {
		c.mu.Unlock()
		return
	}
	gen := c.gen
	pageIndex, pageSize := c.st.PageIndex, c.st.PageSize
	c.st.Loading = true
	c.st.Phase = PhaseLoading
	c.st.Err = ""
	c.mu.Unlock()
	c.notify()

	items, err := c.source.ListBookings(ctx, pageIndex, pageSize)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		c.logger.WithField("page_index", pageIndex).Debug("booking list: stale page discarded")
		return
	}
	c.st.Loading = false

	switch {
	case err != nil:
		// страницу не двигаем - следующий LoadMore повторит её
		c.st.Err = c.norm.Normalize(apperr.OpLoadBookings, err)
		c.st.Phase = PhaseErrored
	case len(items) == 0:
		c.st.HasMore = false
		c.st.Phase = PhaseExhausted
		metrics.IncListExhausted()
	default:
		c.st.Bookings = append(c.st.Bookings, items...)
		c.st.PageIndex++
		c.st.Phase = PhaseLoaded
		metrics.IncListPageLoaded()
	}
	c.mu.Unlock()
	c.notify()
}

// OnScroll - триггер бесконечной прокрутки.
func (c *Controller) OnScroll(ctx context.Context, pos Position) {
	if pos.NearBottom(c.threshold) {
		c.LoadMore(ctx)
	}
}

// Delete удаляет бронирование на сервере и только после подтверждения - из списка.
func (c *Controller) Delete(ctx context.Context, id int) {
	c.mu.Lock()
	if c.closed || c.st.Deleting[id] {
		c.mu.Unlock()
		return
	}
	gen := c.gen
	c.st.Deleting[id] = true
	c.st.Err = ""
	c.mu.Unlock()
	c.notify()

	err := c.source.DeleteBooking(ctx, id)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		onDeleted := c.onDeleted
		c.mu.Unlock()
		c.logger.WithField("booking_id", id).Debug("booking list: stale delete result discarded")
		// представление закрыто, но на сервере удаление состоялось
		if err == nil && onDeleted != nil {
			onDeleted(id)
		}
		return
	}
	delete(c.st.Deleting, id)

	if err != nil {
		c.st.Err = c.norm.NormalizeBooking(apperr.OpDeleteBooking, id, err)
		c.mu.Unlock()
		c.notify()
		return
	}

	c.st.Bookings = removeByID(c.st.Bookings, id)
	if c.st.Selected != nil && c.st.Selected.ID == id {
		c.st.Selected = nil
	}
	onDeleted := c.onDeleted
	c.mu.Unlock()

	metrics.IncBookingDeleted()
	c.notify()

	if onDeleted != nil {
		onDeleted(id)
	}
}

// Select открывает детали уже загруженного бронирования; сеть не нужна.
func (c *Controller) Select(id int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	found := false
	for _, b := range c.st.Bookings {
		if b.ID == id {
			sel := b
			c.st.Selected = &sel
			found = true
			break
		}
	}
	c.mu.Unlock()

	if found {
		c.notify()
	}
}

func (c *Controller) Deselect() {
	c.mu.Lock()
	if c.closed || c.st.Selected == nil {
		c.mu.Unlock()
		return
	}
	c.st.Selected = nil
	c.mu.Unlock()
	c.notify()
}

// Close - представление закрыто. Поздние ответы сети выбрасываются, подписчики отключаются.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.gen++
	c.subs = map[int]func(State){}
}

func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
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

// removeByID убирает ровно одно бронирование с этим id.
func removeByID(list []models.Booking, id int) []models.Booking {
	for i, b := range list {
		if b.ID == id {
			out := make([]models.Booking, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	return list
}
