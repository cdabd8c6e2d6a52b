package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"flight_booker/internal/airports"
	"flight_booker/internal/bookingform"
	"flight_booker/internal/bookinglist"
	"flight_booker/internal/metrics"
	"flight_booker/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	sessionCookie = "fb_session"

	// старые вкладки списка закрываются, когда их больше этого числа
	maxViewsPerSession = 4
)

// Controllers создаёт контроллеры для новой сессии / нового просмотра списка.
// onCreated передаёт сессия: после создания бронирования её списки помечаются устаревшими.
type Controllers struct {
	NewForm func(onCreated func(models.Booking)) *bookingform.Controller
	NewList func() *bookinglist.Controller
}

// listView - один просмотр страницы /bookings со своим справочником аэропортов.
// Контроллер списка заменяется целиком, когда просмотр устарел: исчерпанный
// список не оживает.
type listView struct {
	id         string
	dir        *airports.Directory
	airportErr string

	mu    sync.Mutex
	list  *bookinglist.Controller
	stale bool
}

func (v *listView) controller() *bookinglist.Controller {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.list
}

// replace ставит новый контроллер и закрывает прежний.
func (v *listView) replace(list *bookinglist.Controller) {
	v.mu.Lock()
	old := v.list
	v.list = list
	v.mu.Unlock()

	old.Close()
}

type Session struct {
	ID string

	mu       sync.Mutex
	lastSeen time.Time
	form     *bookingform.Controller
	views    map[string]*listView
	order    []string
}

func (s *Session) Form() *bookingform.Controller {
	return s.form
}

func (s *Session) view(id string) (*listView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[id]
	return v, ok
}

func (s *Session) openView(list *bookinglist.Controller, dir *airports.Directory, airportErr string) *listView {
	v := &listView{
		id:         uuid.NewString(),
		list:       list,
		dir:        dir,
		airportErr: airportErr,
	}

	s.mu.Lock()
	s.views[v.id] = v
	s.order = append(s.order, v.id)
	var evicted []*listView
	for len(s.order) > maxViewsPerSession {
		old := s.order[0]
		s.order = s.order[1:]
		evicted = append(evicted, s.views[old])
		delete(s.views, old)
	}
	s.mu.Unlock()

	for _, old := range evicted {
		old.controller().Close()
	}
	return v
}

// takeStale сбрасывает флаг и сообщает, был ли он выставлен.
func (s *Session) takeStale(v *listView) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	stale := v.stale
	v.stale = false
	return stale
}

func (s *Session) markStale() {
	s.mu.Lock()
	views := make([]*listView, 0, len(s.views))
	for _, v := range s.views {
		views = append(views, v)
	}
	s.mu.Unlock()

	for _, v := range views {
		v.mu.Lock()
		v.stale = true
		v.mu.Unlock()
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

func (s *Session) close() {
	s.mu.Lock()
	views := s.views
	s.views = map[string]*listView{}
	s.order = nil
	s.mu.Unlock()

	s.form.Close()
	for _, v := range views {
		v.controller().Close()
	}
}

// SessionStore держит состояние UI между запросами браузера.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl    time.Duration
	ctrls  Controllers
	now    func() time.Time
	logger logrus.FieldLogger
}

func NewSessionStore(ttl time.Duration, ctrls Controllers, logger logrus.FieldLogger) *SessionStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SessionStore{
		sessions: map[string]*Session{},
		ttl:      ttl,
		ctrls:    ctrls,
		now:      time.Now,
		logger:   logger,
	}
}

// Acquire возвращает сессию по cookie или заводит новую и ставит cookie.
func (s *SessionStore) Acquire(w http.ResponseWriter, r *http.Request) *Session {
	now := s.now()

	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		sess, ok := s.sessions[c.Value]
		s.mu.Unlock()
		if ok {
			sess.touch(now)
			return sess
		}
	}

	sess := &Session{
		ID:       uuid.NewString(),
		lastSeen: now,
		views:    map[string]*listView{},
	}
	sess.form = s.ctrls.NewForm(func(models.Booking) { sess.markStale() })

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.SetActiveSessions(n)
	s.logger.WithField("session", sess.ID).Debug("session started")

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
	return sess
}

// Sweep закрывает сессии, простаивающие дольше ttl. Возвращает число закрытых.
func (s *SessionStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.idleSince(now) > s.ttl {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range expired {
		sess.close()
		s.logger.WithField("session", sess.ID).Debug("session expired")
	}
	metrics.SetActiveSessions(n)
	return len(expired)
}

// Run чистит сессии по тикеру, пока не отменят ctx.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.WithField("expired", n).Info("idle sessions closed")
			}
		}
	}
}

// CloseAll - при остановке сервера.
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = map[string]*Session{}
	s.mu.Unlock()

	for _, sess := range all {
		sess.close()
	}
	metrics.SetActiveSessions(0)
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
