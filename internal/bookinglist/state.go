package bookinglist

import "flight_booker/internal/models"

// Phase - стадия последнего цикла загрузки.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseLoaded    Phase = "loaded"
	PhaseExhausted Phase = "exhausted"
	PhaseErrored   Phase = "errored"
)

// State - снимок состояния списка. Bookings и Selected - копии.
type State struct {
	Phase     Phase
	Bookings  []models.Booking
	PageIndex int
	PageSize  int
	HasMore   bool
	Loading   bool
	Err       string
	Selected  *models.Booking
	Deleting  map[int]bool
}

// IsDeleting reports whether a delete request for id is outstanding.
func (s State) IsDeleting(id int) bool { return s.Deleting[id] }

func (s State) clone() State {
	out := s
	out.Bookings = append([]models.Booking(nil), s.Bookings...)
	if s.Selected != nil {
		sel := *s.Selected
		out.Selected = &sel
	}
	out.Deleting = make(map[int]bool, len(s.Deleting))
	for id := range s.Deleting {
		out.Deleting[id] = true
	}
	return out
}

// Position - геометрия прокручиваемого контейнера (или окна), в пикселях.
type Position struct {
	ScrollTop    float64 `json:"scrollTop"`
	ClientHeight float64 `json:"clientHeight"`
	ScrollHeight float64 `json:"scrollHeight"`
}

// NearBottom reports whether the visible area ends within threshold of the bottom edge.
func (p Position) NearBottom(threshold float64) bool {
	return p.ScrollTop+p.ClientHeight >= p.ScrollHeight-threshold
}

// Event - входное событие контроллера для Dispatch.
type Event interface {
	isEvent()
}

type (
	Initialized       struct{}
	LoadMoreRequested struct{}
	Scrolled          struct{ Position Position }
	DeleteRequested   struct{ ID int }
	SelectRequested   struct{ ID int }
	Deselected        struct{}
)

func (Initialized) isEvent()       {}
func (LoadMoreRequested) isEvent() {}
func (Scrolled) isEvent()          {}
func (DeleteRequested) isEvent()   {}
func (SelectRequested) isEvent()   {}
func (Deselected) isEvent()        {}
