package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRemoteCallLabels(t *testing.T) {
	before := testutil.ToFloat64(remoteRequests.WithLabelValues("list_bookings", "error"))
	ObserveRemoteCall("list_bookings", 0, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(remoteRequests.WithLabelValues("list_bookings", "error")))

	before = testutil.ToFloat64(remoteRequests.WithLabelValues("list_bookings", "503"))
	ObserveRemoteCall("list_bookings", 503, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(remoteRequests.WithLabelValues("list_bookings", "503")))
}

func TestSetActiveSessionsClampsNegative(t *testing.T) {
	SetActiveSessions(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(activeSessions))

	SetActiveSessions(-1)
	assert.Equal(t, 0.0, testutil.ToFloat64(activeSessions))
}

func TestHTTPMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Get("/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	c := httpRequests.WithLabelValues(http.MethodGet, "/bookings/{id}", "200")
	before := testutil.ToFloat64(c)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/8", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(c))
}

func TestRegisterTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}
