package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/games/{match_id}/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/abc/status", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.RequestCounter.WithLabelValues("/games/{match_id}/status", http.MethodGet, "418")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.RequestsInFlight))
}

func TestCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.PlayerResult(true)
	m.PlayerResult(false)
	m.PlayerResult(false)
	m.ResultRejected()
	m.AnswerGraded(true)
	m.Points(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Submissions.WithLabelValues("won")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Submissions.WithLabelValues("lost")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Submissions.WithLabelValues("rejected")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AnswersGraded.WithLabelValues("true")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.PointsAwarded))
}
