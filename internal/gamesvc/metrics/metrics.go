package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the game service
type Metrics struct {
	RequestCounter    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RequestsInFlight  prometheus.Gauge
	Submissions       *prometheus.CounterVec
	GamesCompleted    prometheus.Counter
	AnswersGraded     *prometheus.CounterVec
	PointsAwarded     prometheus.Counter
	EventPublishFails prometheus.Counter
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestCounter: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trivia",
				Subsystem: "gamesvc",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "trivia",
				Subsystem: "gamesvc",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "trivia",
			Subsystem: "gamesvc",
			Name:      "requests_in_flight",
			Help:      "Number of requests currently being processed",
		}),
		Submissions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trivia",
				Subsystem: "gamesvc",
				Name:      "player_results_total",
				Help:      "Player result submissions by outcome",
			},
			[]string{"outcome"}, // won, lost, rejected
		),
		GamesCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "trivia",
			Subsystem: "gamesvc",
			Name:      "games_completed_total",
			Help:      "Games that reached completed status",
		}),
		AnswersGraded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "trivia",
				Subsystem: "gamesvc",
				Name:      "answers_total",
				Help:      "Question answers graded",
			},
			[]string{"correct"},
		),
		PointsAwarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: "trivia",
			Subsystem: "gamesvc",
			Name:      "points_awarded_total",
			Help:      "Bonus marks granted for correct answers",
		}),
		EventPublishFails: f.NewCounter(prometheus.CounterOpts{
			Namespace: "trivia",
			Subsystem: "gamesvc",
			Name:      "event_publish_failures_total",
			Help:      "Game events that could not be published",
		}),
	}
}

func (m *Metrics) PlayerResult(won bool) {
	if won {
		m.Submissions.WithLabelValues("won").Inc()
		return
	}
	m.Submissions.WithLabelValues("lost").Inc()
}

func (m *Metrics) ResultRejected()  { m.Submissions.WithLabelValues("rejected").Inc() }
func (m *Metrics) GameCompleted()   { m.GamesCompleted.Inc() }
func (m *Metrics) PublishFailed()   { m.EventPublishFails.Inc() }
func (m *Metrics) Points(marks int) { m.PointsAwarded.Add(float64(marks)) }

func (m *Metrics) AnswerGraded(correct bool) {
	m.AnswersGraded.WithLabelValues(strconv.FormatBool(correct)).Inc()
}

// Middleware records request metrics labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
	})
}
