package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/avvvet/trivia-services/internal/comm"
	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/store"
	log "github.com/sirupsen/logrus"
)

// EventPublisher delivers game events to the socket service.
type EventPublisher interface {
	PublishGameEvent(ev comm.GameEvent) error
}

// Recorder receives game counters. *metrics.Metrics satisfies it.
type Recorder interface {
	PlayerResult(won bool)
	ResultRejected()
	GameCompleted()
	PublishFailed()
	AnswerGraded(correct bool)
	Points(marks int)
}

// QuestionCache is a read-through cache in front of the question bank.
type QuestionCache interface {
	QuestionsByCard(ctx context.Context, card models.Card) ([]*models.Question, error)
	Invalidate(ctx context.Context, card models.Card) error
}

type Option func(*deps)

func WithEvents(p EventPublisher) Option       { return func(d *deps) { d.events = p } }
func WithMetrics(r Recorder) Option            { return func(d *deps) { d.metrics = r } }
func WithQuestionCache(c QuestionCache) Option { return func(d *deps) { d.questions = c } }
func WithClock(now func() time.Time) Option    { return func(d *deps) { d.now = now } }
func WithRand(r *rand.Rand) Option             { return func(d *deps) { d.rnd = r } }

// deps is shared by the services that mutate games.
type deps struct {
	store     store.Store
	events    EventPublisher
	metrics   Recorder
	questions QuestionCache
	now       func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func newDeps(st store.Store, opts []Option) *deps {
	d := &deps{
		store:   st,
		metrics: nopRecorder{},
		now:     func() time.Time { return time.Now().UTC() },
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *deps) intn(n int) int {
	d.rndMu.Lock()
	defer d.rndMu.Unlock()
	return d.rnd.Intn(n)
}

// publish sends events after commit. Failures are logged, never returned.
func (d *deps) publish(events []comm.GameEvent) {
	if d.events == nil {
		return
	}
	for _, ev := range events {
		if err := d.events.PublishGameEvent(ev); err != nil {
			d.metrics.PublishFailed()
			log.WithFields(log.Fields{"match_id": ev.MatchID, "type": ev.Type}).
				Errorf("publish game event: %s", err)
		}
	}
}

// eventLog collects events inside a transaction.
type eventLog struct {
	now    time.Time
	events []comm.GameEvent
}

func (l *eventLog) add(eventType, matchID string, data any) {
	ev, err := comm.NewGameEvent(eventType, matchID, data, l.now)
	if err != nil {
		log.Errorf("encode %s event: %s", eventType, err)
		return
	}
	l.events = append(l.events, ev)
}

type nopRecorder struct{}

func (nopRecorder) PlayerResult(bool) {}
func (nopRecorder) ResultRejected()   {}
func (nopRecorder) GameCompleted()    {}
func (nopRecorder) PublishFailed()    {}
func (nopRecorder) AnswerGraded(bool) {}
func (nopRecorder) Points(int)        {}
