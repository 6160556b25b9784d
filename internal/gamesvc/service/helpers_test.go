package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/avvvet/trivia-services/internal/comm"
	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/store/memory"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

type fakePublisher struct {
	mu     sync.Mutex
	events []comm.GameEvent
}

func (f *fakePublisher) PublishGameEvent(ev comm.GameEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	store    *memory.Store
	games    *GameService
	answers  *AnswerService
	players  *PlayerService
	packages *PackageService
	events   *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	pub := &fakePublisher{}
	opts := []Option{
		WithEvents(pub),
		WithClock(func() time.Time { return fixedNow }),
		WithRand(rand.New(rand.NewSource(1))),
	}
	return &fixture{
		store:    st,
		games:    NewGameService(st, opts...),
		answers:  NewAnswerService(st, opts...),
		players:  NewPlayerService(st),
		packages: NewPackageService(st, opts...),
		events:   pub,
	}
}

func (f *fixture) addQuestion(t *testing.T, card models.Card, text, answer, explanation string) *models.Question {
	t.Helper()
	q := &models.Question{
		Card:          card,
		QuestionText:  text,
		Options:       []string{answer, "Something else"},
		CorrectAnswer: answer,
		Explanation:   explanation,
		Points:        1,
	}
	require.NoError(t, q.Normalize())
	require.NoError(t, f.store.CreateQuestion(context.Background(), q))
	return q
}

func (f *fixture) newGame(t *testing.T, participants int) *models.Game {
	t.Helper()
	g, err := f.games.CreateGame(context.Background(), participants)
	require.NoError(t, err)
	return g
}

func (f *fixture) submit(t *testing.T, matchID, username string, team int, winner bool, lostCard string) *SubmitResult {
	t.Helper()
	res, err := f.games.SubmitPlayerResult(context.Background(), SubmitResultInput{
		MatchID:  matchID,
		Username: username,
		Team:     team,
		IsWinner: winner,
		LostCard: lostCard,
	})
	require.NoError(t, err)
	return res
}
