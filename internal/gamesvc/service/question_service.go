package service

import (
	"context"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/store"
	log "github.com/sirupsen/logrus"
)

// QuestionService manages the question bank.
type QuestionService struct {
	*deps
}

func NewQuestionService(st store.Store, opts ...Option) *QuestionService {
	return &QuestionService{deps: newDeps(st, opts)}
}

func (s *QuestionService) CreateQuestion(ctx context.Context, q *models.Question) (*models.Question, error) {
	card, err := models.ParseCard(string(q.Card))
	if err != nil {
		return nil, err
	}
	q.Card = card
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	if err := s.store.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}

	if s.questions != nil {
		if err := s.questions.Invalidate(ctx, card); err != nil {
			log.Warnf("invalidate question cache for %s: %s", card, err)
		}
	}
	return q, nil
}

// QuestionsForCard lists a card's questions without their answers.
func (s *QuestionService) QuestionsForCard(ctx context.Context, raw string) ([]*models.Question, error) {
	card, err := models.ParseCard(raw)
	if err != nil {
		return nil, err
	}

	var qs []*models.Question
	if s.questions != nil {
		qs, err = s.questions.QuestionsByCard(ctx, card)
	} else {
		qs, err = s.store.QuestionsByCard(ctx, card)
	}
	if err != nil {
		return nil, err
	}

	out := make([]*models.Question, len(qs))
	for i, q := range qs {
		out[i] = q.Public()
	}
	return out, nil
}
