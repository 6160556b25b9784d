package handlers

import (
	"context"
	"net/http"

	"github.com/avvvet/trivia-services/internal/gamesvc/service"
)

type answerRequest struct {
	MatchID    string `json:"match_id" validate:"required"`
	PlayerID   int64  `json:"player_id" validate:"gte=0"`
	Username   string `json:"username" validate:"required_without=PlayerID"`
	QuestionID int64  `json:"question_id" validate:"omitempty,gt=0"`
	Answer     string `json:"answer" validate:"required"`
	Points     int    `json:"points" validate:"gte=0"`
}

type answerFunc func(ctx context.Context, in service.AnswerInput) (*service.AnswerResult, error)

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	h.handleAnswer(w, r, "answer submitted", h.answers.SubmitAnswer)
}

func (h *Handler) AwardPoints(w http.ResponseWriter, r *http.Request) {
	h.handleAnswer(w, r, "points awarded", h.answers.AwardPoints)
}

func (h *Handler) RecordWrongAnswer(w http.ResponseWriter, r *http.Request) {
	h.handleAnswer(w, r, "wrong answer recorded", h.answers.RecordWrongAnswer)
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request, message string, fn answerFunc) {
	var req answerRequest
	if err := h.decode(r, &req); err != nil {
		h.Error(w, err)
		return
	}

	res, err := fn(r.Context(), service.AnswerInput(req))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, message, res)
}
