package handlers

import (
	"net/http"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/go-chi/chi"
)

type questionRequest struct {
	Card          string   `json:"card" validate:"required,card"`
	QuestionText  string   `json:"question_text" validate:"required"`
	QuestionType  string   `json:"question_type" validate:"omitempty,oneof=multiple_choice true_false"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points" validate:"gte=0"`
	Difficulty    string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := h.decode(r, &req); err != nil {
		h.Error(w, err)
		return
	}

	q, err := h.questions.CreateQuestion(r.Context(), &models.Question{
		Card:          models.Card(req.Card),
		QuestionText:  req.QuestionText,
		QuestionType:  models.QuestionType(req.QuestionType),
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Points:        req.Points,
		Difficulty:    req.Difficulty,
	})
	if err != nil {
		h.Error(w, err)
		return
	}
	h.Created(w, "question created", q)
}

// CardQuestions lists the active questions of a card without correct_answer
// or explanation.
func (h *Handler) CardQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.questions.QuestionsForCard(r.Context(), chi.URLParam(r, "card"))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "questions", qs)
}
