package models

import (
	"fmt"
	"strings"
	"time"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
)

type Question struct {
	ID            int64        `json:"id"`
	Card          Card         `json:"card"`
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
	Points        int          `json:"points"`
	Difficulty    string       `json:"difficulty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// Normalize fills defaults and checks the option/answer rules for the question type.
func (q *Question) Normalize() error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return fmt.Errorf("%w: question_text is required", ErrInvalidQuestion)
	}
	if q.QuestionType == "" {
		q.QuestionType = MultipleChoice
	}
	if q.Points <= 0 {
		q.Points = 1
	}
	if q.Difficulty == "" {
		q.Difficulty = "medium"
	}
	switch q.Difficulty {
	case "easy", "medium", "hard":
	default:
		return fmt.Errorf("%w: difficulty %q", ErrInvalidQuestion, q.Difficulty)
	}

	switch q.QuestionType {
	case TrueFalse:
		q.Options = []string{"True", "False"}
		if q.CorrectAnswer != "True" && q.CorrectAnswer != "False" {
			return fmt.Errorf("%w: true/false questions need correct_answer True or False", ErrInvalidQuestion)
		}
	case MultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: multiple choice questions need at least 2 options", ErrInvalidQuestion)
		}
		found := false
		for _, o := range q.Options {
			if o == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: correct_answer must be one of the options", ErrInvalidQuestion)
		}
	default:
		return fmt.Errorf("%w: question_type %q", ErrInvalidQuestion, q.QuestionType)
	}
	return nil
}

// IsCorrect compares answers ignoring surrounding whitespace and case.
func (q *Question) IsCorrect(answer string) bool {
	return normalizeAnswer(answer) == normalizeAnswer(q.CorrectAnswer)
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (q *Question) Clone() *Question {
	c := *q
	c.Options = append([]string(nil), q.Options...)
	return &c
}

// Public hides the correct answer and explanation until the question is answered.
func (q *Question) Public() *Question {
	c := q.Clone()
	c.CorrectAnswer = ""
	c.Explanation = ""
	return c
}
