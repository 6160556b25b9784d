package seed

import (
	"context"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/store"
	log "github.com/sirupsen/logrus"
)

// Questions is the sample question bank loaded by `gamesvc seed`.
func Questions() []*models.Question {
	return []*models.Question{
		{
			Card:          "S3",
			QuestionText:  "In which year did Rwanda gain independence?",
			Options:       []string{"1959", "1962", "1994"},
			CorrectAnswer: "1962",
			Explanation:   "Rwanda gained independence from Belgium on July 1, 1962.",
			Difficulty:    "medium",
		},
		{
			Card:          "HJ",
			QuestionText:  "Intore is a traditional Rwandan form of what?",
			Options:       []string{"Dance", "Pottery", "Weaving"},
			CorrectAnswer: "Dance",
			Explanation:   "Intore is a celebrated traditional dance performed across Rwanda.",
			Difficulty:    "easy",
		},
		{
			Card:          "DA",
			QuestionText:  "Kigali Innovation City is a hub for technology and research.",
			QuestionType:  models.TrueFalse,
			CorrectAnswer: "True",
			Explanation:   "Kigali Innovation City brings universities, tech firms and startups together.",
			Difficulty:    "hard",
		},
		{
			Card:          "C7",
			QuestionText:  "Which national park is home to Rwanda's mountain gorillas?",
			Options:       []string{"Akagera", "Nyungwe", "Volcanoes"},
			CorrectAnswer: "Volcanoes",
			Explanation:   "Mountain gorillas live in Volcanoes National Park, where conservation has grown their numbers.",
			Difficulty:    "easy",
		},
		{
			Card:          "H9",
			QuestionText:  "Which two sports have professional leagues and the widest following in Rwanda?",
			Options:       []string{"Football and basketball", "Cricket and rugby", "Tennis and golf"},
			CorrectAnswer: "Football and basketball",
			Explanation:   "Football and basketball are the most popular sports in Rwanda.",
			Difficulty:    "easy",
		},
		{
			Card:          "SQ",
			QuestionText:  "Which number is known as the Hardy-Ramanujan number?",
			Options:       []string{"1729", "1089", "4096"},
			CorrectAnswer: "1729",
			Explanation:   "1729 is the smallest number expressible as a sum of two cubes in two different ways.",
			Points:        2,
			Difficulty:    "hard",
		},
		{
			Card:          "H7",
			QuestionText:  "Umuganda is a monthly day of community work in Rwanda.",
			QuestionType:  models.TrueFalse,
			CorrectAnswer: "True",
			Explanation:   "Umuganda takes place on the last Saturday of every month.",
			Difficulty:    "easy",
		},
		{
			Card:          "H5",
			QuestionText:  "What is the capital city of Rwanda?",
			Options:       []string{"Huye", "Kigali", "Musanze"},
			CorrectAnswer: "Kigali",
			Explanation:   "Kigali has been the capital since independence in 1962.",
			Difficulty:    "easy",
		},
	}
}

type questionCreator interface {
	CreateQuestion(ctx context.Context, q *models.Question) (*models.Question, error)
}

// Run adds every sample question whose text is not already stored for its card.
// It returns how many were created.
func Run(ctx context.Context, st store.QuestionRepository, qs questionCreator) (int, error) {
	created := 0
	for _, q := range Questions() {
		existing, err := st.QuestionsByCard(ctx, q.Card)
		if err != nil {
			return created, err
		}
		if hasText(existing, q.QuestionText) {
			log.Debugf("seed: %s already has %q", q.Card, q.QuestionText)
			continue
		}

		if _, err := qs.CreateQuestion(ctx, q); err != nil {
			return created, err
		}
		created++
	}

	log.Infof("seed: %d questions created", created)
	return created, nil
}

func hasText(qs []*models.Question, text string) bool {
	for _, q := range qs {
		if q.QuestionText == text {
			return true
		}
	}
	return false
}
