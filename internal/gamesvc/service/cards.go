package service

import "github.com/avvvet/trivia-services/internal/gamesvc/models"

// AssignCard returns the card for the loser at ordinal i (submission order).
// Chosen cards are cycled; with none chosen a catalog card is drawn with intn.
// Cards are not guaranteed distinct.
func AssignCard(chosen []models.Card, i int, intn func(n int) int) models.Card {
	if len(chosen) > 0 {
		return chosen[i%len(chosen)]
	}
	catalog := models.AllCards()
	return catalog[intn(len(catalog))]
}
