package models

import (
	"fmt"
	"strings"
)

// Card is a playing-card identifier: suit letter followed by rank, e.g. "S3", "HJ", "D10".
type Card string

var (
	cardSuits = []string{"S", "H", "D", "C"}
	cardRanks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

var allCards = func() []Card {
	cards := make([]Card, 0, len(cardSuits)*len(cardRanks))
	for _, s := range cardSuits {
		for _, r := range cardRanks {
			cards = append(cards, Card(s+r))
		}
	}
	return cards
}()

var cardIndex = func() map[Card]struct{} {
	idx := make(map[Card]struct{}, len(allCards))
	for _, c := range allCards {
		idx[c] = struct{}{}
	}
	return idx
}()

// AllCards returns the full 52 card catalog in suit/rank order.
func AllCards() []Card {
	out := make([]Card, len(allCards))
	copy(out, allCards)
	return out
}

// ParseCard validates raw against the catalog. Input is case-insensitive.
func ParseCard(raw string) (Card, error) {
	c := Card(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := cardIndex[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCard, raw)
	}
	return c, nil
}

// ParseCards parses every entry of raw, failing on the first invalid card.
func ParseCards(raw []string) ([]Card, error) {
	cards := make([]Card, 0, len(raw))
	for _, r := range raw {
		c, err := ParseCard(r)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func (c Card) String() string { return string(c) }
