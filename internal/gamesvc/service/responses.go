package service

import (
	"context"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/store"
)

// ResponseView is a stored response plus what the client needs to render it.
type ResponseView struct {
	*models.GameResponse
	Question *models.Question `json:"question,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// ensureResponse returns the participant's response, generating it on first use.
// participants must be the game's participants in submission order.
func (d *deps) ensureResponse(ctx context.Context, tx store.Store, game *models.Game,
	p *models.Participant, participants []*models.Participant) (*models.GameResponse, error) {

	existing, err := tx.GetResponseByParticipant(ctx, p.ID)
	if err != nil || existing != nil {
		return existing, err
	}

	resp := &models.GameResponse{
		GameID:        game.ID,
		ParticipantID: p.ID,
		PlayerID:      p.PlayerID,
		CreatedAt:     d.now(),
	}

	if p.IsWinner {
		resp.ResponseType = models.ResponseFunFact
		text, card, err := d.funFact(ctx, tx, game, participants)
		if err != nil {
			return nil, err
		}
		resp.FunFactText = text
		resp.Card = card
	} else {
		resp.ResponseType = models.ResponseQuestion
		if p.LostCard != nil {
			card := *p.LostCard
			resp.Card = &card

			qs, err := tx.QuestionsByCard(ctx, card)
			if err != nil {
				return nil, err
			}
			if len(qs) > 0 {
				id := qs[0].ID
				resp.QuestionID = &id
			}
		}
	}

	if err := tx.CreateResponse(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// funFact prefers an explanation attached to a losing-side card, then any
// explained question, then the static fallback.
func (d *deps) funFact(ctx context.Context, tx store.Store, game *models.Game,
	participants []*models.Participant) (string, *models.Card, error) {

	for _, card := range losingSideCards(game, participants) {
		qs, err := tx.QuestionsByCard(ctx, card)
		if err != nil {
			return "", nil, err
		}
		for _, q := range qs {
			if q.Explanation != "" {
				c := card
				return q.Explanation, &c, nil
			}
		}
	}

	q, err := tx.RandomQuestion(ctx)
	if err != nil {
		return "", nil, err
	}
	if q != nil {
		c := q.Card
		return q.Explanation, &c, nil
	}
	return models.FallbackFunFact, nil, nil
}

// losingSideCards lists the chosen cards followed by the losers' assigned cards,
// without repeats.
func losingSideCards(game *models.Game, participants []*models.Participant) []models.Card {
	seen := make(map[models.Card]bool)
	var out []models.Card
	add := func(c models.Card) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, c := range game.CardsChosen {
		add(c)
	}
	for _, p := range participants {
		if !p.IsWinner && p.LostCard != nil {
			add(*p.LostCard)
		}
	}
	return out
}

func (d *deps) view(ctx context.Context, tx store.Store, r *models.GameResponse) (*ResponseView, error) {
	v := &ResponseView{GameResponse: r}
	if r.ResponseType != models.ResponseQuestion {
		return v, nil
	}
	if r.QuestionID == nil {
		v.Message = models.NoQuestionAvailable
		return v, nil
	}

	q, err := tx.GetQuestion(ctx, *r.QuestionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		v.Message = models.NoQuestionAvailable
		return v, nil
	}
	if r.Answered() {
		v.Question = q
	} else {
		v.Question = q.Public()
	}
	return v, nil
}
