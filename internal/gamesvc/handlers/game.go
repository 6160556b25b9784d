package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/service"
	"github.com/go-chi/chi"
)

type createGameRequest struct {
	ParticipantCount int `json:"participant_count" validate:"required,oneof=1 2 4 6"`
}

type playerResultRequest struct {
	PlayerID   int64  `json:"player_id" validate:"gte=0"`
	Username   string `json:"username" validate:"required_without=PlayerID,max=50"`
	PlayerName string `json:"player_name"`
	Team       int    `json:"team" validate:"required,min=1,max=2"`
	IsWinner   *bool  `json:"is_winner" validate:"required"`
	LostCard   string `json:"lost_card" validate:"omitempty,card"`
}

func (p playerResultRequest) input(matchID string) service.SubmitResultInput {
	return service.SubmitResultInput{
		MatchID:    matchID,
		PlayerID:   p.PlayerID,
		Username:   p.Username,
		PlayerName: p.PlayerName,
		Team:       p.Team,
		IsWinner:   *p.IsWinner,
		LostCard:   p.LostCard,
	}
}

type submitResultRequest struct {
	MatchID string `json:"match_id" validate:"required"`
	playerResultRequest
}

type completeGameRequest struct {
	MatchID     string                `json:"match_id" validate:"required"`
	CardsChosen []string              `json:"cards_chosen" validate:"dive,card"`
	Players     []playerResultRequest `json:"players" validate:"required,min=1,dive"`
}

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := h.decode(r, &req); err != nil {
		h.Error(w, err)
		return
	}

	game, err := h.games.CreateGame(r.Context(), req.ParticipantCount)
	if err != nil {
		h.Error(w, err)
		return
	}
	h.Created(w, "game created", game)
}

// SubmitPlayerResult records one player's result. A loser's response carries
// the assigned question without correct_answer or explanation; clients grade
// through submit-answer or award-points, which return both once answered.
func (h *Handler) SubmitPlayerResult(w http.ResponseWriter, r *http.Request) {
	var req submitResultRequest
	if err := h.decode(r, &req); err != nil {
		h.Error(w, err)
		return
	}

	res, err := h.games.SubmitPlayerResult(r.Context(), req.input(req.MatchID))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "result submitted", res)
}

func (h *Handler) CompleteGame(w http.ResponseWriter, r *http.Request) {
	var req completeGameRequest
	if err := h.decode(r, &req); err != nil {
		h.Error(w, err)
		return
	}

	in := service.CompleteGameInput{MatchID: req.MatchID, CardsChosen: req.CardsChosen}
	for _, p := range req.Players {
		in.Players = append(in.Players, p.input(req.MatchID))
	}

	res, err := h.games.CompleteGame(r.Context(), in)
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "game completed", res)
}

func (h *Handler) ActivateGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.ActivateGame(r.Context(), chi.URLParam(r, "match_id"))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "game activated", game)
}

func (h *Handler) CancelGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.CancelGame(r.Context(), chi.URLParam(r, "match_id"))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "game cancelled", game)
}

func (h *Handler) GameStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := h.games.GameStatus(r.Context(), chi.URLParam(r, "match_id"))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "game status", snap)
}

// GameResponses lists every participant's response. Questions not yet
// answered omit correct_answer and explanation.
func (h *Handler) GameResponses(w http.ResponseWriter, r *http.Request) {
	var playerID int64
	if raw := r.URL.Query().Get("player_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.Error(w, fmt.Errorf("%w: player_id must be a positive number", models.ErrValidation))
			return
		}
		playerID = id
	}

	views, err := h.games.GameResponses(r.Context(), chi.URLParam(r, "match_id"), playerID)
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "game responses", views)
}
