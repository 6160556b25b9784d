package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/service"
	"github.com/go-chi/chi"
)

type ctxKey int

const playerKey ctxKey = iota

type registerRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	PlayerName      string `json:"player_name" validate:"max=100"`
	Phone           string `json:"phone" validate:"required,max=20"`
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"password_confirm" validate:"required"`
	AgeGroup        string `json:"age_group"`
	Gender          string `json:"gender"`
	Province        string `json:"province"`
	District        string `json:"district"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	PlayerName *string `json:"player_name" validate:"omitempty,min=1,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=20"`
	AgeGroup   *string `json:"age_group"`
	Gender     *string `json:"gender"`
	Province   *string `json:"province"`
	District   *string `json:"district"`
}

type loginResponse struct {
	Token  string         `json:"token"`
	Player *models.Player `json:"player"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decode(r, &req); err != nil {
		h.Error(w, err)
		return
	}

	p, err := h.players.Register(r.Context(), service.RegisterInput(req))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.Created(w, "player registered", loginResponse{Token: p.UUID, Player: p})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(r, &req); err != nil {
		h.Error(w, err)
		return
	}

	p, err := h.players.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "login successful", loginResponse{Token: p.UUID, Player: p})
}

// PlayerAuth resolves "Authorization: Token <uuid>" to a player.
func (h *Handler) PlayerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Token ")
		if !ok || token == "" {
			h.Error(w, models.ErrInvalidCredentials)
			return
		}
		p, err := h.players.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			h.Error(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), playerKey, p)))
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := r.Context().Value(playerKey).(*models.Player)
	h.OK(w, "player profile", p)
}

// UpdateProfile applies a partial update; absent fields keep their value.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := h.decode(r, &req); err != nil {
		h.Error(w, err)
		return
	}

	p, _ := r.Context().Value(playerKey).(*models.Player)
	updated, err := h.players.UpdateProfile(r.Context(), p.ID, service.ProfileInput(req))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "profile updated", updated)
}

// Logout revokes the token the request was authenticated with.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	p, _ := r.Context().Value(playerKey).(*models.Player)
	if err := h.players.Logout(r.Context(), p); err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "successfully logged out", nil)
}

func (h *Handler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.players.Stats(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "player stats", stats)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.Error(w, fmt.Errorf("%w: limit must be a number", models.ErrValidation))
			return
		}
		limit = n
	}

	entries, err := h.players.Leaderboard(r.Context(), r.URL.Query().Get("metric"), limit)
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "leaderboard", entries)
}

func (h *Handler) ProvincesDistricts(w http.ResponseWriter, r *http.Request) {
	h.OK(w, "provinces and districts", models.Provinces())
}

func (h *Handler) Genders(w http.ResponseWriter, r *http.Request) {
	h.OK(w, "genders", models.Genders)
}

func (h *Handler) AgeGroups(w http.ResponseWriter, r *http.Request) {
	h.OK(w, "age groups", models.AgeGroups)
}
