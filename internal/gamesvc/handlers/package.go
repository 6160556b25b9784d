package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/service"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

type packageRequest struct {
	Name              string   `json:"name" validate:"required,max=200"`
	Description       string   `json:"description"`
	Type              string   `json:"type" validate:"omitempty,oneof=public organizational private"`
	Category          string   `json:"category" validate:"max=100"`
	Visibility        string   `json:"visibility" validate:"omitempty,oneof=public organization private"`
	Difficulty        string   `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	EstimatedDuration int      `json:"estimated_duration" validate:"gte=0"`
	Language          string   `json:"language" validate:"max=10"`
	Tags              []string `json:"tags"`
	Version           string   `json:"version" validate:"max=20"`
	Status            string   `json:"status" validate:"omitempty,oneof=draft published archived"`
	QuestionIDs       []int64  `json:"question_ids" validate:"required,min=1,dive,gt=0"`
}

type packageStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft published archived"`
}

type attemptAnswer struct {
	QuestionID int64  `json:"question_id" validate:"gt=0"`
	Answer     string `json:"answer"`
}

type attemptRequest struct {
	Answers   []attemptAnswer `json:"answers" validate:"dive"`
	TimeTaken int             `json:"time_taken" validate:"gte=0"`
}

func packageID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "package_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: package id must be a positive number", models.ErrValidation)
	}
	return id, nil
}

func (h *Handler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var req packageRequest
	if err := h.decode(r, &req); err != nil {
		h.Error(w, err)
		return
	}

	var createdBy string
	if _, claims, err := jwtauth.FromContext(r.Context()); err == nil {
		createdBy, _ = claims["sub"].(string)
	}

	p, err := h.packages.CreatePackage(r.Context(), &models.QuestionPackage{
		Name:              req.Name,
		Description:       req.Description,
		Type:              models.PackageType(req.Type),
		Category:          req.Category,
		Visibility:        models.PackageVisibility(req.Visibility),
		Difficulty:        req.Difficulty,
		EstimatedDuration: req.EstimatedDuration,
		Language:          req.Language,
		Tags:              req.Tags,
		Version:           req.Version,
		Status:            models.PackageStatus(req.Status),
		CreatedBy:         createdBy,
		QuestionIDs:       req.QuestionIDs,
	})
	if err != nil {
		h.Error(w, err)
		return
	}
	h.Created(w, "package created", p)
}

func (h *Handler) SetPackageStatus(w http.ResponseWriter, r *http.Request) {
	id, err := packageID(r)
	if err != nil {
		h.Error(w, err)
		return
	}
	var req packageStatusRequest
	if err := h.decode(r, &req); err != nil {
		h.Error(w, err)
		return
	}

	p, err := h.packages.SetStatus(r.Context(), id, models.PackageStatus(req.Status))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "package status updated", p)
}

func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.packages.ListPublished(r.Context())
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "packages", pkgs)
}

// PackageQuestions serves a published package's questions without
// correct_answer or explanation. Submitting an attempt returns both for every
// answered question.
func (h *Handler) PackageQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := packageID(r)
	if err != nil {
		h.Error(w, err)
		return
	}

	pq, err := h.packages.Questions(r.Context(), id)
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "package questions", pq)
}

func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := packageID(r)
	if err != nil {
		h.Error(w, err)
		return
	}
	var req attemptRequest
	if err := h.decode(r, &req); err != nil {
		h.Error(w, err)
		return
	}

	in := service.AttemptInput{TimeTaken: req.TimeTaken, Answers: make([]service.PackageAnswer, len(req.Answers))}
	for i, a := range req.Answers {
		in.Answers[i] = service.PackageAnswer(a)
	}

	p, _ := r.Context().Value(playerKey).(*models.Player)
	res, err := h.packages.SubmitAttempt(r.Context(), p, id, in)
	if err != nil {
		h.Error(w, err)
		return
	}
	h.Created(w, "attempt recorded", res)
}

func (h *Handler) MyAttempts(w http.ResponseWriter, r *http.Request) {
	p, _ := r.Context().Value(playerKey).(*models.Player)
	attempts, err := h.packages.Attempts(r.Context(), p.ID)
	if err != nil {
		h.Error(w, err)
		return
	}
	h.OK(w, "package attempts", attempts)
}
