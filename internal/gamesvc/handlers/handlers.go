package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/avvvet/trivia-services/internal/gamesvc/models"
	"github.com/avvvet/trivia-services/internal/gamesvc/service"
	"github.com/go-chi/jwtauth"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	validate  *validator.Validate
	port      string

	games     *service.GameService
	answers   *service.AnswerService
	players   *service.PlayerService
	questions *service.QuestionService
	packages  *service.PackageService
}

type Services struct {
	Games     *service.GameService
	Answers   *service.AnswerService
	Players   *service.PlayerService
	Questions *service.QuestionService
	Packages  *service.PackageService
}

func NewHandler(svc Services, tokenAuth *jwtauth.JWTAuth, port string) *Handler {
	return &Handler{
		tokenAuth: tokenAuth,
		validate:  newValidator(),
		port:      port,
		games:     svc.Games,
		answers:   svc.Answers,
		players:   svc.Players,
		questions: svc.Questions,
		packages:  svc.Packages,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func (rs *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) OK(w http.ResponseWriter, message string, data interface{}) {
	h.CreateResponse(w, Response{Message: message, Code: http.StatusOK, Data: data})
}

func (h *Handler) Created(w http.ResponseWriter, message string, data interface{}) {
	h.CreateResponse(w, Response{Message: message, Code: http.StatusCreated, Data: data})
}

// Error writes err with the status of its class. Unclassified errors are 500
// and their text is returned as is.
func (h *Handler) Error(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		log.Errorf("internal error: %s", err)
	}
	h.CreateResponse(w, Response{Message: http.StatusText(code), Code: code, Error: err.Error()})
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.OK(w, "game service is running at port "+h.port, nil)
}

// decode reads a JSON body into dst and runs its validate tags.
func (h *Handler) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed payload: %s", models.ErrValidation, err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("card", func(fl validator.FieldLevel) bool {
		_, err := models.ParseCard(fl.Field().String())
		return err == nil
	}); err != nil {
		log.Fatalf("register card validation: %s", err)
	}
	return v
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %s", models.ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "card":
			msgs = append(msgs, fmt.Sprintf("%s: invalid card %q", fe.Field(), fe.Value()))
		case "required", "required_without":
			msgs = append(msgs, fe.Field()+" is required")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(msgs, "; "))
}
