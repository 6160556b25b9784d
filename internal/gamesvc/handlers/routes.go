package handlers

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)

		r.Route("/players", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Group(func(r chi.Router) {
				r.Use(h.PlayerAuth)
				r.Get("/me", h.Me)
				r.Put("/me", h.UpdateProfile)
				r.Get("/me/attempts", h.MyAttempts)
				r.Post("/logout", h.Logout)
			})
			r.Get("/{username}/stats", h.PlayerStats)
		})
		r.Get("/leaderboard", h.Leaderboard)
		r.Get("/cards/{card}/questions", h.CardQuestions)

		r.Route("/packages", func(r chi.Router) {
			r.Get("/", h.ListPackages)
			r.Get("/{package_id}/questions", h.PackageQuestions)
			r.With(h.PlayerAuth).Post("/{package_id}/attempts", h.SubmitAttempt)
		})

		r.Route("/form-data", func(r chi.Router) {
			r.Get("/provinces-districts", h.ProvincesDistricts)
			r.Get("/genders", h.Genders)
			r.Get("/age-groups", h.AgeGroups)
		})

		r.Route("/games", func(r chi.Router) {
			r.Post("/create", h.CreateGame)
			r.Post("/submit-player-result", h.SubmitPlayerResult)
			r.Post("/submit-completed", h.SubmitPlayerResult)
			r.Post("/complete", h.CompleteGame)
			r.Post("/submit-answer", h.SubmitAnswer)
			r.Post("/award-points", h.AwardPoints)
			r.Post("/record-wrong-answer", h.RecordWrongAnswer)

			r.Post("/{match_id}/activate", h.ActivateGame)
			r.Get("/{match_id}/status", h.GameStatus)
			r.Get("/{match_id}/responses", h.GameResponses)
		})

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Post("/admin/games/{match_id}/cancel", h.CancelGame)
			r.Post("/admin/questions", h.CreateQuestion)
			r.Post("/admin/packages", h.CreatePackage)
			r.Post("/admin/packages/{package_id}/status", h.SetPackageStatus)
		})
	})
}

func NewTokenAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// AdminToken signs a token accepted by the admin routes.
func AdminToken(tokenAuth *jwtauth.JWTAuth, subject string, ttl time.Duration) (string, error) {
	_, tokenString, err := tokenAuth.Encode(map[string]interface{}{
		"sub": subject,
		"exp": time.Now().Add(ttl).Unix(),
	})
	if err != nil {
		log.Errorf("sign admin token: %s", err)
		return "", err
	}
	return tokenString, nil
}
