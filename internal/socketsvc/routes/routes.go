package routes

import (
	"time"

	"github.com/avvvet/trivia-services/internal/socketsvc/handlers"
	"github.com/avvvet/trivia-services/internal/socketsvc/ws"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func SetRoutes(r chi.Router, ws *ws.Ws, tokenAuth *jwtauth.JWTAuth) {
	h := handlers.NewHandler(ws)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/ws", h.HandleWebSocket)
		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)
		})
	})
}

func InitAuth(jwtKey string) *jwtauth.JWTAuth {
	tokenAuth := jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()
	_, tokenString, err := tokenAuth.Encode(map[string]interface{}{
		"sub": "socketsvc-debug",
		"exp": expirationTime,
	})
	if err != nil {
		log.Errorf("sign debug token: %s", err)
		return tokenAuth
	}

	// For debugging only
	log.Debugf("DEBUG: JWT for testing: %s", tokenString)
	return tokenAuth
}
