package server

import (
	"context"
	"net/http"
	"time"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/mediator"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/auth"
	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"
	gamesession "github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/game-session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

type routerConfig struct {
	logger         *zap.Logger
	allowedOrigins []string
	mediator       *mediator.Mediator
	tokens         auth.TokenVerifier
	health         func(context.Context) error
}

func newRouter(config routerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		core.CorrelationIDHTTPMiddleware,
		core.LoggerHTTPMiddleware(config.logger),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: config.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization", core.CorrelationIDHeader},
			ExposedHeaders: []string{"Location", core.CorrelationIDHeader},
			MaxAge:         300,
		}),
	)

	authenticated := auth.AuthenticationMiddleware(config.tokens)

	sessions := gamesession.NewGameSessionHTTPHandler(config.mediator)
	authHandler := auth.NewAuthHTTPHandler(config.mediator)

	r.Get("/healthz", healthHandler(config.health))

	r.Post("/guest-login", authHandler.HandleGuestLogin)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", sessions.HandleListSessions)
		r.Get("/available", sessions.HandleListAvailableSessions)
		r.Get("/status/{status}", sessions.HandleListSessionsByStatus)
		r.Get("/{id}", sessions.HandleGetSession)
		r.Get("/{sessionId}/users", sessions.HandleListMembers)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Post("/", sessions.HandleCreateSession)
			r.Put("/{id}", sessions.HandleUpdateSession)
			r.Delete("/{id}", sessions.HandleDeleteSession)
			r.Post("/{sessionId}/users/{userId}", sessions.HandleJoinSession)
			r.Delete("/{sessionId}/users/{userId}", sessions.HandleLeaveSession)
		})
	})

	return r
}

func healthHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := check(ctx); err != nil {
			core.Logger(ctx).Warn("health check failed", zap.Error(err))
			core.WriteResponse(w, r, http.StatusServiceUnavailable, core.ErrorResponse{Message: "database unavailable"})
			return
		}

		core.WriteOK(w, r, map[string]string{"status": "ok"})
	}
}
