package auth

import (
	"net/http"
	"strings"

	"github.com/dibaihss/serverless-api-Azure-Ludo/internal/modules/core"

	"go.uber.org/zap"
)

const missingAuthorizationMessage = "Missing or invalid Authorization header"

type TokenVerifier interface {
	Verify(token string) (core.ContextSession, error)
}

// AuthenticationMiddleware requires a valid bearer token and stores the
// caller in the request context.
func AuthenticationMiddleware(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				core.WriteUnauthorized(w, r, missingAuthorizationMessage)
				return
			}

			session, err := tokens.Verify(token)
			if err != nil {
				core.Logger(r.Context()).Debug("rejected bearer token", zap.Error(err))
				core.WriteUnauthorized(w, r, "Invalid or expired token")
				return
			}

			ctx := core.WithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}
