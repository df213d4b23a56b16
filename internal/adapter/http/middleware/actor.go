package middleware

import (
	"net/http"
	"strings"

	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/infrastructure/auth"
)

// ActorHeader carries the caller id when bearer tokens are not in use.
const ActorHeader = "X-Actor-ID"

// Actor resolves the caller and stores it in the request context. With a
// JWT manager, a valid bearer token is required and its subject wins over
// the header.
func Actor(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := strings.TrimSpace(r.Header.Get(ActorHeader))

			if jwtManager != nil {
				token, ok := bearerToken(r)
				if !ok {
					writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
					return
				}
				claims, err := jwtManager.Verify(token)
				if err != nil {
					writeJSONError(w, http.StatusUnauthorized, err.Error())
					return
				}
				actorID = claims.ActorID
			}

			if actorID == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(domain.ContextWithActor(r.Context(), actorID)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
