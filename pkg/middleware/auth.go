package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Dias221467/Questline/internal/cache"
	jwtutil "github.com/Dias221467/Questline/pkg/jwt"
	"github.com/Dias221467/Questline/pkg/logger"
)

type contextKey string

// UserContextKey holds the *jwtutil.Claims of the authenticated request.
const UserContextKey contextKey = "user"

// AuthMiddleware requires a valid bearer token that has not been revoked.
// revoked may be nil.
func AuthMiddleware(secret string, revoked cache.Denylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Missing token", http.StatusUnauthorized)
				return
			}

			claims, err := Authenticate(r.Context(), strings.TrimPrefix(header, "Bearer "), secret, revoked)
			if err != nil {
				logger.Log.WithError(err).Warn("Rejected bearer token")
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticate validates a raw token and checks the denylist. The
// websocket endpoint uses it directly since browsers cannot set headers
// on the upgrade request.
func Authenticate(ctx context.Context, token, secret string, revoked cache.Denylist) (*jwtutil.Claims, error) {
	claims, err := jwtutil.ValidateToken(token, secret)
	if err != nil {
		return nil, err
	}
	if revoked != nil {
		gone, err := revoked.Revoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if gone {
			return nil, jwtutil.ErrInvalidToken
		}
	}
	return claims, nil
}

// GetUserFromContext returns the claims AuthMiddleware stored, or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(UserContextKey).(*jwtutil.Claims)
	return claims
}

// RequireRole lets through only users whose token carries one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			logger.Log.WithField("userID", claims.UserID).Warn("Forbidden role")
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}
