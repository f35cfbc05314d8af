package middleware

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LastActiveUpdater interface {
	UpdateLastActive(ctx context.Context, id primitive.ObjectID) error
}

func UpdateLastActiveMiddleware(users LastActiveUpdater) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims != nil {
				userID, err := primitive.ObjectIDFromHex(claims.UserID)
				if err == nil {
					_ = users.UpdateLastActive(r.Context(), userID)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
