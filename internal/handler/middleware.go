package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/arisanku/savings-engine/pkg/response"
)

type contextKey string

const userIDKey contextKey = "userID"

// IdentityMiddleware trusts the identity headers set by the fronting auth
// proxy: X-User-ID carries the authenticated user, X-User-Verified the email
// verification flag. Registration and sessions live outside this service.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawID := r.Header.Get("X-User-ID")
		if rawID == "" {
			response.Unauthorized(w, "unauthorized")
			return
		}

		userID, err := uuid.Parse(rawID)
		if err != nil {
			response.Unauthorized(w, "unauthorized")
			return
		}

		if r.Header.Get("X-User-Verified") != "true" {
			response.Forbidden(w, "user not found or email not verified")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUserID returns the authenticated user id placed by IdentityMiddleware.
func CurrentUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	return userID, ok
}
