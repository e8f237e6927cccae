package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/vadimbarashkov/linksplit/pkg/response"
)

const (
	headerUserID     = "X-User-ID"
	headerAdminToken = "X-Admin-Token"
)

type ctxKey int

const (
	sessionIDKey ctxKey = iota
	ownerIDKey
)

// sessionCookie makes sure every visitor carries a session identifier. A new
// identifier is issued when the cookie is missing or empty.
func sessionCookie(name string, ttl time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string

			if c, err := r.Cookie(name); err == nil && c.Value != "" {
				sessionID = c.Value
			} else {
				sessionID = uuid.NewString()

				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionIDFromContext(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionIDKey).(string)
	return sessionID
}

// ownerID parses the X-User-ID header. When required is false a missing header
// passes through as an anonymous request.
func ownerID(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(headerUserID)
			if raw == "" {
				if required {
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.ErrorResponse("Unauthorized", "X-User-ID header is required."))
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			id, err := uuid.Parse(raw)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ErrorResponse("Bad Request", "X-User-ID header must be a valid uuid."))
				return
			}

			ctx := context.WithValue(r.Context(), ownerIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ownerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ownerIDKey).(uuid.UUID)
	return id, ok
}

// adminOnly rejects requests whose X-Admin-Token differs from token. An empty
// token disables the admin API.
func adminOnly(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(headerAdminToken)

			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.UnauthorizedResponse)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
