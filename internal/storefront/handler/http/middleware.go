package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/a-bjn/sudexpert-storefront/pkg/httputil"
	"github.com/a-bjn/sudexpert-storefront/pkg/logger"
)

// SessionCookieName is the cookie that identifies a storefront session. The
// cart, credentials, and checkout progress all hang off this ID.
const SessionCookieName = "sid"

// defaultSessionTTL is the cookie lifetime used when no TTL is configured.
const defaultSessionTTL = 30 * 24 * time.Hour

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const sessionIDKey contextKey = "session_id"

// Session is middleware that reads the session cookie, minting a new session
// ID when the cookie is absent or unusable, and stores the ID in the request
// context. Every request therefore has a session. The cookie lives as long
// as the session-keyed data in the store, so ttl should match the store's
// retention window.
func Session(secure bool, ttl time.Duration) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string
			if c, err := r.Cookie(SessionCookieName); err == nil {
				if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
					sid = c.Value
				}
			}
			if sid == "" {
				sid = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sid)
			ctx = logger.WithSessionID(ctx, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionIDFromContext extracts the session ID stored by the Session middleware.
func sessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}

// ContentTypeJSON enforces that requests with a body carry Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
