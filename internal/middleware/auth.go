package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"vault-backend/internal/session"
)

type contextKey string

const UserContextKey contextKey = "user"

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "session"

// SessionToken extracts the session token from the request cookie, or ""
// when the cookie is missing.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// AuthMiddleware guards page routes. API routes are gated inside the file
// service instead, so there is exactly one resolve-or-reject decision either
// way; only the failure rendering differs (redirect here, 401 JSON there).
type AuthMiddleware struct {
	sessions session.Manager
}

func NewAuthMiddleware(sessions session.Manager) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequirePage redirects to /login unless the request carries a live session.
func (m *AuthMiddleware) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.sessions.Resolve(r.Context(), SessionToken(r))
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticated reports whether the request carries a live session, for
// routes where authentication is optional.
func (m *AuthMiddleware) Authenticated(r *http.Request) bool {
	_, ok := m.sessions.Resolve(r.Context(), SessionToken(r))
	return ok
}

func GetUserFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserContextKey).(uuid.UUID)
	return userID, ok
}
