package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Auth scopes every request to the acting user. The bearer token's subject
// claim becomes the user namespace; a request without a usable identity is
// rejected here, before any store or AI call is attempted.
//
// Identity provider integration is out of scope for this service: when
// secret is set the token signature is verified (HS256), otherwise the token
// is trusted as already verified by the gateway in front.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				// Websocket clients cannot set headers from a browser;
				// accept the token as a query parameter there.
				header = r.URL.Query().Get("token")
				if header != "" {
					header = "Bearer " + header
				}
			}
			if !strings.HasPrefix(header, "Bearer ") {
				WriteError(w, http.StatusUnauthorized, "Sign in to manage your expenses")
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			userID, err := subjectOf(raw, secret)
			if err != nil || userID == "" {
				WriteError(w, http.StatusUnauthorized, "Sign in to manage your expenses")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func subjectOf(raw, secret string) (string, error) {
	var claims jwt.MapClaims

	if secret == "" {
		token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
		if err != nil {
			return "", err
		}
		claims = token.Claims.(jwt.MapClaims)
	} else {
		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			return "", err
		}
		claims = token.Claims.(jwt.MapClaims)
	}

	return claims.GetSubject()
}

// WithUser returns a copy of the request scoped to userID, as if Auth had
// accepted a token with that subject.
func WithUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

// UserID returns the authenticated user's namespace from the request
// context, or "" when Auth did not run.
func UserID(r *http.Request) string {
	if id, ok := r.Context().Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
