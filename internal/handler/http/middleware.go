package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dressly/storefront/pkg/httputil"
	"github.com/dressly/storefront/pkg/logger"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	userIDKey   contextKey = "user_id"
	rawTokenKey contextKey = "raw_token"
	ownerIDKey  contextKey = "owner_id"
)

// sessionHeader carries the anonymous session ID for unauthenticated
// browsing. The service issues one when the client has none.
const sessionHeader = "X-Session-ID"

// Authenticate validates a bearer JWT when one is present. A valid token
// puts the user ID and the raw token into the request context; an invalid
// token is rejected with 401. Requests without an Authorization header pass
// through anonymously; endpoints that need a credential enforce it
// downstream, at call time.
func Authenticate(secret string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthError(w, "invalid authorization header format")
				return
			}
			tokenString := parts[1]

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				log.Warn("invalid JWT token",
					slog.String("path", r.URL.Path),
					slog.String("error", errString(err)),
				)
				writeAuthError(w, "invalid or expired token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeAuthError(w, "invalid token claims")
				return
			}

			userID, _ := claims["user_id"].(string)
			if userID == "" {
				userID, _ = claims["sub"].(string)
			}
			if userID == "" {
				writeAuthError(w, "token carries no user identity")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, rawTokenKey, tokenString)
			ctx = logger.WithUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionOwner resolves the selection-session owner: the authenticated user
// ID when present, otherwise the anonymous session ID from the X-Session-ID
// header. A client with neither gets a fresh session ID, echoed back in the
// response header so it can be reused.
func SessionOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := userIDFromContext(r.Context())
		if !ok {
			owner = r.Header.Get(sessionHeader)
			if owner == "" {
				owner = "anon-" + uuid.New().String()
			}
			w.Header().Set(sessionHeader, owner)
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}

func ownerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ownerIDKey).(string)
	return id, ok && id != ""
}

// TokenFromContext returns the raw bearer token of the authenticated user.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(rawTokenKey).(string)
	return token, ok && token != ""
}

// ContextCredentials reads the bearer credential from the request context at
// call time. Implements reconciler.CredentialProvider.
type ContextCredentials struct{}

// Token returns the current request's bearer token, if any.
func (ContextCredentials) Token(ctx context.Context) (string, bool) {
	return TokenFromContext(ctx)
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: message},
	})
}

func errString(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}
