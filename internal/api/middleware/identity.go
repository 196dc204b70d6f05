package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/classtrack/internal/api/respond"
	"github.com/felixgeelhaar/classtrack/internal/domain"
	"github.com/felixgeelhaar/classtrack/internal/session"
)

// SessionLoader resolves the interactive session carried by a request
type SessionLoader interface {
	Load(r *http.Request) (*session.Session, error)
}

// TokenValidator resolves a bearer token to an identity
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.Identity, error)
}

// Identity resolves the acting user once per request: the interactive
// session cookie first, then an Authorization bearer token. A request whose
// credentials do not resolve continues anonymously.
func Identity(sessions SessionLoader, tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := resolve(r, sessions, tokens); id != nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolve(r *http.Request, sessions SessionLoader, tokens TokenValidator) *domain.Identity {
	ctx := r.Context()

	if sessions != nil {
		s, err := sessions.Load(r)
		if err == nil {
			return s.Identity()
		}
		if !errors.Is(err, session.ErrNotFound) {
			slog.Warn("interactive session lookup failed",
				"error", err,
				"request_id", GetRequestID(ctx),
			)
		}
	}

	token, ok := bearerToken(r)
	if !ok || tokens == nil {
		return nil
	}
	id, err := tokens.ValidateToken(ctx, token)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			slog.Warn("token validation failed",
				"error", err,
				"request_id", GetRequestID(ctx),
			)
		}
		return nil
	}
	return id
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// GetIdentity retrieves the resolved identity from context. It returns nil
// for anonymous requests.
func GetIdentity(ctx context.Context) *domain.Identity {
	if id, ok := ctx.Value(IdentityKey).(*domain.Identity); ok {
		return id
	}
	return nil
}

// RequireAuth rejects anonymous requests
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r.Context()) == nil {
			respond.Unauthorized(w, r, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
