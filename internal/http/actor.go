package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// Actor is the caller as asserted by the upstream gateway.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) Authenticated() bool {
	return a.UserID != uuid.Nil
}

func (a Actor) HasRole(roles ...string) bool {
	for _, role := range roles {
		if strings.EqualFold(a.Role, role) {
			return true
		}
	}
	return false
}

type actorKey struct{}

// WithActor stores actor on ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the request actor. The zero Actor is anonymous.
func ActorFromContext(ctx context.Context) Actor {
	if ctx == nil {
		return Actor{}
	}
	actor, _ := ctx.Value(actorKey{}).(Actor)
	return actor
}

// ActorMiddleware reads the actor headers. A malformed user id is treated
// as anonymous.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := Actor{Role: RoleUser}
		if raw := strings.TrimSpace(r.Header.Get(HeaderUserID)); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				actor.UserID = id
			}
		}
		if role := strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole))); role != "" {
			actor.Role = role
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActorFromContext(r.Context()).Authenticated() {
			writeMessage(w, http.StatusUnauthorized, "unauthorized request", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects authenticated callers without one of roles with 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ActorFromContext(r.Context()).HasRole(roles...) {
				writeMessage(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// viewer returns the caller id, or nil for anonymous requests.
func viewer(r *http.Request) *uuid.UUID {
	actor := ActorFromContext(r.Context())
	if !actor.Authenticated() {
		return nil
	}
	id := actor.UserID
	return &id
}

func userID(r *http.Request) uuid.UUID {
	return ActorFromContext(r.Context()).UserID
}
