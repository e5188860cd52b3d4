package http

import (
	"context"
	"net/http"
	"strings"
)

// Authorizer is the external identity collaborator. The engine trusts it and
// performs no credential logic itself.
type Authorizer interface {
	CurrentUser(r *http.Request) (string, bool)
	IsAdmin(userID string) bool
}

// HeaderAuthorizer trusts identity headers injected by an upstream gateway:
// X-User-ID carries the caller, and admins come from a configured allow-list.
type HeaderAuthorizer struct {
	admins map[string]struct{}
}

func NewHeaderAuthorizer(adminIDs []string) *HeaderAuthorizer {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		admins[id] = struct{}{}
	}
	return &HeaderAuthorizer{admins: admins}
}

func (a *HeaderAuthorizer) CurrentUser(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get("X-User-ID"))
	return id, id != ""
}

func (a *HeaderAuthorizer) IsAdmin(userID string) bool {
	_, ok := a.admins[userID]
	return ok
}

type userKey struct{}

// RequireUser rejects anonymous requests and stores the caller's ID in the
// request context.
func RequireUser(auth Authorizer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.CurrentUser(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, userID)))
	})
}

// RequireAdmin additionally rejects callers outside the admin allow-list.
func RequireAdmin(auth Authorizer, next http.Handler) http.Handler {
	return RequireUser(auth, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(userFromContext(r.Context())) {
			writeError(w, http.StatusForbidden, codeForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func userFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}
