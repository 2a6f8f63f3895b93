package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

type contextKey int

const userContextKey contextKey = iota

// ContextWithUser returns a new context carrying the given user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the user from the context, or nil if not present.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey).(*User)
	return user
}

// RequireSession rejects requests while nobody is logged in (or the access
// token has expired) and injects the user otherwise.
func RequireSession(g *Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.Authenticate()
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// RequireRoute checks the context user against the route resolve returns.
// It must run after RequireSession.
func RequireRoute(resolve func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeUnauthorized(w, ErrNotLoggedIn.Error())
				return
			}
			if err := Authorize(user, resolve(r)); err != nil {
				if errors.Is(err, ErrUnknownRoute) {
					writeError(w, http.StatusNotFound, "not_found", err.Error(), "")
					return
				}
				writeError(w, http.StatusForbidden, "forbidden", err.Error(), "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StaticRoute adapts a fixed route for RequireRoute.
func StaticRoute(route string) func(*http.Request) string {
	return func(*http.Request) string { return route }
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, "unauthorized", message, LoginRoute)
}

func writeError(w http.ResponseWriter, status int, code, message, redirect string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorBody{Code: code, Message: message, Redirect: redirect},
	})
}
