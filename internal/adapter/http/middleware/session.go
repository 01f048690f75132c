package middleware

import (
	"context"
	"errors"
	"net/http"
)

// ActingUserHeader names the user on whose behalf a request acts.
// Approval stamps come from this identity.
const ActingUserHeader = "X-Acting-User"

type contextKey string

const actingUserKey contextKey = "acting-user"

// ErrNoActingUser is returned when an operation needs an acting user
// and the request did not carry one.
var ErrNoActingUser = errors.New("no acting user in request context")

// Session copies the acting user header into the request context.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := r.Header.Get(ActingUserHeader); user != "" {
			r = r.WithContext(context.WithValue(r.Context(), actingUserKey, user))
		}

		next.ServeHTTP(w, r)
	})
}

// SessionProvider implements usecase.SessionProvider from the request
// context populated by Session.
type SessionProvider struct{}

// NewSessionProvider creates a new SessionProvider.
func NewSessionProvider() *SessionProvider {
	return &SessionProvider{}
}

// CurrentUser returns the acting user carried by the context.
func (p *SessionProvider) CurrentUser(ctx context.Context) (string, error) {
	user, ok := ctx.Value(actingUserKey).(string)
	if !ok || user == "" {
		return "", ErrNoActingUser
	}

	return user, nil
}
