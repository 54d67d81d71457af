package web

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/hpungsan/focusbrief/internal/errors"
)

// Authorizer decides whether a request may reach a protected route.
type Authorizer interface {
	Authorize(r *http.Request) error
}

// TokenAuthorizer checks a static bearer token. An empty token leaves
// every route open.
type TokenAuthorizer struct {
	Token string
}

// Authorize accepts "Authorization: Bearer <token>". The token query
// parameter is also accepted so the HTML view can be opened in a browser.
func (a TokenAuthorizer) Authorize(r *http.Request) error {
	if a.Token == "" {
		return nil
	}

	got := r.URL.Query().Get("token")
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return errors.NewUnauthorized()
		}
		got = strings.TrimSpace(token)
	}

	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(a.Token)) != 1 {
		return errors.NewUnauthorized()
	}
	return nil
}

// requireAuth wraps next with the authorizer.
func requireAuth(a Authorizer, next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.Authorize(r); err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
