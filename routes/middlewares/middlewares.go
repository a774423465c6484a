package middlewares

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/mbolis/formbuilder/httpx"
	"github.com/mbolis/formbuilder/log"
)

// Authenticator rejects requests without a valid bearer token. It runs
// after jwtauth.Verifier, which parses the token into the context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			httpx.Error(w, r, http.StatusUnauthorized, log.DebugLevel, "auth.token", "access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}
