package routes

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/formbuilder/app"
	"github.com/mbolis/formbuilder/httpx"
	"github.com/mbolis/formbuilder/log"
	"golang.org/x/crypto/bcrypt"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := credentials{}
		err := render.DecodeJSON(r.Body, &creds)
		if err != nil {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "invalid request body")
			return
		}
		creds.Email = strings.TrimSpace(creds.Email)
		if creds.Email == "" || creds.Password == "" {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "register.credentials", "email and password are required")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.InternalError(w, r, "register.hash_password", err)
			return
		}

		var userID int
		err = app.QueryRowContext(r.Context(), `
			INSERT INTO users (email, password_hash) VALUES (?, ?)
			RETURNING id`,
			creds.Email,
			string(hash),
		).Scan(&userID)
		if err != nil {
			// almost always a unique violation on email
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "register.insert_user", "user already exists or data invalid")
			return
		}

		token, err := issueToken(app, userID, creds.Email)
		if err != nil {
			httpx.InternalError(w, r, "register.issue_token", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"token": token,
		})
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := credentials{}
		err := render.DecodeJSON(r.Body, &creds)
		if err != nil {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "invalid request body")
			return
		}

		var userID int
		var hash string
		err = app.QueryRowContext(r.Context(), `
			SELECT id, password_hash FROM users WHERE email = ?`,
			strings.TrimSpace(creds.Email),
		).Scan(&userID, &hash)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "login.get_user", "user not found")
			return
		}
		if err != nil {
			httpx.InternalError(w, r, "login.get_user", err)
			return
		}

		err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password))
		if err != nil {
			httpx.Error(w, r, http.StatusForbidden, log.DebugLevel, "login.password", "incorrect password")
			return
		}

		token, err := issueToken(app, userID, creds.Email)
		if err != nil {
			httpx.InternalError(w, r, "login.issue_token", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"token": token,
		})
	}
}

func issueToken(app app.App, userID int, email string) (string, error) {
	claims := map[string]any{
		"id":    userID,
		"email": email,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, app.TokenTTL)

	_, token, err := app.TokenAuth.Encode(claims)
	return token, err
}

// currentUserID extracts the authenticated user from the verified token.
func currentUserID(r *http.Request) (int, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return 0, err
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return 0, errors.New("token carries no user id")
	}
	return int(id), nil
}
