package httpx

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/formbuilder/log"
)

// Error logs the given code and sends a JSON {error} payload.
func Error(w http.ResponseWriter, r *http.Request, status int, level log.Level, code, msg string) {
	log.Log(level, code+":", msg)
	render.Status(r, status)
	render.JSON(w, r, map[string]any{"error": msg})
}

// InternalError logs the underlying error and sends a generic 500 payload
// with {error, details}; no query text or stack reaches the client.
func InternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Errorf("%s: %s", code, err)
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, map[string]any{
		"error":   "internal server error",
		"details": code,
	})
}

// NotFound logs at debug level and sends a JSON 404.
func NotFound(w http.ResponseWriter, r *http.Request, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, map[string]any{"error": "not found"})
}
