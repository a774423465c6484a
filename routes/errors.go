package routes

import (
	"net/http"

	"github.com/mbolis/formbuilder/httpx"
	"github.com/mbolis/formbuilder/log"
	"github.com/mbolis/formbuilder/service"
	"github.com/pkg/errors"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses:
// validation 400, not-found 404, ownership 403, everything else 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, code string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, code, verr.Msg)
	case errors.Is(err, service.ErrNotFound):
		httpx.NotFound(w, r, code, nil)
	case errors.Is(err, service.ErrNotOwner):
		httpx.Error(w, r, http.StatusForbidden, log.DebugLevel, code, "not the form owner")
	default:
		httpx.InternalError(w, r, code, err)
	}
}
