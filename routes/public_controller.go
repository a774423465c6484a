package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/mbolis/formbuilder/app"
	"github.com/mbolis/formbuilder/httpx"
	"github.com/mbolis/formbuilder/log"
	"github.com/mbolis/formbuilder/model"
)

// PublicGetForm serves the fill-out view of a form: title, description
// and the ordered question set, without correct answers or points.
func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id", "invalid form id")
			return
		}

		form, questions, err := app.Forms.PublicGet(r.Context(), formID)
		if err != nil {
			writeServiceError(w, r, "get_public_form", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"form":      form,
			"questions": questions,
		})
	}
}

type submitPayload struct {
	Answers []model.Answer `json:"answers"`
}

// SubmitResponse records one respondent's answers and, for quiz forms,
// their computed score.
func SubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id", "invalid form id")
			return
		}

		payload := submitPayload{}
		err = render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "invalid request body")
			return
		}

		score, err := app.Forms.Submit(r.Context(), formID, payload.Answers)
		if err != nil {
			writeServiceError(w, r, "submit_response", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"message": "Success",
			"score":   score,
		})
	}
}
