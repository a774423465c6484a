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

type formPayload struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	IsQuiz      bool             `json:"isQuiz"`
	Questions   []model.Question `json:"questions"`
}

func (p formPayload) form() model.Form {
	return model.Form{
		Title:       p.Title,
		Description: p.Description,
		IsQuiz:      p.IsQuiz,
	}
}

func PublishForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := formPayload{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "invalid request body")
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			httpx.Error(w, r, http.StatusUnauthorized, log.DebugLevel, "publish_form.user", "access denied")
			return
		}

		formID, err := app.Forms.Publish(r.Context(), userID, payload.form(), payload.Questions)
		if err != nil {
			writeServiceError(w, r, "publish_form", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"message": "Form published successfully",
			"id":      formID,
		})
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id", "invalid form id")
			return
		}

		payload := formPayload{}
		err = render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "invalid request body")
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			httpx.Error(w, r, http.StatusUnauthorized, log.DebugLevel, "update_form.user", "access denied")
			return
		}

		err = app.Forms.Update(r.Context(), formID, userID, payload.form(), payload.Questions)
		if err != nil {
			writeServiceError(w, r, "update_form", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"message": "Form updated successfully",
		})
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id", "invalid form id")
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			httpx.Error(w, r, http.StatusUnauthorized, log.DebugLevel, "delete_form.user", "access denied")
			return
		}

		err = app.Forms.Delete(r.Context(), formID, userID)
		if err != nil {
			writeServiceError(w, r, "delete_form", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"message": "Form deleted",
		})
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := currentUserID(r)
		if err != nil {
			httpx.Error(w, r, http.StatusUnauthorized, log.DebugLevel, "list_forms.user", "access denied")
			return
		}

		forms, err := app.Forms.List(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, "list_forms", err)
			return
		}

		render.JSON(w, r, forms)
	}
}

// EditForm returns the owner's full view of a form, correct answers
// included, for the editing UI.
func EditForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id", "invalid form id")
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			httpx.Error(w, r, http.StatusUnauthorized, log.DebugLevel, "edit_form.user", "access denied")
			return
		}

		form, questions, err := app.Forms.Get(r.Context(), formID, userID)
		if err != nil {
			writeServiceError(w, r, "edit_form", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"form":      form,
			"questions": questions,
		})
	}
}

func ListResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.Error(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id", "invalid form id")
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			httpx.Error(w, r, http.StatusUnauthorized, log.DebugLevel, "list_responses.user", "access denied")
			return
		}

		responses, err := app.Forms.Responses(r.Context(), formID, userID)
		if err != nil {
			writeServiceError(w, r, "list_responses", err)
			return
		}

		render.JSON(w, r, responses)
	}
}
